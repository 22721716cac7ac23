// Package docker wraps the Docker Engine API for the pieces compose cannot
// give us: accumulated container log output (the only readiness signal some
// services provide) and sweeping leftover containers from interrupted runs.
package docker

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
)

// Compose sets these labels on every container it creates
const (
	composeProjectLabel = "com.docker.compose.project"
	composeServiceLabel = "com.docker.compose.service"
)

// Client wraps the Docker API client
type Client struct {
	cli *client.Client
}

// New creates a new Docker client
func New() (*Client, error) {
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, fmt.Errorf("failed to create Docker client: %w", err)
	}

	return &Client{cli: cli}, nil
}

// Close closes the Docker client connection
func (c *Client) Close() error {
	if c.cli != nil {
		return c.cli.Close()
	}
	return nil
}

// findServiceContainer locates the container backing a compose service
func (c *Client) findServiceContainer(ctx context.Context, project, service string) (string, error) {
	f := filters.NewArgs()
	f.Add("label", fmt.Sprintf("%s=%s", composeProjectLabel, project))
	f.Add("label", fmt.Sprintf("%s=%s", composeServiceLabel, service))

	containers, err := c.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: f,
	})
	if err != nil {
		return "", fmt.Errorf("failed to list containers: %w", err)
	}

	if len(containers) == 0 {
		return "", fmt.Errorf("no container found for service %s in project %s", service, project)
	}

	return containers[0].ID, nil
}

// ServiceLogs returns the accumulated log output of a compose service.
// tail limits the output to the most recent lines; pass "all" for everything.
func (c *Client) ServiceLogs(ctx context.Context, project, service, tail string) (string, error) {
	id, err := c.findServiceContainer(ctx, project, service)
	if err != nil {
		return "", err
	}

	reader, err := c.cli.ContainerLogs(ctx, id, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Tail:       tail,
	})
	if err != nil {
		return "", fmt.Errorf("failed to fetch logs: %w", err)
	}
	defer reader.Close()

	// Containers without a TTY multiplex stdout/stderr into one stream
	var buf bytes.Buffer
	if _, err := stdcopy.StdCopy(&buf, &buf, reader); err != nil && err != io.EOF {
		return buf.String(), fmt.Errorf("failed to read logs: %w", err)
	}

	return buf.String(), nil
}

// RemoveProjectContainers force-removes every container belonging to a
// compose project, running or not. Used to sweep remnants of interrupted
// runs that compose down no longer knows about.
func (c *Client) RemoveProjectContainers(ctx context.Context, project string) error {
	f := filters.NewArgs()
	f.Add("label", fmt.Sprintf("%s=%s", composeProjectLabel, project))

	containers, err := c.cli.ContainerList(ctx, types.ContainerListOptions{
		All:     true,
		Filters: f,
	})
	if err != nil {
		return fmt.Errorf("failed to list containers: %w", err)
	}

	for _, ctr := range containers {
		err := c.cli.ContainerRemove(ctx, ctr.ID, types.ContainerRemoveOptions{
			Force:         true,
			RemoveVolumes: true,
		})
		if err != nil {
			return fmt.Errorf("failed to remove container %s: %w", ctr.ID[:12], err)
		}
	}

	return nil
}

// ProjectLogs binds a client to one compose project so callers can fetch
// logs by service name alone
type ProjectLogs struct {
	cli     *Client
	project string
	tail    string
}

// ProjectLogs returns a per-project log source. tail bounds every fetch;
// pass "all" for complete output.
func (c *Client) ProjectLogs(project, tail string) *ProjectLogs {
	return &ProjectLogs{cli: c, project: project, tail: tail}
}

// ServiceLogs returns the log output of one service in the bound project
func (p *ProjectLogs) ServiceLogs(ctx context.Context, service string) (string, error) {
	return p.cli.ServiceLogs(ctx, p.project, service, p.tail)
}
