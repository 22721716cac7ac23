// Package compose wraps the docker compose CLI. The orchestration descriptor
// and project name are fixed at construction so every invocation operates on
// the same stack.
package compose

import (
	"context"
	"fmt"
	"strings"

	"github.com/jihwankim/regnet-utils/pkg/runner"
)

// Compose drives a single docker compose stack
type Compose struct {
	run     *runner.Runner
	command []string
	file    string
	project string
}

// New creates a Compose wrapper. command is the orchestration command prefix
// (e.g. ["docker", "compose"]), file the descriptor path, project the compose
// project name.
func New(run *runner.Runner, command []string, file, project string) *Compose {
	return &Compose{
		run:     run,
		command: command,
		file:    file,
		project: project,
	}
}

// File returns the orchestration descriptor path
func (c *Compose) File() string {
	return c.file
}

// Project returns the compose project name
func (c *Compose) Project() string {
	return c.project
}

// args builds a full argument vector for one compose subcommand
func (c *Compose) args(sub ...string) (string, []string) {
	name := c.command[0]
	args := append([]string{}, c.command[1:]...)
	args = append(args, "-f", c.file, "-p", c.project)
	args = append(args, sub...)
	return name, args
}

// Up brings all services up in detached mode
func (c *Compose) Up(ctx context.Context) error {
	name, args := c.args("up", "-d")
	if err := c.run.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("compose up: %w", err)
	}
	return nil
}

// Down tears the stack down, including volumes and orphaned containers.
// A stack that was never started is not an error.
func (c *Compose) Down(ctx context.Context) error {
	name, args := c.args("down", "-v", "--remove-orphans")
	if err := c.run.Run(ctx, name, args...); err != nil {
		return fmt.Errorf("compose down: %w", err)
	}
	return nil
}

// Services returns the service names defined in the descriptor
func (c *Compose) Services(ctx context.Context) ([]string, error) {
	name, args := c.args("config", "--services")
	output, err := c.run.Output(ctx, name, args...)
	if err != nil {
		return nil, fmt.Errorf("compose config: %w", err)
	}

	var services []string
	for _, line := range strings.Split(output, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			services = append(services, line)
		}
	}
	return services, nil
}

// ExecService runs a command inside a running service container and returns
// its standard output. -T disables TTY allocation so output capture works
// from non-interactive callers.
func (c *Compose) ExecService(ctx context.Context, service string, cmd ...string) (string, error) {
	name, args := c.args(append([]string{"exec", "-T", service}, cmd...)...)
	output, err := c.run.Output(ctx, name, args...)
	if err != nil {
		return "", fmt.Errorf("compose exec %s: %w", service, err)
	}
	return output, nil
}
