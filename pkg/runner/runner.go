// Package runner executes external commands with uniform failure handling.
// Every orchestration and RPC invocation in the harness routes through it,
// always as an argument vector, never as a shell string.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/jihwankim/regnet-utils/pkg/reporting"
)

// Runner invokes external commands and surfaces their exit status
type Runner struct {
	logger *reporting.Logger
}

// New creates a new Runner
func New(logger *reporting.Logger) *Runner {
	return &Runner{logger: logger}
}

// Run executes a command, discarding output on success. On failure the
// combined output is folded into the returned error.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	r.logger.Debug("running command", "command", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return commandError(err, name, args, string(output))
	}

	return nil
}

// Output executes a command and returns its trimmed standard output
func (r *Runner) Output(ctx context.Context, name string, args ...string) (string, error) {
	r.logger.Debug("running command", "command", name, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", commandError(err, name, args, string(exitErr.Stderr))
		}
		return "", commandError(err, name, args, "")
	}

	return strings.TrimSpace(string(output)), nil
}

// commandError attaches the exit code and captured output to a command
// failure so it survives the trip up to the fatal reporter
func commandError(err error, name string, args []string, output string) error {
	cmdline := name
	if len(args) > 0 {
		cmdline += " " + strings.Join(args, " ")
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		output = strings.TrimSpace(output)
		if output != "" {
			return fmt.Errorf("%q exited with status %d: %s", cmdline, exitErr.ExitCode(), output)
		}
		return fmt.Errorf("%q exited with status %d", cmdline, exitErr.ExitCode())
	}

	return fmt.Errorf("%q failed: %w", cmdline, err)
}
