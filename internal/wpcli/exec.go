// Package wpcli runs external commands, chiefly WP-CLI against the site.
package wpcli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds one command when the caller's context has no
// deadline.
const DefaultTimeout = 2 * time.Minute

// Result holds the outcome of a finished command.
type Result struct {
	Stdout     string
	Stderr     string
	ExitStatus int
}

// Command describes one external process.
type Command struct {
	name       string
	args       []string
	workingDir string
	env        []string
	timeout    time.Duration
}

// NewCommand creates a command for name with args.
func NewCommand(name string, args ...string) *Command {
	return &Command{name: name, args: args, timeout: DefaultTimeout}
}

// WithWorkingDir sets the working directory.
func (c *Command) WithWorkingDir(dir string) *Command {
	c.workingDir = dir
	return c
}

// WithEnvironment appends KEY=VALUE pairs to the inherited environment.
func (c *Command) WithEnvironment(env []string) *Command {
	c.env = env
	return c
}

// WithTimeout overrides DefaultTimeout. Zero disables the limit.
func (c *Command) WithTimeout(d time.Duration) *Command {
	c.timeout = d
	return c
}

// String renders the command line for logs.
func (c *Command) String() string {
	return strings.TrimSpace(c.name + " " + strings.Join(c.args, " "))
}

// Run executes the command. A non-zero exit is returned as an error that
// carries the trimmed stderr.
func (c *Command) Run(ctx context.Context) (Result, error) {
	if c.timeout > 0 {
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, c.timeout)
			defer cancel()
		}
	}

	cmd := exec.CommandContext(ctx, c.name, c.args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if c.workingDir != "" {
		cmd.Dir = c.workingDir
	}
	if len(c.env) > 0 {
		cmd.Env = append(os.Environ(), c.env...)
	}

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitStatus = exitErr.ExitCode()
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(res.Stdout)
		}
		if msg == "" {
			msg = exitErr.Error()
		}
		return res, fmt.Errorf("%s: exit status %d: %s", c.name, res.ExitStatus, msg)
	}
	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("%s: %w", c.name, ctx.Err())
		}
		return res, fmt.Errorf("%s: %w", c.name, err)
	}
	return res, nil
}
