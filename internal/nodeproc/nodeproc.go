// Package nodeproc runs short-lived Node.js child processes and collects
// their output.
package nodeproc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// StopGrace is how long a cancelled process may take to exit after
// SIGTERM before it is killed.
const StopGrace = 5 * time.Second

// Spec describes one process invocation.
type Spec struct {
	// Command is looked up in PATH.
	Command string

	Args  []string
	Dir   string
	Env   []string
	Stdin io.Reader

	// Timeout bounds the run. Zero means no limit.
	Timeout time.Duration
}

// NotFoundError is returned when Command is not in PATH.
type NotFoundError struct {
	Command string
	Err     error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%q was not found in PATH", e.Command)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// ExitError is returned when the process exits unsuccessfully.
type ExitError struct {
	// Stderr is the trimmed standard error output.
	Stderr string
	Err    error
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("process exited: %v", e.Err)
	}
	return e.Stderr
}

func (e *ExitError) Unwrap() error { return e.Err }

// Run starts the process, waits for it and returns its standard output.
func Run(ctx context.Context, spec Spec) ([]byte, error) {
	bin, err := exec.LookPath(spec.Command)
	if err != nil {
		return nil, &NotFoundError{Command: spec.Command, Err: err}
	}

	if spec.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, spec.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdin = spec.Stdin
	cmd.WaitDelay = StopGrace
	configure(cmd)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &ExitError{Stderr: strings.TrimSpace(stderr.String()), Err: err}
	}

	return stdout.Bytes(), nil
}
