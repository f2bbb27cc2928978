// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
	"mvdan.cc/sh/v3/syntax"
)

var (
	// ErrCommandFailed is the sentinel error wrapped by CommandError.
	ErrCommandFailed = errors.New("external command failed")

	// ErrToolNotFound is returned when a required executable is not on PATH.
	ErrToolNotFound = errors.New("required tool not found")
)

type (
	// ExecCommandFunc is the function signature for creating exec.Cmd.
	// Tests replace it to avoid running the real Solana tools.
	ExecCommandFunc func(ctx context.Context, name string, arg ...string) *exec.Cmd

	// Result is the captured output of a successful invocation.
	Result struct {
		// Stdout is the trimmed standard output.
		Stdout string
		// Stderr is the raw standard error, which some tools use for progress output.
		Stderr string
	}

	// CommandError describes a failed invocation.
	CommandError struct {
		// Command is the shell-quoted command line.
		Command  string
		ExitCode int
		Stderr   string
		Kind     Kind
		Err      error
	}

	// Option configures a Runner.
	Option func(*Runner)

	// Runner executes external tools with captured output.
	Runner struct {
		execCommand ExecCommandFunc
		dir         string
		logger      *log.Logger
	}
)

// WithExecCommand replaces the exec.Cmd factory.
func WithExecCommand(fn ExecCommandFunc) Option {
	return func(r *Runner) {
		if fn != nil {
			r.execCommand = fn
		}
	}
}

// WithDir sets the working directory for every invocation.
func WithDir(dir string) Option {
	return func(r *Runner) { r.dir = dir }
}

// WithLogger sets the logger for command tracing.
func WithLogger(l *log.Logger) Option {
	return func(r *Runner) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRunner creates a Runner backed by exec.CommandContext.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		execCommand: exec.CommandContext,
		logger:      log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Dir returns the runner's working directory ("" means the process cwd).
func (r *Runner) Dir() string { return r.dir }

// Run executes name with args and waits for it to finish. A non-zero exit
// yields a *CommandError; a missing executable yields an error wrapping
// ErrToolNotFound.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	line := CommandLine(name, args...)
	cmd := r.execCommand(ctx, name, args...)
	if r.dir != "" {
		cmd.Dir = r.dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.logger.Debug("running command", "command", line)
	err := cmd.Run()
	res := Result{Stdout: strings.TrimSpace(stdout.String()), Stderr: stderr.String()}
	if err == nil {
		if res.Stdout != "" {
			r.logger.Debug("command output", "command", line, "stdout", res.Stdout)
		}
		return res, nil
	}

	if errors.Is(err, exec.ErrNotFound) {
		return res, &CommandError{Command: line, ExitCode: -1, Kind: KindToolMissing, Err: fmt.Errorf("%w: %s: %w", ErrToolNotFound, name, err)}
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}
	stderrText := strings.TrimSpace(res.Stderr)
	return res, &CommandError{
		Command:  line,
		ExitCode: exitCode,
		Stderr:   stderrText,
		Kind:     Classify(stderrText),
		Err:      err,
	}
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("command %s failed: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %s failed (exit %d): %s", e.Command, e.ExitCode, e.Stderr)
}

// Unwrap exposes ErrCommandFailed and the underlying exec error.
func (e *CommandError) Unwrap() []error { return []error{ErrCommandFailed, e.Err} }

// CommandLine renders name and args as a bash-quoted command line.
func CommandLine(name string, args ...string) string {
	parts := make([]string, 0, len(args)+1)
	for _, s := range append([]string{name}, args...) {
		q, err := syntax.Quote(s, syntax.LangBash)
		if err != nil {
			q = fmt.Sprintf("%q", s)
		}
		parts = append(parts, q)
	}
	return strings.Join(parts, " ")
}
