// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// Process exit codes.
const (
	ExitFailure     = 1
	ExitInterrupted = 130
)

// ExitError signals a non-zero exit code without forcing os.Exit in RunE
// handlers. Its message has already been shown to the user.
type ExitError struct {
	Code int
	Err  error
}

// Error returns the error message for ExitError.
func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("exit status %d", e.Code)
}

// Unwrap returns the underlying error, if any.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// exitFor wraps an error the handler already rendered, silencing Cobra's
// own error and usage output.
func exitFor(cmd *cobra.Command, err error) error {
	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	code := ExitFailure
	if errors.Is(err, context.Canceled) {
		code = ExitInterrupted
	}
	return &ExitError{Code: code, Err: err}
}

// errorHandler leaves rendered errors alone and lets fang style the rest
// (flag and argument errors).
func errorHandler(w io.Writer, styles fang.Styles, err error) {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return
	}
	fang.DefaultErrorHandler(w, styles, err)
}
