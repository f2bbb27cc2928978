// SPDX-License-Identifier: MPL-2.0

package retry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/mintkit/mintkit/internal/clock"
)

var (
	// ErrTerminal is the sentinel error wrapped by TerminalError.
	ErrTerminal = errors.New("external call exhausted its retries")

	// ErrInvalidPolicy is the sentinel error wrapped by InvalidPolicyError.
	ErrInvalidPolicy = errors.New("invalid retry policy")
)

type (
	// Predicate reports whether a failed attempt should count as success.
	Predicate func(err error) bool

	// Policy bounds one kind of external call.
	Policy struct {
		// Name identifies the operation in logs and errors (e.g., "create token").
		Name string
		// MaxAttempts is the total number of invocations allowed. Must be >= 1.
		MaxAttempts int
		// Delay is the fixed pause between attempts. Must be >= 0.
		Delay time.Duration
		// ShortCircuit optionally reclassifies a failure as success.
		ShortCircuit Predicate
	}

	// Outcome describes how a successful Do call finished.
	Outcome struct {
		// Attempts is the number of invocations performed.
		Attempts int
		// ShortCircuited is set when the last attempt failed but matched the
		// policy's ShortCircuit predicate.
		ShortCircuited bool
		// Matched is the failure that matched ShortCircuit, nil otherwise.
		Matched error
	}

	// TerminalError is returned when every attempt failed without matching
	// the short-circuit predicate.
	TerminalError struct {
		Operation string
		Attempts  int
		Err       error
	}

	// PermanentError marks a failure that must not be retried.
	PermanentError struct {
		Err error
	}

	// InvalidPolicyError is returned by Policy.Validate.
	InvalidPolicyError struct {
		Value  Policy
		Reason string
	}

	// Retrier executes operations under a Policy.
	Retrier struct {
		clock  clock.Clock
		logger *log.Logger
	}

	// Option configures a Retrier.
	Option func(*Retrier)
)

// WithClock sets the clock used to wait between attempts.
func WithClock(c clock.Clock) Option {
	return func(r *Retrier) { r.clock = clock.OrReal(c) }
}

// WithLogger sets the logger that receives per-attempt diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(r *Retrier) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Retrier. Without options it uses the system clock and
// discards its logs.
func New(opts ...Option) *Retrier {
	r := &Retrier{
		clock:  clock.Real{},
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Validate returns an error if the policy cannot drive a retry loop.
func (p Policy) Validate() error {
	switch {
	case p.MaxAttempts < 1:
		return &InvalidPolicyError{Value: p, Reason: "max attempts must be at least 1"}
	case p.Delay < 0:
		return &InvalidPolicyError{Value: p, Reason: "delay must not be negative"}
	}
	return nil
}

// WithShortCircuit returns a copy of p using pred.
func (p Policy) WithShortCircuit(pred Predicate) Policy {
	p.ShortCircuit = pred
	return p
}

// Error implements the error interface.
func (e *InvalidPolicyError) Error() string {
	return fmt.Sprintf("invalid retry policy %q: %s", e.Value.Name, e.Reason)
}

// Unwrap returns ErrInvalidPolicy for errors.Is() compatibility.
func (e *InvalidPolicyError) Unwrap() error { return ErrInvalidPolicy }

// Permanent wraps err so that Do stops retrying and returns err unchanged.
// It returns nil for a nil err.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// Error implements the error interface.
func (e *PermanentError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *PermanentError) Unwrap() error { return e.Err }

// Error implements the error interface.
func (e *TerminalError) Error() string {
	return fmt.Sprintf("%s failed after %d attempt(s): %v", e.Operation, e.Attempts, e.Err)
}

// Unwrap exposes both ErrTerminal and the last attempt's error.
func (e *TerminalError) Unwrap() []error { return []error{ErrTerminal, e.Err} }

// LastErrorText returns the message of the final failed attempt.
func (e *TerminalError) LastErrorText() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

// Do invokes op once per attempt until it succeeds, its failure matches the
// policy's short-circuit predicate, or the attempts are exhausted. Between
// attempts it waits p.Delay; the wait is abandoned if ctx is cancelled.
func (r *Retrier) Do(ctx context.Context, p Policy, op func(ctx context.Context, attempt int) error) (Outcome, error) {
	_, out, err := DoValue(ctx, r, p, func(ctx context.Context, attempt int) (struct{}, error) {
		return struct{}{}, op(ctx, attempt)
	})
	return out, err
}

// DoValue is Do for operations that produce a value. On short-circuit the
// zero value of T is returned alongside the Outcome.
func DoValue[T any](ctx context.Context, r *Retrier, p Policy, op func(ctx context.Context, attempt int) (T, error)) (T, Outcome, error) {
	var zero T
	if err := p.Validate(); err != nil {
		return zero, Outcome{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if attempt > 1 {
			if err := r.wait(ctx, p.Delay); err != nil {
				return zero, Outcome{Attempts: attempt - 1}, fmt.Errorf("%s: retry aborted: %w", p.Name, err)
			}
		}

		val, err := op(ctx, attempt)
		if err == nil {
			return val, Outcome{Attempts: attempt}, nil
		}

		var perm *PermanentError
		if errors.As(err, &perm) {
			r.logger.Debug("failure is not retryable", "operation", p.Name, "attempt", attempt, "error", perm.Err)
			return zero, Outcome{Attempts: attempt}, perm.Err
		}

		if p.ShortCircuit != nil && p.ShortCircuit(err) {
			r.logger.Info("treating failure as already done", "operation", p.Name, "attempt", attempt, "error", err)
			return zero, Outcome{Attempts: attempt, ShortCircuited: true, Matched: err}, nil
		}

		lastErr = err
		if attempt < p.MaxAttempts {
			r.logger.Warn("attempt failed, retrying",
				"operation", p.Name, "attempt", attempt, "maxAttempts", p.MaxAttempts, "delay", p.Delay, "error", err)
		}
	}

	r.logger.Error("giving up", "operation", p.Name, "attempts", p.MaxAttempts, "error", lastErr)
	return zero, Outcome{Attempts: p.MaxAttempts}, &TerminalError{Operation: p.Name, Attempts: p.MaxAttempts, Err: lastErr}
}

func (r *Retrier) wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-r.clock.After(d):
		return nil
	}
}

// ContainsAll returns a Predicate matching errors whose message contains
// every one of substrs.
func ContainsAll(substrs ...string) Predicate {
	return func(err error) bool {
		if err == nil || len(substrs) == 0 {
			return false
		}
		msg := err.Error()
		for _, s := range substrs {
			if !strings.Contains(msg, s) {
				return false
			}
		}
		return true
	}
}

// AnyOf returns a Predicate matching when any of preds matches.
func AnyOf(preds ...Predicate) Predicate {
	return func(err error) bool {
		for _, p := range preds {
			if p != nil && p(err) {
				return true
			}
		}
		return false
	}
}
