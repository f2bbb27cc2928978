// SPDX-License-Identifier: MPL-2.0

// Package clock abstracts wall-clock time so that retry delays and archive
// timestamps can be driven deterministically in tests.
package clock

import "time"

type (
	// Clock abstracts the time operations used by mintkit.
	// Production code uses Real; tests use testutil.FakeClock.
	Clock interface {
		// Now returns the current time.
		Now() time.Time

		// After waits for the duration to elapse and then sends the current time.
		After(d time.Duration) <-chan time.Time
	}

	// Real implements Clock using the system clock.
	Real struct{}
)

// Now returns the current system time.
func (Real) Now() time.Time {
	return time.Now()
}

// After returns a channel that receives the time after duration d.
func (Real) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// OrReal returns c, or Real when c is nil.
func OrReal(c Clock) Clock {
	if c == nil {
		return Real{}
	}
	return c
}
