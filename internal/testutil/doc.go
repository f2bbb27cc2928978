// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers shared by mintkit tests: a controllable
// clock, and fixture writers that fail the test on error instead of returning it.
package testutil
