// SPDX-License-Identifier: MPL-2.0

// Package retry runs an external call up to a bounded number of attempts with a
// fixed delay between them.
//
// A Policy names the operation and carries its attempt budget, its delay and an
// optional short-circuit Predicate. When a failed attempt matches the predicate
// the failure is reclassified as an already-satisfied success: the loop stops
// and the Outcome reports the matching error so callers can extract whatever
// pre-existing identifier it carries. When attempts run out, Do returns a
// *TerminalError wrapping ErrTerminal and the last failure. An attempt can
// end the loop early by returning an error wrapped with Permanent.
package retry
