// SPDX-License-Identifier: MPL-2.0

// Package toolchain runs the Solana command-line tools (solana, solana-keygen,
// spl-token) and turns their failures into structured errors.
//
// Every invocation goes through a Runner whose exec.Cmd factory can be
// replaced in tests. A failed invocation yields a *CommandError carrying the
// exit code, the captured stderr and a Kind derived from that stderr, so the
// provisioning layer can express its idempotency checks as typed predicates
// instead of raw substring matches.
package toolchain
