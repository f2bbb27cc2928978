// SPDX-License-Identifier: MPL-2.0

// Package provision creates an SPL token with on-chain metadata by driving the
// Solana command-line tools through a fixed sequence of states:
//
//	CONFIG_SET → ADDRESS_RESOLVED → MINT_KEYPAIR_GENERATED → TOKEN_CREATED →
//	ACCOUNT_CREATED → METADATA_INITIALIZED → NAME_UPDATED → SYMBOL_UPDATED →
//	URI_UPDATED → SUPPLY_MINTED
//
// Each transition is one tool invocation run under its own retry policy. Steps
// whose tool reports that the work was already done (address in use, account
// exists, extension initialized) are treated as complete, which makes
// re-running an interrupted provisioning safe. There is no rollback: a failure
// leaves the chain in whatever state the completed steps produced, and the
// returned Identity records how far provisioning got.
//
// The tools are reached through the Executor interface, implemented by
// toolchain.Runner, so the sequence can be tested with a fake executor:
//
//	p := provision.New(runner, settings, provision.WithRetrier(r))
//	id, err := p.Run(ctx, provision.Request{Name: "Tok", Symbol: "TK", URI: uri, Amount: "1000"})
package provision
