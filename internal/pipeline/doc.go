// SPDX-License-Identifier: MPL-2.0

// Package pipeline runs a complete token creation: wallet keypair, metadata
// document, artwork and metadata pinning, on-chain provisioning and artifact
// archiving.
//
// Run always archives, whether the run succeeded or not, and archiving
// problems are logged rather than returned so they never hide the real
// outcome of the run.
package pipeline
