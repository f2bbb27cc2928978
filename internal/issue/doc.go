// SPDX-License-Identifier: MPL-2.0

// Package issue turns mintkit failures into messages a user can act on.
//
// ActionableError carries the failed operation, the resource involved and
// short suggestions. The Issue catalog holds longer Markdown guidance,
// rendered with glamour, for the failures users hit most often: missing
// secrets, missing Solana tools, Pinata rejections and exhausted retries.
package issue
