// SPDX-License-Identifier: MPL-2.0

// Package pinning uploads token artwork and metadata to the Pinata IPFS
// pinning API.
//
// Client wraps the two pinning endpoints (multipart file upload and JSON
// upload) behind a retry policy. Uploader composes them with image
// normalization and metadata editing into the single workflow that yields the
// metadata URI used on chain.
package pinning
