// SPDX-License-Identifier: MPL-2.0

package pinning

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

const (
	// DefaultGateway is the public gateway prefix for pinned content.
	DefaultGateway = "https://gateway.pinata.cloud/ipfs/"

	protocolPrefix = "ipfs://"
)

// ErrInvalidHash is returned when the service answers with something that
// is not a content identifier.
var ErrInvalidHash = errors.New("invalid content hash")

// Result identifies one pinned object.
type Result struct {
	// Hash is the content identifier returned by the service.
	Hash string
	// GatewayURL is Hash under the HTTP gateway.
	GatewayURL string
	// ProtocolURL is the ipfs:// form of Hash.
	ProtocolURL string
	// CIDVersion is 0 for base58 "Qm" hashes and 1 otherwise.
	CIDVersion uint64
	// HashFunc names the multihash function (e.g. "sha2-256").
	HashFunc string
	// Size is the pinned size in bytes reported by the service.
	Size int64
}

// NewResult validates hash as a CID and derives its URLs from the gateway
// prefix. A missing trailing slash on gateway is added.
func NewResult(hash, gateway string) (Result, error) {
	hash = strings.TrimSpace(hash)
	c, err := cid.Decode(hash)
	if err != nil {
		return Result{}, fmt.Errorf("%w %q: %w", ErrInvalidHash, hash, err)
	}
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}

	prefix := c.Prefix()
	hashFunc, ok := multihash.Codes[prefix.MhType]
	if !ok {
		hashFunc = fmt.Sprintf("0x%x", prefix.MhType)
	}
	return Result{
		Hash:        hash,
		GatewayURL:  gateway + hash,
		ProtocolURL: protocolPrefix + hash,
		CIDVersion:  prefix.Version,
		HashFunc:    hashFunc,
	}, nil
}
