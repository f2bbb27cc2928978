// SPDX-License-Identifier: MPL-2.0

package toolchain

import (
	"errors"
	"strings"

	"github.com/mintkit/mintkit/internal/retry"
)

const (
	// KindUnknown is any failure without a recognised signature.
	KindUnknown Kind = iota
	// KindAddressInUse means the account being allocated already exists
	// (spl-token create-token re-run with the same mint keypair).
	KindAddressInUse
	// KindAccountExists means the associated token account already exists.
	KindAccountExists
	// KindExtensionInitialized means the metadata extension was already set up.
	KindExtensionInitialized
	// KindToolMissing means the executable could not be found on PATH.
	KindToolMissing
)

const accountExistsMarker = "Error: Account already exists:"

// Kind classifies a tool failure.
type Kind int

// String returns a lowercase label for logs.
func (k Kind) String() string {
	switch k {
	case KindAddressInUse:
		return "address-in-use"
	case KindAccountExists:
		return "account-exists"
	case KindExtensionInitialized:
		return "extension-initialized"
	case KindToolMissing:
		return "tool-missing"
	default:
		return "unknown"
	}
}

// Classify maps a tool's stderr to a Kind.
func Classify(stderr string) Kind {
	switch {
	case strings.Contains(stderr, "account Address") && strings.Contains(stderr, "already in use"):
		return KindAddressInUse
	case strings.Contains(stderr, accountExistsMarker):
		return KindAccountExists
	case strings.Contains(stderr, "Extension already initialized"):
		return KindExtensionInitialized
	default:
		return KindUnknown
	}
}

// ExtractExistingAccount pulls the account address out of an
// "Error: Account already exists: <address>" message. The address is whatever
// follows the last colon; spl-token offers no structured form of it.
func ExtractExistingAccount(stderr string) (string, bool) {
	if !strings.Contains(stderr, accountExistsMarker) {
		return "", false
	}
	idx := strings.LastIndex(stderr, ":")
	addr := strings.TrimSpace(stderr[idx+1:])
	if addr == "" {
		return "", false
	}
	return addr, true
}

// IsKind returns a retry.Predicate that matches a *CommandError of kind k.
func IsKind(k Kind) retry.Predicate {
	return func(err error) bool {
		var cmdErr *CommandError
		return errors.As(err, &cmdErr) && cmdErr.Kind == k
	}
}
