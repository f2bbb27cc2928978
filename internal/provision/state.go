// SPDX-License-Identifier: MPL-2.0

package provision

const (
	// StateNone is the state before any step ran.
	StateNone State = iota
	// StateConfigSet means the CLI points at the cluster and wallet keypair.
	StateConfigSet
	// StateAddressResolved means the wallet address is known.
	StateAddressResolved
	// StateMintKeypairGenerated means a vanity mint keypair file exists.
	StateMintKeypairGenerated
	// StateTokenCreated means the mint account exists on chain.
	StateTokenCreated
	// StateAccountCreated means the wallet's token account exists.
	StateAccountCreated
	// StateMetadataInitialized means the metadata extension is initialized.
	StateMetadataInitialized
	// StateNameUpdated means the on-chain name field is set.
	StateNameUpdated
	// StateSymbolUpdated means the on-chain symbol field is set.
	StateSymbolUpdated
	// StateURIUpdated means the on-chain uri field is set.
	StateURIUpdated
	// StateSupplyMinted means the requested supply was minted.
	StateSupplyMinted
)

// State is a provisioning milestone. States only move forward.
type State int

var stateNames = [...]string{
	StateNone:                 "NONE",
	StateConfigSet:            "CONFIG_SET",
	StateAddressResolved:      "ADDRESS_RESOLVED",
	StateMintKeypairGenerated: "MINT_KEYPAIR_GENERATED",
	StateTokenCreated:         "TOKEN_CREATED",
	StateAccountCreated:       "ACCOUNT_CREATED",
	StateMetadataInitialized:  "METADATA_INITIALIZED",
	StateNameUpdated:          "NAME_UPDATED",
	StateSymbolUpdated:        "SYMBOL_UPDATED",
	StateURIUpdated:           "URI_UPDATED",
	StateSupplyMinted:         "SUPPLY_MINTED",
}

// String returns the upper-snake name of the state.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Next returns the state that follows s, or s itself for the final state.
func (s State) Next() State {
	if s >= StateSupplyMinted {
		return StateSupplyMinted
	}
	return s + 1
}

// States returns every reachable state in transition order.
func States() []State {
	out := make([]State, 0, int(StateSupplyMinted))
	for s := StateConfigSet; s <= StateSupplyMinted; s++ {
		out = append(out, s)
	}
	return out
}
