// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"
)

var (
	// ErrInvalidTokenName is the sentinel error wrapped by InvalidTokenNameError.
	ErrInvalidTokenName = errors.New("invalid token name")
	// ErrInvalidTokenSymbol is the sentinel error wrapped by InvalidTokenSymbolError.
	ErrInvalidTokenSymbol = errors.New("invalid token symbol")
	// ErrInvalidMintAmount is the sentinel error wrapped by InvalidMintAmountError.
	ErrInvalidMintAmount = errors.New("invalid mint amount")
)

type (
	// TokenName is the on-chain token name. It is passed to spl-token as a
	// single argument, so it must not be blank.
	TokenName string

	// TokenSymbol is the ticker shown by wallets. Whitespace is not allowed.
	TokenSymbol string

	// MintAmount is the supply to mint, a positive whole number.
	MintAmount string

	// InvalidTokenNameError is returned when a TokenName is blank.
	InvalidTokenNameError struct {
		Value TokenName
	}

	// InvalidTokenSymbolError is returned when a TokenSymbol is blank or
	// contains whitespace.
	InvalidTokenSymbolError struct {
		Value TokenSymbol
	}

	// InvalidMintAmountError is returned when a MintAmount is not a positive
	// whole number.
	InvalidMintAmountError struct {
		Value MintAmount
	}
)

// Validate returns nil if the name is usable.
func (n TokenName) Validate() error {
	if strings.TrimSpace(string(n)) == "" {
		return &InvalidTokenNameError{Value: n}
	}
	return nil
}

// String returns the string representation of the TokenName.
func (n TokenName) String() string { return string(n) }

// Validate returns nil if the symbol is usable.
func (s TokenSymbol) Validate() error {
	if s == "" || strings.ContainsFunc(string(s), unicode.IsSpace) {
		return &InvalidTokenSymbolError{Value: s}
	}
	return nil
}

// String returns the string representation of the TokenSymbol.
func (s TokenSymbol) String() string { return string(s) }

// Validate returns nil if the amount is a positive whole number.
func (a MintAmount) Validate() error {
	n, err := strconv.ParseUint(string(a), 10, 64)
	if err != nil || n == 0 {
		return &InvalidMintAmountError{Value: a}
	}
	return nil
}

// String returns the string representation of the MintAmount.
func (a MintAmount) String() string { return string(a) }

// Error implements the error interface.
func (e *InvalidTokenNameError) Error() string {
	return fmt.Sprintf("invalid token name %q: must not be blank", e.Value)
}

// Unwrap returns ErrInvalidTokenName for errors.Is() compatibility.
func (e *InvalidTokenNameError) Unwrap() error { return ErrInvalidTokenName }

// Error implements the error interface.
func (e *InvalidTokenSymbolError) Error() string {
	return fmt.Sprintf("invalid token symbol %q: must be one word", e.Value)
}

// Unwrap returns ErrInvalidTokenSymbol for errors.Is() compatibility.
func (e *InvalidTokenSymbolError) Unwrap() error { return ErrInvalidTokenSymbol }

// Error implements the error interface.
func (e *InvalidMintAmountError) Error() string {
	return fmt.Sprintf("invalid mint amount %q: must be a positive whole number", e.Value)
}

// Unwrap returns ErrInvalidMintAmount for errors.Is() compatibility.
func (e *InvalidMintAmountError) Unwrap() error { return ErrInvalidMintAmount }
