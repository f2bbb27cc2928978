// SPDX-License-Identifier: MPL-2.0

// Package keypair converts a base58 wallet secret into the JSON byte-array
// keypair file understood by the Solana CLI.
package keypair

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mr-tron/base58"
)

// DefaultFileName is the keypair file the Solana CLI is pointed at.
const DefaultFileName = "solana_keypair.json"

var (
	// ErrDecode is the sentinel error wrapped by DecodeError.
	ErrDecode = errors.New("invalid base58 secret")

	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("keypair file not found")

	// ErrMalformed is returned when a keypair file is not a JSON byte array.
	ErrMalformed = errors.New("malformed keypair file")
)

type (
	// DecodeError is returned when the secret is not valid base58.
	DecodeError struct {
		Err error
	}

	// NotFoundError is returned when a keypair file does not exist.
	NotFoundError struct {
		Path string
	}
)

// Error implements the error interface. The secret itself is never included.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid base58 secret: %v", e.Err)
}

// Unwrap returns ErrDecode for errors.Is() compatibility.
func (e *DecodeError) Unwrap() error { return ErrDecode }

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("keypair file %q not found", e.Path)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// Decode returns the raw bytes encoded by secret. Surrounding whitespace is
// ignored; the payload is otherwise returned untouched.
func Decode(secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, &DecodeError{Err: errors.New("secret is empty")}
	}
	key, err := base58.Decode(secret)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return key, nil
}

// Encode returns the base58 form of key.
func Encode(key []byte) string {
	return base58.Encode(key)
}

// Marshal renders key as a JSON array of integers 0-255.
func Marshal(key []byte) ([]byte, error) {
	ints := make([]int, len(key))
	for i, b := range key {
		ints[i] = int(b)
	}
	return json.Marshal(ints)
}

// Save writes key to path as a JSON byte array, replacing any existing file.
// The file is only readable by the owner.
func Save(key []byte, path string) error {
	data, err := Marshal(key)
	if err != nil {
		return fmt.Errorf("encode keypair: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create keypair directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write keypair %q: %w", path, err)
	}
	return nil
}

// Load reads a keypair file written by Save or by solana-keygen.
func Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read keypair %q: %w", path, err)
	}

	var ints []int
	if err := json.Unmarshal(data, &ints); err != nil {
		return nil, fmt.Errorf("%w %q: %w", ErrMalformed, path, err)
	}
	key := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return nil, fmt.Errorf("%w %q: element %d out of byte range: %d", ErrMalformed, path, i, v)
		}
		key[i] = byte(v)
	}
	return key, nil
}

// Ensure writes the keypair decoded from secret to path unless a file is
// already there. It reports whether a new file was written.
func Ensure(path, secret string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat keypair %q: %w", path, err)
	}

	key, err := Decode(secret)
	if err != nil {
		return false, err
	}
	if err := Save(key, path); err != nil {
		return false, err
	}
	return true, nil
}
