// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	// WalletKeyVar holds the base58 wallet secret key.
	WalletKeyVar = "WALLET_PRIVATE_KEY"
	// PinataJWTVar holds the Pinata bearer token.
	PinataJWTVar = "YOUR_PINATA_JWT"
)

// ErrSecretNotFound is the sentinel error wrapped by SecretNotFoundError.
var ErrSecretNotFound = errors.New("secret not set")

type (
	// Secrets are the credentials a run needs. They come from a dotenv file
	// and the process environment; the environment wins.
	Secrets struct {
		WalletPrivateKey string `env:"WALLET_PRIVATE_KEY"`
		PinataJWT        string `env:"YOUR_PINATA_JWT"`

		// Source is the dotenv file that was read, or "" when none existed.
		Source string `env:"-"`
	}

	// SecretNotFoundError lists required secrets that are unset.
	SecretNotFoundError struct {
		Names  []string
		Source string
	}
)

// LoadSecrets reads envFile (a missing file is not an error) and overlays
// the process environment.
func LoadSecrets(envFile string) (*Secrets, error) {
	merged := map[string]string{}
	source := ""

	if envFile != "" {
		values, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			merged = values
			source = envFile
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			merged[k] = v
		}
	}

	var s Secrets
	if err := env.ParseWithOptions(&s, env.Options{Environment: merged}); err != nil {
		return nil, fmt.Errorf("failed to parse secrets: %w", err)
	}
	s.Source = source
	return &s, nil
}

// Require returns a SecretNotFoundError naming every listed variable that is
// empty. Names are WalletKeyVar and PinataJWTVar.
func (s *Secrets) Require(names ...string) error {
	var missing []string
	for _, name := range names {
		var value string
		switch name {
		case WalletKeyVar:
			value = s.WalletPrivateKey
		case PinataJWTVar:
			value = s.PinataJWT
		}
		if strings.TrimSpace(value) == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &SecretNotFoundError{Names: missing, Source: s.Source}
	}
	return nil
}

// String redacts every secret value.
func (s *Secrets) String() string {
	return fmt.Sprintf("%s=%s %s=%s", WalletKeyVar, redact(s.WalletPrivateKey), PinataJWTVar, redact(s.PinataJWT))
}

// Error implements the error interface.
func (e *SecretNotFoundError) Error() string {
	return fmt.Sprintf("secret not set: %s", strings.Join(e.Names, ", "))
}

// Unwrap returns ErrSecretNotFound for errors.Is() compatibility.
func (e *SecretNotFoundError) Unwrap() error { return ErrSecretNotFound }

func redact(v string) string {
	if v == "" {
		return "<unset>"
	}
	return "<redacted>"
}
