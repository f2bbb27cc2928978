// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/mr-tron/base58"

	"github.com/mintkit/mintkit/internal/retry"
)

const (
	// DefaultClusterURL is the Solana mainnet-beta RPC endpoint.
	DefaultClusterURL = "https://api.mainnet-beta.solana.com"
	// DefaultProgramID is the Token-2022 program id.
	DefaultProgramID = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	// DefaultMintPrefix is the vanity prefix for ground mint addresses.
	DefaultMintPrefix = "To"
	// DefaultKeypairPath is the wallet keypair file.
	DefaultKeypairPath = "solana_keypair.json"
	// DefaultWorkDir holds per-run files until they are archived.
	DefaultWorkDir = "tmp"
	// DefaultArchiveRoot is where run archives are created.
	DefaultArchiveRoot = "artifacts"
	// DefaultEnvFile is the dotenv file holding the secrets.
	DefaultEnvFile = ".env"
	// DefaultCanvasSize is the edge of the square token image.
	DefaultCanvasSize = 512

	// DefaultPinFileEndpoint is Pinata's multipart pin endpoint.
	DefaultPinFileEndpoint = "https://api.pinata.cloud/pinning/pinFileToIPFS"
	// DefaultPinJSONEndpoint is Pinata's JSON pin endpoint.
	DefaultPinJSONEndpoint = "https://api.pinata.cloud/pinning/pinJSONToIPFS"
	// DefaultGateway prefixes content hashes to form HTTP URLs.
	DefaultGateway = "https://gateway.pinata.cloud/ipfs/"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is the complete mintkit configuration.
	Config struct {
		Cluster ClusterConfig `toml:"cluster" mapstructure:"cluster"`
		Paths   PathsConfig   `toml:"paths" mapstructure:"paths"`
		Image   ImageConfig   `toml:"image" mapstructure:"image"`
		Pinata  PinataConfig  `toml:"pinata" mapstructure:"pinata"`
		Retry   RetryConfig   `toml:"retry" mapstructure:"retry"`
		UI      UIConfig      `toml:"ui" mapstructure:"ui"`
	}

	// ClusterConfig selects the chain and token program.
	ClusterConfig struct {
		URL        string `toml:"url" mapstructure:"url"`
		ProgramID  string `toml:"program_id" mapstructure:"program_id"`
		MintPrefix string `toml:"mint_prefix" mapstructure:"mint_prefix"`
	}

	// PathsConfig locates local files. Relative paths are resolved against
	// the working directory.
	PathsConfig struct {
		Keypair     string `toml:"keypair" mapstructure:"keypair"`
		WorkDir     string `toml:"work_dir" mapstructure:"work_dir"`
		ArchiveRoot string `toml:"archive_root" mapstructure:"archive_root"`
		EnvFile     string `toml:"env_file" mapstructure:"env_file"`
	}

	// ImageConfig controls artwork normalization.
	ImageConfig struct {
		CanvasSize int `toml:"canvas_size" mapstructure:"canvas_size"`
	}

	// PinataConfig holds the pinning service endpoints.
	PinataConfig struct {
		FileEndpoint string   `toml:"file_endpoint" mapstructure:"file_endpoint"`
		JSONEndpoint string   `toml:"json_endpoint" mapstructure:"json_endpoint"`
		Gateway      string   `toml:"gateway" mapstructure:"gateway"`
		Timeout      Duration `toml:"timeout" mapstructure:"timeout"`
	}

	// RetryConfig holds one policy per kind of external call.
	RetryConfig struct {
		Pin          RetryPolicy `toml:"pin" mapstructure:"pin"`
		Setup        RetryPolicy `toml:"setup" mapstructure:"setup"`
		Token        RetryPolicy `toml:"token" mapstructure:"token"`
		Account      RetryPolicy `toml:"account" mapstructure:"account"`
		MetadataInit RetryPolicy `toml:"metadata_init" mapstructure:"metadata_init"`
		FieldUpdate  RetryPolicy `toml:"field_update" mapstructure:"field_update"`
		Mint         RetryPolicy `toml:"mint" mapstructure:"mint"`
	}

	// RetryPolicy is the configurable part of a retry.Policy.
	RetryPolicy struct {
		MaxAttempts int      `toml:"max_attempts" mapstructure:"max_attempts"`
		Delay       Duration `toml:"delay" mapstructure:"delay"`
	}

	// UIConfig controls terminal output.
	UIConfig struct {
		Verbose bool `toml:"verbose" mapstructure:"verbose"`
	}

	// Duration is a time.Duration written as a Go duration string ("5s").
	Duration time.Duration

	// InvalidConfigError lists every field that failed validation.
	InvalidConfigError struct {
		Problems []string
	}
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		Cluster: ClusterConfig{
			URL:        DefaultClusterURL,
			ProgramID:  DefaultProgramID,
			MintPrefix: DefaultMintPrefix,
		},
		Paths: PathsConfig{
			Keypair:     DefaultKeypairPath,
			WorkDir:     DefaultWorkDir,
			ArchiveRoot: DefaultArchiveRoot,
			EnvFile:     DefaultEnvFile,
		},
		Image: ImageConfig{CanvasSize: DefaultCanvasSize},
		Pinata: PinataConfig{
			FileEndpoint: DefaultPinFileEndpoint,
			JSONEndpoint: DefaultPinJSONEndpoint,
			Gateway:      DefaultGateway,
			Timeout:      Duration(2 * time.Minute),
		},
		Retry: RetryConfig{
			Pin:          RetryPolicy{MaxAttempts: 3, Delay: Duration(2 * time.Second)},
			Setup:        RetryPolicy{MaxAttempts: 1},
			Token:        RetryPolicy{MaxAttempts: 10, Delay: Duration(5 * time.Second)},
			Account:      RetryPolicy{MaxAttempts: 10, Delay: Duration(5 * time.Second)},
			MetadataInit: RetryPolicy{MaxAttempts: 10, Delay: Duration(5 * time.Second)},
			FieldUpdate:  RetryPolicy{MaxAttempts: 5, Delay: Duration(2 * time.Second)},
			Mint:         RetryPolicy{MaxAttempts: 10, Delay: Duration(5 * time.Second)},
		},
	}
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// String returns the Go duration string.
func (d Duration) String() string { return time.Duration(d).String() }

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

// Policy converts p into a retry.Policy named name.
func (p RetryPolicy) Policy(name string) retry.Policy {
	return retry.Policy{Name: name, MaxAttempts: p.MaxAttempts, Delay: p.Delay.Std()}
}

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return "invalid config: " + strings.Join(e.Problems, "; ")
}

// Unwrap returns ErrInvalidConfig for errors.Is() compatibility.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for key, raw := range map[string]string{
		"cluster.url":          c.Cluster.URL,
		"pinata.file_endpoint": c.Pinata.FileEndpoint,
		"pinata.json_endpoint": c.Pinata.JSONEndpoint,
		"pinata.gateway":       c.Pinata.Gateway,
	} {
		if u, err := url.Parse(raw); err != nil || u.Scheme == "" || u.Host == "" {
			add("%s must be an absolute URL, got %q", key, raw)
		}
	}

	if strings.TrimSpace(c.Cluster.ProgramID) == "" {
		add("cluster.program_id must not be empty")
	}
	if c.Cluster.MintPrefix == "" {
		add("cluster.mint_prefix must not be empty")
	} else if _, err := base58.Decode(c.Cluster.MintPrefix); err != nil {
		add("cluster.mint_prefix %q must only use base58 characters", c.Cluster.MintPrefix)
	}

	for key, value := range map[string]string{
		"paths.keypair":      c.Paths.Keypair,
		"paths.work_dir":     c.Paths.WorkDir,
		"paths.archive_root": c.Paths.ArchiveRoot,
	} {
		if strings.TrimSpace(value) == "" {
			add("%s must not be empty", key)
		}
	}

	if c.Image.CanvasSize <= 0 {
		add("image.canvas_size must be positive, got %d", c.Image.CanvasSize)
	}
	if c.Pinata.Timeout < 0 {
		add("pinata.timeout must not be negative")
	}

	for key, p := range c.Retry.byKey() {
		if p.MaxAttempts < 1 {
			add("retry.%s.max_attempts must be at least 1, got %d", key, p.MaxAttempts)
		}
		if p.Delay < 0 {
			add("retry.%s.delay must not be negative", key)
		}
	}

	if len(problems) > 0 {
		slices.Sort(problems)
		return &InvalidConfigError{Problems: problems}
	}
	return nil
}

func (r RetryConfig) byKey() map[string]RetryPolicy {
	return map[string]RetryPolicy{
		"pin":           r.Pin,
		"setup":         r.Setup,
		"token":         r.Token,
		"account":       r.Account,
		"metadata_init": r.MetadataInit,
		"field_update":  r.FieldUpdate,
		"mint":          r.Mint,
	}
}
