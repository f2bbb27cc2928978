// SPDX-License-Identifier: MPL-2.0

// Package archive moves a run's working files into a timestamped directory
// and records what the run produced in a manifest.toml file.
package archive

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pelletier/go-toml/v2"

	"github.com/mintkit/mintkit/internal/clock"
)

const (
	// DefaultRoot is the directory archives are created under.
	DefaultRoot = "artifacts"

	// ManifestName is the manifest file written into every archive.
	ManifestName = "manifest.toml"

	timestampLayout = "20060102_150405"
)

const (
	// StatusSucceeded marks a run whose pipeline completed.
	StatusSucceeded Status = "succeeded"
	// StatusFailed marks a run that stopped with an error.
	StatusFailed Status = "failed"
)

type (
	// Status is the final outcome of a run.
	Status string

	// Manifest describes one run. Empty fields are omitted from the file.
	Manifest struct {
		RunID       string    `toml:"run_id"`
		Name        string    `toml:"name"`
		Symbol      string    `toml:"symbol"`
		Description string    `toml:"description,omitempty"`
		Amount      string    `toml:"amount,omitempty"`
		Status      Status    `toml:"status"`
		Error       string    `toml:"error,omitempty"`
		Reached     string    `toml:"reached,omitempty"`
		StartedAt   time.Time `toml:"started_at"`
		FinishedAt  time.Time `toml:"finished_at"`

		Token Token    `toml:"token"`
		Files []string `toml:"files,omitempty"`
	}

	// Token holds the addresses and URLs a run produced.
	Token struct {
		Wallet              string `toml:"wallet,omitempty"`
		Mint                string `toml:"mint,omitempty"`
		TokenAccount        string `toml:"token_account,omitempty"`
		ImageURL            string `toml:"image_url,omitempty"`
		MetadataURL         string `toml:"metadata_url,omitempty"`
		MetadataProtocolURL string `toml:"metadata_protocol_url,omitempty"`
	}

	// Option configures an Archiver.
	Option func(*Archiver)

	// Archiver collects run artifacts.
	Archiver struct {
		root    string
		workDir string
		clock   clock.Clock
		logger  *log.Logger
	}
)

// WithClock sets the clock used for timestamps.
func WithClock(c clock.Clock) Option {
	return func(a *Archiver) { a.clock = clock.OrReal(c) }
}

// WithLogger sets the archiver's logger.
func WithLogger(l *log.Logger) Option {
	return func(a *Archiver) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Archiver that writes under root and empties workDir.
func New(root, workDir string, opts ...Option) *Archiver {
	a := &Archiver{
		root:    root,
		workDir: workDir,
		clock:   clock.Real{},
		logger:  log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// DirName returns "<name>_<YYYYmmdd_HHMMSS>" with path separators in name
// replaced by underscores.
func DirName(name string, t time.Time) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if safe == "" || safe == "." || safe == ".." {
		safe = "token"
	}
	return safe + "_" + t.Format(timestampLayout)
}

// Archive creates the run directory, moves every entry of the work
// directory into it, removes the then-empty work directory, moves each of
// extra that exists, and writes the manifest. It keeps going after a failed
// move and returns all failures joined. The returned path is set whenever the
// directory was created.
func (a *Archiver) Archive(m Manifest, extra ...string) (string, error) {
	started := m.StartedAt
	if started.IsZero() {
		started = a.clock.Now()
	}
	if m.FinishedAt.IsZero() {
		m.FinishedAt = a.clock.Now()
	}

	dir := filepath.Join(a.root, DirName(m.Name, started))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create archive directory: %w", err)
	}

	var errs []error
	moved, err := a.drainWorkDir(dir)
	if err != nil {
		errs = append(errs, err)
	}
	m.Files = append(m.Files, moved...)

	for _, src := range extra {
		if src == "" {
			continue
		}
		if _, err := os.Stat(src); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		dst := filepath.Join(dir, filepath.Base(src))
		if err := moveFile(src, dst); err != nil {
			errs = append(errs, err)
			continue
		}
		m.Files = append(m.Files, filepath.Base(src))
	}

	if err := writeManifest(filepath.Join(dir, ManifestName), m); err != nil {
		errs = append(errs, err)
	}

	if len(errs) == 0 {
		a.logger.Info("archived run", "dir", dir, "files", len(m.Files))
	}
	return dir, errors.Join(errs...)
}

func (a *Archiver) drainWorkDir(dst string) ([]string, error) {
	if a.workDir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(a.workDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read work directory: %w", err)
	}

	var moved []string
	var errs []error
	for _, e := range entries {
		src := filepath.Join(a.workDir, e.Name())
		if err := moveFile(src, filepath.Join(dst, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		moved = append(moved, e.Name())
	}
	if len(errs) == 0 {
		if err := os.Remove(a.workDir); err != nil {
			errs = append(errs, fmt.Errorf("remove work directory: %w", err))
		}
	}
	return moved, errors.Join(errs...)
}

func writeManifest(path string, m Manifest) error {
	data, err := toml.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by Archive.
func ReadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return Manifest{}, fmt.Errorf("decode manifest %q: %w", path, err)
	}
	return m, nil
}

// moveFile renames src to dst, copying across filesystems when rename
// cannot. Directories are only renamed.
func moveFile(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil {
		return nil
	}
	info, statErr := os.Lstat(src)
	if statErr != nil || !info.Mode().IsRegular() {
		return fmt.Errorf("move %s: %w", src, err)
	}

	if err := copyFile(src, dst, info.Mode().Perm()); err != nil {
		return fmt.Errorf("move %s: %w", src, err)
	}
	if err := os.Remove(src); err != nil {
		return fmt.Errorf("move %s: remove source: %w", src, err)
	}
	return nil
}

func copyFile(src, dst string, perm fs.FileMode) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	_, err = io.Copy(out, in)
	return err
}
