// SPDX-License-Identifier: MPL-2.0

package archive

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/mintkit/mintkit/internal/testutil"
)

var runStart = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func TestDirName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "SampleToken", "SampleToken_20240309_140507"},
		{"separators", "a/b\\c", "a_b_c_20240309_140507"},
		{"empty", "  ", "token_20240309_140507"},
		{"dot dot", "..", "token_20240309_140507"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := DirName(tt.in, runStart); got != tt.want {
				t.Errorf("DirName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestArchive_MovesWorkDirAndExtras(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	work := filepath.Join(base, "tmp")
	testutil.WriteFile(t, work, "sample_metadata.json", []byte(`{"name":"Sample"}`))
	testutil.WriteFile(t, work, "notes.txt", []byte("n"))
	mintFile := testutil.WriteFile(t, base, "ToMint.json", []byte("[1]"))

	clk := testutil.NewFakeClock(runStart.Add(time.Minute))
	a := New(filepath.Join(base, DefaultRoot), work, WithClock(clk))

	dir, err := a.Archive(Manifest{
		RunID:     "run-1",
		Name:      "Sample",
		Symbol:    "SMPL",
		Status:    StatusSucceeded,
		StartedAt: runStart,
		Token:     Token{Mint: "ToMint", MetadataURL: "https://gw/ipfs/x"},
	}, mintFile, filepath.Join(base, "absent.json"))
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	if want := filepath.Join(base, DefaultRoot, "Sample_20240309_140507"); dir != want {
		t.Fatalf("dir = %s, want %s", dir, want)
	}
	for _, name := range []string{"sample_metadata.json", "notes.txt", "ToMint.json", ManifestName} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Errorf("%s missing from archive: %v", name, err)
		}
	}
	testutil.MustNotExist(t, work)
	testutil.MustNotExist(t, mintFile)

	m, err := ReadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if m.RunID != "run-1" || m.Status != StatusSucceeded || m.Token.Mint != "ToMint" {
		t.Errorf("manifest = %+v", m)
	}
	if !m.FinishedAt.Equal(runStart.Add(time.Minute)) {
		t.Errorf("FinishedAt = %v", m.FinishedAt)
	}
	slices.Sort(m.Files)
	if want := []string{"ToMint.json", "notes.txt", "sample_metadata.json"}; !slices.Equal(m.Files, want) {
		t.Errorf("Files = %v, want %v", m.Files, want)
	}
}

func TestArchive_MissingWorkDirIsFine(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	a := New(base, filepath.Join(base, "never-created"), WithClock(testutil.NewFakeClock(runStart)))

	dir, err := a.Archive(Manifest{Name: "Tok", Status: StatusFailed, Error: "boom"})
	if err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	m, err := ReadManifest(filepath.Join(dir, ManifestName))
	if err != nil {
		t.Fatalf("ReadManifest() error = %v", err)
	}
	if m.Status != StatusFailed || m.Error != "boom" {
		t.Errorf("manifest = %+v", m)
	}
	if filepath.Base(dir) != "Tok_20240309_140507" {
		t.Errorf("dir = %s, want timestamp from the clock", filepath.Base(dir))
	}
}

func TestArchive_UnwritableRoot(t *testing.T) {
	t.Parallel()

	base := t.TempDir()
	blocker := testutil.WriteFile(t, base, "artifacts", []byte("a file, not a dir"))

	a := New(blocker, "", WithClock(testutil.NewFakeClock(runStart)))
	if _, err := a.Archive(Manifest{Name: "Tok"}); err == nil {
		t.Fatal("expected an error when the root is a file")
	}
}

func TestMoveFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "a.txt", []byte("payload"))
	dst := filepath.Join(dir, "b.txt")

	if err := moveFile(src, dst); err != nil {
		t.Fatalf("moveFile() error = %v", err)
	}
	if got := string(testutil.MustReadFile(t, dst)); got != "payload" {
		t.Errorf("dst = %q", got)
	}
	testutil.MustNotExist(t, src)
}

func TestCopyFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := testutil.WriteFile(t, dir, "a.txt", []byte("payload"))
	dst := filepath.Join(dir, "copy.txt")

	if err := copyFile(src, dst, 0o600); err != nil {
		t.Fatalf("copyFile() error = %v", err)
	}
	if got := string(testutil.MustReadFile(t, dst)); got != "payload" {
		t.Errorf("dst = %q", got)
	}
}
