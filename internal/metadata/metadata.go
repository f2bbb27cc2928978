// SPDX-License-Identifier: MPL-2.0

// Package metadata creates and edits the token metadata JSON document that is
// pinned to IPFS and referenced by the on-chain metadata URI.
//
// Edits operate on the raw JSON so that key order written by Create (or by a
// hand-edited file) survives: the image key is placed immediately after
// description, or appended when there is no description.
package metadata

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
)

const (
	// KeyDescription is the key after which the image URL is inserted.
	KeyDescription = "description"
	// KeyImage holds the gateway URL of the pinned image.
	KeyImage = "image"

	fileSuffix = "_metadata.json"
)

var (
	// ErrNotFound is the sentinel error wrapped by NotFoundError.
	ErrNotFound = errors.New("metadata file not found")

	// ErrInvalidDocument is returned for input that is not a JSON object or
	// lacks a required field.
	ErrInvalidDocument = errors.New("invalid metadata document")

	indentOptions = &pretty.Options{Width: 80, Indent: "    "}
)

type (
	// Document is the token metadata record. Field order matches the order
	// keys are written in.
	Document struct {
		Name        string `json:"name"`
		Symbol      string `json:"symbol"`
		Description string `json:"description"`
		Image       string `json:"image,omitempty"`
	}

	// NotFoundError is returned when a metadata file does not exist.
	NotFoundError struct {
		Path string
	}
)

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("metadata file %q not found", e.Path)
}

// Unwrap returns ErrNotFound for errors.Is() compatibility.
func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// FileName returns "<lowercased name>_metadata.json" with path separators in
// name replaced by underscores, so the file always lands in the directory it
// is created in.
func FileName(name string) string {
	safe := strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == os.PathSeparator {
			return '_'
		}
		return r
	}, strings.ToLower(strings.TrimSpace(name)))
	return safe + fileSuffix
}

// Create writes doc to dir/FileName(doc.Name) with four-space indentation,
// creating dir if needed, and returns the written path.
func Create(dir string, doc Document) (string, error) {
	if strings.TrimSpace(doc.Name) == "" {
		return "", fmt.Errorf("%w: name is required", ErrInvalidDocument)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create metadata directory: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode metadata: %w", err)
	}
	path := filepath.Join(dir, FileName(doc.Name))
	if err := os.WriteFile(path, Format(raw), 0o644); err != nil {
		return "", fmt.Errorf("write metadata %q: %w", path, err)
	}
	return path, nil
}

// InsertImage returns raw with the image key set to imageURL. Any existing
// image key is removed first. When raw has a description key the image key
// follows it directly; otherwise it becomes the last key. All other keys keep
// their order and values.
func InsertImage(raw []byte, imageURL string) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrInvalidDocument)
	}
	doc := gjson.ParseBytes(raw)
	if !doc.IsObject() {
		return nil, fmt.Errorf("%w: top level must be an object", ErrInvalidDocument)
	}

	if !doc.Get(KeyDescription).Exists() {
		stripped, err := sjson.DeleteBytes(raw, KeyImage)
		if err != nil {
			return nil, fmt.Errorf("remove image key: %w", err)
		}
		out, err := sjson.SetBytes(stripped, KeyImage, imageURL)
		if err != nil {
			return nil, fmt.Errorf("append image key: %w", err)
		}
		return out, nil
	}

	encodedURL, err := json.Marshal(imageURL)
	if err != nil {
		return nil, fmt.Errorf("encode image url: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	writeMember := func(rawKey string, rawValue []byte) {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(rawKey)
		buf.WriteByte(':')
		buf.Write(rawValue)
	}
	doc.ForEach(func(key, value gjson.Result) bool {
		if key.String() == KeyImage {
			return true
		}
		writeMember(key.Raw, []byte(value.Raw))
		if key.String() == KeyDescription {
			writeMember(`"`+KeyImage+`"`, encodedURL)
		}
		return true
	})
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// InsertImageFile applies InsertImage to the file at path in place and
// returns the updated document.
func InsertImageFile(path, imageURL string) (Document, error) {
	raw, err := readFile(path)
	if err != nil {
		return Document{}, err
	}
	updated, err := InsertImage(raw, imageURL)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	if err := os.WriteFile(path, Format(updated), 0o644); err != nil {
		return Document{}, fmt.Errorf("write metadata %q: %w", path, err)
	}
	return Parse(updated)
}

// Read loads the metadata file at path. Name and symbol are required.
func Read(path string) (Document, error) {
	raw, err := readFile(path)
	if err != nil {
		return Document{}, err
	}
	doc, err := Parse(raw)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse extracts a Document from raw JSON.
func Parse(raw []byte) (Document, error) {
	if !gjson.ValidBytes(raw) {
		return Document{}, fmt.Errorf("%w: not valid JSON", ErrInvalidDocument)
	}
	res := gjson.GetManyBytes(raw, "name", "symbol", KeyDescription, KeyImage)
	doc := Document{
		Name:        res[0].String(),
		Symbol:      res[1].String(),
		Description: res[2].String(),
		Image:       res[3].String(),
	}
	if doc.Name == "" || doc.Symbol == "" {
		return Document{}, fmt.Errorf("%w: name and symbol are required", ErrInvalidDocument)
	}
	return doc, nil
}

// Format pretty-prints raw JSON with four-space indentation, keeping key order.
func Format(raw []byte) []byte {
	return pretty.PrettyOptions(raw, indentOptions)
}

func readFile(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Path: path}
		}
		return nil, fmt.Errorf("read metadata %q: %w", path, err)
	}
	return raw, nil
}
