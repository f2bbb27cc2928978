// SPDX-License-Identifier: MPL-2.0

package pinning

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"

	"github.com/mintkit/mintkit/internal/imagefit"
	"github.com/mintkit/mintkit/internal/metadata"
)

type (
	// Pinner is the subset of Client used by Uploader.
	Pinner interface {
		PinFile(ctx context.Context, path string) (Result, error)
		PinJSON(ctx context.Context, path string) (Result, error)
	}

	// Upload is the outcome of Uploader.Process.
	Upload struct {
		Image    Result
		Metadata Result
		// Document is the metadata as pinned, image URL included.
		Document metadata.Document
	}

	// UploaderOption configures an Uploader.
	UploaderOption func(*Uploader)

	// Uploader normalizes the artwork, pins it, records its URL in the
	// metadata document and pins the document.
	Uploader struct {
		pinner Pinner
		canvas int
		logger *log.Logger
	}
)

// WithCanvasSize sets the square edge length the artwork is fitted into.
func WithCanvasSize(size int) UploaderOption {
	return func(u *Uploader) {
		if size > 0 {
			u.canvas = size
		}
	}
}

// WithUploaderLogger sets the uploader's logger.
func WithUploaderLogger(l *log.Logger) UploaderOption {
	return func(u *Uploader) {
		if l != nil {
			u.logger = l
		}
	}
}

// NewUploader creates an Uploader around p.
func NewUploader(p Pinner, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		pinner: p,
		canvas: imagefit.DefaultCanvasSize,
		logger: log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Process runs the upload workflow for imagePath and the metadata file at
// metadataPath. The metadata file is rewritten in place with the image URL.
// The temporary resized image is removed whether or not the workflow
// succeeds; a failure to remove it is only logged.
func (u *Uploader) Process(ctx context.Context, imagePath, metadataPath string) (Upload, error) {
	resized := imagefit.ResizedPath(imagePath)
	defer u.removeTemp(resized)

	u.logger.Info("resizing image", "source", imagePath, "canvas", u.canvas)
	if err := imagefit.Normalize(imagePath, resized, u.canvas); err != nil {
		return Upload{}, err
	}

	u.logger.Info("uploading image", "path", resized)
	img, err := u.pinner.PinFile(ctx, resized)
	if err != nil {
		return Upload{}, fmt.Errorf("upload image: %w", err)
	}
	u.logger.Info("image pinned", "gatewayURL", img.GatewayURL)

	doc, err := metadata.InsertImageFile(metadataPath, img.GatewayURL)
	if err != nil {
		return Upload{}, fmt.Errorf("update metadata: %w", err)
	}

	u.logger.Info("uploading metadata", "path", metadataPath)
	meta, err := u.pinner.PinJSON(ctx, metadataPath)
	if err != nil {
		return Upload{}, fmt.Errorf("upload metadata: %w", err)
	}
	u.logger.Info("metadata pinned", "gatewayURL", meta.GatewayURL, "protocolURL", meta.ProtocolURL)

	return Upload{Image: img, Metadata: meta, Document: doc}, nil
}

func (u *Uploader) removeTemp(path string) {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		u.logger.Warn("could not remove resized image", "path", path, "error", err)
	}
}
