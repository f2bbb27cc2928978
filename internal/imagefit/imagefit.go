// SPDX-License-Identifier: MPL-2.0

// Package imagefit letterboxes token artwork onto a square white canvas.
package imagefit

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"path/filepath"

	"github.com/disintegration/imaging"
)

// DefaultCanvasSize is the edge length used when no size is configured.
const DefaultCanvasSize = 512

// resizedPrefix is prepended to the source file name to build the temporary
// output path.
const resizedPrefix = "resized_"

var (
	// ErrLoad is the sentinel error wrapped by LoadError.
	ErrLoad = errors.New("cannot load image")

	// ErrInvalidCanvasSize is returned for a non-positive canvas size.
	ErrInvalidCanvasSize = errors.New("canvas size must be positive")
)

// LoadError is returned when the input cannot be opened or decoded.
type LoadError struct {
	Path string
	Err  error
}

// Error implements the error interface.
func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load image %q: %v", e.Path, e.Err)
}

// Unwrap exposes ErrLoad and the decoder's error.
func (e *LoadError) Unwrap() []error { return []error{ErrLoad, e.Err} }

// ResizedPath returns the temporary output path for src: the same directory
// with the file name prefixed by "resized_".
func ResizedPath(src string) string {
	return filepath.Join(filepath.Dir(src), resizedPrefix+filepath.Base(src))
}

// Normalize decodes the image at in, fits it onto a canvas×canvas white
// square and writes the result to out, overwriting any existing file. The
// output format follows out's extension.
func Normalize(in, out string, canvas int) error {
	if canvas <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidCanvasSize, canvas)
	}

	src, err := imaging.Open(in)
	if err != nil {
		return &LoadError{Path: in, Err: err}
	}
	if b := src.Bounds(); b.Dx() == 0 || b.Dy() == 0 {
		return &LoadError{Path: in, Err: errors.New("image has no pixels")}
	}

	if err := imaging.Save(Fit(src, canvas), out); err != nil {
		return fmt.Errorf("write resized image %q: %w", out, err)
	}
	return nil
}

// Fit scales img by min(canvas/w, canvas/h) with a Lanczos filter and centres
// it on an opaque white canvas×canvas image. The longer side always ends up
// exactly canvas pixels; the shorter side is floored.
func Fit(img image.Image, canvas int) *image.NRGBA {
	w, h := FittedSize(img.Bounds().Dx(), img.Bounds().Dy(), canvas)

	resized := imaging.Resize(img, w, h, imaging.Lanczos)
	bg := imaging.New(canvas, canvas, color.White)
	x, y := Offsets(w, h, canvas)
	return imaging.Overlay(bg, resized, image.Pt(x, y), 1.0)
}

// FittedSize returns the scaled dimensions of a w×h image fitted inside a
// canvas square. Integer arithmetic keeps the long side exact.
func FittedSize(w, h, canvas int) (int, int) {
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	var nw, nh int
	if w >= h {
		nw, nh = canvas, h*canvas/w
	} else {
		nw, nh = w*canvas/h, canvas
	}
	return max(nw, 1), max(nh, 1)
}

// Offsets returns the top-left position that centres a w×h image on the canvas.
func Offsets(w, h, canvas int) (int, int) {
	return (canvas - w) / 2, (canvas - h) / 2
}
