// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package encode serializes rasterized frames to PNG.
//
// PNG is the sequence's on-disk format because it is lossless and
// carries the full 4-channel pixel data, including any translucency a
// post-filter produced. Frames reach this package already normalized:
// tightly packed rows, straight-alpha RGBA channel order.
package encode

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
)

// Encoding errors.
var (
	// ErrEmptyFrame is returned for a zero-sized or nil pixel buffer.
	ErrEmptyFrame = errors.New("encode: empty frame")

	// ErrBadStride is returned when the buffer is not tightly packed.
	ErrBadStride = errors.New("encode: stride must equal width*4")

	// ErrSizeMismatch is returned when the buffer length does not match
	// the stated dimensions.
	ErrSizeMismatch = errors.New("encode: pixel buffer size mismatch")
)

// PNG encodes a tightly packed RGBA pixel buffer as a PNG image.
// The buffer is wrapped, not copied; it must not be mutated until PNG
// returns.
func PNG(pix []uint8, width, height, stride int) ([]byte, error) {
	if len(pix) == 0 || width <= 0 || height <= 0 {
		return nil, ErrEmptyFrame
	}
	if stride != width*4 {
		return nil, fmt.Errorf("%w: stride %d, width %d", ErrBadStride, stride, width)
	}
	if len(pix) != stride*height {
		return nil, fmt.Errorf("%w: have %d bytes, want %d", ErrSizeMismatch, len(pix), stride*height)
	}

	img := &image.RGBA{
		Pix:    pix,
		Stride: stride,
		Rect:   image.Rect(0, 0, width, height),
	}

	var buf bytes.Buffer
	// Preallocate a rough upper bound to avoid growth churn on large
	// frames; PNG output is almost always smaller than the raw pixels.
	buf.Grow(len(pix)/4 + 1024)
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode: png: %w", err)
	}
	return buf.Bytes(), nil
}
