// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"image"

	"golang.org/x/image/draw"
)

// pixelateBlock is the block edge length in pixels.
const pixelateBlock = 8

// pixelateFilter quantizes the image into solid blocks by scaling down
// with nearest-neighbor sampling and scaling back up.
type pixelateFilter struct {
	block int
}

func (f *pixelateFilter) Type() Type { return Pixelate }

func (f *pixelateFilter) Apply(src, dst *image.RGBA) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	smallW := (w + f.block - 1) / f.block
	smallH := (h + f.block - 1) / f.block
	small := image.NewRGBA(image.Rect(0, 0, smallW, smallH))

	draw.NearestNeighbor.Scale(small, small.Bounds(), src, b, draw.Src, nil)
	draw.NearestNeighbor.Scale(dst, b, small, small.Bounds(), draw.Src, nil)
}
