// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"image"

	"golang.org/x/image/draw"
)

// glowThreshold is the per-channel brightness above which a pixel
// contributes to the glow bright-pass.
const glowThreshold = 200

// glowDownscale is the bright-pass reduction factor. The downscale and
// bilinear upscale act as a cheap large-kernel blur.
const glowDownscale = 4

// glowFilter brightens highlights: pixels above the threshold are
// extracted, blurred via downscale/upscale, and added back on top.
type glowFilter struct {
	threshold int
}

func (f *glowFilter) Type() Type { return Glow }

func (f *glowFilter) Apply(src, dst *image.RGBA) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	// Bright pass: keep only highlight pixels, scaled by how far they
	// exceed the threshold.
	bright := image.NewRGBA(b)
	for y := range h {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := bright.Pix[y*bright.Stride : y*bright.Stride+w*4]
		for x := range w {
			r, g, bl := int(s[x*4]), int(s[x*4+1]), int(s[x*4+2])
			if maxInt3(r, g, bl) < f.threshold {
				continue
			}
			d[x*4] = uint8(r * r / 255)
			d[x*4+1] = uint8(g * g / 255)
			d[x*4+2] = uint8(bl * bl / 255)
			d[x*4+3] = s[x*4+3]
		}
	}

	// Blur the bright pass by round-tripping through a small buffer.
	smallW := maxInt(w/glowDownscale, 1)
	smallH := maxInt(h/glowDownscale, 1)
	small := image.NewRGBA(image.Rect(0, 0, smallW, smallH))
	draw.ApproxBiLinear.Scale(small, small.Bounds(), bright, b, draw.Src, nil)
	draw.ApproxBiLinear.Scale(bright, b, small, small.Bounds(), draw.Src, nil)

	// Additive blend, clamped.
	for y := range h {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		g := bright.Pix[y*bright.Stride : y*bright.Stride+w*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for i := 0; i < w*4; i += 4 {
			d[i] = addClamp(s[i], g[i])
			d[i+1] = addClamp(s[i+1], g[i+1])
			d[i+2] = addClamp(s[i+2], g[i+2])
			d[i+3] = s[i+3]
		}
	}
}

func addClamp(a, b uint8) uint8 {
	v := int(a) + int(b)
	if v > 255 {
		return 255
	}
	return uint8(v)
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func maxInt3(a, b, c int) int {
	return maxInt(a, maxInt(b, c))
}
