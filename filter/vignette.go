// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import (
	"image"
	"math"
)

// vignetteStrength is the maximum darkening at the corners, in [0, 1].
const vignetteStrength = 0.45

// vignetteFilter darkens pixels toward the corners with a quadratic
// radial falloff. Alpha is preserved unchanged. Operates in place when
// src == dst.
type vignetteFilter struct {
	strength float64
}

func (f *vignetteFilter) Type() Type { return Vignette }

func (f *vignetteFilter) Apply(src, dst *image.RGBA) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	cx := float64(w-1) / 2
	cy := float64(h-1) / 2
	maxDistSq := cx*cx + cy*cy
	if maxDistSq == 0 {
		maxDistSq = 1
	}

	for y := range h {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		dy := float64(y) - cy
		for x := range w {
			dx := float64(x) - cx
			// factor 1 at center, 1-strength at the corners.
			factor := 1 - f.strength*(dx*dx+dy*dy)/maxDistSq
			d[x*4] = uint8(math.Round(float64(s[x*4]) * factor))
			d[x*4+1] = uint8(math.Round(float64(s[x*4+1]) * factor))
			d[x*4+2] = uint8(math.Round(float64(s[x*4+2]) * factor))
			d[x*4+3] = s[x*4+3]
		}
	}
}
