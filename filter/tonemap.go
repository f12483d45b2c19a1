// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import "image"

// toneMapFilter recolors the image with a Reinhard-style curve and a
// slight warm bias. Alpha is preserved unchanged.
type toneMapFilter struct{}

func (*toneMapFilter) Type() Type { return ToneMap }

// Per-channel gains for the warm bias. Applied before the curve.
const (
	toneGainR = 1.10
	toneGainG = 1.00
	toneGainB = 0.92
)

func (*toneMapFilter) Apply(src, dst *image.RGBA) {
	var lutR, lutG, lutB [256]uint8
	for i := range 256 {
		lutR[i] = toneCurve(float64(i) * toneGainR)
		lutG[i] = toneCurve(float64(i) * toneGainG)
		lutB[i] = toneCurve(float64(i) * toneGainB)
	}

	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	for y := range h {
		s := src.Pix[y*src.Stride : y*src.Stride+w*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := range w {
			d[x*4] = lutR[s[x*4]]
			d[x*4+1] = lutG[s[x*4+1]]
			d[x*4+2] = lutB[s[x*4+2]]
			d[x*4+3] = s[x*4+3]
		}
	}
}

// toneCurve maps a 0-255-range value through v/(v+128)*383, a Reinhard
// operator rescaled so that 255 maps back to 255.
func toneCurve(v float64) uint8 {
	out := v / (v + 128) * 383
	if out > 255 {
		out = 255
	}
	return uint8(out)
}
