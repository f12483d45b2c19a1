// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package filter

import "image"

// blurRadius is the box blur radius in pixels. Three successive box
// passes approximate a Gaussian; one pass is enough for the intended
// "softens edges" effect and keeps the software path fast.
const blurRadius = 4

// blurFilter softens the image with a separable box blur.
// Alpha is blurred along with color so translucent edges stay smooth.
type blurFilter struct {
	radius int
}

func (f *blurFilter) Type() Type { return Blur }

func (f *blurFilter) Apply(src, dst *image.RGBA) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return
	}

	tmp := image.NewRGBA(b)
	boxBlurHorizontal(src, tmp, f.radius)
	boxBlurVertical(tmp, dst, f.radius)
}

// boxBlurHorizontal averages each pixel with its horizontal neighbors
// using a sliding-window sum per channel. Edge pixels clamp to the row
// bounds, shrinking the effective window instead of sampling outside.
func boxBlurHorizontal(src, dst *image.RGBA, radius int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	for y := range h {
		row := src.Pix[y*src.Stride : y*src.Stride+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]

		var sumR, sumG, sumB, sumA, n int
		for x := -radius; x <= radius; x++ {
			cx := clampInt(x, 0, w-1)
			sumR += int(row[cx*4])
			sumG += int(row[cx*4+1])
			sumB += int(row[cx*4+2])
			sumA += int(row[cx*4+3])
			n++
		}
		for x := range w {
			out[x*4] = uint8(sumR / n)
			out[x*4+1] = uint8(sumG / n)
			out[x*4+2] = uint8(sumB / n)
			out[x*4+3] = uint8(sumA / n)

			// Slide window: drop x-radius, add x+radius+1 (clamped).
			drop := clampInt(x-radius, 0, w-1)
			add := clampInt(x+radius+1, 0, w-1)
			sumR += int(row[add*4]) - int(row[drop*4])
			sumG += int(row[add*4+1]) - int(row[drop*4+1])
			sumB += int(row[add*4+2]) - int(row[drop*4+2])
			sumA += int(row[add*4+3]) - int(row[drop*4+3])
		}
	}
}

// boxBlurVertical averages each pixel with its vertical neighbors.
func boxBlurVertical(src, dst *image.RGBA, radius int) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	for x := range w {
		var sumR, sumG, sumB, sumA, n int
		for y := -radius; y <= radius; y++ {
			cy := clampInt(y, 0, h-1)
			off := cy*src.Stride + x*4
			sumR += int(src.Pix[off])
			sumG += int(src.Pix[off+1])
			sumB += int(src.Pix[off+2])
			sumA += int(src.Pix[off+3])
			n++
		}
		for y := range h {
			off := y*dst.Stride + x*4
			dst.Pix[off] = uint8(sumR / n)
			dst.Pix[off+1] = uint8(sumG / n)
			dst.Pix[off+2] = uint8(sumB / n)
			dst.Pix[off+3] = uint8(sumA / n)

			drop := clampInt(y-radius, 0, h-1)*src.Stride + x*4
			add := clampInt(y+radius+1, 0, h-1)*src.Stride + x*4
			sumR += int(src.Pix[add]) - int(src.Pix[drop])
			sumG += int(src.Pix[add+1]) - int(src.Pix[drop+1])
			sumB += int(src.Pix[add+2]) - int(src.Pix[drop+2])
			sumA += int(src.Pix[add+3]) - int(src.Pix[drop+3])
		}
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
