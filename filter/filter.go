// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package filter provides the post-processing transforms that can be
// applied to each captured frame between rasterization and encoding.
//
// Filters operate on CPU pixel buffers in straight (non-premultiplied)
// RGBA. The GPU capture backend mirrors each type as a fragment-shader
// entry point so that filtering happens in the compositing pass; the
// software backend applies these implementations directly. Both paths
// must agree on the visual effect, not on exact bytes.
package filter

import (
	"fmt"
	"image"
)

// Type identifies a post-processing transform.
type Type uint8

// Filter type constants.
const (
	// None is the identity transform: output equals the raw rasterization.
	None Type = iota

	// Blur softens edges with a separable box blur.
	Blur

	// Pixelate quantizes the image into solid blocks.
	Pixelate

	// ToneMap recolors the image with a warm tone-mapping curve.
	ToneMap

	// Glow brightens highlights by adding a blurred bright-pass.
	Glow

	// Vignette darkens pixels toward the corners.
	Vignette
)

// String returns a human-readable name for the filter type.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Blur:
		return "blur"
	case Pixelate:
		return "pixelate"
	case ToneMap:
		return "tonemap"
	case Glow:
		return "glow"
	case Vignette:
		return "vignette"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// Parse returns the filter type for a configuration name.
// The empty string maps to None.
func Parse(name string) (Type, error) {
	switch name {
	case "", "none":
		return None, nil
	case "blur":
		return Blur, nil
	case "pixelate":
		return Pixelate, nil
	case "tonemap":
		return ToneMap, nil
	case "glow":
		return Glow, nil
	case "vignette":
		return Vignette, nil
	default:
		return None, fmt.Errorf("filter: unknown filter %q", name)
	}
}

// Filter applies a visual effect to a rendered frame.
//
// Apply reads src and writes the transformed pixels to dst. src and dst
// must have identical bounds. Filters that can operate in place accept
// src == dst; filters that need neighborhood reads (blur, glow) copy
// through an internal temporary instead.
type Filter interface {
	Apply(src, dst *image.RGBA)

	// Type reports which transform this filter implements.
	Type() Type
}

// New returns the filter implementation for the given type.
func New(t Type) Filter {
	switch t {
	case Blur:
		return &blurFilter{radius: blurRadius}
	case Pixelate:
		return &pixelateFilter{block: pixelateBlock}
	case ToneMap:
		return &toneMapFilter{}
	case Glow:
		return &glowFilter{threshold: glowThreshold}
	case Vignette:
		return &vignetteFilter{strength: vignetteStrength}
	default:
		return noneFilter{}
	}
}

// noneFilter is the identity transform.
type noneFilter struct{}

func (noneFilter) Type() Type { return None }

// Apply copies src to dst unchanged. A no-op when src == dst.
func (noneFilter) Apply(src, dst *image.RGBA) {
	if src == dst {
		return
	}
	copy(dst.Pix, src.Pix)
}
