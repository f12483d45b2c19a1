// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"math"

	"github.com/gogpu/framecap/filter"
)

// Config describes a capture run. It is immutable once a run starts:
// the pipeline copies it at construction and never reads it again.
type Config struct {
	// Width and Height are the logical scene dimensions in simulation
	// units. Scenes draw in this coordinate space regardless of the
	// output resolution.
	Width  float64
	Height float64

	// Scale is the logical-to-pixel resolution multiplier, >= 1.
	// Typical values are 1, 2, or 3.
	Scale float64

	// FPS is the capture frame rate in frames per second. It fixes the
	// simulation timestep to 1/FPS; wall-clock rendering speed has no
	// effect on simulation time.
	FPS float64

	// Duration is the captured span in seconds. The run produces
	// floor(Duration * FPS) frames. Ignored when FrameCount is set.
	Duration float64

	// FrameCount, when positive, overrides Duration with an explicit
	// number of frames.
	FrameCount int

	// Filter selects the post-processing transform applied to each
	// frame after rasterization, before encoding. filter.None is the
	// identity passthrough.
	Filter filter.Type

	// OutputDir is the parent directory for run output. Each run
	// creates its own timestamped subdirectory inside it. Empty means
	// the current working directory.
	OutputDir string
}

// PixelWidth returns the output width in pixels: logical width times
// the scale factor, truncated toward zero.
func (c Config) PixelWidth() int {
	return int(c.Width * c.Scale)
}

// PixelHeight returns the output height in pixels: logical height times
// the scale factor, truncated toward zero.
func (c Config) PixelHeight() int {
	return int(c.Height * c.Scale)
}

// TotalFrames returns the number of frames the run will produce:
// FrameCount when set, otherwise floor(Duration * FPS).
func (c Config) TotalFrames() int {
	if c.FrameCount > 0 {
		return c.FrameCount
	}
	return int(math.Floor(c.Duration * c.FPS))
}

// Validate checks the configuration. It returns the first violated
// constraint, or nil when the config describes a runnable capture.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return ErrInvalidSize
	}
	if c.Scale < 1 {
		return ErrInvalidScale
	}
	if c.FPS <= 0 {
		return ErrInvalidFPS
	}
	if c.FrameCount <= 0 && c.Duration <= 0 {
		return ErrInvalidDuration
	}
	if c.TotalFrames() <= 0 {
		return ErrNoFrames
	}
	return nil
}
