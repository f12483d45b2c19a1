// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"time"

	"github.com/gogpu/framecap/encode"
)

// FrameRequest identifies one frame of a run: a dense, 0-based,
// monotonically increasing index and its absolute simulation time.
type FrameRequest struct {
	// Index is the frame number, 0-based and dense across the run.
	Index int

	// Time is the absolute simulation time for this frame, computed by
	// the Clock. Strictly increasing across the run and never zero.
	Time float64
}

// RenderedFrame is one frame's rasterized output in host memory.
// It is produced by a renderer's Readback, consumed exactly once by the
// encoder, and must not be retained: the renderer reuses its target
// buffer, so the pixel data is only valid until the next Submit unless
// Readback returned a copy (all built-in backends copy).
type RenderedFrame struct {
	// Index is the frame number this buffer belongs to.
	Index int

	// Pix holds the pixels in row-major RGBA order, 4 bytes per pixel,
	// straight alpha, with no row padding: Stride == Width*4.
	Pix []uint8

	// Width and Height are the buffer dimensions in pixels.
	Width  int
	Height int

	// Stride is the number of bytes per row, always Width*4.
	Stride int

	// Scale is the logical-to-pixel scale factor the frame was
	// rendered with.
	Scale float64
}

// EncodePNG serializes the frame losslessly, preserving alpha. The
// frame's pixel buffer must not be mutated until EncodePNG returns.
func (f *RenderedFrame) EncodePNG() ([]byte, error) {
	return encode.PNG(f.Pix, f.Width, f.Height, f.Stride)
}

// RunResult summarizes a finished run. Produced once, immutable, used
// for reporting only.
type RunResult struct {
	// RunID uniquely identifies the run.
	RunID string

	// Dir is the directory the frame sequence was written to.
	Dir string

	// TotalFrames is the number of frames the run rendered.
	TotalFrames int

	// FramesSaved is the number of frames successfully written to disk.
	FramesSaved int

	// FramesFailed is the number of frames whose save failed. Save
	// failures are per-frame and non-fatal; a completed run with
	// FramesFailed > 0 still reports success, never silently.
	FramesFailed int

	// RenderDuration is the wall time spent in the render loop.
	RenderDuration time.Duration

	// DrainDuration is the wall time spent waiting for outstanding
	// saves after the last frame was dispatched.
	DrainDuration time.Duration
}
