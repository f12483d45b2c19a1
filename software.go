// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"fmt"
	"image"

	"github.com/gogpu/gg"

	"github.com/gogpu/framecap/filter"
)

func init() {
	RegisterBackend("software", 10, newSoftwareRenderer, nil)
}

// softwareRenderer rasterizes frames through gg's CPU pipeline. It is
// the always-available fallback backend and the reference for filter
// behavior: the GPU backend's shader filters must match it visually.
//
// The drawing context is the offscreen target: allocated once, cleared
// and redrawn every frame. Submit rasterizes synchronously (gg's
// software path is synchronous) and applies the post-filter on a
// worker goroutine, resolving the frame completion when the filtered
// pixels are ready.
type softwareRenderer struct {
	dc     *gg.Context
	post   filter.Filter
	scale  float64
	allocs int

	// pending is the in-flight frame's completion; out holds its
	// filtered pixels once the completion resolves. Both are owned by
	// the submit/readback cycle, which the pipeline serializes.
	pending   *Completion
	pendingIx int
	out       *image.RGBA

	destroyed bool
}

func newSoftwareRenderer(opts RendererOptions) (Renderer, error) {
	if opts.PixelWidth <= 0 || opts.PixelHeight <= 0 {
		return nil, fmt.Errorf("framecap: invalid target size %dx%d",
			opts.PixelWidth, opts.PixelHeight)
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	return &softwareRenderer{
		dc:     gg.NewContext(opts.PixelWidth, opts.PixelHeight),
		post:   filter.New(opts.Filter),
		scale:  scale,
		allocs: 1,
	}, nil
}

func (s *softwareRenderer) PixelSize() (int, int) {
	return s.dc.Width(), s.dc.Height()
}

func (s *softwareRenderer) Submit(req FrameRequest, scene Scene) (*Completion, error) {
	if s.destroyed {
		return nil, ErrRendererDestroyed
	}
	if s.pending != nil && !s.pending.Resolved() {
		return nil, ErrFrameInFlight
	}

	// Advance scene state before drawing; the advance/draw pair is what
	// makes frame N+1's content a deterministic function of frame N's.
	scene.Advance(req.Time)

	s.dc.ClearWithColor(gg.RGBA{})
	s.dc.Push()
	s.dc.Scale(s.scale, s.scale)
	scene.Draw(s.dc)
	s.dc.Pop()

	raw, ok := s.dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("framecap: unexpected image type from software rasterizer")
	}

	comp := NewCompletion()
	s.pending = comp
	s.pendingIx = req.Index
	s.out = nil

	go func() {
		out := raw
		if s.post.Type() != filter.None {
			out = image.NewRGBA(raw.Bounds())
			s.post.Apply(raw, out)
		}
		// Publish before Resolve: the channel close in Resolve orders
		// this write before any Readback that observed the completion.
		s.out = out
		comp.Resolve()
	}()

	return comp, nil
}

func (s *softwareRenderer) Readback() (*RenderedFrame, error) {
	if s.destroyed {
		return nil, ErrRendererDestroyed
	}
	if s.pending == nil || !s.pending.Resolved() || s.out == nil {
		return nil, ErrNoFramePending
	}

	out := s.out
	frame := &RenderedFrame{
		Index:  s.pendingIx,
		Pix:    out.Pix,
		Width:  out.Bounds().Dx(),
		Height: out.Bounds().Dy(),
		Stride: out.Stride,
		Scale:  s.scale,
	}

	// Consumed exactly once: a second Readback before the next Submit
	// reports no pending frame.
	s.pending = nil
	s.out = nil
	return frame, nil
}

func (s *softwareRenderer) Allocations() int { return s.allocs }

func (s *softwareRenderer) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	_ = s.dc.Close()
}
