// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"errors"
	"testing"
)

// fakeRenderer is a minimal Renderer for registry tests.
type fakeRenderer struct {
	name string
	w, h int
}

func (f *fakeRenderer) PixelSize() (int, int) { return f.w, f.h }
func (f *fakeRenderer) Submit(FrameRequest, Scene) (*Completion, error) {
	c := NewCompletion()
	c.Resolve()
	return c, nil
}
func (f *fakeRenderer) Readback() (*RenderedFrame, error) { return nil, ErrNoFramePending }
func (f *fakeRenderer) Allocations() int                  { return 1 }
func (f *fakeRenderer) Destroy()                          {}

func fakeFactory(name string) RendererFactory {
	return func(opts RendererOptions) (Renderer, error) {
		return &fakeRenderer{name: name, w: opts.PixelWidth, h: opts.PixelHeight}, nil
	}
}

func TestBackendsSortedByPriority(t *testing.T) {
	RegisterBackend("test-high", 900, fakeFactory("test-high"), func() bool { return false })
	RegisterBackend("test-low", 1, fakeFactory("test-low"), func() bool { return false })

	names := Backends()
	posOf := func(name string) int {
		for i, n := range names {
			if n == name {
				return i
			}
		}
		t.Fatalf("backend %q not listed", name)
		return -1
	}
	if posOf("test-high") > posOf("software") {
		t.Error("high-priority backend listed after software")
	}
	if posOf("software") > posOf("test-low") {
		t.Error("software listed after low-priority backend")
	}
}

func TestNewRendererExplicitName(t *testing.T) {
	r, err := newRenderer("software", RendererOptions{PixelWidth: 8, PixelHeight: 8})
	if err != nil {
		t.Fatalf("newRenderer(software) error: %v", err)
	}
	defer r.Destroy()
	if w, h := r.PixelSize(); w != 8 || h != 8 {
		t.Errorf("PixelSize = %dx%d, want 8x8", w, h)
	}
}

func TestNewRendererUnknownName(t *testing.T) {
	_, err := newRenderer("no-such-backend", RendererOptions{PixelWidth: 8, PixelHeight: 8})
	if !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("err = %v, want ErrUnknownBackend", err)
	}
}

func TestNewRendererUnavailableBackend(t *testing.T) {
	RegisterBackend("test-unavail", 5, fakeFactory("test-unavail"), func() bool { return false })
	_, err := newRenderer("test-unavail", RendererOptions{PixelWidth: 8, PixelHeight: 8})
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, want ErrBackendUnavailable", err)
	}
}

func TestNewRendererFallsThroughFailedFactory(t *testing.T) {
	RegisterBackend("test-broken", 950,
		func(RendererOptions) (Renderer, error) {
			return nil, errors.New("init failed")
		}, nil)

	r, err := newRenderer("", RendererOptions{PixelWidth: 8, PixelHeight: 8, Scale: 1})
	if err != nil {
		t.Fatalf("newRenderer fallback error: %v", err)
	}
	defer r.Destroy()
	if _, ok := r.(*fakeRenderer); ok {
		t.Error("fallback selected a fake renderer registered as unavailable")
	}
}
