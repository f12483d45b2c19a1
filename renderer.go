// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/framecap/filter"
)

// Renderer rasterizes frames into an offscreen target and exposes the
// results for readback. A renderer owns exactly one target, allocated
// at construction and reused for every frame; target contents are only
// defined between a frame's completion signal and the next Submit.
//
// The pipeline guarantees one frame in flight: Submit is not called
// again until the previous completion has been awaited and Readback has
// copied the pixels out. Implementations may return ErrFrameInFlight if
// a caller violates this.
type Renderer interface {
	// PixelSize returns the fixed target dimensions in pixels.
	PixelSize() (width, height int)

	// Submit issues the draw for one frame: it advances the scene to
	// the request's time, clears the target, rasterizes the scene, and
	// applies the configured post-filter as part of the pass. It
	// returns a completion that resolves when the target is safe to
	// read. Submit itself must not block on rendering.
	Submit(req FrameRequest, scene Scene) (*Completion, error)

	// Readback copies the completed frame's pixels into host memory as
	// tightly packed straight-alpha RGBA. It must only be called after
	// the corresponding completion has resolved successfully, and it
	// invalidates the pending frame: a second call before the next
	// Submit returns ErrNoFramePending.
	Readback() (*RenderedFrame, error)

	// Allocations reports how many times the renderer has allocated
	// its offscreen target. Always 1 for a healthy renderer, however
	// many frames it renders.
	Allocations() int

	// Destroy releases the target and all backend resources. The
	// renderer is unusable afterwards.
	Destroy()
}

// RendererOptions carries everything a backend needs to build a
// renderer for one run.
type RendererOptions struct {
	// PixelWidth and PixelHeight are the target dimensions.
	PixelWidth  int
	PixelHeight int

	// Scale is the logical-to-pixel scale the scene draws under.
	Scale float64

	// Filter is the post-processing transform applied inside the pass.
	Filter filter.Type

	// DeviceProvider optionally supplies a shared GPU device from a
	// host application. GPU backends use it instead of opening their
	// own adapter; the software backend ignores it.
	DeviceProvider gpucontext.DeviceProvider
}

// RendererFactory creates a renderer for the given options.
type RendererFactory func(opts RendererOptions) (Renderer, error)

// backendEntry is a registered render backend.
type backendEntry struct {
	name      string
	priority  int
	factory   RendererFactory
	available func() bool
}

// backendRegistry manages registered render backends. Backends register
// in their package init, so GPU capture is enabled by blank-importing
// the backend package without the core depending on it.
type backendRegistry struct {
	mu      sync.RWMutex
	entries map[string]*backendEntry
}

var registry = &backendRegistry{entries: make(map[string]*backendEntry)}

// RegisterBackend adds a render backend to the registry.
//
// Standard priorities:
//   - 100: GPU backends
//   - 10: software rasterization
//
// If available is nil the backend is assumed always available.
// Registering an existing name replaces the previous entry.
func RegisterBackend(name string, priority int, factory RendererFactory, available func() bool) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.entries[name] = &backendEntry{
		name:      name,
		priority:  priority,
		factory:   factory,
		available: available,
	}
}

// Backends returns the names of all registered backends sorted by
// priority, highest first.
func Backends() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	entries := make([]*backendEntry, 0, len(registry.entries))
	for _, e := range registry.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].priority != entries[j].priority {
			return entries[i].priority > entries[j].priority
		}
		return entries[i].name < entries[j].name
	})

	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.name
	}
	return names
}

// newRenderer creates a renderer using the best available backend, or a
// specific one when name is non-empty.
func newRenderer(name string, opts RendererOptions) (Renderer, error) {
	if name != "" {
		registry.mu.RLock()
		e, ok := registry.entries[name]
		registry.mu.RUnlock()
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
		}
		if e.available != nil && !e.available() {
			return nil, fmt.Errorf("%w: %q", ErrBackendUnavailable, name)
		}
		return e.factory(opts)
	}

	for _, candidate := range Backends() {
		registry.mu.RLock()
		e := registry.entries[candidate]
		registry.mu.RUnlock()
		if e.available != nil && !e.available() {
			continue
		}
		r, err := e.factory(opts)
		if err != nil {
			Logger().Warn("backend failed to initialize, trying next",
				"backend", candidate, "error", err)
			continue
		}
		Logger().Info("render backend selected", "backend", candidate)
		return r, nil
	}
	return nil, ErrNoBackends
}
