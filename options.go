// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import "github.com/gogpu/gpucontext"

// Option configures a Pipeline during creation.
//
// Example:
//
//	// Default: best available backend, wall-clock time base.
//	p, err := framecap.New(cfg, scene)
//
//	// Reproducible capture on a specific backend:
//	p, err := framecap.New(cfg, scene,
//	    framecap.WithBackend("software"),
//	    framecap.WithStartTime(1000),
//	)
type Option func(*Pipeline)

// WithRenderer injects a pre-built renderer instead of constructing one
// from the backend registry. The pipeline takes ownership and destroys
// it when the run finishes.
func WithRenderer(r Renderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}

// WithBackend selects a registered backend by name instead of the
// highest-priority available one.
func WithBackend(name string) Option {
	return func(p *Pipeline) { p.backendName = name }
}

// WithStartTime fixes the simulation time base instead of sampling the
// wall clock. The base must be non-zero: scenes with stochastic
// subsystems need a real time origin to initialize their dynamics.
// Fixing the base makes repeated runs byte-identical for deterministic
// scenes.
func WithStartTime(base float64) Option {
	return func(p *Pipeline) { p.startTime = base }
}

// WithWorkers sets the save worker pool size. Zero or negative selects
// the host's available parallelism.
func WithWorkers(n int) Option {
	return func(p *Pipeline) { p.workers = n }
}

// WithDeviceProvider supplies a shared GPU device from a host
// application. GPU backends render on the provided device instead of
// opening their own adapter.
func WithDeviceProvider(provider gpucontext.DeviceProvider) Option {
	return func(p *Pipeline) { p.provider = provider }
}
