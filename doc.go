// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package framecap captures a time-driven 2D scene as a deterministic,
// lossless PNG frame sequence, independent of any display.
//
// # Overview
//
// framecap drives a scene's simulation clock forward in fixed steps,
// renders each step into a reused offscreen target, reads the rasterized
// pixels back to host memory, and persists each frame on a bounded worker
// pool. Exactly one render is in flight at a time, so frame N+1 is never
// submitted before frame N's completion has been observed; saved files are
// therefore always in strict frame-index order regardless of how the save
// workers interleave.
//
// # Quick Start
//
//	cfg := framecap.Config{
//	    Width:     390,
//	    Height:    844,
//	    Scale:     2,
//	    FPS:       60,
//	    Duration:  10,
//	    OutputDir: "captures",
//	}
//	p, err := framecap.New(cfg, myScene)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := p.Run(context.Background())
//
// Scenes implement the [Scene] interface: Advance is called once per frame
// with a strictly increasing absolute time, then Draw rasterizes the
// current state into a gg drawing context in logical coordinates. The
// logical-to-pixel mapping is fixed by Config.Scale; viewport-style
// framing is not configurable in offscreen capture.
//
// # Backends
//
// Rendering backends register themselves by name and priority. The
// built-in software backend rasterizes through gg's CPU pipeline and is
// always available. GPU capture via the wgpu HAL is a blank-import opt-in:
//
//	import _ "github.com/gogpu/framecap/backend/wgpu"
//
// # Logging
//
// framecap produces no log output by default. Call [SetLogger] to enable
// structured logging for the pipeline and all backends.
package framecap
