// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package wgpu provides the GPU capture backend on the gogpu/wgpu HAL.
//
// The backend owns an offscreen texture pair allocated once per run:
// a source texture the rasterized scene is uploaded to, and a render
// target the compositing pass draws into. Each frame runs one render
// pass, a fullscreen triangle that samples the source and applies the
// configured post-filter in the fragment shader, then copies the
// target into a persistent staging buffer for CPU readback. Each
// submit's index is bridged into a framecap.Completion by a waiter
// goroutine that polls the queue, so the pipeline awaits frames
// without touching the HAL.
//
// Importing this package registers the "wgpu" backend at GPU priority:
//
//	import _ "github.com/gogpu/framecap/backend/wgpu"
//
// Framing note: the pass always maps the full source texture onto the
// full target. Offscreen capture has no viewport concept; output
// framing is fixed by the target's pixel dimensions versus the scene's
// logical dimensions and is not configurable.
package wgpu
