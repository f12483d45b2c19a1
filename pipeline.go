// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gogpu/gpucontext"
	"github.com/google/uuid"

	"github.com/gogpu/framecap/persist"
)

// State is the pipeline's lifecycle phase.
type State int32

// Pipeline states. A run moves Idle -> Preparing -> Rendering ->
// Draining -> Complete, ends in Failed from Preparing or Rendering, or
// in Cancelled when the context is cancelled between frames (dispatched
// saves still drain first).
const (
	StateIdle State = iota
	StatePreparing
	StateRendering
	StateDraining
	StateComplete
	StateFailed
	StateCancelled
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePreparing:
		return "preparing"
	case StateRendering:
		return "rendering"
	case StateDraining:
		return "draining"
	case StateComplete:
		return "complete"
	case StateFailed:
		return "failed"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Pipeline orchestrates one capture run: clock -> scene advance ->
// render submit -> completion wait -> readback + encode -> dispatch
// save, then a final barrier on all outstanding saves.
//
// A Pipeline drives exactly one run; construct a new one per capture.
// Progress and State are safe to poll from other goroutines while Run
// executes.
type Pipeline struct {
	cfg   Config
	scene Scene

	// Options.
	renderer    Renderer
	backendName string
	startTime   float64
	workers     int
	provider    gpucontext.DeviceProvider

	// Extra dispatcher options, used by tests to inject write faults.
	persistOpts []persist.Option

	state    atomic.Int32
	started  atomic.Bool
	progress progressTracker
}

// New creates a pipeline for the given configuration and scene.
// Configuration problems surface from Run's preparing phase, not here;
// only a nil scene is rejected immediately.
func New(cfg Config, scene Scene, opts ...Option) (*Pipeline, error) {
	if scene == nil {
		return nil, ErrNilScene
	}
	p := &Pipeline{
		cfg:   cfg,
		scene: scene,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// State returns the pipeline's current lifecycle phase.
func (p *Pipeline) State() State {
	return State(p.state.Load())
}

func (p *Pipeline) setState(s State) {
	p.state.Store(int32(s))
}

// Progress returns a point-in-time view of the run, safe to poll from
// outside the render loop.
func (p *Pipeline) Progress() ProgressSnapshot {
	return p.progress.snapshot()
}

// Run executes the capture. It blocks until every frame is rendered and
// every dispatched save is durable, then returns the run summary.
//
// Any render, readback, or encode failure is fatal: scene state is a
// deterministic chain, so a skipped frame would corrupt every later
// one. Individual save failures are non-fatal; they are logged, counted
// in RunResult.FramesFailed, and never cancel sibling saves.
//
// Cancelling the context stops the run between frames: no further
// frames are submitted, already-dispatched saves still drain, and Run
// returns the partial result together with the context's error.
func (p *Pipeline) Run(ctx context.Context) (*RunResult, error) {
	if !p.started.CompareAndSwap(false, true) {
		return nil, ErrPipelineBusy
	}

	// Preparing: validate config, create the output directory, build
	// the renderer. Any failure here is fatal before frame work starts.
	p.setState(StatePreparing)
	start := time.Now()

	if err := p.cfg.Validate(); err != nil {
		return nil, p.fail(start, err)
	}

	clock := p.buildClock()
	total := p.cfg.TotalFrames()
	runID := uuid.NewString()

	dir := filepath.Join(p.cfg.OutputDir,
		fmt.Sprintf("capture_%s_%s", start.Format("20060102_150405"), runID[:8]))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, p.fail(start, fmt.Errorf("framecap: create output directory: %w", err))
	}

	if p.renderer == nil {
		r, err := newRenderer(p.backendName, RendererOptions{
			PixelWidth:     p.cfg.PixelWidth(),
			PixelHeight:    p.cfg.PixelHeight(),
			Scale:          p.cfg.Scale,
			Filter:         p.cfg.Filter,
			DeviceProvider: p.provider,
		})
		if err != nil {
			return nil, p.fail(start, err)
		}
		p.renderer = r
	}
	defer p.renderer.Destroy()

	dispatcherOpts := append([]persist.Option{
		persist.WithOnDone(func(_ int, _ error) { p.progress.frameDone() }),
	}, p.persistOpts...)
	dispatcher := persist.NewDispatcher(p.workers, dispatcherOpts...)
	defer dispatcher.Close()

	p.progress.start(total, "rendering")
	Logger().Info("capture started",
		"run", runID, "dir", dir, "frames", total,
		"size", fmt.Sprintf("%dx%d", p.cfg.PixelWidth(), p.cfg.PixelHeight()),
		"fps", p.cfg.FPS, "filter", p.cfg.Filter.String())

	// Rendering: strict frame order, one render in flight. The loop
	// suspends only while awaiting each frame's completion; saves are
	// dispatched fire-and-forget and never pace the loop.
	p.setState(StateRendering)
	renderStart := time.Now()
	rendered := 0
	var cancelErr error

	for i := range total {
		if err := ctx.Err(); err != nil {
			cancelErr = err
			break
		}

		req := FrameRequest{Index: i, Time: clock.Time(i)}

		comp, err := p.renderer.Submit(req, p.scene)
		if err != nil {
			return nil, p.failFrame(start, i, fmt.Errorf("submit: %w", err))
		}
		if err := comp.Await(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				cancelErr = err
				break
			}
			return nil, p.failFrame(start, i, fmt.Errorf("render: %w", err))
		}

		frame, err := p.renderer.Readback()
		if err != nil {
			return nil, p.failFrame(start, i, fmt.Errorf("readback: %w", err))
		}
		data, err := frame.EncodePNG()
		if err != nil {
			return nil, p.failFrame(start, i, fmt.Errorf("encode: %w", err))
		}

		dispatcher.Dispatch(persist.Task{
			Index: i,
			Data:  data,
			Path:  persist.FramePath(dir, i),
		})
		rendered++
	}
	renderDur := time.Since(renderStart)

	// Draining: barrier on every dispatched save before the run is
	// reported complete.
	p.setState(StateDraining)
	p.progress.setMessage("draining saves")
	drainStart := time.Now()
	dispatcher.Barrier()
	drainDur := time.Since(drainStart)

	result := &RunResult{
		RunID:          runID,
		Dir:            dir,
		TotalFrames:    rendered,
		FramesSaved:    dispatcher.Saved(),
		FramesFailed:   dispatcher.Failed(),
		RenderDuration: renderDur,
		DrainDuration:  drainDur,
	}

	if cancelErr != nil {
		p.setState(StateCancelled)
		p.progress.finish("cancelled")
		Logger().Info("capture cancelled",
			"run", runID, "dir", dir,
			"frames", result.TotalFrames,
			"saved", result.FramesSaved,
			"failed", result.FramesFailed)
		return result, cancelErr
	}

	p.setState(StateComplete)
	p.progress.finish("complete")
	Logger().Info("capture complete",
		"run", runID, "dir", dir,
		"frames", result.TotalFrames,
		"saved", result.FramesSaved,
		"failed", result.FramesFailed,
		"render", renderDur, "drain", drainDur)
	return result, nil
}

func (p *Pipeline) buildClock() *Clock {
	if p.startTime != 0 {
		return NewClockAt(p.startTime, p.cfg.FPS)
	}
	return NewClock(p.cfg.FPS)
}

// fail records a fatal run error: terminal state, progress message,
// and a log entry carrying the elapsed time and cause.
func (p *Pipeline) fail(start time.Time, err error) error {
	p.setState(StateFailed)
	p.progress.finish("failed: " + err.Error())
	Logger().Error("capture failed",
		"elapsed", time.Since(start), "error", err)
	return err
}

// failFrame is fail with the offending frame index attached. Render
// failures are fatal: later frames' scene state depends on this frame
// having been advanced correctly.
func (p *Pipeline) failFrame(start time.Time, frame int, err error) error {
	return p.fail(start, fmt.Errorf("framecap: frame %d: %w", frame, err))
}
