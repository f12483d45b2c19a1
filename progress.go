// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import "sync"

// ProgressSnapshot is a point-in-time view of a run, safe to poll from
// outside the render loop.
type ProgressSnapshot struct {
	// Running reports whether the pipeline is between run start and
	// terminal state.
	Running bool

	// CurrentFrame is the number of frames whose save has completed
	// (successfully or not). It advances as save tasks finish, not as
	// they are dispatched, and never decreases.
	CurrentFrame int

	// TotalFrames is the run's frame count.
	TotalFrames int

	// Fraction is CurrentFrame/TotalFrames in [0, 1].
	Fraction float64

	// Message describes the current pipeline phase.
	Message string
}

// progressTracker records run progress. All updates are monotonic:
// CurrentFrame only grows, Fraction follows it.
type progressTracker struct {
	mu      sync.RWMutex
	running bool
	current int
	total   int
	message string
}

func (p *progressTracker) start(total int, message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = true
	p.current = 0
	p.total = total
	p.message = message
}

func (p *progressTracker) setMessage(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.message = message
}

// frameDone advances the completed-frame counter. Save tasks complete
// in arbitrary order, so this counts completions rather than tracking
// the highest finished index.
func (p *progressTracker) frameDone() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current < p.total {
		p.current++
	}
}

func (p *progressTracker) finish(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running = false
	p.message = message
}

func (p *progressTracker) snapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	frac := 0.0
	if p.total > 0 {
		frac = float64(p.current) / float64(p.total)
	}
	return ProgressSnapshot{
		Running:      p.running,
		CurrentFrame: p.current,
		TotalFrames:  p.total,
		Fraction:     frac,
		Message:      p.message,
	}
}
