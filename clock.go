// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import "time"

// Clock computes the absolute simulation time of each frame. The
// timestep is fixed at 1/fps; Time is a pure function of the frame
// index, so the clock never drifts regardless of rendering speed.
//
// The time base is sampled once from the wall clock at construction and
// is never zero. Scenes with stochastic subsystems (particle emission,
// noise-driven fields) initialize their dynamics from the first advance
// time; a logical-zero base silently suppresses those effects. This is
// an observed behavior of time-seeded scenes, not an API contract, so
// the non-zero base is kept as a required workaround.
type Clock struct {
	base float64
	step float64
}

// NewClock creates a clock for the given frame rate, sampling the time
// base from the wall clock. fps must be positive.
func NewClock(fps float64) *Clock {
	return NewClockAt(float64(time.Now().UnixNano())/float64(time.Second), fps)
}

// NewClockAt creates a clock with an explicit time base. Reproducible
// runs (and tests) use a fixed base so repeated captures see identical
// advance-time sequences. base must be non-zero.
func NewClockAt(base, fps float64) *Clock {
	return &Clock{
		base: base,
		step: 1 / fps,
	}
}

// Time returns the absolute simulation time of the given frame:
// base + frame/fps. Strictly increasing in the frame index.
//
// At wall-clock magnitudes the float64 granularity is well below a
// microsecond, far finer than any practical timestep.
func (c *Clock) Time(frame int) float64 {
	return c.base + float64(frame)*c.step
}

// Step returns the fixed timestep, 1/fps.
func (c *Clock) Step() float64 { return c.step }

// Base returns the run's absolute start time.
func (c *Clock) Base() float64 { return c.base }
