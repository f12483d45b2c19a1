// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"sort"

	"github.com/gogpu/gg"
)

// Scene is the external simulation the pipeline captures. The pipeline
// never inspects scene state; it only advances time and asks the scene
// to draw itself.
//
// Advance is called exactly once per frame with a strictly increasing
// absolute time. For identical initial state and an identical sequence
// of advance times, a scene must produce deterministic state
// transitions; the capture pipeline relies on this chain, which is why
// any render failure aborts the run rather than skipping a frame.
//
// Draw rasterizes the current state into the drawing context using
// logical coordinates. The context is already scaled so that one
// logical unit maps to Scale pixels; scenes never deal with pixel
// dimensions.
type Scene interface {
	Advance(t float64)
	Draw(dc *gg.Context)
}

// Command is a scheduled, tagged scene mutation with an absolute
// trigger time. Scenes keep their time-delayed behaviors in a Schedule
// instead of capturing ad-hoc closures on timers, so the mutation order
// is explicit and replayable.
type Command struct {
	// At is the absolute simulation time at which the command fires.
	At float64

	// Tag identifies the mutation for logging and debugging.
	Tag string

	// Do performs the mutation. It receives the advance time that
	// triggered it, which is >= At.
	Do func(t float64)
}

// Schedule is an ordered list of pending commands owned by a scene.
// Commands fire in (At, insertion) order when the scene's advance time
// crosses their trigger. Schedule is not safe for concurrent use; it is
// driven from the scene's Advance, which the pipeline serializes.
type Schedule struct {
	pending []Command
}

// Add inserts a command, keeping the list ordered by trigger time.
// Commands with equal trigger times fire in insertion order.
func (s *Schedule) Add(cmd Command) {
	i := sort.Search(len(s.pending), func(i int) bool {
		return s.pending[i].At > cmd.At
	})
	s.pending = append(s.pending, Command{})
	copy(s.pending[i+1:], s.pending[i:])
	s.pending[i] = cmd
}

// RunDue fires every pending command whose trigger time is <= t, in
// order, and removes them. It returns the number of commands fired.
func (s *Schedule) RunDue(t float64) int {
	fired := 0
	for len(s.pending) > 0 && s.pending[0].At <= t {
		cmd := s.pending[0]
		s.pending = s.pending[1:]
		if cmd.Do != nil {
			cmd.Do(t)
		}
		fired++
	}
	return fired
}

// Pending returns the number of commands that have not fired yet.
func (s *Schedule) Pending() int { return len(s.pending) }
