// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package wgpu

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/framecap"
)

func TestAwaitCompletionObservesSubmission(t *testing.T) {
	var completed atomic.Uint64
	go func() {
		time.Sleep(5 * time.Millisecond)
		completed.Store(7)
	}()

	if err := awaitCompletion(completed.Load, 7, time.Second); err != nil {
		t.Fatalf("awaitCompletion: %v", err)
	}
}

func TestAwaitCompletionAlreadyDone(t *testing.T) {
	if err := awaitCompletion(func() uint64 { return 12 }, 3, time.Second); err != nil {
		t.Fatalf("awaitCompletion: %v", err)
	}
}

func TestAwaitCompletionTimeout(t *testing.T) {
	err := awaitCompletion(func() uint64 { return 0 }, 1, 5*time.Millisecond)
	if err == nil {
		t.Fatal("awaitCompletion returned nil for a submission that never completes")
	}
}

func TestDrainPendingJoinsInFlightFrame(t *testing.T) {
	r := &renderer{pending: framecap.NewCompletion()}

	var resolved atomic.Bool
	comp := r.pending
	go func() {
		time.Sleep(10 * time.Millisecond)
		resolved.Store(true)
		comp.Resolve()
	}()

	r.drainPending()
	if !resolved.Load() {
		t.Error("drainPending returned before the in-flight frame resolved")
	}
	if r.pending != nil {
		t.Error("drainPending left a pending completion")
	}
}

func TestDrainPendingNoFrame(t *testing.T) {
	r := &renderer{}
	r.drainPending()
}
