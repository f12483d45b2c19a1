// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCompletionResolve(t *testing.T) {
	c := NewCompletion()
	if c.Resolved() {
		t.Fatal("new completion reports resolved")
	}
	c.Resolve()
	if !c.Resolved() {
		t.Fatal("completion not resolved after Resolve")
	}
	if err := c.Await(context.Background()); err != nil {
		t.Errorf("Await after Resolve = %v, want nil", err)
	}
}

func TestCompletionFail(t *testing.T) {
	want := errors.New("device lost")
	c := NewCompletion()
	c.Fail(want)
	if err := c.Await(context.Background()); !errors.Is(err, want) {
		t.Errorf("Await after Fail = %v, want %v", err, want)
	}
}

func TestCompletionFirstResolutionWins(t *testing.T) {
	c := NewCompletion()
	c.Resolve()
	c.Fail(errors.New("too late"))
	if err := c.Await(context.Background()); err != nil {
		t.Errorf("Await = %v, want nil (Resolve won)", err)
	}

	c2 := NewCompletion()
	want := errors.New("first")
	c2.Fail(want)
	c2.Fail(errors.New("second"))
	c2.Resolve()
	if err := c2.Await(context.Background()); !errors.Is(err, want) {
		t.Errorf("Await = %v, want %v (first Fail won)", err, want)
	}
}

func TestCompletionAwaitBlocksUntilResolved(t *testing.T) {
	c := NewCompletion()
	go func() {
		time.Sleep(10 * time.Millisecond)
		c.Resolve()
	}()
	if err := c.Await(context.Background()); err != nil {
		t.Errorf("Await = %v, want nil", err)
	}
}

func TestCompletionAwaitHonorsContext(t *testing.T) {
	c := NewCompletion()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.Await(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Await = %v, want context.Canceled", err)
	}
	// The completion itself is still pending and can resolve later.
	if c.Resolved() {
		t.Error("completion resolved by context cancellation")
	}
	c.Resolve()
	if err := c.Await(context.Background()); err != nil {
		t.Errorf("Await after late Resolve = %v, want nil", err)
	}
}

func TestCompletionDoneChannel(t *testing.T) {
	c := NewCompletion()
	select {
	case <-c.Done():
		t.Fatal("Done closed before resolution")
	default:
	}
	c.Resolve()
	select {
	case <-c.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Resolve")
	}
}
