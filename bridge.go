// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package framecap

import (
	"context"
	"sync"
)

// Completion bridges an asynchronous completion signal into a
// single-await, single-result primitive. A renderer constructs one per
// submitted frame and resolves it exactly once from its completion
// handler (GPU fence wait, worker goroutine). The orchestrator owns the
// suspension point: it blocks in Await until the signal fires.
//
// Resolve and Fail are idempotent; only the first call wins. Await may
// be called from any goroutine, before or after resolution.
type Completion struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewCompletion creates an unresolved completion.
func NewCompletion() *Completion {
	return &Completion{done: make(chan struct{})}
}

// Resolve marks the completion successful. No-op if already resolved.
func (c *Completion) Resolve() {
	c.complete(nil)
}

// Fail marks the completion failed with the given error. No-op if
// already resolved.
func (c *Completion) Fail(err error) {
	c.complete(err)
}

func (c *Completion) complete(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Await blocks until the completion resolves or the context is done.
// It returns the failure passed to Fail, the context error, or nil on
// success.
func (c *Completion) Await(ctx context.Context) error {
	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done returns a channel closed when the completion resolves, for
// callers that need select-based composition.
func (c *Completion) Done() <-chan struct{} { return c.done }

// Resolved reports whether the completion has fired, without blocking.
func (c *Completion) Resolved() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
