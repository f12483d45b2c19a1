// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package persist writes encoded frames to disk on a bounded worker
// pool, decoupled from the render loop's pacing.
//
// Save tasks are fire-and-forget: Dispatch never blocks on disk I/O,
// tasks may complete in any order, and a single task's failure is
// logged and counted without affecting its siblings or the run. The
// Barrier call is the run's only synchronization point with the pool.
package persist

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framecap/internal/parallel"
)

// ErrClosed reports a dispatch attempted after Close.
var ErrClosed = errors.New("persist: dispatcher closed")

// Task is one frame's encoded bytes and destination. Its lifetime ends
// at a successful write or a logged failure.
type Task struct {
	// Index is the frame number, used for the file name and for
	// failure reporting.
	Index int

	// Data is the encoded image.
	Data []byte

	// Path is the destination file path.
	Path string
}

// Handle tracks one dispatched task. Err is valid once Done is closed.
type Handle struct {
	done chan struct{}
	err  error
}

// Done returns a channel closed when the task has finished.
func (h *Handle) Done() <-chan struct{} { return h.done }

// Err returns the task's write error, or nil. Only valid after Done.
func (h *Handle) Err() error { return h.err }

// WriteFunc persists encoded bytes to a path. The default writes the
// file with os.WriteFile; tests substitute failing implementations.
type WriteFunc func(path string, data []byte) error

// Dispatcher fans save tasks out to a bounded worker pool sized to the
// host's available parallelism.
type Dispatcher struct {
	pool  *parallel.Pool
	write WriteFunc

	wg     sync.WaitGroup
	saved  atomic.Int64
	failed atomic.Int64

	// onDone, when set, is called after each task completes. Used by
	// the pipeline for incremental progress; called from pool workers.
	onDone func(index int, err error)
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithWriteFunc replaces the file-writing implementation.
func WithWriteFunc(fn WriteFunc) Option {
	return func(d *Dispatcher) { d.write = fn }
}

// WithOnDone registers a completion callback, invoked once per task
// from a pool worker after the write finishes or fails.
func WithOnDone(fn func(index int, err error)) Option {
	return func(d *Dispatcher) { d.onDone = fn }
}

// NewDispatcher creates a dispatcher with the given worker count.
// workers <= 0 uses the host's available parallelism.
func NewDispatcher(workers int, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		pool: parallel.NewPool(workers),
		write: func(path string, data []byte) error {
			return os.WriteFile(path, data, 0o644)
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch schedules a save without blocking on I/O. The returned
// handle resolves when the write finishes. Failures are logged with
// the frame index and counted; they never cancel sibling tasks. A
// dispatch after Close resolves the handle with ErrClosed instead of
// leaving it dangling, so a later Barrier cannot hang on it.
func (d *Dispatcher) Dispatch(task Task) *Handle {
	h := &Handle{done: make(chan struct{})}
	d.wg.Add(1)

	accepted := d.pool.Submit(func() {
		defer d.wg.Done()
		defer close(h.done)

		err := d.write(task.Path, task.Data)
		if err != nil {
			h.err = err
			d.failed.Add(1)
			slogger().Warn("frame save failed",
				"frame", task.Index, "path", task.Path, "error", err)
		} else {
			d.saved.Add(1)
			slogger().Debug("frame saved",
				"frame", task.Index, "bytes", len(task.Data))
		}
		if d.onDone != nil {
			d.onDone(task.Index, err)
		}
	})
	if !accepted {
		h.err = ErrClosed
		d.failed.Add(1)
		d.wg.Done()
		close(h.done)
		slogger().Warn("frame save rejected, dispatcher closed",
			"frame", task.Index, "path", task.Path)
		if d.onDone != nil {
			d.onDone(task.Index, ErrClosed)
		}
	}
	return h
}

// Barrier blocks until every dispatched task has completed. Saves are
// only durable once Barrier returns.
func (d *Dispatcher) Barrier() {
	d.wg.Wait()
}

// Saved returns the number of tasks written successfully so far.
func (d *Dispatcher) Saved() int { return int(d.saved.Load()) }

// Failed returns the number of tasks that failed so far.
func (d *Dispatcher) Failed() int { return int(d.failed.Load()) }

// Workers returns the size of the underlying pool.
func (d *Dispatcher) Workers() int { return d.pool.Workers() }

// Close waits for queued tasks and stops the workers.
func (d *Dispatcher) Close() {
	d.pool.Close()
}

// FramePath returns the destination path for a frame index inside dir:
// frame_NNNNN.png, zero-padded to five digits.
func FramePath(dir string, index int) string {
	return filepath.Join(dir, fmt.Sprintf("frame_%05d.png", index))
}
