// Package parallel provides the bounded worker pool that runs
// fire-and-forget save tasks.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed-size pool of worker goroutines.
//
// Work is distributed across per-worker queues; an idle worker steals
// from its siblings before blocking, which balances load when some
// tasks (large frames, slow disks) run longer than others.
//
// Thread safety: Pool is safe for concurrent use.
type Pool struct {
	workers    int
	workQueues []chan func()
	done       chan struct{}
	wg         sync.WaitGroup
	running    atomic.Bool
}

// NewPool creates a pool with the given number of workers and starts
// them. If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	// A few queued items per worker hides submit/complete latency
	// without letting the backlog grow unbounded.
	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &Pool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drain(myQueue)
			return
		case work := <-myQueue:
			if work != nil {
				work()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			select {
			case <-p.done:
				p.drain(myQueue)
				return
			case work := <-myQueue:
				if work != nil {
					work()
				}
			}
		}
	}
}

// drain executes all remaining work in a queue before shutdown, so
// Close never abandons accepted tasks.
func (p *Pool) drain(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes one work item from another worker's queue, or returns nil.
func (p *Pool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// Submit queues a single work item on the worker with the shortest
// queue. It may block when every queue is full, which bounds the
// number of pending tasks. Reports whether the item was accepted; a
// rejected item (pool closed) will never run, while an accepted one
// always runs, even if Close arrives before a worker picks it up.
func (p *Pool) Submit(fn func()) bool {
	if fn == nil || !p.running.Load() {
		return false
	}

	minIdx := 0
	minLen := len(p.workQueues[0])
	for i := 1; i < p.workers; i++ {
		if l := len(p.workQueues[i]); l < minLen {
			minLen = l
			minIdx = i
		}
	}

	select {
	case p.workQueues[minIdx] <- fn:
		return true
	case <-p.done:
		return false
	}
}

// Close stops accepting work, runs everything already queued, and
// waits for the workers to exit. Safe to call multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()

	// A Submit racing Close can slip an item into a queue after that
	// worker drained it. Run stragglers here so accepted work is never
	// abandoned.
	for _, q := range p.workQueues {
		p.drain(q)
	}
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int { return p.workers }
