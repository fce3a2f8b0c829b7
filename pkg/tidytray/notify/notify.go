// Package notify carries samples from a poller goroutine to the goroutine
// that owns the UI. The queue is unbounded: a slow consumer makes samples
// accumulate rather than blocking the producer.
package notify

import (
	"errors"
	"sync"

	"github.com/jamesainslie/tidytray/pkg/tidytray/types"
)

// ErrClosed is returned by Send once the receiving side has gone away.
var ErrClosed = errors.New("notify: queue closed")

// Queue is a single-producer, single-consumer FIFO of samples.
type Queue struct {
	mu      sync.Mutex
	pending []types.Sample
	closed  bool
	wake    chan struct{}
	out     chan types.Sample
	done    chan struct{}
}

// New starts a queue. Close must be called to stop its goroutine.
func New() *Queue {
	q := &Queue{
		wake: make(chan struct{}, 1),
		out:  make(chan types.Sample),
		done: make(chan struct{}),
	}
	go q.pump()
	return q
}

// Send appends s. It never blocks.
func (q *Queue) Send(s types.Sample) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	q.pending = append(q.pending, s)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

// Out returns the receive side. It is closed after Close.
func (q *Queue) Out() <-chan types.Sample {
	return q.out
}

// Len returns the number of samples not yet received.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Close marks the receiver as gone. Pending samples are discarded and later
// sends fail with ErrClosed.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.pending = nil
	q.mu.Unlock()
	close(q.done)
}

func (q *Queue) pump() {
	defer close(q.out)
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.mu.Unlock()
			select {
			case <-q.wake:
				continue
			case <-q.done:
				return
			}
		}
		next := q.pending[0]
		q.mu.Unlock()

		select {
		case q.out <- next:
			q.mu.Lock()
			if len(q.pending) > 0 {
				q.pending[0] = types.Sample{}
				q.pending = q.pending[1:]
			}
			q.mu.Unlock()
		case <-q.done:
			return
		}
	}
}
