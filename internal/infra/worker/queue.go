// File: internal/infra/worker/queue.go
package worker

import (
	"context"
	"sync"

	"event-ingestion/internal/domain"
	"event-ingestion/internal/domain/model"
	"event-ingestion/internal/infra/metrics"
)

// Queue is an unbounded in-process FIFO of uploaded files. Enqueue never
// blocks. Each item is delivered to exactly one Dequeue call. Contents are
// not persisted: a process restart loses every queued file.
type Queue struct {
	mu      sync.Mutex
	items   []*model.QueuedFile
	pending int // enqueued and not yet acknowledged with Done
	closed  bool
	notify  chan struct{}
	idle    chan struct{} // closed while pending == 0
}

func NewQueue() *Queue {
	idle := make(chan struct{})
	close(idle)
	return &Queue{notify: make(chan struct{}, 1), idle: idle}
}

func (q *Queue) Enqueue(f *model.QueuedFile) error {
	if f == nil {
		return domain.ErrInvalidArgument
	}
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return domain.ErrQueueClosed
	}
	q.items = append(q.items, f)
	if q.pending == 0 {
		q.idle = make(chan struct{})
	}
	q.pending++
	metrics.SetQueueDepth(len(q.items))
	q.mu.Unlock()

	q.signal()
	return nil
}

// Dequeue blocks until an item is available, ctx is done or the queue is
// closed and empty.
func (q *Queue) Dequeue(ctx context.Context) (*model.QueuedFile, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			f := q.items[0]
			q.items[0] = nil
			q.items = q.items[1:]
			more := len(q.items) > 0
			metrics.SetQueueDepth(len(q.items))
			q.mu.Unlock()
			if more {
				q.signal()
			}
			return f, nil
		}
		if q.closed {
			q.mu.Unlock()
			q.signal()
			return nil, domain.ErrQueueClosed
		}
		q.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-q.notify:
		}
	}
}

// Done acknowledges that one dequeued item has been fully handled.
func (q *Queue) Done() {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.pending == 0 {
		return
	}
	q.pending--
	if q.pending == 0 {
		close(q.idle)
	}
}

// Len is the number of items waiting to be dequeued.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Pending is the number of items enqueued but not yet acknowledged.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.pending
}

// Wait blocks until every enqueued item has been acknowledged.
func (q *Queue) Wait(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close rejects further Enqueue calls. Items already queued can still be
// dequeued.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.signal()
}

func (q *Queue) signal() {
	select {
	case q.notify <- struct{}{}:
	default:
	}
}
