// Package remote forwards log entries to a collection endpoint without
// blocking the caller.
//
// A [Queue] is an unbounded FIFO mailbox drained by exactly one background
// goroutine. Enqueue appends and returns immediately; the worker serializes
// each entry and hands it to a [Transport] with a short timeout. Delivery is
// best-effort: failures, non-2xx responses and transport panics are counted
// and the entry is discarded. There is no retry and nothing is persisted.
//
// # Ordering
//
// Entries are attempted strictly in enqueue order, one at a time.
//
// # Enable and disable
//
// Disable only affects Enqueue. Entries already queued are still attempted.
//
// # Shutdown
//
// Close stops new enqueues and lets the worker keep draining until the
// context passed to Close is done; whatever remains after that is dropped.
package remote

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sourcegraph/conc/panics"

	"github.com/Iron-Ham/daylog/internal/errors"
)

// Stats is a snapshot of queue counters.
type Stats struct {
	Enqueued  uint64
	Delivered uint64
	Failed    uint64
	Dropped   uint64
	Pending   int
}

// Queue delivers entries asynchronously. It is safe for concurrent use by
// any number of producers.
type Queue struct {
	transport  Transport
	timeout    time.Duration
	maxPending int

	mu       sync.Mutex
	items    []Entry
	started  bool
	closed   bool
	drainCtx context.Context

	enabled atomic.Bool
	wake    chan struct{}
	stopped chan struct{}

	enqueued  atomic.Uint64
	delivered atomic.Uint64
	failed    atomic.Uint64
	dropped   atomic.Uint64
}

// QueueOption configures a Queue.
type QueueOption func(*Queue)

// WithTimeout bounds each delivery attempt. Defaults to DefaultTimeout.
func WithTimeout(d time.Duration) QueueOption {
	return func(q *Queue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

// WithMaxPending caps the number of undelivered entries. When the cap is
// reached the oldest pending entry is dropped to make room. Zero, the
// default, means unbounded.
func WithMaxPending(n int) QueueOption {
	return func(q *Queue) {
		if n > 0 {
			q.maxPending = n
		}
	}
}

// NewQueue creates an enabled Queue. Entries accepted before Start are
// held until the worker runs.
func NewQueue(transport Transport, opts ...QueueOption) *Queue {
	q := &Queue{
		transport: transport,
		timeout:   DefaultTimeout,
		wake:      make(chan struct{}, 1),
		stopped:   make(chan struct{}),
	}
	q.enabled.Store(true)
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Start launches the worker. Calling Start more than once, or after Close,
// has no effect.
func (q *Queue) Start() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.started || q.closed {
		return
	}
	q.started = true
	go q.run()
}

// Enqueue appends an entry without blocking. It returns false, and does
// nothing, when the queue is disabled or closed.
func (q *Queue) Enqueue(entry Entry) bool {
	if !q.enabled.Load() {
		return false
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	if q.maxPending > 0 && len(q.items) >= q.maxPending {
		q.items[0] = Entry{}
		q.items = q.items[1:]
		q.dropped.Add(1)
	}
	q.items = append(q.items, entry)
	q.mu.Unlock()

	q.enqueued.Add(1)
	q.signal()
	return true
}

// Enable allows Enqueue to accept entries.
func (q *Queue) Enable() {
	q.enabled.Store(true)
}

// Disable makes Enqueue reject entries. Pending entries are unaffected.
func (q *Queue) Disable() {
	q.enabled.Store(false)
}

// Enabled reports whether Enqueue accepts entries.
func (q *Queue) Enabled() bool {
	return q.enabled.Load()
}

// Stats returns a snapshot of the queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	pending := len(q.items)
	q.mu.Unlock()

	return Stats{
		Enqueued:  q.enqueued.Load(),
		Delivered: q.delivered.Load(),
		Failed:    q.failed.Load(),
		Dropped:   q.dropped.Load(),
		Pending:   pending,
	}
}

// Close stops accepting entries and waits for the worker to drain. The
// worker stops picking up new entries once ctx is done; Close then returns
// ctx.Err() without waiting for an in-flight attempt, which ends on its own
// timeout. Closing an already closed queue returns errors.ErrQueueClosed.
func (q *Queue) Close(ctx context.Context) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return errors.ErrQueueClosed
	}
	q.closed = true
	q.drainCtx = ctx
	started := q.started
	if !started {
		q.dropped.Add(uint64(len(q.items)))
		q.items = nil
	}
	q.mu.Unlock()

	if !started {
		return nil
	}

	q.signal()
	select {
	case <-q.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// signal wakes the worker if it is waiting. The channel holds one token so
// a wakeup sent while the worker is busy is not lost.
func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.stopped)

	for {
		entry, ok := q.next()
		if !ok {
			return
		}
		q.deliver(entry)
	}
}

// next blocks until an entry is available or the queue is shut down.
func (q *Queue) next() (Entry, bool) {
	for {
		q.mu.Lock()
		if q.closed && q.drainCtx.Err() != nil {
			q.dropped.Add(uint64(len(q.items)))
			q.items = nil
			q.mu.Unlock()
			return Entry{}, false
		}
		if len(q.items) > 0 {
			entry := q.items[0]
			q.items[0] = Entry{}
			q.items = q.items[1:]
			if len(q.items) == 0 {
				q.items = nil
			}
			q.mu.Unlock()
			return entry, true
		}
		if q.closed {
			q.mu.Unlock()
			return Entry{}, false
		}
		q.mu.Unlock()

		<-q.wake
	}
}

// deliver makes one attempt to send entry. Nothing that goes wrong here
// is reported to producers.
func (q *Queue) deliver(entry Entry) {
	payload, err := entry.Marshal()
	if err != nil {
		q.failed.Add(1)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
	defer cancel()

	var postErr error
	var pc panics.Catcher
	pc.Try(func() {
		postErr = q.transport.Post(ctx, payload)
	})
	if r := pc.Recovered(); r != nil {
		postErr = fmt.Errorf("transport panicked: %v", r.Value)
	}

	if postErr != nil {
		q.failed.Add(1)
		return
	}
	q.delivered.Add(1)
}
