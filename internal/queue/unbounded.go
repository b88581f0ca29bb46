// Package queue implements the single unbounded queue primitive the channel
// backends are built from. No library in the retrieval pack supplies an
// unbounded SPSC/MPSC channel — the original Rust implementation hand-rolls
// its own (unbounded_spsc, std::sync::mpsc) for the same reason — so this is
// one of the few pieces of the module deliberately left on the standard
// library; see SPEC_FULL.md §11.
package queue

import "sync"

// Disconnected is returned by Recv/TryRecv once the sender side has closed
// with no items left to drain, and by Send once the receiver side has
// closed.
type Disconnected struct {
	// Message is the undelivered payload, set only on a failed Send.
	Message any
}

func (d *Disconnected) Error() string { return "queue: peer disconnected" }

// Empty is returned by TryRecv when the queue currently holds no items but
// the sender side is still open.
var Empty = emptyErr{}

type emptyErr struct{}

func (emptyErr) Error() string { return "queue: empty" }

// Unbounded is a growable-slice queue guarded by a mutex and condition
// variable. Senders never block (Send only appends); receivers block in
// Recv until an item is available or every sender has closed.
//
// Disconnection is explicit rather than ownership-drop-derived: CloseSender
// and CloseReceiver must be called by whoever is giving up their end. A
// shared queue (Sink's multi-producer case) is created with one sender per
// producer clone, and each clone calls CloseSender once, so the queue only
// reports sender-disconnected once every producer clone has closed.
type Unbounded[T any] struct {
	mu       sync.Mutex
	cond     *sync.Cond
	items    []T
	senders  int
	rclosed  bool
	initOnce sync.Once
}

// NewUnbounded creates a queue with senderCount live producers (1 for
// Simplex/Source, len(producers) for Sink).
func NewUnbounded[T any](senderCount int) *Unbounded[T] {
	q := &Unbounded[T]{senders: senderCount}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send enqueues an item. Returns *Disconnected if the receiver has closed;
// the undelivered item is attached to the error.
func (q *Unbounded[T]) Send(item T) error {
	q.mu.Lock()
	if q.rclosed {
		q.mu.Unlock()
		return &Disconnected{Message: item}
	}
	q.items = append(q.items, item)
	q.mu.Unlock()
	q.cond.Signal()
	return nil
}

// Recv blocks until an item is available or every sender has closed.
func (q *Unbounded[T]) Recv() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.items) == 0 && q.senders > 0 {
		q.cond.Wait()
	}
	if len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		return item, nil
	}
	var zero T
	return zero, &Disconnected{}
}

// TryRecv returns queue.Empty if no item is ready and senders remain open,
// or a *Disconnected error once drained with no senders left.
func (q *Unbounded[T]) TryRecv() (T, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) > 0 {
		item := q.items[0]
		q.items = q.items[1:]
		return item, nil
	}
	var zero T
	if q.senders == 0 {
		return zero, &Disconnected{}
	}
	return zero, Empty
}

// CloseSender decrements the live-sender count; once it reaches zero,
// blocked and future receivers observe disconnection.
func (q *Unbounded[T]) CloseSender() {
	q.mu.Lock()
	if q.senders > 0 {
		q.senders--
	}
	closed := q.senders == 0
	q.mu.Unlock()
	if closed {
		q.cond.Broadcast()
	}
}

// CloseReceiver marks the receiver side closed; future Send calls fail.
func (q *Unbounded[T]) CloseReceiver() {
	q.mu.Lock()
	q.rclosed = true
	q.mu.Unlock()
}
