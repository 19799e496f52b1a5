package fabric

import (
	"sync"

	"webframe/pkg/frameerr"
)

// queue is an unbounded FIFO buffer shared by one or more senders and a
// single receiver. Critical sections are short: no I/O or user code runs
// under the lock, and the only blocking wait is the condition wait in pop.
type queue[T any] struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	items    []T
	closed   bool
}

func newQueue[T any]() *queue[T] {
	q := &queue[T]{}
	q.nonEmpty = sync.NewCond(&q.mu)
	return q
}

func (q *queue[T]) push(item T) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return frameerr.New(frameerr.CategoryChannelClosed, "receiver is gone")
	}

	q.items = append(q.items, item)
	q.nonEmpty.Signal()
	return nil
}

// pop blocks until an item is available or the queue is closed and drained.
func (q *queue[T]) pop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for len(q.items) == 0 && !q.closed {
		q.nonEmpty.Wait()
	}

	return q.shift()
}

func (q *queue[T]) tryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.shift()
}

func (q *queue[T]) shift() (T, bool) {
	var zero T
	if len(q.items) == 0 {
		return zero, false
	}

	item := q.items[0]
	q.items[0] = zero
	q.items = q.items[1:]
	return item, true
}

func (q *queue[T]) close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.nonEmpty.Broadcast()
}

func (q *queue[T]) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Sender is the producing end of a queue. Senders are freely cloneable and
// safe for concurrent use; messages from one sender arrive in send order.
type Sender[T any] struct {
	q *queue[T]
}

// Send enqueues one item. It never blocks; it fails only when the receiving
// end has been closed.
func (s Sender[T]) Send(item T) error {
	return s.q.push(item)
}

// Clone returns an independent sender bound to the same queue.
func (s Sender[T]) Clone() Sender[T] {
	return Sender[T]{q: s.q}
}

// Receiver is the consuming end of a queue.
type Receiver[T any] struct {
	q *queue[T]
}

// Poll returns the next item without blocking, or false when none is queued.
func (r Receiver[T]) Poll() (T, bool) {
	return r.q.tryPop()
}

// Recv blocks until the next item arrives. It returns false once the queue
// has been closed and drained.
func (r Receiver[T]) Recv() (T, bool) {
	return r.q.pop()
}

// Close tears the queue down. Pending Recv calls wake up, queued items remain
// drainable, and subsequent sends fail.
func (r Receiver[T]) Close() {
	r.q.close()
}

// Depth reports the number of queued items. Intended for tests and telemetry.
func (r Receiver[T]) Depth() int {
	return r.q.depth()
}

// NewPipe creates an unbounded FIFO queue and returns its two ends.
func NewPipe[T any]() (Sender[T], Receiver[T]) {
	q := newQueue[T]()
	return Sender[T]{q: q}, Receiver[T]{q: q}
}
