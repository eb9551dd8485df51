// Package queue provides the FIFO buffer the write pipeline drains
// records from. One goroutine pushes, the flush worker takes the whole
// batch with GetAndEmpty.
package queue

import "sync"

// Queue is a mutex-guarded FIFO over a growable slice.
type Queue[T any] struct {
	mu  sync.Mutex
	buf []T
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	return &Queue[T]{}
}

// Push appends one or more records.
func (q *Queue[T]) Push(records ...T) {
	q.mu.Lock()
	q.buf = append(q.buf, records...)
	q.mu.Unlock()
}

// Pop removes and returns the oldest record, or the zero value when the
// queue is empty.
func (q *Queue[T]) Pop() T {
	q.mu.Lock()
	defer q.mu.Unlock()

	var head T
	if len(q.buf) > 0 {
		head = q.buf[0]
		q.buf = q.buf[1:]
	}
	return head
}

// Empty reports whether the queue holds no records.
func (q *Queue[T]) Empty() bool {
	return q.Len() == 0
}

// Len returns the current record count.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.buf)
}

// Clear discards all records, keeping the backing capacity.
func (q *Queue[T]) Clear() {
	q.mu.Lock()
	q.buf = q.buf[:0]
	q.mu.Unlock()
}

// GetAndEmpty hands the caller the whole pending batch and leaves the
// queue empty. The returned slice is owned by the caller; the queue
// starts a fresh buffer sized to the old capacity.
func (q *Queue[T]) GetAndEmpty() []T {
	q.mu.Lock()
	defer q.mu.Unlock()

	batch := q.buf
	q.buf = make([]T, 0, cap(batch))
	return batch
}
