// Package containers holds small generic data structures shared across
// the pipeline's worker stages.
package containers

import (
	"errors"
	"sync"
)

// RingQueue is a fixed-capacity circular buffer.
type RingQueue[T any] struct {
	data       []T
	size       int
	readIndex  int
	writeIndex int
	count      int
}

// NewRingQueue creates a new RingQueue of the given capacity.
func NewRingQueue[T any](size int) *RingQueue[T] {
	return &RingQueue[T]{
		data: make([]T, size),
		size: size,
	}
}

// Enqueue adds an element to the queue.
func (rq *RingQueue[T]) Enqueue(value T) error {
	if rq.IsFull() {
		return errors.New("queue is full")
	}

	rq.data[rq.writeIndex] = value
	rq.writeIndex = (rq.writeIndex + 1) % rq.size
	rq.count++
	return nil
}

// Dequeue removes and returns the front element in the queue.
func (rq *RingQueue[T]) Dequeue() (T, error) {
	var zero T
	if rq.IsEmpty() {
		return zero, errors.New("queue is empty")
	}

	value := rq.data[rq.readIndex]
	rq.readIndex = (rq.readIndex + 1) % rq.size
	rq.count--
	return value, nil
}

// Peek returns the front element without removing it.
func (rq *RingQueue[T]) Peek() (T, error) {
	var zero T
	if rq.IsEmpty() {
		return zero, errors.New("queue is empty")
	}
	return rq.data[rq.readIndex], nil
}

// IsEmpty checks if the queue is empty.
func (rq *RingQueue[T]) IsEmpty() bool {
	return rq.count == 0
}

// IsFull checks if the queue is full.
func (rq *RingQueue[T]) IsFull() bool {
	return rq.count == rq.size
}

// BlockingRingQueue wraps RingQueue with a mutex and condition variable so
// one goroutine can Push while another Pops, with Push dropping the
// oldest entry rather than blocking when the queue is full — callers
// driving it from a filesystem watcher care about the latest event, not
// every historical one.
type BlockingRingQueue[T any] struct {
	mu     sync.Mutex
	cond   *sync.Cond
	ring   *RingQueue[T]
	closed bool
}

// NewBlockingRingQueue creates a BlockingRingQueue of the given capacity.
func NewBlockingRingQueue[T any](size int) *BlockingRingQueue[T] {
	q := &BlockingRingQueue[T]{ring: NewRingQueue[T](size)}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Push enqueues value, dropping the oldest queued entry first if full.
func (q *BlockingRingQueue[T]) Push(value T) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.ring.IsFull() {
		_, _ = q.ring.Dequeue()
	}
	_ = q.ring.Enqueue(value)
	q.cond.Signal()
}

// Pop blocks until an item is available or Close is called, in which case
// ok is false.
func (q *BlockingRingQueue[T]) Pop() (value T, ok bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for q.ring.IsEmpty() && !q.closed {
		q.cond.Wait()
	}
	if q.ring.IsEmpty() {
		var zero T
		return zero, false
	}
	v, _ := q.ring.Dequeue()
	return v, true
}

// Close wakes any blocked Pop call with ok=false.
func (q *BlockingRingQueue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.cond.Broadcast()
}
