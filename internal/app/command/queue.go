// Package command provides the FIFO of textual player commands.
package command

import "sync"

// Queue is an unbounded FIFO of player commands.
// Any number of goroutines may enqueue; one consumer drains.
type Queue struct {
	mu    sync.Mutex
	items []string
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{
		items: make([]string, 0),
	}
}

// Enqueue appends a command. It never blocks on the consumer.
func (q *Queue) Enqueue(cmd string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, cmd)
}

// EnqueueMultiple appends commands in order as one batch.
func (q *Queue) EnqueueMultiple(cmds []string) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.items = append(q.items, cmds...)
}

// DrainAll removes and returns every queued command in FIFO order.
// It returns an empty slice when the queue is idle.
func (q *Queue) DrainAll() []string {
	q.mu.Lock()
	defer q.mu.Unlock()

	drained := q.items
	q.items = make([]string, 0)
	return drained
}

// Len returns the number of queued commands.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
