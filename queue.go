package log

import (
	"sync"
)

const compactThreshold = 1024

// recordQueue is an unbounded FIFO between producers and the single processor.
// Producers never block beyond the push critical section.
type recordQueue struct {
	mu     sync.Mutex
	items  []logRecord
	head   int
	closed bool
	notify chan struct{} // Capacity 1, coalesces wakeups
}

func newRecordQueue() *recordQueue {
	return &recordQueue{
		items:  make([]logRecord, 0, 64),
		notify: make(chan struct{}, 1),
	}
}

// push appends a record and wakes the processor. Returns false once the queue is closed.
func (q *recordQueue) push(r logRecord) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, r)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default: // Wakeup already pending
	}
	return true
}

// pop removes the oldest record.
func (q *recordQueue) pop() (logRecord, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.head >= len(q.items) {
		return logRecord{}, false
	}
	r := q.items[q.head]
	q.items[q.head] = logRecord{}
	q.head++

	switch {
	case q.head == len(q.items):
		// Drained, reuse the backing array
		q.items = q.items[:0]
		q.head = 0
	case q.head >= compactThreshold && q.head*2 >= len(q.items):
		// Consumed prefix dominates under sustained load
		n := copy(q.items, q.items[q.head:])
		clear(q.items[n:])
		q.items = q.items[:n]
		q.head = 0
	}
	return r, true
}

func (q *recordQueue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items) - q.head
}

// closeAndTake rejects further pushes and returns whatever is still queued, oldest first.
func (q *recordQueue) closeAndTake() []logRecord {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	rest := make([]logRecord, len(q.items)-q.head)
	copy(rest, q.items[q.head:])
	q.items = q.items[:0]
	q.head = 0
	return rest
}

// reopen makes a closed queue usable again, discarding anything left over.
func (q *recordQueue) reopen() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = false
	clear(q.items)
	q.items = q.items[:0]
	q.head = 0

	select {
	case <-q.notify:
	default:
	}
}
