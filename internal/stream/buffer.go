package stream

import (
	"sync"

	"github.com/paylens/bookkeeper/internal/model"
)

// txQueue is an unbounded FIFO handoff between the feed goroutine and one
// shard worker. It starts at a fixed capacity and doubles whenever full, so
// a slow shard never blocks the feed.
type txQueue struct {
	mu   sync.Mutex
	cond *sync.Cond

	buf      []model.Transaction
	head     int
	tail     int
	count    int
	capacity int
	closed   bool

	grows int
}

func newTxQueue(capacity int) *txQueue {
	if capacity < 1 {
		capacity = 1
	}
	q := &txQueue{
		buf:      make([]model.Transaction, capacity),
		capacity: capacity,
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// Send enqueues a transaction, growing the queue if needed.
// Returns false once the queue is closed.
func (q *txQueue) Send(tx model.Transaction) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return false
	}
	if q.count == q.capacity {
		q.grow()
	}

	q.buf[q.tail] = tx
	q.tail = (q.tail + 1) % q.capacity
	q.count++

	q.cond.Signal()
	return true
}

// Receive dequeues the oldest transaction, blocking until one is available.
// After Close, remaining items are drained first, then ok is false.
func (q *txQueue) Receive() (model.Transaction, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.count == 0 && !q.closed {
		q.cond.Wait()
	}
	if q.count == 0 {
		return model.Transaction{}, false
	}

	tx := q.buf[q.head]
	q.buf[q.head] = model.Transaction{}
	q.head = (q.head + 1) % q.capacity
	q.count--
	return tx, true
}

// Close stops further sends and wakes all blocked receivers.
func (q *txQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = true
	q.cond.Broadcast()
}

// Len returns the number of queued transactions.
func (q *txQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.count
}

// grow doubles capacity. Caller holds the lock.
func (q *txQueue) grow() {
	newBuf := make([]model.Transaction, q.capacity*2)
	if q.count > 0 {
		if q.head < q.tail {
			copy(newBuf, q.buf[q.head:q.tail])
		} else {
			n := copy(newBuf, q.buf[q.head:])
			copy(newBuf[n:], q.buf[:q.tail])
		}
	}
	q.buf = newBuf
	q.head = 0
	q.tail = q.count
	q.capacity *= 2
	q.grows++
}
