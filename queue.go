package ttldict

import "time"

// queueCompactMin is the number of consumed head slots below which the
// queue never bothers moving its live records to the front of the slice.
const queueCompactMin = 64

// record is one scheduled expiration. seq identifies the write that
// enqueued it; only a record whose seq still matches the stored entry may
// delete that entry.
type record[K comparable, V any] struct {
	exp time.Time
	seq uint64
	key K
	cb  Callback[K, V]
}

// expiryQueue is a FIFO of records. Records are pushed in write order,
// which equals expiration order as long as every write uses the same ttl.
type expiryQueue[K comparable, V any] struct {
	recs []record[K, V]
	head int
}

func (q *expiryQueue[K, V]) push(r record[K, V]) {
	q.recs = append(q.recs, r)
}

func (q *expiryQueue[K, V]) peek() (r record[K, V], ok bool) {
	if q.head >= len(q.recs) {
		return
	}
	return q.recs[q.head], true
}

func (q *expiryQueue[K, V]) pop() {
	if q.head >= len(q.recs) {
		return
	}

	// drop references so popped keys, values and callbacks can be collected
	q.recs[q.head] = record[K, V]{}
	q.head++

	switch {
	case q.head == len(q.recs):
		q.recs = q.recs[:0]
		q.head = 0
	case q.head >= queueCompactMin && q.head*2 >= len(q.recs):
		n := copy(q.recs, q.recs[q.head:])
		clear(q.recs[n:])
		q.recs = q.recs[:n]
		q.head = 0
	}
}

func (q *expiryQueue[K, V]) len() int {
	return len(q.recs) - q.head
}

func (q *expiryQueue[K, V]) reset() {
	q.recs = nil
	q.head = 0
}
