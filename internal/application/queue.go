package application

import "sync"

// Queue is the ordered hand-off between background goroutines and the
// single UI loop. Push never blocks and preserves enqueue order; Drain
// hands back everything queued and is meant to be called from a fixed UI
// tick. After Close, further pushes are silently dropped, which is how
// in-flight workers are cut off once the UI is gone.
type Queue struct {
	mu     sync.Mutex
	msgs   []Message
	closed bool
}

func NewQueue() *Queue {
	return &Queue{}
}

func (q *Queue) Push(m Message) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.msgs = append(q.msgs, m)
}

// Drain returns all currently queued messages in enqueue order and empties
// the queue. It never blocks waiting for more.
func (q *Queue) Drain() []Message {
	q.mu.Lock()
	defer q.mu.Unlock()
	msgs := q.msgs
	q.msgs = nil
	return msgs
}

func (q *Queue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.msgs = nil
}
