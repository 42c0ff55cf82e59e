package session

import "sync"

var ready = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// keyedQueue orders work sharing a key by the order enter was called.
// Work under different keys runs in parallel.
type keyedQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newKeyedQueue() *keyedQueue {
	return &keyedQueue{tails: make(map[string]chan struct{})}
}

// enter reserves the next slot for key. The caller receives from turn before
// running and calls leave when done. An empty key is never queued.
func (q *keyedQueue) enter(key string) (turn <-chan struct{}, leave func()) {
	if key == "" {
		return ready, func() {}
	}

	mine := make(chan struct{})
	q.mu.Lock()
	prev, ok := q.tails[key]
	q.tails[key] = mine
	q.mu.Unlock()
	if !ok {
		prev = ready
	}

	return prev, func() {
		close(mine)
		q.mu.Lock()
		if q.tails[key] == mine {
			delete(q.tails, key)
		}
		q.mu.Unlock()
	}
}

// busy returns the number of keys with queued or running work.
func (q *keyedQueue) busy() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tails)
}
