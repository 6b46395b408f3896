package dictation

import (
	"context"
	"sync"
	"time"
)

// Queue is an unbounded FIFO of recognized phrases. Push never blocks;
// Pop waits up to a timeout for an item.
type Queue struct {
	mu    sync.Mutex
	items []string
	ready chan struct{}
}

func NewQueue() *Queue {
	return &Queue{ready: make(chan struct{}, 1)}
}

func (q *Queue) Push(text string) int {
	q.mu.Lock()
	q.items = append(q.items, text)
	n := len(q.items)
	q.mu.Unlock()
	select {
	case q.ready <- struct{}{}:
	default:
	}
	return n
}

func (q *Queue) tryPop() (string, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return "", false
	}
	text := q.items[0]
	q.items[0] = ""
	q.items = q.items[1:]
	if len(q.items) > 0 {
		// keep the signal armed for the next Pop
		select {
		case q.ready <- struct{}{}:
		default:
		}
	}
	return text, true
}

// Pop returns the oldest item, or false once wait elapses or ctx ends.
func (q *Queue) Pop(ctx context.Context, wait time.Duration) (string, bool) {
	if text, ok := q.tryPop(); ok {
		return text, true
	}
	t := time.NewTimer(wait)
	defer t.Stop()
	for {
		select {
		case <-q.ready:
			if text, ok := q.tryPop(); ok {
				return text, true
			}
		case <-t.C:
			return q.tryPop()
		case <-ctx.Done():
			return "", false
		}
	}
}

func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
