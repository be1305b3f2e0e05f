package dispatch

import (
	"context"
	"sync"
)

// jobQueue is an unbounded FIFO. push never blocks; pop blocks until a
// job is available or ctx is done.
type jobQueue struct {
	mu     sync.Mutex
	items  []Job
	notify chan struct{}
}

func newJobQueue() *jobQueue {
	return &jobQueue{notify: make(chan struct{}, 1)}
}

func (q *jobQueue) push(job Job) {
	q.mu.Lock()
	q.items = append(q.items, job)
	q.mu.Unlock()

	select {
	case q.notify <- struct{}{}:
	default:
	}
}

func (q *jobQueue) pop(ctx context.Context) (Job, error) {
	for {
		q.mu.Lock()
		if len(q.items) > 0 {
			job := q.items[0]
			q.items[0] = Job{}
			q.items = q.items[1:]
			q.mu.Unlock()
			return job, nil
		}
		q.mu.Unlock()

		select {
		case <-q.notify:
		case <-ctx.Done():
			return Job{}, ctx.Err()
		}
	}
}

func (q *jobQueue) depth() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
