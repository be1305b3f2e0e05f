package dispatch

import (
	"context"
	"testing"
	"time"
)

func TestJobQueueFIFO(t *testing.T) {
	t.Parallel()

	q := newJobQueue()
	for i := range 3 {
		q.push(Job{SessionID: uint64(i + 1)})
	}
	if got := q.depth(); got != 3 {
		t.Fatalf("depth() = %d, want 3", got)
	}

	ctx := context.Background()
	for i := range 3 {
		job, err := q.pop(ctx)
		if err != nil {
			t.Fatalf("pop() error: %v", err)
		}
		if job.SessionID != uint64(i+1) {
			t.Errorf("pop() = session %d, want %d", job.SessionID, i+1)
		}
	}
	if got := q.depth(); got != 0 {
		t.Errorf("depth() = %d, want 0", got)
	}
}

func TestJobQueuePopBlocksUntilPush(t *testing.T) {
	t.Parallel()

	q := newJobQueue()
	got := make(chan Job, 1)
	go func() {
		job, err := q.pop(context.Background())
		if err == nil {
			got <- job
		}
	}()

	time.Sleep(20 * time.Millisecond)
	q.push(Job{SessionID: 9})

	select {
	case job := <-got:
		if job.SessionID != 9 {
			t.Errorf("pop() = session %d, want 9", job.SessionID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("pop() never woke up after push")
	}
}

func TestJobQueuePopHonoursContext(t *testing.T) {
	t.Parallel()

	q := newJobQueue()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := q.pop(ctx); err == nil {
		t.Fatal("pop() on empty queue returned without error after cancel")
	}
}
