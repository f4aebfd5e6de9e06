package repository

import (
	"context"
	"sync"

	"github.com/iconidentify/socialscope/internal/domain"
)

// InMemoryTaskQueue implements TaskQueue with a FIFO slice. Tasks accepted by
// the API wait here until a worker picks them up; there is no cross-restart
// durability, matching the accepted-means-attempted contract.
type InMemoryTaskQueue struct {
	mu    sync.Mutex
	queue []*domain.Task
}

func NewInMemoryTaskQueue() *InMemoryTaskQueue {
	return &InMemoryTaskQueue{queue: make([]*domain.Task, 0)}
}

// Enqueue appends a task to the queue.
func (q *InMemoryTaskQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.queue = append(q.queue, task)
	return nil
}

// Dequeue pops the oldest task (FIFO).
func (q *InMemoryTaskQueue) Dequeue(ctx context.Context) (*domain.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.queue) == 0 {
		return nil, domain.ErrNoTasks
	}
	task := q.queue[0]
	q.queue = q.queue[1:]
	return task, nil
}

// Len reports how many tasks are waiting.
func (q *InMemoryTaskQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}
