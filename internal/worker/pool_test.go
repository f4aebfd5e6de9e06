package worker

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockQueue implements repository.TaskQueue for testing.
type mockQueue struct {
	mu           sync.Mutex
	tasks        []*domain.Task
	dequeueErr   error
	dequeueCalls int
}

func (m *mockQueue) Enqueue(ctx context.Context, task *domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, task)
	return nil
}

func (m *mockQueue) Dequeue(ctx context.Context) (*domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dequeueCalls++
	if m.dequeueErr != nil {
		return nil, m.dequeueErr
	}
	if len(m.tasks) == 0 {
		return nil, domain.ErrNoTasks
	}
	task := m.tasks[0]
	m.tasks = m.tasks[1:]
	return task, nil
}

func (m *mockQueue) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dequeueCalls
}

func TestNewPool(t *testing.T) {
	pool := NewPool(config.WorkerConfig{
		Count:        3,
		PollInterval: 10 * time.Second,
	}, &mockQueue{}, nil, testLogger())

	if pool.workers != 3 {
		t.Errorf("workers = %d, want 3", pool.workers)
	}
	if pool.pollInterval != 10*time.Second {
		t.Errorf("pollInterval = %v, want 10s", pool.pollInterval)
	}
}

func TestNewPool_DefaultValues(t *testing.T) {
	pool := NewPool(config.WorkerConfig{}, &mockQueue{}, nil, testLogger())

	if pool.workers != 2 {
		t.Errorf("default workers = %d, want 2", pool.workers)
	}
	if pool.pollInterval != time.Second {
		t.Errorf("default pollInterval = %v, want 1s", pool.pollInterval)
	}
}

func TestPool_StartStop(t *testing.T) {
	queue := &mockQueue{dequeueErr: domain.ErrNoTasks}

	pool := NewPool(config.WorkerConfig{
		Count:        2,
		PollInterval: 10 * time.Millisecond,
	}, queue, nil, testLogger())

	pool.Start()
	time.Sleep(50 * time.Millisecond)

	if err := pool.Stop(2 * time.Second); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if queue.calls() == 0 {
		t.Error("expected at least one dequeue call")
	}
}

func TestPool_StopTimeout(t *testing.T) {
	pool := NewPool(config.WorkerConfig{
		Count:        1,
		PollInterval: 10 * time.Second,
	}, &mockQueue{dequeueErr: domain.ErrNoTasks}, nil, testLogger())

	// Simulate a stuck worker: cancel does nothing and the wait group never
	// drains.
	oldCancel := pool.cancel
	pool.cancel = func() {}
	pool.wg.Add(1)

	err := pool.Stop(50 * time.Millisecond)

	oldCancel()
	pool.wg.Done()

	if !errors.Is(err, ErrShutdownTimeout) {
		t.Errorf("Stop() error = %v, want ErrShutdownTimeout", err)
	}
}

func TestPool_DequeueError(t *testing.T) {
	queue := &mockQueue{dequeueErr: errors.New("queue broke")}

	pool := NewPool(config.WorkerConfig{
		Count:        1,
		PollInterval: 10 * time.Millisecond,
	}, queue, nil, testLogger())

	pool.Start()
	time.Sleep(50 * time.Millisecond)

	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if queue.calls() == 0 {
		t.Error("expected dequeue attempts despite errors")
	}
}
