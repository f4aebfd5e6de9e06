package service

import (
	"context"
	"sync"
	"time"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
)

// TaskEntry is one row in the in-memory status table: the task record plus,
// once completed, its unified document.
type TaskEntry struct {
	Task     *domain.Task
	Document *domain.UnifiedDocument
	touched  time.Time
}

// TaskTable is the in-memory source of truth for in-flight task status. It is
// bounded two ways so a long-running server cannot grow without limit:
// entries expire after a TTL, and when the table is full the oldest entry is
// evicted. Finished tasks remain readable from the document store after
// eviction.
type TaskTable struct {
	mu         sync.RWMutex
	entries    map[domain.TaskID]*TaskEntry
	ttl        time.Duration
	maxEntries int
	sweepEvery time.Duration
	now        func() time.Time
}

func NewTaskTable(cfg config.TasksConfig) *TaskTable {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10000
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = 10 * time.Minute
	}
	return &TaskTable{
		entries:    make(map[domain.TaskID]*TaskEntry),
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		sweepEvery: cfg.SweepInterval,
		now:        time.Now,
	}
}

// PutRunning records a freshly accepted task.
func (t *TaskTable) PutRunning(task *domain.Task) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.entries) >= t.maxEntries {
		t.evictOldestLocked()
	}
	t.entries[task.ID] = &TaskEntry{Task: task, touched: t.now()}
}

// Complete stores the finished document and flips the task to completed. The
// entry is replaced whole so readers never observe a half-updated row.
func (t *TaskTable) Complete(id domain.TaskID, doc *domain.UnifiedDocument) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return
	}
	task := *entry.Task
	task.MarkCompleted()
	t.entries[id] = &TaskEntry{Task: &task, Document: doc, touched: t.now()}
}

// Fail flips the task to failed with the error taxonomy fields.
func (t *TaskTable) Fail(id domain.TaskID, errType, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[id]
	if !ok {
		return
	}
	task := *entry.Task
	task.MarkFailed(errType, msg)
	t.entries[id] = &TaskEntry{Task: &task, touched: t.now()}
}

// Get returns the table entry for a task.
func (t *TaskTable) Get(id domain.TaskID) (*TaskEntry, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	entry, ok := t.entries[id]
	if !ok {
		return nil, false
	}
	if t.ttl > 0 && t.now().Sub(entry.touched) > t.ttl {
		return nil, false
	}
	return entry, true
}

// Len reports how many entries the table holds, expired ones included.
func (t *TaskTable) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.entries)
}

// Run sweeps expired entries until the context is cancelled.
func (t *TaskTable) Run(ctx context.Context) {
	ticker := time.NewTicker(t.sweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.sweep()
		}
	}
}

func (t *TaskTable) sweep() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.ttl <= 0 {
		return
	}
	cutoff := t.now().Add(-t.ttl)
	for id, entry := range t.entries {
		if entry.touched.Before(cutoff) {
			delete(t.entries, id)
		}
	}
}

func (t *TaskTable) evictOldestLocked() {
	var oldestID domain.TaskID
	var oldest time.Time
	for id, entry := range t.entries {
		if oldest.IsZero() || entry.touched.Before(oldest) {
			oldestID = id
			oldest = entry.touched
		}
	}
	if oldestID != "" {
		delete(t.entries, oldestID)
	}
}
