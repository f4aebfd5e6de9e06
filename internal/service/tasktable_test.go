package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/iconidentify/socialscope/internal/config"
	"github.com/iconidentify/socialscope/internal/domain"
)

func TestTaskTable_Lifecycle(t *testing.T) {
	table := NewTaskTable(testTasksConfig())
	task := domain.NewTask("t1", domain.PlatformYouTube, "https://youtube.com/watch?v=1")

	table.PutRunning(task)
	entry, ok := table.Get("t1")
	if !ok || entry.Task.Status != domain.TaskStatusRunning {
		t.Fatalf("Get() = %+v, %v; want running entry", entry, ok)
	}

	doc := &domain.UnifiedDocument{TaskID: "t1", Status: "completed"}
	table.Complete("t1", doc)
	entry, _ = table.Get("t1")
	if entry.Task.Status != domain.TaskStatusCompleted {
		t.Errorf("Status = %s, want completed", entry.Task.Status)
	}
	if entry.Document != doc {
		t.Error("Complete() did not store the document")
	}
	// The caller's task struct is untouched; the table replaced the entry.
	if task.Status != domain.TaskStatusRunning {
		t.Error("Complete() mutated the caller's task")
	}
}

func TestTaskTable_Fail(t *testing.T) {
	table := NewTaskTable(testTasksConfig())
	table.PutRunning(domain.NewTask("t1", domain.PlatformReddit, "u"))

	table.Fail("t1", "download", "boom")
	entry, _ := table.Get("t1")
	if entry.Task.Status != domain.TaskStatusFailed {
		t.Errorf("Status = %s, want failed", entry.Task.Status)
	}
	if entry.Task.ErrorType != "download" || entry.Task.Error != "boom" {
		t.Errorf("error fields = %q/%q", entry.Task.ErrorType, entry.Task.Error)
	}
}

func TestTaskTable_UnknownIDNoops(t *testing.T) {
	table := NewTaskTable(testTasksConfig())
	table.Complete("ghost", &domain.UnifiedDocument{})
	table.Fail("ghost", "x", "y")
	if table.Len() != 0 {
		t.Errorf("Len() = %d, want 0", table.Len())
	}
}

func TestTaskTable_TTLExpiry(t *testing.T) {
	table := NewTaskTable(config.TasksConfig{TTL: time.Hour, MaxEntries: 10, SweepInterval: time.Minute})
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	table.now = func() time.Time { return now }

	table.PutRunning(domain.NewTask("t1", domain.PlatformYouTube, "u"))

	now = now.Add(2 * time.Hour)
	if _, ok := table.Get("t1"); ok {
		t.Error("Get() returned an expired entry")
	}

	table.sweep()
	if table.Len() != 0 {
		t.Errorf("Len() after sweep = %d, want 0", table.Len())
	}
}

func TestTaskTable_EvictsOldestWhenFull(t *testing.T) {
	table := NewTaskTable(config.TasksConfig{TTL: time.Hour, MaxEntries: 3, SweepInterval: time.Minute})
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	table.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		table.PutRunning(domain.NewTask(domain.TaskID(fmt.Sprintf("t%d", i)), domain.PlatformYouTube, "u"))
		now = now.Add(time.Minute)
	}
	table.PutRunning(domain.NewTask("t3", domain.PlatformYouTube, "u"))

	if table.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", table.Len())
	}
	if _, ok := table.Get("t0"); ok {
		t.Error("oldest entry survived eviction")
	}
	if _, ok := table.Get("t3"); !ok {
		t.Error("newest entry missing")
	}
}
