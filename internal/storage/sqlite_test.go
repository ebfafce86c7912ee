package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"todo-sync/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "todo.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestCreateTask(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "  Buy milk  ", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if task.Title != "Buy milk" {
		t.Errorf("expected trimmed title %q, got %q", "Buy milk", task.Title)
	}
	if task.Completed {
		t.Error("expected completed=false by default")
	}
	if task.UpdatedAt != nil {
		t.Errorf("expected nil UpdatedAt on creation, got %v", task.UpdatedAt)
	}
	if task.CreatedAt.IsZero() {
		t.Error("expected CreatedAt to be set")
	}

	second, err := s.CreateTask(ctx, "Second", true)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if second.ID <= task.ID {
		t.Errorf("ids must be strictly increasing: %d then %d", task.ID, second.ID)
	}
	if !second.Completed {
		t.Error("expected completed=true when requested")
	}
}

func TestCreateTaskEmptyTitle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	for _, title := range []string{"", "   ", "\t\n"} {
		if _, err := s.CreateTask(ctx, title, false); !errors.Is(err, ErrEmptyTitle) {
			t.Errorf("CreateTask(%q): expected ErrEmptyTitle, got %v", title, err)
		}
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "Buy milk", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	completed := true
	updated, err := s.UpdateTask(ctx, task.ID, models.UpdateTaskRequest{Completed: &completed})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	if !updated.Completed {
		t.Error("expected completed=true after update")
	}
	if updated.Title != "Buy milk" {
		t.Errorf("title must be unchanged, got %q", updated.Title)
	}
	if !updated.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("createdAt must be unchanged: %v vs %v", updated.CreatedAt, task.CreatedAt)
	}
	if updated.UpdatedAt == nil {
		t.Fatal("expected UpdatedAt to be set after update")
	}

	title := "Buy oat milk"
	renamed, err := s.UpdateTask(ctx, task.ID, models.UpdateTaskRequest{Title: &title})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if renamed.Title != "Buy oat milk" {
		t.Errorf("expected new title, got %q", renamed.Title)
	}
	if !renamed.Completed {
		t.Error("completed must survive a title-only update")
	}
}

func TestUpdateTaskNoFieldsRefreshesUpdatedAt(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "Buy milk", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	first, err := s.UpdateTask(ctx, task.ID, models.UpdateTaskRequest{})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if first.UpdatedAt == nil {
		t.Fatal("an empty update must still refresh updated_at")
	}

	time.Sleep(5 * time.Millisecond)

	second, err := s.UpdateTask(ctx, task.ID, models.UpdateTaskRequest{})
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if !second.UpdatedAt.After(*first.UpdatedAt) {
		t.Errorf("updated_at must move forward: %v then %v", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestUpdateTaskEmptyTitle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "Buy milk", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	empty := "   "
	if _, err := s.UpdateTask(ctx, task.ID, models.UpdateTaskRequest{Title: &empty}); !errors.Is(err, ErrEmptyTitle) {
		t.Errorf("expected ErrEmptyTitle, got %v", err)
	}

	got, err := s.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Title != "Buy milk" {
		t.Errorf("title must be unchanged after rejected update, got %q", got.Title)
	}
}

func TestUpdateTaskNotFound(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	completed := true
	if _, err := s.UpdateTask(ctx, 9999, models.UpdateTaskRequest{Completed: &completed}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("update of a missing id must not create a row, got %d rows", len(tasks))
	}
}

func TestUpdateTaskAfterDelete(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "Buy milk", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if _, err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	// The update must see the deletion, not answer with a phantom task.
	completed := true
	if _, err := s.UpdateTask(ctx, task.ID, models.UpdateTaskRequest{Completed: &completed}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for a deleted row, got %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	task, err := s.CreateTask(ctx, "Buy milk", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	removed, err := s.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if !removed {
		t.Error("expected removed=true for an existing task")
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	for _, got := range tasks {
		if got.ID == task.ID {
			t.Errorf("deleted id %d still listed", task.ID)
		}
	}

	removed, err = s.DeleteTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if removed {
		t.Error("second delete of the same id must report false")
	}
}

func TestListTasksOrdering(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		if _, err := s.CreateTask(ctx, title, false); err != nil {
			t.Fatalf("CreateTask(%q): %v", title, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(tasks))
	}

	// Most recent first.
	if tasks[0].Title != "third" || tasks[2].Title != "first" {
		t.Errorf("unexpected order: %q, %q, %q", tasks[0].Title, tasks[1].Title, tasks[2].Title)
	}
	for i := 1; i < len(tasks); i++ {
		if tasks[i].ID >= tasks[i-1].ID {
			t.Errorf("ids must descend: %d before %d", tasks[i-1].ID, tasks[i].ID)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, "Buy milk", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	tasks, err := s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) == 0 || tasks[0].ID != created.ID {
		t.Fatal("created task must appear at the front of the list")
	}

	title := "Buy oat milk"
	if _, err := s.UpdateTask(ctx, created.ID, models.UpdateTaskRequest{Title: &title}); err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}

	tasks, err = s.ListTasks(ctx)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if tasks[0].Title != "Buy oat milk" {
		t.Errorf("expected renamed title in list, got %q", tasks[0].Title)
	}
	if tasks[0].UpdatedAt == nil {
		t.Error("expected refreshed updatedAt in list")
	}
}

func TestCreateTaskMetrics(t *testing.T) {
	originalOpsCount := taskOpsCount
	originalTitleLength := taskTitleLength

	registry := prometheus.NewRegistry()

	testOpsCount := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "todosync_store_operations_total",
			Help: "Test counter",
		},
		[]string{"op", "status"},
	)
	testTitleLength := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "todosync_task_title_length_bytes",
			Help:    "Test histogram",
			Buckets: []float64{10, 50, 100, 500, 1000},
		},
	)

	registry.MustRegister(testOpsCount)
	registry.MustRegister(testTitleLength)

	taskOpsCount = testOpsCount
	taskTitleLength = testTitleLength
	defer func() {
		taskOpsCount = originalOpsCount
		taskTitleLength = originalTitleLength
	}()

	s := newTestStorage(t)
	ctx := context.Background()

	created, err := s.CreateTask(ctx, "Valid title", false)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if successCount := testutil.ToFloat64(testOpsCount.WithLabelValues("create", "success")); successCount != 1 {
		t.Errorf("expected 1 success, got %v", successCount)
	}

	if _, err := s.GetTask(ctx, created.ID); err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if getCount := testutil.ToFloat64(testOpsCount.WithLabelValues("get", "success")); getCount != 1 {
		t.Errorf("expected 1 get success, got %v", getCount)
	}

	if _, err := s.GetTask(ctx, 9999); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if getErrCount := testutil.ToFloat64(testOpsCount.WithLabelValues("get", "error")); getErrCount != 1 {
		t.Errorf("expected 1 get error, got %v", getErrCount)
	}

	if _, err := s.CreateTask(ctx, "", false); err == nil {
		t.Error("expected error for empty title")
	}

	if errCount := testutil.ToFloat64(testOpsCount.WithLabelValues("create", "error")); errCount != 1 {
		t.Errorf("expected 1 error, got %v", errCount)
	}

	metrics, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	foundHistogram := false
	for _, mf := range metrics {
		if mf.GetName() == "todosync_task_title_length_bytes" {
			foundHistogram = true
			if len(mf.GetMetric()) == 0 {
				t.Error("histogram has no samples")
			}
			break
		}
	}
	if !foundHistogram {
		t.Error("title length histogram not found")
	}
}
