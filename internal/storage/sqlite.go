package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"todo-sync/internal/logger"
	"todo-sync/internal/models"

	_ "modernc.org/sqlite"
)

// SQLiteStorage owns the database handle. It is constructed explicitly and
// passed to whoever needs it; there is no package-level connection.
type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info(context.Background(), "SQLite storage initialized", "path", dbPath)
	return &SQLiteStorage{db: db}, nil
}

func createTables(db *sql.DB) error {
	createTodosTable := `
	CREATE TABLE IF NOT EXISTS todos (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		completed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at DATETIME NOT NULL,
		updated_at DATETIME
	)`

	if _, err := db.Exec(createTodosTable); err != nil {
		return fmt.Errorf("create todos table: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

const taskColumns = "id, title, completed, created_at, updated_at"

// ListTasks returns all tasks, most recent first. Ties on created_at break
// by id so the order is stable for rows inserted in the same instant.
func (s *SQLiteStorage) ListTasks(ctx context.Context) ([]models.Task, error) {
	startTime := time.Now()
	defer func() {
		taskOpDuration.WithLabelValues("list").Observe(time.Since(startTime).Seconds())
	}()

	query := "SELECT " + taskColumns + " FROM todos ORDER BY created_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		taskOpsCount.WithLabelValues("list", "error").Inc()
		return nil, err
	}
	defer rows.Close()

	tasks, err := scanTasks(rows)
	if err != nil {
		taskOpsCount.WithLabelValues("list", "error").Inc()
		return nil, err
	}

	taskOpsCount.WithLabelValues("list", "success").Inc()
	return tasks, nil
}

func (s *SQLiteStorage) GetTask(ctx context.Context, id int64) (*models.Task, error) {
	startTime := time.Now()
	defer func() {
		taskOpDuration.WithLabelValues("get").Observe(time.Since(startTime).Seconds())
	}()

	query := "SELECT " + taskColumns + " FROM todos WHERE id = ?"

	task, err := scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		taskOpsCount.WithLabelValues("get", "error").Inc()
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	taskOpsCount.WithLabelValues("get", "success").Inc()
	return task, nil
}

// CreateTask trims the title, rejects an empty result, and stores the row.
// The created task is returned in full; updated_at starts out null.
func (s *SQLiteStorage) CreateTask(ctx context.Context, title string, completed bool) (*models.Task, error) {
	startTime := time.Now()
	defer func() {
		taskOpDuration.WithLabelValues("create").Observe(time.Since(startTime).Seconds())
	}()

	title = strings.TrimSpace(title)
	if title == "" {
		taskOpsCount.WithLabelValues("create", "error").Inc()
		return nil, ErrEmptyTitle
	}

	now := time.Now().UTC()
	query := "INSERT INTO todos (title, completed, created_at) VALUES (?, ?, ?)"

	result, err := s.db.ExecContext(ctx, query, title, completed, now)
	if err != nil {
		taskOpsCount.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		taskOpsCount.WithLabelValues("create", "error").Inc()
		return nil, err
	}

	taskOpsCount.WithLabelValues("create", "success").Inc()
	taskTitleLength.Observe(float64(len(title)))

	return &models.Task{
		ID:        id,
		Title:     title,
		Completed: completed,
		CreatedAt: now,
	}, nil
}

// UpdateTask applies only the supplied fields in a single statement, so a
// row deleted by a concurrent request can never produce a phantom
// post-update result. updated_at refreshes on every call, including one
// with no fields; callers depend on that.
func (s *SQLiteStorage) UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (*models.Task, error) {
	startTime := time.Now()
	defer func() {
		taskOpDuration.WithLabelValues("update").Observe(time.Since(startTime).Seconds())
	}()

	var title interface{}
	if req.Title != nil {
		trimmed := strings.TrimSpace(*req.Title)
		if trimmed == "" {
			taskOpsCount.WithLabelValues("update", "error").Inc()
			return nil, ErrEmptyTitle
		}
		title = trimmed
	}

	var completed interface{}
	if req.Completed != nil {
		completed = *req.Completed
	}

	query := `UPDATE todos
	SET title = COALESCE(?, title), completed = COALESCE(?, completed), updated_at = ?
	WHERE id = ?
	RETURNING ` + taskColumns

	task, err := scanTask(s.db.QueryRowContext(ctx, query, title, completed, time.Now().UTC(), id))
	if err != nil {
		taskOpsCount.WithLabelValues("update", "error").Inc()
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, err
	}

	taskOpsCount.WithLabelValues("update", "success").Inc()
	return task, nil
}

// DeleteTask reports whether a row was removed. Absence is not an error.
func (s *SQLiteStorage) DeleteTask(ctx context.Context, id int64) (bool, error) {
	startTime := time.Now()
	defer func() {
		taskOpDuration.WithLabelValues("delete").Observe(time.Since(startTime).Seconds())
	}()

	result, err := s.db.ExecContext(ctx, "DELETE FROM todos WHERE id = ?", id)
	if err != nil {
		taskOpsCount.WithLabelValues("delete", "error").Inc()
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		taskOpsCount.WithLabelValues("delete", "error").Inc()
		return false, err
	}

	taskOpsCount.WithLabelValues("delete", "success").Inc()
	return rowsAffected > 0, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	var task models.Task
	var updatedAt sql.NullTime

	err := row.Scan(&task.ID, &task.Title, &task.Completed, &task.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	if updatedAt.Valid {
		t := updatedAt.Time
		task.UpdatedAt = &t
	}

	return &task, nil
}

func scanTasks(rows *sql.Rows) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}
