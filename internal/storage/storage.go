package storage

import (
	"context"
	"errors"

	"todo-sync/internal/models"
)

// Store errors translated by the HTTP boundary. Anything else coming out of
// a Storage method is a storage failure.
var (
	ErrNotFound   = errors.New("task not found")
	ErrEmptyTitle = errors.New("title must not be empty")
)

// Storage is the persistence contract for tasks. The SQLite implementation
// is the only durable one; tests may substitute their own.
type Storage interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	GetTask(ctx context.Context, id int64) (*models.Task, error)
	CreateTask(ctx context.Context, title string, completed bool) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	Close() error
}
