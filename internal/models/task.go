package models

import "time"

// Task is a single to-do item, both the persisted row and the API shape.
// UpdatedAt stays nil until the first update, which serializes as JSON null.
type Task struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Completed bool       `json:"completed"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt *time.Time `json:"updatedAt"`
}

// CreateTaskRequest is the body of POST /todos.
type CreateTaskRequest struct {
	Title     string `json:"title"`
	Completed *bool  `json:"completed,omitempty"`
}

// UpdateTaskRequest is the body of PUT /todos/{id}. Pointer fields
// distinguish "not supplied" from a zero value, so a partial update
// touches only the fields that were sent.
type UpdateTaskRequest struct {
	Title     *string `json:"title,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
}
