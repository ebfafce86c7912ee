package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"todo-sync/internal/logger"
	"todo-sync/internal/models"
	"todo-sync/internal/storage"

	"github.com/go-chi/chi/v5"
)

func listTodosHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := st.ListTasks(r.Context())
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
	}
}

func createTodoHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		defer r.Body.Close()

		completed := false
		if req.Completed != nil {
			completed = *req.Completed
		}

		task, err := st.CreateTask(r.Context(), req.Title, completed)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, task)
	}
}

func updateTodoHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		var req models.UpdateTaskRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		defer r.Body.Close()

		task, err := st.UpdateTask(r.Context(), id, req)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	}
}

func deleteTodoHandler(st storage.Storage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseID(w, r)
		if !ok {
			return
		}

		removed, err := st.DeleteTask(r.Context(), id)
		if err != nil {
			handleStoreError(w, r, err)
			return
		}
		if !removed {
			writeError(w, http.StatusNotFound, "task not found")
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// parseID validates the {id} route parameter: base-10 integer, > 0.
func parseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

// handleStoreError translates store errors into HTTP responses. Storage
// failures are logged with detail but answered with a generic message.
func handleStoreError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, storage.ErrEmptyTitle):
		writeError(w, http.StatusBadRequest, "title must not be empty")
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "task not found")
	default:
		logger.Error(r.Context(), err, "storage failure",
			"method", r.Method,
			"path", r.URL.Path,
			"requestID", requestIDFrom(r.Context()),
		)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error(context.Background(), err, "encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}
