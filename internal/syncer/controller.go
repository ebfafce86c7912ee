package syncer

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"
	"sync"

	"todo-sync/internal/models"
)

// API is the slice of the REST client the controller needs. *Client
// satisfies it; tests substitute scripted fakes.
type API interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, req models.CreateTaskRequest) (*models.Task, error)
	UpdateTask(ctx context.Context, id int64, req models.UpdateTaskRequest) (*models.Task, error)
	DeleteTask(ctx context.Context, id int64) error
}

// State is a point-in-time copy of the controller's view of the task list.
type State struct {
	Tasks   []models.Task
	Loading bool
	Err     string
}

// Controller mirrors the server's task list and keeps it consistent under
// optimistic local mutation. The server is always authoritative: every
// successful mutation reconciles against the returned task, every failed
// one rolls back to the snapshot taken when it started.
//
// Mutations carry a per-id sequence number. A response is applied only if
// no newer mutation for that id has been issued in the meantime; stale
// reconciliations and stale rollbacks are both discarded, so the newest
// local intent is never overwritten by an older in-flight call.
type Controller struct {
	mu      sync.Mutex
	api     API
	tasks   []models.Task
	loading bool
	err     string

	refreshGen uint64
	mutSeq     map[int64]uint64

	// onChange, when set, observes every state transition. It runs with
	// the controller lock held and must not call back into the controller.
	onChange func(State)
}

func NewController(api API) *Controller {
	return &Controller{
		api:    api,
		tasks:  []models.Task{},
		mutSeq: make(map[int64]uint64),
	}
}

// OnChange registers a state observer for UI layers.
func (c *Controller) OnChange(fn func(State)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onChange = fn
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

func (c *Controller) stateLocked() State {
	return State{
		Tasks:   slices.Clone(c.tasks),
		Loading: c.loading,
		Err:     c.err,
	}
}

func (c *Controller) notifyLocked() {
	if c.onChange != nil {
		c.onChange(c.stateLocked())
	}
}

func (c *Controller) indexLocked(id int64) int {
	for i := range c.tasks {
		if c.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// Refresh replaces the list wholesale from the server. On failure the stale
// list stays in place and only the error is surfaced. A refresh that was
// superseded by a newer one is discarded entirely.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.err = ""
	c.loading = true
	c.refreshGen++
	gen := c.refreshGen
	c.notifyLocked()
	c.mu.Unlock()

	tasks, err := c.api.ListTasks(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.refreshGen {
		return nil
	}

	c.loading = false
	if err != nil {
		c.err = err.Error()
		c.notifyLocked()
		return err
	}

	c.tasks = tasks
	c.notifyLocked()
	return nil
}

// Add creates a task on the server and prepends the confirmed result. There
// is no optimistic insert: the list changes only once the server has
// assigned the id and timestamp.
func (c *Controller) Add(ctx context.Context, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil
	}

	c.mu.Lock()
	c.err = ""
	c.notifyLocked()
	c.mu.Unlock()

	task, err := c.api.CreateTask(ctx, models.CreateTaskRequest{Title: title})

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.err = err.Error()
		c.notifyLocked()
		return err
	}

	c.tasks = append([]models.Task{*task}, c.tasks...)
	c.notifyLocked()
	return nil
}

// Update applies a partial update optimistically, sends the locally merged
// full view, and reconciles with the server's answer. Unknown local ids are
// a no-op.
func (c *Controller) Update(ctx context.Context, id int64, req models.UpdateTaskRequest) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}

	c.err = ""
	previous := slices.Clone(c.tasks)

	merged := c.tasks[idx]
	if req.Title != nil {
		merged.Title = *req.Title
	}
	if req.Completed != nil {
		merged.Completed = *req.Completed
	}
	c.tasks[idx] = merged

	c.mutSeq[id]++
	seq := c.mutSeq[id]
	c.notifyLocked()
	c.mu.Unlock()

	full := models.UpdateTaskRequest{Title: &merged.Title, Completed: &merged.Completed}
	task, err := c.api.UpdateTask(ctx, id, full)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.mutSeq[id] {
		// A newer mutation for this id is in charge now.
		return err
	}

	if err != nil {
		c.tasks = previous
		c.err = err.Error()
		c.notifyLocked()
		return err
	}

	if i := c.indexLocked(id); i >= 0 {
		c.tasks[i] = *task
	}
	c.notifyLocked()
	return nil
}

// Toggle flips completion based on the current local state.
func (c *Controller) Toggle(ctx context.Context, id int64) error {
	c.mu.Lock()
	idx := c.indexLocked(id)
	if idx < 0 {
		c.mu.Unlock()
		return nil
	}
	completed := !c.tasks[idx].Completed
	c.mu.Unlock()

	return c.Update(ctx, id, models.UpdateTaskRequest{Completed: &completed})
}

// Remove deletes optimistically. A 404 from the server counts as success:
// the row is gone either way, which is all local state cares about.
func (c *Controller) Remove(ctx context.Context, id int64) error {
	c.mu.Lock()
	c.err = ""
	previous := slices.Clone(c.tasks)

	kept := make([]models.Task, 0, len(c.tasks))
	for _, task := range c.tasks {
		if task.ID != id {
			kept = append(kept, task)
		}
	}
	c.tasks = kept

	c.mutSeq[id]++
	seq := c.mutSeq[id]
	c.notifyLocked()
	c.mu.Unlock()

	err := c.api.DeleteTask(ctx, id)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		err = nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.mutSeq[id] {
		return err
	}

	if err != nil {
		c.tasks = previous
		c.err = err.Error()
		c.notifyLocked()
		return err
	}

	c.notifyLocked()
	return nil
}
