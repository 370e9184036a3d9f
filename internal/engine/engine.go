// Package engine owns the task dependency graph: spawn, dependency
// bookkeeping, status transitions, and blocked-task derivation. It is a
// pure request/response component; the store is the only serialization
// point and every mutation is one transaction.
package engine

import (
	"database/sql"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskloom/loom/internal/errors"
	"github.com/taskloom/loom/internal/events"
	"github.com/taskloom/loom/internal/ordering"
	"github.com/taskloom/loom/internal/state"
	"github.com/taskloom/loom/pkg/models"
)

// Engine coordinates graph mutations and read projections over the store.
type Engine struct {
	store    state.GraphStore
	notifier *events.Notifier
	debug    *DebugLogger
}

// New creates an engine over the given store. The notifier may be nil,
// in which case notifications are skipped entirely.
func New(store state.GraphStore, notifier *events.Notifier) *Engine {
	return &Engine{
		store:    store,
		notifier: notifier,
		debug:    NopLogger(),
	}
}

// SetDebugLogger sets the debug logger. Passing nil restores the no-op.
func (e *Engine) SetDebugLogger(l *DebugLogger) {
	if l == nil {
		l = NopLogger()
	}
	e.debug = l
}

// SpawnRequest holds the parameters for creating a task.
type SpawnRequest struct {
	// Agent is the ID of the spawning agent. Required.
	Agent string
	// ExecutionID is the parent execution. Required, must exist.
	ExecutionID string
	// Phase is the task's declared stage.
	Phase models.Phase
	// Title is the short task description. Required.
	Title string
	// Description is the detailed task description. Required.
	Description string
	// Rationale is optional free text explaining why the task exists.
	Rationale string
	// BlockingTaskIDs lists tasks that must finish before this one.
	BlockingTaskIDs []string
}

// Spawn creates a task and its dependency edges in one transaction.
// Either the task and every edge exist afterward, or none of them do.
func (e *Engine) Spawn(req SpawnRequest) (*models.Task, error) {
	if req.Agent == "" {
		return nil, apperrors.InvalidArgument("spawning agent is required")
	}
	if !req.Phase.Valid() {
		return nil, apperrors.InvalidArgument("invalid phase %q", req.Phase)
	}
	if req.Title == "" {
		return nil, apperrors.InvalidArgument("title must not be empty")
	}
	if req.Description == "" {
		return nil, apperrors.InvalidArgument("description must not be empty")
	}

	execution, err := e.store.GetExecution(req.ExecutionID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "load execution %s", req.ExecutionID)
	}
	if execution == nil {
		return nil, apperrors.NotFound("execution %s does not exist", req.ExecutionID)
	}

	now := time.Now().UTC()
	task := &models.Task{
		ID:          uuid.NewString(),
		ExecutionID: req.ExecutionID,
		Phase:       req.Phase,
		Status:      models.TaskStatusPending,
		SpawnedBy:   req.Agent,
		Title:       req.Title,
		Description: req.Description,
		Rationale:   req.Rationale,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	// Dependency validation runs before the transaction opens so a bad
	// request never touches the write path.
	if err := e.validateBlockingIDs(task.ID, req.BlockingTaskIDs); err != nil {
		return nil, err
	}

	err = e.store.Transaction(func(tx *sql.Tx) error {
		if err := e.store.CreateTaskTx(tx, task); err != nil {
			return err
		}
		return e.insertDependencies(tx, task.ID, req.BlockingTaskIDs, now)
	})
	if err != nil {
		if apperrors.IsConflict(err) || apperrors.IsInvalidArgument(err) {
			return nil, err
		}
		if state.IsUniqueViolation(err) {
			return nil, apperrors.Wrap(apperrors.CodeConflict, err, "concurrent write collision spawning task")
		}
		return nil, apperrors.Unavailable(err, "spawn task")
	}

	task.BlockedBy = append([]string(nil), req.BlockingTaskIDs...)
	e.debug.Log("[engine.Spawn] task %s spawned in execution %s with %d blockers", task.ID, task.ExecutionID, len(req.BlockingTaskIDs))
	e.notify(events.EventTaskSpawned, task)

	return task, nil
}

// UpdateStatus persists a new status for a task. No validation is
// performed against the dependency graph: blocked detection happens on
// read, keeping this write O(1).
func (e *Engine) UpdateStatus(taskID string, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, apperrors.InvalidArgument("invalid status %q", status)
	}

	task, err := e.store.GetTask(taskID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "load task %s", taskID)
	}
	if task == nil {
		return nil, apperrors.NotFound("task %s does not exist", taskID)
	}

	now := time.Now().UTC()
	found, err := e.store.UpdateTaskStatus(taskID, status, now)
	if err != nil {
		return nil, apperrors.Unavailable(err, "update task %s", taskID)
	}
	if !found {
		return nil, apperrors.NotFound("task %s does not exist", taskID)
	}

	task.Status = status
	task.UpdatedAt = now
	e.debug.Log("[engine.UpdateStatus] task %s -> %s", taskID, status)
	e.notify(events.EventTaskStatusUpdated, task)

	return task, nil
}

// GetTask retrieves a single task.
func (e *Engine) GetTask(taskID string) (*models.Task, error) {
	task, err := e.store.GetTask(taskID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "load task %s", taskID)
	}
	if task == nil {
		return nil, apperrors.NotFound("task %s does not exist", taskID)
	}
	return task, nil
}

// ListTasks lists an execution's tasks, optionally filtered by phase and
// status. With withDeps, each task's BlockedBy is populated.
func (e *Engine) ListTasks(executionID string, phase *models.Phase, status *models.TaskStatus, withDeps bool) ([]*models.Task, error) {
	if !withDeps {
		tasks, err := e.store.ListTasks(executionID, phase, status)
		if err != nil {
			return nil, apperrors.Unavailable(err, "list tasks for execution %s", executionID)
		}
		return tasks, nil
	}

	tasks, err := e.store.ListTasksWithDependencies(executionID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "list tasks for execution %s", executionID)
	}
	if phase == nil && status == nil {
		return tasks, nil
	}
	filtered := tasks[:0]
	for _, t := range tasks {
		if phase != nil && t.Phase != *phase {
			continue
		}
		if status != nil && t.Status != *status {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

// GetBlockedTasks returns every blocked task in an execution: tasks whose
// status is explicitly blocked, and pending tasks with at least one
// non-terminal blocker. Exactly two store queries regardless of task
// count: one loads the tasks with their edges, one resolves the blocker
// statuses for all pending tasks at once.
func (e *Engine) GetBlockedTasks(executionID string) ([]*models.Task, error) {
	tasks, err := e.store.ListTasksWithDependencies(executionID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "list tasks for execution %s", executionID)
	}

	var blockerIDs []string
	seen := make(map[string]bool)
	for _, t := range tasks {
		if t.Status != models.TaskStatusPending {
			continue
		}
		for _, id := range t.BlockedBy {
			if !seen[id] {
				seen[id] = true
				blockerIDs = append(blockerIDs, id)
			}
		}
	}

	statuses, err := e.store.GetTaskStatuses(blockerIDs)
	if err != nil {
		return nil, apperrors.Unavailable(err, "resolve blocker statuses")
	}

	var blocked []*models.Task
	for _, t := range tasks {
		switch {
		case t.Status == models.TaskStatusBlocked:
			blocked = append(blocked, t)
		case t.Status == models.TaskStatusPending:
			for _, id := range t.BlockedBy {
				if status, ok := statuses[id]; ok && !status.Terminal() {
					blocked = append(blocked, t)
					break
				}
			}
		}
	}

	e.debug.Log("[engine.GetBlockedTasks] execution %s: %d of %d tasks blocked", executionID, len(blocked), len(tasks))
	return blocked, nil
}

// OptimizeOrdering returns the execution's tasks in a priority-aware,
// dependency-respecting order computed over a snapshot of the graph.
func (e *Engine) OptimizeOrdering(executionID string) ([]*models.Task, error) {
	tasks, err := e.store.ListTasks(executionID, nil, nil)
	if err != nil {
		return nil, apperrors.Unavailable(err, "list tasks for execution %s", executionID)
	}
	edges, err := e.store.ListDependencies(executionID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "list dependencies for execution %s", executionID)
	}
	return ordering.Order(tasks, edges), nil
}

// CreateExecution creates a new execution.
func (e *Engine) CreateExecution(name string) (*models.Execution, error) {
	if name == "" {
		return nil, apperrors.InvalidArgument("execution name must not be empty")
	}
	execution := &models.Execution{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
	}
	if err := e.store.CreateExecution(execution); err != nil {
		return nil, apperrors.Unavailable(err, "create execution")
	}
	return execution, nil
}

// GetExecution retrieves an execution.
func (e *Engine) GetExecution(id string) (*models.Execution, error) {
	execution, err := e.store.GetExecution(id)
	if err != nil {
		return nil, apperrors.Unavailable(err, "load execution %s", id)
	}
	if execution == nil {
		return nil, apperrors.NotFound("execution %s does not exist", id)
	}
	return execution, nil
}

// notify emits a best-effort event. Delivery problems are absorbed by the
// notifier; a successful mutation is never reported as failed.
func (e *Engine) notify(eventType events.EventType, task *models.Task) {
	if e.notifier == nil {
		return
	}
	e.notifier.Publish(events.TaskEvent{
		Type:        eventType,
		TaskID:      task.ID,
		ExecutionID: task.ExecutionID,
		Phase:       task.Phase,
		Title:       task.Title,
		Status:      task.Status,
		AgentID:     task.SpawnedBy,
		Timestamp:   time.Now().UTC(),
	})
}
