// Package models defines the shared data types for the loom task graph.
package models

import "time"

// Phase represents the declared stage of a task, set once at spawn.
type Phase string

const (
	// PhaseInvestigation covers exploratory and research tasks.
	PhaseInvestigation Phase = "investigation"
	// PhaseBuilding covers implementation tasks.
	PhaseBuilding Phase = "building"
	// PhaseValidation covers testing and verification tasks.
	PhaseValidation Phase = "validation"
)

// Valid returns true if the phase is a known value.
func (p Phase) Valid() bool {
	switch p {
	case PhaseInvestigation, PhaseBuilding, PhaseValidation:
		return true
	default:
		return false
	}
}

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has not started.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusInProgress indicates the task is being worked on.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusBlocked indicates the task cannot proceed.
	TaskStatusBlocked TaskStatus = "blocked"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusFailed, TaskStatusBlocked:
		return true
	default:
		return false
	}
}

// Terminal returns true if the status no longer contributes to blocking.
func (s TaskStatus) Terminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed
}

// Task represents a dynamically spawned unit of work within an execution.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// ExecutionID is the parent execution that owns this task.
	ExecutionID string `json:"execution_id"`
	// BranchID is an optional grouping branch. Empty means ungrouped.
	BranchID string `json:"branch_id,omitempty"`
	// Phase is the declared stage of the task, immutable after creation.
	Phase Phase `json:"phase"`
	// Status is the current state of the task.
	Status TaskStatus `json:"status"`
	// SpawnedBy is the ID of the agent that spawned this task.
	SpawnedBy string `json:"spawned_by"`
	// Title is the short description of the task.
	Title string `json:"title"`
	// Description provides detailed information about the task.
	Description string `json:"description"`
	// Rationale explains why the task was spawned, if given.
	Rationale string `json:"rationale,omitempty"`
	// BlockedBy lists the IDs of tasks that block this one, when loaded.
	BlockedBy []string `json:"blocked_by,omitempty"`
	// CreatedAt is when the task was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is bumped on every mutation.
	UpdatedAt time.Time `json:"updated_at"`
}

// Dependency represents a directed edge: the blocker task must reach a
// terminal status before the blocked task is considered unblocked.
type Dependency struct {
	// BlockerID is the task that must finish first.
	BlockerID string `json:"blocker_id"`
	// BlockedID is the task waiting on the blocker.
	BlockedID string `json:"blocked_id"`
	// CreatedAt is when the edge was created.
	CreatedAt time.Time `json:"created_at"`
}
