// Package events provides best-effort task notifications. Delivery never
// blocks and never fails the operation that produced the event.
package events

import (
	"time"

	"github.com/taskloom/loom/pkg/models"
)

// EventType represents the type of task event.
type EventType string

const (
	// EventTaskSpawned indicates a new task was created.
	EventTaskSpawned EventType = "task_spawned"
	// EventTaskStatusUpdated indicates a task's status changed.
	EventTaskStatusUpdated EventType = "task_status_updated"
)

// TaskEvent is the structured notification emitted on spawn and on
// status change, broadcast to listeners keyed by execution ID.
type TaskEvent struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the task the event refers to.
	TaskID string
	// ExecutionID keys the broadcast.
	ExecutionID string
	// Phase is the task's phase.
	Phase models.Phase
	// Title is the task's title.
	Title string
	// Status is the task's status after the operation.
	Status models.TaskStatus
	// AgentID is the agent that spawned the task, if known.
	AgentID string
	// Timestamp is when the event was emitted.
	Timestamp time.Time
}
