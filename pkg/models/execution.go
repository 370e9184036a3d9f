package models

import "time"

// Execution is the parent unit of work that owns a set of dynamic tasks.
// Deleting an execution cascades to its tasks, edges, and branches.
type Execution struct {
	// ID is the unique identifier for this execution.
	ID string `json:"id"`
	// Name is the human-readable label for the execution.
	Name string `json:"name"`
	// CreatedAt is when the execution was created.
	CreatedAt time.Time `json:"created_at"`
}
