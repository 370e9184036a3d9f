package models

import "time"

// BranchStatus represents the lifecycle state of a branch.
type BranchStatus string

const (
	// BranchActive indicates the branch is open for new tasks.
	BranchActive BranchStatus = "active"
	// BranchMerged indicates the branch's work was merged.
	BranchMerged BranchStatus = "merged"
	// BranchAbandoned indicates the branch was given up on.
	BranchAbandoned BranchStatus = "abandoned"
	// BranchCompleted indicates the branch's work finished without a merge.
	BranchCompleted BranchStatus = "completed"
)

// Valid returns true if the status is a known value.
func (s BranchStatus) Valid() bool {
	switch s {
	case BranchActive, BranchMerged, BranchAbandoned, BranchCompleted:
		return true
	default:
		return false
	}
}

// Branch groups a subset of an execution's tasks under a shared name.
// It carries no scheduling semantics; membership is bookkeeping only.
type Branch struct {
	// ID is the unique identifier for this branch.
	ID string `json:"id"`
	// ExecutionID is the execution this branch belongs to.
	ExecutionID string `json:"execution_id"`
	// Name is the human-readable branch name.
	Name string `json:"name"`
	// OriginPhase is the phase the branch was opened from.
	OriginPhase Phase `json:"origin_phase"`
	// Status is the lifecycle state of the branch.
	Status BranchStatus `json:"status"`
	// CreatedAt is when the branch was created.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is bumped on every mutation.
	UpdatedAt time.Time `json:"updated_at"`
}
