// Package branch manages the lifecycle of task-grouping branches.
// Branches are bookkeeping metadata over the task set; they own no
// scheduling semantics and never touch the dependency graph.
package branch

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/taskloom/loom/internal/errors"
	"github.com/taskloom/loom/internal/state"
	"github.com/taskloom/loom/pkg/models"
)

// Service owns branch create/merge/abandon/complete and task membership.
type Service struct {
	store state.GraphStore
}

// NewService creates a branch service over the given store.
func NewService(store state.GraphStore) *Service {
	return &Service{store: store}
}

// Create opens a new active branch in an execution.
func (s *Service) Create(executionID, name string, originPhase models.Phase) (*models.Branch, error) {
	if name == "" {
		return nil, apperrors.InvalidArgument("branch name must not be empty")
	}
	if !originPhase.Valid() {
		return nil, apperrors.InvalidArgument("invalid origin phase %q", originPhase)
	}

	execution, err := s.store.GetExecution(executionID)
	if err != nil {
		return nil, apperrors.Unavailable(err, "load execution %s", executionID)
	}
	if execution == nil {
		return nil, apperrors.NotFound("execution %s does not exist", executionID)
	}

	now := time.Now().UTC()
	branch := &models.Branch{
		ID:          uuid.NewString(),
		ExecutionID: executionID,
		Name:        name,
		OriginPhase: originPhase,
		Status:      models.BranchActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateBranch(branch); err != nil {
		return nil, apperrors.Unavailable(err, "create branch")
	}
	return branch, nil
}

// Get retrieves a branch.
func (s *Service) Get(id string) (*models.Branch, error) {
	branch, err := s.store.GetBranch(id)
	if err != nil {
		return nil, apperrors.Unavailable(err, "load branch %s", id)
	}
	if branch == nil {
		return nil, apperrors.NotFound("branch %s does not exist", id)
	}
	return branch, nil
}

// List lists an execution's branches, optionally filtered by status.
func (s *Service) List(executionID string, status *models.BranchStatus) ([]models.Branch, error) {
	branches, err := s.store.ListBranches(executionID, status)
	if err != nil {
		return nil, apperrors.Unavailable(err, "list branches for execution %s", executionID)
	}
	return branches, nil
}

// Merge transitions an active branch to merged.
func (s *Service) Merge(id string) (*models.Branch, error) {
	return s.transition(id, models.BranchMerged)
}

// Abandon transitions an active branch to abandoned.
func (s *Service) Abandon(id string) (*models.Branch, error) {
	return s.transition(id, models.BranchAbandoned)
}

// Complete transitions an active branch to completed.
func (s *Service) Complete(id string) (*models.Branch, error) {
	return s.transition(id, models.BranchCompleted)
}

// transition moves a branch out of the active state. Merged, abandoned,
// and completed are final; re-transitioning is a conflict.
func (s *Service) transition(id string, status models.BranchStatus) (*models.Branch, error) {
	branch, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if branch.Status != models.BranchActive {
		return nil, apperrors.Conflict("branch %s is %s, only active branches can transition", id, branch.Status)
	}

	now := time.Now().UTC()
	found, err := s.store.UpdateBranchStatus(id, status, now)
	if err != nil {
		return nil, apperrors.Unavailable(err, "update branch %s", id)
	}
	if !found {
		return nil, apperrors.NotFound("branch %s does not exist", id)
	}

	branch.Status = status
	branch.UpdatedAt = now
	return branch, nil
}

// AssignTask sets a task's branch reference. The task and branch must
// belong to the same execution. An empty branchID clears the reference.
func (s *Service) AssignTask(taskID, branchID string) error {
	task, err := s.store.GetTask(taskID)
	if err != nil {
		return apperrors.Unavailable(err, "load task %s", taskID)
	}
	if task == nil {
		return apperrors.NotFound("task %s does not exist", taskID)
	}

	if branchID != "" {
		branch, err := s.store.GetBranch(branchID)
		if err != nil {
			return apperrors.Unavailable(err, "load branch %s", branchID)
		}
		if branch == nil {
			return apperrors.NotFound("branch %s does not exist", branchID)
		}
		if branch.ExecutionID != task.ExecutionID {
			return apperrors.InvalidArgument("branch %s belongs to execution %s, task %s belongs to execution %s",
				branchID, branch.ExecutionID, taskID, task.ExecutionID)
		}
	}

	found, err := s.store.AssignTaskBranch(taskID, branchID, time.Now().UTC())
	if err != nil {
		return apperrors.Unavailable(err, "assign task %s to branch", taskID)
	}
	if !found {
		return apperrors.NotFound("task %s does not exist", taskID)
	}
	return nil
}

// Delete removes a branch. Member tasks keep existing; the store clears
// their branch reference.
func (s *Service) Delete(id string) error {
	branch, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.store.DeleteBranch(branch.ID); err != nil {
		return apperrors.Unavailable(err, "delete branch %s", id)
	}
	return nil
}
