// Package state provides SQLite-based persistence for the loom task graph.
package state

import (
	"database/sql"
	"io"
	"time"

	"github.com/taskloom/loom/pkg/models"
)

// ExecutionStore handles execution-related persistence operations.
type ExecutionStore interface {
	CreateExecution(e *models.Execution) error
	GetExecution(id string) (*models.Execution, error)
	ListExecutions() ([]models.Execution, error)
	DeleteExecution(id string) error
}

// TaskStore handles task-related persistence operations.
type TaskStore interface {
	CreateTaskTx(tx *sql.Tx, t *models.Task) error
	GetTask(id string) (*models.Task, error)
	UpdateTaskStatus(id string, status models.TaskStatus, updatedAt time.Time) (bool, error)
	AssignTaskBranch(taskID, branchID string, updatedAt time.Time) (bool, error)
	ListTasks(executionID string, phase *models.Phase, status *models.TaskStatus) ([]*models.Task, error)
	ListTasksWithDependencies(executionID string) ([]*models.Task, error)
	FilterExistingTaskIDs(ids []string) (map[string]bool, error)
	GetTaskStatuses(ids []string) (map[string]models.TaskStatus, error)
}

// DependencyStore handles dependency-edge persistence operations.
type DependencyStore interface {
	InsertDependenciesTx(tx *sql.Tx, edges []models.Dependency) error
	ListDependencies(executionID string) ([]models.Dependency, error)
	CountDependencies(blockedID string) (int, error)
}

// BranchStore handles branch-related persistence operations.
type BranchStore interface {
	CreateBranch(b *models.Branch) error
	GetBranch(id string) (*models.Branch, error)
	UpdateBranchStatus(id string, status models.BranchStatus, updatedAt time.Time) (bool, error)
	ListBranches(executionID string, status *models.BranchStatus) ([]models.Branch, error)
	DeleteBranch(id string) error
}

// Migrator handles database schema migrations.
type Migrator interface {
	// Migrate applies all pending schema migrations.
	Migrate() error
}

// GraphStore defines the interface the engine and branch grouper work
// against. It composes focused sub-interfaces so callers can depend on
// exactly the slice of persistence they use.
type GraphStore interface {
	io.Closer
	Migrator
	ExecutionStore
	TaskStore
	DependencyStore
	BranchStore

	// Transaction runs fn inside a single store-level transaction,
	// rolling back everything fn did if it returns an error.
	Transaction(fn func(tx *sql.Tx) error) error
}

// Compile-time verification that DB implements all interfaces.
var (
	_ GraphStore      = (*DB)(nil)
	_ Migrator        = (*DB)(nil)
	_ ExecutionStore  = (*DB)(nil)
	_ TaskStore       = (*DB)(nil)
	_ DependencyStore = (*DB)(nil)
	_ BranchStore     = (*DB)(nil)
)
