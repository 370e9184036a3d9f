package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/taskloom/loom/pkg/models"
)

const taskColumns = "id, execution_id, branch_id, phase, status, spawned_by, title, description, rationale, created_at, updated_at"

// CreateTaskTx inserts a task row inside an existing transaction.
// Spawn uses this so the task insert and its edge inserts commit together.
func (db *DB) CreateTaskTx(tx *sql.Tx, t *models.Task) error {
	var branchID any
	if t.BranchID != "" {
		branchID = t.BranchID
	}
	var rationale any
	if t.Rationale != "" {
		rationale = t.Rationale
	}

	_, err := tx.Exec(`
		INSERT INTO tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, t.ID, t.ExecutionID, branchID, string(t.Phase), string(t.Status), t.SpawnedBy,
		t.Title, t.Description, rationale, formatTime(t.CreatedAt), formatTime(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	return nil
}

// GetTask retrieves a task by ID. Returns nil if not found.
func (db *DB) GetTask(id string) (*models.Task, error) {
	row := db.QueryRow("SELECT "+taskColumns+" FROM tasks WHERE id = ?", id)

	t, err := scanTaskRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return t, nil
}

// UpdateTaskStatus persists a new status and bumps updated_at.
// Returns false if no task with the given ID exists.
func (db *DB) UpdateTaskStatus(id string, status models.TaskStatus, updatedAt time.Time) (bool, error) {
	result, err := db.Exec(`
		UPDATE tasks SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), formatTime(updatedAt), id)
	if err != nil {
		return false, fmt.Errorf("update task status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// AssignTaskBranch sets (or clears, with an empty branchID) the branch
// reference on a task. Returns false if the task does not exist.
func (db *DB) AssignTaskBranch(taskID, branchID string, updatedAt time.Time) (bool, error) {
	var branch any
	if branchID != "" {
		branch = branchID
	}
	result, err := db.Exec(`
		UPDATE tasks SET branch_id = ?, updated_at = ? WHERE id = ?
	`, branch, formatTime(updatedAt), taskID)
	if err != nil {
		return false, fmt.Errorf("assign task branch: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListTasks lists an execution's tasks in creation order, optionally
// filtered by phase and status.
func (db *DB) ListTasks(executionID string, phase *models.Phase, status *models.TaskStatus) ([]*models.Task, error) {
	query := "SELECT " + taskColumns + " FROM tasks WHERE execution_id = ?"
	args := []any{executionID}
	if phase != nil {
		query += " AND phase = ?"
		args = append(args, string(*phase))
	}
	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// FilterExistingTaskIDs returns the subset of ids that exist as tasks.
// A single batched query regardless of how many ids are given.
func (db *DB) FilterExistingTaskIDs(ids []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(ids))
	if len(ids) == 0 {
		return existing, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.Query("SELECT id FROM tasks WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, fmt.Errorf("filter task ids: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan task id: %w", err)
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// GetTaskStatuses returns the status of every existing task in ids,
// resolved in a single batched query.
func (db *DB) GetTaskStatuses(ids []string) (map[string]models.TaskStatus, error) {
	statuses := make(map[string]models.TaskStatus, len(ids))
	if len(ids) == 0 {
		return statuses, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}

	rows, err := db.Query("SELECT id, status FROM tasks WHERE id IN ("+placeholders(len(ids))+")", args...)
	if err != nil {
		return nil, fmt.Errorf("get task statuses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			return nil, fmt.Errorf("scan task status: %w", err)
		}
		statuses[id] = models.TaskStatus(status)
	}
	return statuses, rows.Err()
}

// ListTasksWithDependencies lists an execution's tasks with BlockedBy
// populated from the edge table, in one query.
func (db *DB) ListTasksWithDependencies(executionID string) ([]*models.Task, error) {
	rows, err := db.Query(`
		SELECT t.id, t.execution_id, t.branch_id, t.phase, t.status, t.spawned_by,
			t.title, t.description, t.rationale, t.created_at, t.updated_at,
			d.blocker_id
		FROM tasks t
		LEFT JOIN dependencies d ON d.blocked_id = t.id
		WHERE t.execution_id = ?
		ORDER BY t.created_at ASC, t.id ASC
	`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list tasks with dependencies: %w", err)
	}
	defer rows.Close()

	var tasks []*models.Task
	byID := make(map[string]*models.Task)
	for rows.Next() {
		var t models.Task
		var branchID, rationale, blockerID sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&t.ID, &t.ExecutionID, &branchID, &t.Phase, &t.Status, &t.SpawnedBy,
			&t.Title, &t.Description, &rationale, &createdAt, &updatedAt, &blockerID); err != nil {
			return nil, fmt.Errorf("scan task row: %w", err)
		}

		task, seen := byID[t.ID]
		if !seen {
			t.BranchID = branchID.String
			t.Rationale = rationale.String
			t.CreatedAt, _ = parseTime(createdAt)
			t.UpdatedAt, _ = parseTime(updatedAt)
			task = &t
			byID[t.ID] = task
			tasks = append(tasks, task)
		}
		if blockerID.Valid {
			task.BlockedBy = append(task.BlockedBy, blockerID.String)
		}
	}
	return tasks, rows.Err()
}

// rowScanner abstracts sql.Row and sql.Rows for task scanning.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row rowScanner) (*models.Task, error) {
	var t models.Task
	var branchID, rationale sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&t.ID, &t.ExecutionID, &branchID, &t.Phase, &t.Status, &t.SpawnedBy,
		&t.Title, &t.Description, &rationale, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	t.BranchID = branchID.String
	t.Rationale = rationale.String
	t.CreatedAt, _ = parseTime(createdAt)
	t.UpdatedAt, _ = parseTime(updatedAt)
	return &t, nil
}
