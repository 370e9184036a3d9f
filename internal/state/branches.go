package state

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/taskloom/loom/pkg/models"
)

const branchColumns = "id, execution_id, name, origin_phase, status, created_at, updated_at"

// CreateBranch creates a new branch row.
func (db *DB) CreateBranch(b *models.Branch) error {
	_, err := db.Exec(`
		INSERT INTO branches (`+branchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, b.ID, b.ExecutionID, b.Name, string(b.OriginPhase), string(b.Status),
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create branch: %w", err)
	}
	return nil
}

// GetBranch retrieves a branch by ID. Returns nil if not found.
func (db *DB) GetBranch(id string) (*models.Branch, error) {
	row := db.QueryRow("SELECT "+branchColumns+" FROM branches WHERE id = ?", id)

	var b models.Branch
	var createdAt, updatedAt string
	err := row.Scan(&b.ID, &b.ExecutionID, &b.Name, &b.OriginPhase, &b.Status, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get branch: %w", err)
	}

	b.CreatedAt, _ = parseTime(createdAt)
	b.UpdatedAt, _ = parseTime(updatedAt)
	return &b, nil
}

// UpdateBranchStatus persists a new lifecycle status and bumps updated_at.
// Returns false if no branch with the given ID exists.
func (db *DB) UpdateBranchStatus(id string, status models.BranchStatus, updatedAt time.Time) (bool, error) {
	result, err := db.Exec(`
		UPDATE branches SET status = ?, updated_at = ? WHERE id = ?
	`, string(status), formatTime(updatedAt), id)
	if err != nil {
		return false, fmt.Errorf("update branch status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("get rows affected: %w", err)
	}
	return affected > 0, nil
}

// ListBranches lists an execution's branches, optionally filtered by status.
func (db *DB) ListBranches(executionID string, status *models.BranchStatus) ([]models.Branch, error) {
	query := "SELECT " + branchColumns + " FROM branches WHERE execution_id = ?"
	args := []any{executionID}
	if status != nil {
		query += " AND status = ?"
		args = append(args, string(*status))
	}
	query += " ORDER BY created_at ASC, id ASC"

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	defer rows.Close()

	var branches []models.Branch
	for rows.Next() {
		var b models.Branch
		var createdAt, updatedAt string
		if err := rows.Scan(&b.ID, &b.ExecutionID, &b.Name, &b.OriginPhase, &b.Status, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan branch: %w", err)
		}
		b.CreatedAt, _ = parseTime(createdAt)
		b.UpdatedAt, _ = parseTime(updatedAt)
		branches = append(branches, b)
	}
	return branches, rows.Err()
}

// DeleteBranch deletes a branch. Tasks that referenced it keep existing;
// their branch_id is cleared by the SET NULL foreign key.
func (db *DB) DeleteBranch(id string) error {
	_, err := db.Exec("DELETE FROM branches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete branch: %w", err)
	}
	return nil
}
