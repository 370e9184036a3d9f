package state

import (
	"database/sql"
	"fmt"

	"github.com/taskloom/loom/pkg/models"
)

// CreateExecution creates a new execution row.
func (db *DB) CreateExecution(e *models.Execution) error {
	_, err := db.Exec(`
		INSERT INTO executions (id, name, created_at)
		VALUES (?, ?, ?)
	`, e.ID, e.Name, formatTime(e.CreatedAt))
	if err != nil {
		return fmt.Errorf("create execution: %w", err)
	}
	return nil
}

// GetExecution retrieves an execution by ID. Returns nil if not found.
func (db *DB) GetExecution(id string) (*models.Execution, error) {
	row := db.QueryRow(`
		SELECT id, name, created_at FROM executions WHERE id = ?
	`, id)

	var e models.Execution
	var createdAt string
	err := row.Scan(&e.ID, &e.Name, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get execution: %w", err)
	}

	e.CreatedAt, _ = parseTime(createdAt)
	return &e, nil
}

// ListExecutions lists all executions, newest first.
func (db *DB) ListExecutions() ([]models.Execution, error) {
	rows, err := db.Query(`
		SELECT id, name, created_at FROM executions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list executions: %w", err)
	}
	defer rows.Close()

	var executions []models.Execution
	for rows.Next() {
		var e models.Execution
		var createdAt string
		if err := rows.Scan(&e.ID, &e.Name, &createdAt); err != nil {
			return nil, fmt.Errorf("scan execution: %w", err)
		}
		e.CreatedAt, _ = parseTime(createdAt)
		executions = append(executions, e)
	}
	return executions, rows.Err()
}

// DeleteExecution deletes an execution. Tasks, dependency edges, and
// branches owned by it are removed by the cascading foreign keys.
func (db *DB) DeleteExecution(id string) error {
	_, err := db.Exec("DELETE FROM executions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete execution: %w", err)
	}
	return nil
}
