package state

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/taskloom/loom/pkg/models"
)

// InsertDependenciesTx inserts all edges in a single multi-row INSERT
// inside an existing transaction. One statement regardless of edge count;
// spawn relies on this to keep the write path a single round trip.
func (db *DB) InsertDependenciesTx(tx *sql.Tx, edges []models.Dependency) error {
	if len(edges) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString("INSERT INTO dependencies (blocker_id, blocked_id, created_at) VALUES ")
	args := make([]any, 0, len(edges)*3)
	for i, e := range edges {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(?, ?, ?)")
		args = append(args, e.BlockerID, e.BlockedID, formatTime(e.CreatedAt))
	}

	if _, err := tx.Exec(sb.String(), args...); err != nil {
		return fmt.Errorf("insert dependencies: %w", err)
	}
	return nil
}

// ListDependencies returns every edge whose blocked task belongs to the
// given execution, in a single query.
func (db *DB) ListDependencies(executionID string) ([]models.Dependency, error) {
	rows, err := db.Query(`
		SELECT d.blocker_id, d.blocked_id, d.created_at
		FROM dependencies d
		JOIN tasks t ON t.id = d.blocked_id
		WHERE t.execution_id = ?
		ORDER BY d.blocker_id ASC, d.blocked_id ASC
	`, executionID)
	if err != nil {
		return nil, fmt.Errorf("list dependencies: %w", err)
	}
	defer rows.Close()

	var edges []models.Dependency
	for rows.Next() {
		var e models.Dependency
		var createdAt string
		if err := rows.Scan(&e.BlockerID, &e.BlockedID, &createdAt); err != nil {
			return nil, fmt.Errorf("scan dependency: %w", err)
		}
		e.CreatedAt, _ = parseTime(createdAt)
		edges = append(edges, e)
	}
	return edges, rows.Err()
}

// CountDependencies returns the number of edges for a blocked task.
func (db *DB) CountDependencies(blockedID string) (int, error) {
	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM dependencies WHERE blocked_id = ?", blockedID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count dependencies: %w", err)
	}
	return count, nil
}
