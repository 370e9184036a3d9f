package engine

import (
	"database/sql"
	"sort"
	"strings"
	"time"

	apperrors "github.com/taskloom/loom/internal/errors"
	"github.com/taskloom/loom/internal/state"
	"github.com/taskloom/loom/pkg/models"
)

// validateBlockingIDs checks a dependency list before any write happens:
// no self-reference, no duplicate IDs, and every ID resolves to an
// existing task. Missing IDs are reported completely, not first-only.
func (e *Engine) validateBlockingIDs(taskID string, blockingIDs []string) error {
	if len(blockingIDs) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(blockingIDs))
	for _, id := range blockingIDs {
		if id == "" {
			return apperrors.InvalidArgument("blocking task id must not be empty")
		}
		if id == taskID {
			return apperrors.InvalidArgument("task %s cannot depend on itself", taskID)
		}
		if seen[id] {
			return apperrors.InvalidArgument("duplicate blocking task id %s", id)
		}
		seen[id] = true
	}

	existing, err := e.store.FilterExistingTaskIDs(blockingIDs)
	if err != nil {
		return apperrors.Unavailable(err, "check blocking task ids")
	}

	var missing []string
	for _, id := range blockingIDs {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return apperrors.NotFound("blocking tasks do not exist: %s", strings.Join(missing, ", "))
	}
	return nil
}

// insertDependencies bulk-inserts the edges for one blocked task inside
// an existing transaction. A uniqueness violation means the edge already
// exists and surfaces as a Conflict rather than a raw storage error.
func (e *Engine) insertDependencies(tx *sql.Tx, taskID string, blockingIDs []string, now time.Time) error {
	if len(blockingIDs) == 0 {
		return nil
	}

	edges := make([]models.Dependency, len(blockingIDs))
	for i, blockerID := range blockingIDs {
		edges[i] = models.Dependency{
			BlockerID: blockerID,
			BlockedID: taskID,
			CreatedAt: now,
		}
	}

	if err := e.store.InsertDependenciesTx(tx, edges); err != nil {
		if state.IsUniqueViolation(err) {
			return apperrors.Wrap(apperrors.CodeConflict, err, "dependency edge already exists for task %s", taskID)
		}
		return err
	}
	return nil
}

// Dependency edges are only ever created at spawn time: Spawn runs
// validateBlockingIDs before opening its transaction, then
// insertDependencies inside it. If post-creation dependency editing is
// ever needed it should be a second explicit operation, not an overload
// of Spawn.
