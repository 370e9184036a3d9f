// Package ordering produces a priority-aware, dependency-respecting
// execution order over a snapshot of an execution's task graph.
package ordering

import (
	"sort"

	"github.com/taskloom/loom/pkg/models"
)

// Order sequences tasks so that no blocker comes after a task it blocks,
// breaking ties by creation time (oldest first). Only pending and
// in-progress tasks are sequenced; everything else is historical or
// unschedulable and trails the result.
//
// The returned slice always contains every input task exactly once:
//
//  1. a topologically ordered prefix of schedulable tasks,
//  2. schedulable tasks that never became ready (cycle members, or tasks
//     blocked by an unschedulable non-terminal task) in input order,
//  3. non-schedulable tasks in input order.
//
// Order never fails. Callers that need a strictly valid schedule must
// treat a non-empty unordered remainder as a cyclic or otherwise
// unsatisfiable dependency set.
func Order(tasks []*models.Task, edges []models.Dependency) []*models.Task {
	byID := make(map[string]*models.Task, len(tasks))
	for _, t := range tasks {
		byID[t.ID] = t
	}

	schedulable := func(t *models.Task) bool {
		return t.Status == models.TaskStatusPending || t.Status == models.TaskStatusInProgress
	}

	// Reverse adjacency: in-degree counts the edges still holding a task
	// back. Edges from terminal blockers are already satisfied; edges from
	// unknown blockers carry no signal in this snapshot.
	inDegree := make(map[string]int)
	dependents := make(map[string][]string)
	for _, t := range tasks {
		if schedulable(t) {
			inDegree[t.ID] = 0
		}
	}
	for _, e := range edges {
		blocked, ok := byID[e.BlockedID]
		if !ok || !schedulable(blocked) {
			continue
		}
		blocker, ok := byID[e.BlockerID]
		if !ok || blocker.Status.Terminal() {
			continue
		}
		inDegree[e.BlockedID]++
		if schedulable(blocker) {
			dependents[e.BlockerID] = append(dependents[e.BlockerID], e.BlockedID)
		}
	}

	var ready []*models.Task
	for _, t := range tasks {
		if schedulable(t) && inDegree[t.ID] == 0 {
			ready = append(ready, t)
		}
	}

	ordered := make([]*models.Task, 0, len(tasks))
	emitted := make(map[string]bool, len(tasks))
	for len(ready) > 0 {
		// Re-sort on every extraction so fairness reflects the current
		// ready set, not a snapshot taken when the queue was seeded.
		sort.Slice(ready, func(i, j int) bool {
			if !ready[i].CreatedAt.Equal(ready[j].CreatedAt) {
				return ready[i].CreatedAt.Before(ready[j].CreatedAt)
			}
			return ready[i].ID < ready[j].ID
		})

		next := ready[0]
		ready = ready[1:]
		ordered = append(ordered, next)
		emitted[next.ID] = true

		for _, depID := range dependents[next.ID] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				ready = append(ready, byID[depID])
			}
		}
	}

	// Schedulable tasks that never reached in-degree zero: cycle members
	// or tasks held by an unschedulable non-terminal blocker.
	for _, t := range tasks {
		if schedulable(t) && !emitted[t.ID] {
			ordered = append(ordered, t)
		}
	}

	// Historical and explicitly blocked tasks trail the schedule.
	for _, t := range tasks {
		if !schedulable(t) {
			ordered = append(ordered, t)
		}
	}

	return ordered
}
