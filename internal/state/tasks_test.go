package state

import (
	"database/sql"
	"testing"
	"time"

	"github.com/taskloom/loom/pkg/models"
)

func TestCreateAndGetTask(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "tasks")

	now := time.Now().UTC()
	task := &models.Task{
		ID:          "t-1",
		ExecutionID: execution.ID,
		Phase:       models.PhaseInvestigation,
		Status:      models.TaskStatusPending,
		SpawnedBy:   "agent-7",
		Title:       "trace the flaky login",
		Description: "reproduce and narrow down the intermittent 401",
		Rationale:   "blocks the auth rework",
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := db.Transaction(func(tx *sql.Tx) error {
		return db.CreateTaskTx(tx, task)
	})
	if err != nil {
		t.Fatalf("CreateTaskTx failed: %v", err)
	}

	got, err := db.GetTask("t-1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetTask returned nil for existing task")
	}
	if got.ExecutionID != execution.ID {
		t.Errorf("ExecutionID = %q, want %q", got.ExecutionID, execution.ID)
	}
	if got.Phase != models.PhaseInvestigation {
		t.Errorf("Phase = %q, want %q", got.Phase, models.PhaseInvestigation)
	}
	if got.Status != models.TaskStatusPending {
		t.Errorf("Status = %q, want %q", got.Status, models.TaskStatusPending)
	}
	if got.SpawnedBy != "agent-7" {
		t.Errorf("SpawnedBy = %q, want agent-7", got.SpawnedBy)
	}
	if got.Rationale != "blocks the auth rework" {
		t.Errorf("Rationale = %q", got.Rationale)
	}
	if got.BranchID != "" {
		t.Errorf("BranchID = %q, want empty", got.BranchID)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not persisted")
	}
}

func TestGetTask_NotFound(t *testing.T) {
	db := setupTestDB(t)

	got, err := db.GetTask("missing")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetTask = %+v, want nil", got)
	}
}

func TestUpdateTaskStatus(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "status")
	task := makeTask(t, db, execution.ID, "t-1")

	later := task.CreatedAt.Add(time.Minute)
	found, err := db.UpdateTaskStatus("t-1", models.TaskStatusInProgress, later)
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if !found {
		t.Fatal("UpdateTaskStatus reported task missing")
	}

	got, err := db.GetTask("t-1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if got.Status != models.TaskStatusInProgress {
		t.Errorf("Status = %q, want %q", got.Status, models.TaskStatusInProgress)
	}
	if !got.UpdatedAt.After(got.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", got.UpdatedAt, got.CreatedAt)
	}
}

func TestUpdateTaskStatus_Missing(t *testing.T) {
	db := setupTestDB(t)

	found, err := db.UpdateTaskStatus("missing", models.TaskStatusCompleted, time.Now().UTC())
	if err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}
	if found {
		t.Error("UpdateTaskStatus reported success for missing task")
	}
}

func TestListTasks_Filters(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "filters")
	other := makeExecution(t, db, "other")

	a := makeTask(t, db, execution.ID, "t-a")
	b := makeTask(t, db, execution.ID, "t-b")
	makeTask(t, db, other.ID, "t-other")

	if _, err := db.UpdateTaskStatus(b.ID, models.TaskStatusCompleted, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}

	all, err := db.ListTasks(execution.ID, nil, nil)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListTasks returned %d tasks, want 2", len(all))
	}
	if all[0].ID != a.ID || all[1].ID != b.ID {
		t.Errorf("ListTasks order = %s, %s; want %s, %s", all[0].ID, all[1].ID, a.ID, b.ID)
	}

	pending := models.TaskStatusPending
	got, err := db.ListTasks(execution.ID, nil, &pending)
	if err != nil {
		t.Fatalf("ListTasks with status filter failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != a.ID {
		t.Errorf("status filter returned %d tasks, want just %s", len(got), a.ID)
	}

	investigation := models.PhaseInvestigation
	got, err = db.ListTasks(execution.ID, &investigation, nil)
	if err != nil {
		t.Fatalf("ListTasks with phase filter failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("phase filter returned %d tasks, want 0", len(got))
	}
}

func TestFilterExistingTaskIDs(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "exists")
	makeTask(t, db, execution.ID, "t-x")
	makeTask(t, db, execution.ID, "t-y")

	existing, err := db.FilterExistingTaskIDs([]string{"t-x", "t-missing", "t-y"})
	if err != nil {
		t.Fatalf("FilterExistingTaskIDs failed: %v", err)
	}
	if len(existing) != 2 {
		t.Fatalf("got %d existing ids, want 2", len(existing))
	}
	if !existing["t-x"] || !existing["t-y"] {
		t.Errorf("existing map = %v", existing)
	}
	if existing["t-missing"] {
		t.Error("t-missing reported as existing")
	}

	empty, err := db.FilterExistingTaskIDs(nil)
	if err != nil {
		t.Fatalf("FilterExistingTaskIDs(nil) failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("FilterExistingTaskIDs(nil) = %v, want empty", empty)
	}
}

func TestGetTaskStatuses(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "statuses")
	makeTask(t, db, execution.ID, "t-1")
	makeTask(t, db, execution.ID, "t-2")

	if _, err := db.UpdateTaskStatus("t-2", models.TaskStatusFailed, time.Now().UTC()); err != nil {
		t.Fatalf("UpdateTaskStatus failed: %v", err)
	}

	statuses, err := db.GetTaskStatuses([]string{"t-1", "t-2", "t-gone"})
	if err != nil {
		t.Fatalf("GetTaskStatuses failed: %v", err)
	}
	if len(statuses) != 2 {
		t.Fatalf("got %d statuses, want 2", len(statuses))
	}
	if statuses["t-1"] != models.TaskStatusPending {
		t.Errorf("t-1 status = %q", statuses["t-1"])
	}
	if statuses["t-2"] != models.TaskStatusFailed {
		t.Errorf("t-2 status = %q", statuses["t-2"])
	}
}

func TestListTasksWithDependencies(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "deps")
	makeTask(t, db, execution.ID, "t-1")
	makeTask(t, db, execution.ID, "t-2")
	makeTask(t, db, execution.ID, "t-3")

	now := time.Now().UTC()
	err := db.Transaction(func(tx *sql.Tx) error {
		return db.InsertDependenciesTx(tx, []models.Dependency{
			{BlockerID: "t-1", BlockedID: "t-3", CreatedAt: now},
			{BlockerID: "t-2", BlockedID: "t-3", CreatedAt: now},
		})
	})
	if err != nil {
		t.Fatalf("InsertDependenciesTx failed: %v", err)
	}

	tasks, err := db.ListTasksWithDependencies(execution.ID)
	if err != nil {
		t.Fatalf("ListTasksWithDependencies failed: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("got %d tasks, want 3", len(tasks))
	}

	byID := make(map[string]*models.Task, len(tasks))
	for _, task := range tasks {
		byID[task.ID] = task
	}
	if len(byID["t-1"].BlockedBy) != 0 {
		t.Errorf("t-1 BlockedBy = %v, want empty", byID["t-1"].BlockedBy)
	}
	if len(byID["t-3"].BlockedBy) != 2 {
		t.Fatalf("t-3 BlockedBy = %v, want 2 blockers", byID["t-3"].BlockedBy)
	}
}
