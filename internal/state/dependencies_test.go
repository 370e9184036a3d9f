package state

import (
	"database/sql"
	"testing"
	"time"

	"github.com/taskloom/loom/pkg/models"
)

func TestInsertDependenciesTx(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "edges")
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

	count, err := db.CountDependencies("t-3")
	if err != nil {
		t.Fatalf("CountDependencies failed: %v", err)
	}
	if count != 2 {
		t.Errorf("t-3 has %d edges, want 2", count)
	}

	edges, err := db.ListDependencies(execution.ID)
	if err != nil {
		t.Fatalf("ListDependencies failed: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("ListDependencies returned %d edges, want 2", len(edges))
	}
	if edges[0].BlockerID != "t-1" || edges[1].BlockerID != "t-2" {
		t.Errorf("edges = %+v", edges)
	}
}

func TestInsertDependenciesTx_Empty(t *testing.T) {
	db := setupTestDB(t)

	err := db.Transaction(func(tx *sql.Tx) error {
		return db.InsertDependenciesTx(tx, nil)
	})
	if err != nil {
		t.Fatalf("InsertDependenciesTx(nil) failed: %v", err)
	}
}

func TestInsertDependenciesTx_DuplicateEdge(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "dupe")
	makeTask(t, db, execution.ID, "t-1")
	makeTask(t, db, execution.ID, "t-2")

	edge := []models.Dependency{{BlockerID: "t-1", BlockedID: "t-2", CreatedAt: time.Now().UTC()}}
	err := db.Transaction(func(tx *sql.Tx) error {
		return db.InsertDependenciesTx(tx, edge)
	})
	if err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	err = db.Transaction(func(tx *sql.Tx) error {
		return db.InsertDependenciesTx(tx, edge)
	})
	if err == nil {
		t.Fatal("expected error inserting duplicate edge")
	}
	if !IsUniqueViolation(err) {
		t.Errorf("IsUniqueViolation = false for %v", err)
	}

	// The graph still holds exactly one copy of the edge.
	count, err := db.CountDependencies("t-2")
	if err != nil {
		t.Fatalf("CountDependencies failed: %v", err)
	}
	if count != 1 {
		t.Errorf("t-2 has %d edges, want 1", count)
	}
}

func TestInsertDependenciesTx_SelfLoopRejected(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "selfloop")
	makeTask(t, db, execution.ID, "t-1")

	err := db.Transaction(func(tx *sql.Tx) error {
		return db.InsertDependenciesTx(tx, []models.Dependency{
			{BlockerID: "t-1", BlockedID: "t-1", CreatedAt: time.Now().UTC()},
		})
	})
	if err == nil {
		t.Fatal("expected self-referencing edge to violate the CHECK constraint")
	}
	if !IsConstraintViolation(err) {
		t.Errorf("IsConstraintViolation = false for %v", err)
	}
}

func TestDeleteExecution_CascadesTasksAndEdges(t *testing.T) {
	db := setupTestDB(t)
	execution := makeExecution(t, db, "cascade")
	makeTask(t, db, execution.ID, "t-1")
	makeTask(t, db, execution.ID, "t-2")

	err := db.Transaction(func(tx *sql.Tx) error {
		return db.InsertDependenciesTx(tx, []models.Dependency{
			{BlockerID: "t-1", BlockedID: "t-2", CreatedAt: time.Now().UTC()},
		})
	})
	if err != nil {
		t.Fatalf("InsertDependenciesTx failed: %v", err)
	}

	if err := db.DeleteExecution(execution.ID); err != nil {
		t.Fatalf("DeleteExecution failed: %v", err)
	}

	task, err := db.GetTask("t-1")
	if err != nil {
		t.Fatalf("GetTask failed: %v", err)
	}
	if task != nil {
		t.Error("task survived execution delete")
	}

	var count int
	row := db.QueryRow("SELECT COUNT(*) FROM dependencies")
	if err := row.Scan(&count); err != nil {
		t.Fatalf("count dependencies: %v", err)
	}
	if count != 0 {
		t.Errorf("%d edges survived execution delete", count)
	}
}
