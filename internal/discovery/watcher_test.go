package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/taskloom/loom/internal/engine"
	"github.com/taskloom/loom/internal/state"
	"github.com/taskloom/loom/pkg/models"
)

func setupTestWatcher(t *testing.T) (*Watcher, *engine.Engine, string) {
	t.Helper()
	db, err := state.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.Migrate(); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})

	eng := engine.New(db, nil)
	spool := filepath.Join(t.TempDir(), "spool")
	w, err := NewWatcher(eng, spool)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	return w, eng, spool
}

func spoolFile(t *testing.T, spool, name, content string) string {
	t.Helper()
	path := filepath.Join(spool, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write spool file: %v", err)
	}
	return path
}

func TestNewWatcher_CreatesDirectories(t *testing.T) {
	_, _, spool := setupTestWatcher(t)

	for _, dir := range []string{spool, filepath.Join(spool, "failed")} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}
}

func TestProcess_SpawnsAndRemoves(t *testing.T) {
	w, eng, spool := setupTestWatcher(t)
	execution, err := eng.CreateExecution("discovery")
	if err != nil {
		t.Fatalf("CreateExecution failed: %v", err)
	}

	path := spoolFile(t, spool, "req.yaml", `
agent: scout-1
execution: `+execution.ID+`
phase: building
title: wire up the retry loop
description: add bounded retries around the flaky upstream call
`)
	w.process(path)

	tasks, err := eng.ListTasks(execution.ID, nil, nil, false)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("got %d tasks, want 1", len(tasks))
	}
	if tasks[0].Title != "wire up the retry loop" {
		t.Errorf("Title = %q", tasks[0].Title)
	}
	if tasks[0].Phase != models.PhaseBuilding {
		t.Errorf("Phase = %q", tasks[0].Phase)
	}

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("processed file not removed from spool")
	}
}

func TestProcess_RejectedRequestMovedToFailed(t *testing.T) {
	w, eng, spool := setupTestWatcher(t)

	// Unknown execution: the engine rejects the spawn.
	path := spoolFile(t, spool, "bad.yaml", `
agent: scout-1
execution: missing
phase: building
title: t
description: d
`)
	w.process(path)

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("rejected file still in spool")
	}
	if _, err := os.Stat(filepath.Join(spool, "failed", "bad.yaml")); err != nil {
		t.Errorf("rejected file not in failed/: %v", err)
	}

	execution, err := eng.CreateExecution("check")
	if err != nil {
		t.Fatalf("CreateExecution failed: %v", err)
	}
	tasks, err := eng.ListTasks(execution.ID, nil, nil, false)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("got %d tasks from a rejected request", len(tasks))
	}
}

func TestProcess_MalformedYAMLMovedToFailed(t *testing.T) {
	w, _, spool := setupTestWatcher(t)

	path := spoolFile(t, spool, "garbage.yaml", "{definitely not yaml")
	w.process(path)

	if _, err := os.Stat(filepath.Join(spool, "failed", "garbage.yaml")); err != nil {
		t.Errorf("malformed file not in failed/: %v", err)
	}
}

func TestIsRequestFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"req.yaml", true},
		{"req.yml", true},
		{"req.json", false},
		{"req.yaml.tmp", false},
		{"README", false},
	}
	for _, tt := range tests {
		if got := isRequestFile(tt.name); got != tt.want {
			t.Errorf("isRequestFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
