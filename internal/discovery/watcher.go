package discovery

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"github.com/taskloom/loom/internal/engine"
)

// Watcher monitors a spool directory for spawn request files and feeds
// them to the engine. Processed files are removed; files the engine
// rejects are moved aside into a failed/ subdirectory for inspection.
type Watcher struct {
	engine   *engine.Engine
	spoolDir string
}

// NewWatcher creates a watcher over the given spool directory, creating
// the directory (and its failed/ subdirectory) if needed.
func NewWatcher(eng *engine.Engine, spoolDir string) (*Watcher, error) {
	for _, dir := range []string{spoolDir, filepath.Join(spoolDir, "failed")} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create spool directory: %w", err)
		}
	}
	return &Watcher{engine: eng, spoolDir: spoolDir}, nil
}

// Run processes any requests already in the spool, then watches for new
// ones until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	// Drain requests spooled before the watcher started.
	entries, err := os.ReadDir(w.spoolDir)
	if err != nil {
		return fmt.Errorf("read spool directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() && isRequestFile(entry.Name()) {
			w.process(filepath.Join(w.spoolDir, entry.Name()))
		}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(w.spoolDir); err != nil {
		return fmt.Errorf("watch spool directory: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if !isRequestFile(filepath.Base(event.Name)) {
				continue
			}
			w.process(event.Name)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("[discovery] watch error: %v", err)
		}
	}
}

// process parses one spooled request and spawns the task. The file is
// deleted on success and moved to failed/ on any error.
func (w *Watcher) process(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		// Create events can fire before the writer finishes; a follow-up
		// Write event retries the file.
		return
	}

	req, err := ParseRequest(data)
	if err != nil {
		log.Printf("[discovery] rejected %s: %v", filepath.Base(path), err)
		w.moveToFailed(path)
		return
	}

	task, err := w.engine.Spawn(req.ToEngineRequest())
	if err != nil {
		log.Printf("[discovery] spawn failed for %s: %v", filepath.Base(path), err)
		w.moveToFailed(path)
		return
	}

	log.Printf("[discovery] spawned task %s (%s) from %s", task.ID, task.Title, filepath.Base(path))
	os.Remove(path)
}

func (w *Watcher) moveToFailed(path string) {
	dest := filepath.Join(w.spoolDir, "failed", filepath.Base(path))
	if err := os.Rename(path, dest); err != nil {
		os.Remove(path)
	}
}

func isRequestFile(name string) bool {
	return strings.HasSuffix(name, ".yaml") || strings.HasSuffix(name, ".yml")
}
