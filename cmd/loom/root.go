package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/config"
	"github.com/taskloom/loom/internal/state"
)

var rootCmd = &cobra.Command{
	Use:   "loom",
	Short: "Task dependency graph coordinator for autonomous agents",
	Long: `Loom owns the task graph shared by autonomous development agents
working on an execution. Agents spawn tasks tagged with a phase
(investigation, building, validation), optionally declaring which tasks
must finish first; loom tracks the dependency edges, derives blocked
status, and produces a priority-aware execution order.

Core capabilities:
- Spawns tasks atomically with their dependency edges
- Derives blocked tasks from the current graph
- Orders active tasks topologically, oldest-first on ties
- Groups tasks under branches with their own lifecycle
- Ingests spawn requests spooled by external discovery`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(spawnCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(blockedCmd)
	rootCmd.AddCommand(orderCmd)
	rootCmd.AddCommand(setStatusCmd)
	rootCmd.AddCommand(branchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

// openStore loads config, opens the graph database, and migrates it.
// The caller owns the returned DB and must close it.
func openStore() (*state.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	dbPath := cfg.Database.Path
	if dbPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, nil, fmt.Errorf("get working directory: %w", err)
		}
		dbPath = state.ProjectDBPath(cwd)
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, cfg, nil
}
