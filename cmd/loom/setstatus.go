package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/engine"
	"github.com/taskloom/loom/pkg/models"
)

var setStatusCmd = &cobra.Command{
	Use:   "set-status <task-id> <status>",
	Short: "Update a task's status",
	Long: `Update a task's status. Valid statuses: pending, in_progress,
completed, failed, blocked. The graph is not consulted: completing a
blocker does not rewrite dependents, it simply stops blocking them on
the next read.`,
	Args: cobra.ExactArgs(2),
	RunE: runSetStatus,
}

func runSetStatus(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, nil)
	task, err := eng.UpdateStatus(args[0], models.TaskStatus(args[1]))
	if err != nil {
		return err
	}

	fmt.Printf("Task %s is now %s\n", task.ID, colorStatus(task.Status))
	return nil
}
