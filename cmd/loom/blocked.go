package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/engine"
)

var blockedExecution string

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "List an execution's blocked tasks",
	Long: `List every blocked task in an execution: tasks whose status is
explicitly blocked, plus pending tasks waiting on at least one blocker
that has not completed or failed.`,
	RunE: runBlocked,
}

func init() {
	blockedCmd.Flags().StringVarP(&blockedExecution, "execution", "e", "", "Execution ID (required)")
	blockedCmd.MarkFlagRequired("execution")
}

func runBlocked(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, nil)
	tasks, err := eng.GetBlockedTasks(blockedExecution)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No blocked tasks.")
		return nil
	}

	for _, t := range tasks {
		fmt.Printf("%s  %-13s [%s] %s\n", t.ID, colorStatus(t.Status), t.Phase, t.Title)
		if len(t.BlockedBy) > 0 {
			fmt.Printf("%s  waiting on: %s\n", strings.Repeat(" ", len(t.ID)), strings.Join(t.BlockedBy, ", "))
		}
	}
	return nil
}
