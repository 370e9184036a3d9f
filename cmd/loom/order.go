package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/engine"
)

var orderExecution string

var orderCmd = &cobra.Command{
	Use:   "order",
	Short: "Print a dependency-respecting execution order",
	Long: `Print the execution's tasks in an order where every blocker comes
before the tasks it blocks, breaking ties by creation time. Tasks that
never become ready (cycles, or tasks held by an unschedulable blocker)
trail the ordered prefix; treat a trailing remainder as a sign of an
unsatisfiable dependency set.`,
	RunE: runOrder,
}

func init() {
	orderCmd.Flags().StringVarP(&orderExecution, "execution", "e", "", "Execution ID (required)")
	orderCmd.MarkFlagRequired("execution")
}

func runOrder(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, nil)
	tasks, err := eng.OptimizeOrdering(orderExecution)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	for i, t := range tasks {
		fmt.Printf("%2d. %s  %-13s [%s] %s\n", i+1, t.ID, colorStatus(t.Status), t.Phase, t.Title)
	}
	return nil
}
