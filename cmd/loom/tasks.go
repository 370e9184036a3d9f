package main

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/engine"
	"github.com/taskloom/loom/pkg/models"
)

var (
	tasksExecution string
	tasksPhase     string
	tasksStatus    string
	tasksWithDeps  bool
)

var tasksCmd = &cobra.Command{
	Use:   "tasks",
	Short: "List an execution's tasks",
	RunE:  runTasks,
}

func init() {
	tasksCmd.Flags().StringVarP(&tasksExecution, "execution", "e", "", "Execution ID (required)")
	tasksCmd.Flags().StringVarP(&tasksPhase, "phase", "p", "", "Filter by phase")
	tasksCmd.Flags().StringVarP(&tasksStatus, "status", "s", "", "Filter by status")
	tasksCmd.Flags().BoolVar(&tasksWithDeps, "deps", false, "Show dependency edges")
	tasksCmd.MarkFlagRequired("execution")
}

func runTasks(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	var phase *models.Phase
	if tasksPhase != "" {
		p := models.Phase(tasksPhase)
		if !p.Valid() {
			return fmt.Errorf("invalid phase %q", tasksPhase)
		}
		phase = &p
	}
	var status *models.TaskStatus
	if tasksStatus != "" {
		s := models.TaskStatus(tasksStatus)
		if !s.Valid() {
			return fmt.Errorf("invalid status %q", tasksStatus)
		}
		status = &s
	}

	eng := engine.New(db, nil)
	tasks, err := eng.ListTasks(tasksExecution, phase, status, tasksWithDeps)
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		fmt.Println("No tasks.")
		return nil
	}

	for _, t := range tasks {
		fmt.Printf("%s  %-13s [%s] %s\n", t.ID, colorStatus(t.Status), t.Phase, t.Title)
		if tasksWithDeps && len(t.BlockedBy) > 0 {
			fmt.Printf("%s  blocked by: %s\n", strings.Repeat(" ", len(t.ID)), strings.Join(t.BlockedBy, ", "))
		}
	}
	return nil
}

// colorStatus renders a task status with the usual terminal colors.
func colorStatus(s models.TaskStatus) string {
	switch s {
	case models.TaskStatusPending:
		return color.YellowString(string(s))
	case models.TaskStatusInProgress:
		return color.CyanString(string(s))
	case models.TaskStatusCompleted:
		return color.GreenString(string(s))
	case models.TaskStatusFailed:
		return color.RedString(string(s))
	case models.TaskStatusBlocked:
		return color.MagentaString(string(s))
	default:
		return string(s)
	}
}
