package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/branch"
	"github.com/taskloom/loom/pkg/models"
)

var (
	branchExecution string
	branchName      string
	branchPhase     string
)

var branchCmd = &cobra.Command{
	Use:   "branch",
	Short: "Manage task-grouping branches",
	Long: `Manage branches: named groupings of an execution's tasks with
their own merge/abandon/complete lifecycle. Branches are bookkeeping
only; they never affect dependency edges or scheduling.`,
}

var branchCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an active branch",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBranchService(func(svc *branch.Service) error {
			b, err := svc.Create(branchExecution, branchName, models.Phase(branchPhase))
			if err != nil {
				return err
			}
			fmt.Printf("Created branch %s (%s)\n", b.ID, b.Name)
			return nil
		})
	},
}

var branchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List an execution's branches",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBranchService(func(svc *branch.Service) error {
			branches, err := svc.List(branchExecution, nil)
			if err != nil {
				return err
			}
			if len(branches) == 0 {
				fmt.Println("No branches.")
				return nil
			}
			for _, b := range branches {
				fmt.Printf("%s  %-10s [%s] %s\n", b.ID, b.Status, b.OriginPhase, b.Name)
			}
			return nil
		})
	},
}

var branchMergeCmd = &cobra.Command{
	Use:   "merge <branch-id>",
	Short: "Mark an active branch merged",
	Args:  cobra.ExactArgs(1),
	RunE:  branchTransition(func(svc *branch.Service, id string) (*models.Branch, error) { return svc.Merge(id) }),
}

var branchAbandonCmd = &cobra.Command{
	Use:   "abandon <branch-id>",
	Short: "Mark an active branch abandoned",
	Args:  cobra.ExactArgs(1),
	RunE:  branchTransition(func(svc *branch.Service, id string) (*models.Branch, error) { return svc.Abandon(id) }),
}

var branchCompleteCmd = &cobra.Command{
	Use:   "complete <branch-id>",
	Short: "Mark an active branch completed",
	Args:  cobra.ExactArgs(1),
	RunE:  branchTransition(func(svc *branch.Service, id string) (*models.Branch, error) { return svc.Complete(id) }),
}

var branchAssignCmd = &cobra.Command{
	Use:   "assign <task-id> [branch-id]",
	Short: "Assign a task to a branch (omit branch-id to clear)",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBranchService(func(svc *branch.Service) error {
			branchID := ""
			if len(args) == 2 {
				branchID = args[1]
			}
			if err := svc.AssignTask(args[0], branchID); err != nil {
				return err
			}
			if branchID == "" {
				fmt.Printf("Cleared branch on task %s\n", args[0])
			} else {
				fmt.Printf("Assigned task %s to branch %s\n", args[0], branchID)
			}
			return nil
		})
	},
}

var branchRmCmd = &cobra.Command{
	Use:   "rm <branch-id>",
	Short: "Delete a branch (member tasks are kept, just ungrouped)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBranchService(func(svc *branch.Service) error {
			if err := svc.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted branch %s\n", args[0])
			return nil
		})
	},
}

func init() {
	branchCreateCmd.Flags().StringVarP(&branchExecution, "execution", "e", "", "Execution ID (required)")
	branchCreateCmd.Flags().StringVarP(&branchName, "name", "n", "", "Branch name (required)")
	branchCreateCmd.Flags().StringVarP(&branchPhase, "phase", "p", string(models.PhaseBuilding), "Origin phase")
	branchCreateCmd.MarkFlagRequired("execution")
	branchCreateCmd.MarkFlagRequired("name")

	branchListCmd.Flags().StringVarP(&branchExecution, "execution", "e", "", "Execution ID (required)")
	branchListCmd.MarkFlagRequired("execution")

	branchCmd.AddCommand(branchCreateCmd)
	branchCmd.AddCommand(branchListCmd)
	branchCmd.AddCommand(branchMergeCmd)
	branchCmd.AddCommand(branchAbandonCmd)
	branchCmd.AddCommand(branchCompleteCmd)
	branchCmd.AddCommand(branchAssignCmd)
	branchCmd.AddCommand(branchRmCmd)
}

// withBranchService opens the store, runs fn, and closes the store.
func withBranchService(fn func(*branch.Service) error) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(branch.NewService(db))
}

// branchTransition adapts a lifecycle method into a cobra RunE.
func branchTransition(fn func(*branch.Service, string) (*models.Branch, error)) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return withBranchService(func(svc *branch.Service) error {
			b, err := fn(svc, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Branch %s is now %s\n", b.ID, b.Status)
			return nil
		})
	}
}
