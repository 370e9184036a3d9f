package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/engine"
	"github.com/taskloom/loom/pkg/models"
)

var (
	spawnExecution string
	spawnPhase     string
	spawnTitle     string
	spawnDesc      string
	spawnRationale string
	spawnAgent     string
	spawnBlockedBy []string
)

var spawnCmd = &cobra.Command{
	Use:   "spawn",
	Short: "Spawn a task in an execution",
	Long: `Spawn a task, optionally declaring tasks that must finish before
it. The task and all of its dependency edges are created in a single
transaction; a failed spawn leaves no partial graph behind.`,
	RunE: runSpawn,
}

func init() {
	spawnCmd.Flags().StringVarP(&spawnExecution, "execution", "e", "", "Execution ID (required)")
	spawnCmd.Flags().StringVarP(&spawnPhase, "phase", "p", string(models.PhaseBuilding), "Phase: investigation, building, or validation")
	spawnCmd.Flags().StringVarP(&spawnTitle, "title", "t", "", "Task title (required)")
	spawnCmd.Flags().StringVarP(&spawnDesc, "description", "d", "", "Task description (required)")
	spawnCmd.Flags().StringVar(&spawnRationale, "rationale", "", "Why this task exists")
	spawnCmd.Flags().StringVar(&spawnAgent, "agent", "", "Spawning agent ID (defaults to config)")
	spawnCmd.Flags().StringSliceVar(&spawnBlockedBy, "blocked-by", nil, "Task IDs that must finish first")
	spawnCmd.MarkFlagRequired("execution")
	spawnCmd.MarkFlagRequired("title")
	spawnCmd.MarkFlagRequired("description")
}

func runSpawn(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	agent := spawnAgent
	if agent == "" {
		agent = cfg.Defaults.Agent
	}

	eng := engine.New(db, nil)
	task, err := eng.Spawn(engine.SpawnRequest{
		Agent:           agent,
		ExecutionID:     spawnExecution,
		Phase:           models.Phase(spawnPhase),
		Title:           spawnTitle,
		Description:     spawnDesc,
		Rationale:       spawnRationale,
		BlockingTaskIDs: spawnBlockedBy,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Spawned task %s [%s] %s\n", task.ID, task.Phase, task.Title)
	if len(task.BlockedBy) > 0 {
		fmt.Printf("  blocked by: %v\n", task.BlockedBy)
	}
	return nil
}
