package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/taskloom/loom/internal/engine"
)

var initCmd = &cobra.Command{
	Use:   "init <name>",
	Short: "Create a new execution",
	Long: `Create a new execution: the parent unit of work that owns a set
of dynamically spawned tasks. Prints the execution ID that spawn and the
read commands take.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	db, _, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	eng := engine.New(db, nil)
	execution, err := eng.CreateExecution(strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Printf("Created execution %s (%s)\n", execution.ID, execution.Name)
	return nil
}
