package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/taskloom/loom/internal/discovery"
	"github.com/taskloom/loom/internal/engine"
	"github.com/taskloom/loom/internal/events"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Ingest discovery requests and tail task events",
	Long: `Run the discovery ingestion loop: watch the spool directory for
spawn request files dropped by external discovery, feed them to the
engine, and print every task event as it happens. Stops on Ctrl-C.`,
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	db, cfg, err := openStore()
	if err != nil {
		return err
	}
	defer db.Close()

	notifier := events.NewNotifier()
	defer notifier.Close()

	eng := engine.New(db, notifier)
	if cwd, err := os.Getwd(); err == nil {
		eng.SetDebugLogger(engine.NewDebugLoggerForProject(cwd))
	}

	watcher, err := discovery.NewWatcher(eng, cfg.Discovery.SpoolDir)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	eventCh := notifier.SubscribeAll(cfg.Notifications.BufferSize)

	fmt.Printf("Watching %s for spawn requests (Ctrl-C to stop)\n", cfg.Discovery.SpoolDir)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return watcher.Run(ctx)
	})
	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case event, ok := <-eventCh:
				if !ok {
					return nil
				}
				fmt.Printf("[%s] %s task=%s execution=%s phase=%s status=%s agent=%s %q\n",
					event.Timestamp.Format("15:04:05"), event.Type, event.TaskID,
					event.ExecutionID, event.Phase, event.Status, event.AgentID, event.Title)
			}
		}
	})

	if err := g.Wait(); err != nil && err != context.Canceled {
		return err
	}
	return nil
}
