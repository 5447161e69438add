package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/kbforge/kbforge/internal/initialization"
	"github.com/kbforge/kbforge/internal/managers"
	"github.com/kbforge/kbforge/internal/server"
)

func NewWatchCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch a knowledge base's ingestion progress",
		Long: `Poll the server for the embedding status of a knowledge base's files until
every file reaches a terminal state or the polling window elapses.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(container, cmd)
		},
	}

	cmd.Flags().StringP("knowledge", "k", "", "Target knowledge base ID (defaults to the configured one)")
	cmd.Flags().String("listen", "", "Serve /health and /v1/status on this address while watching")

	return cmd
}

func runWatch(container *initialization.Container, cmd *cobra.Command) error {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	deps, err := container.BuildDependencies(ctx, apiURLOverride(cmd))
	if err != nil {
		return err
	}

	knowledgeID, _ := cmd.Flags().GetString("knowledge")
	if knowledgeID == "" {
		knowledgeID = deps.Config.DefaultKnowledgeID
	}
	if knowledgeID == "" {
		return fmt.Errorf("no knowledge base selected, pass --knowledge or configure a default")
	}

	poller := managers.NewIngestionPoller(managers.IngestionPollerDependencies{
		Knowledge:   deps.Knowledge,
		Notifier:    consoleNotifier{},
		KnowledgeID: knowledgeID,
		OnRefresh:   listRefresh(deps.Knowledge, knowledgeID),
	})

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		app := server.NewStatusServer(server.StatusServerDependencies{Poller: poller})
		go server.Run(ctx, app, listen)
	}

	poller.Start(ctx)

	fmt.Println("⏳ Watching ingestion progress (Ctrl-C to stop)")

	select {
	case <-ctx.Done():
		poller.Stop()
	case <-poller.Done():
	}

	return nil
}
