package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbforge/kbforge/internal/initialization"
	"github.com/kbforge/kbforge/internal/managers"
	"github.com/kbforge/kbforge/internal/server"
	"github.com/kbforge/kbforge/pkg/domain"
	"github.com/kbforge/kbforge/pkg/utils/pagination"
)

func NewUploadCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "upload <files...>",
		Short: "Upload documents into a knowledge base",
		Long: `Upload a batch of documents into a knowledge base. Files are validated
locally (size, type, batch cap) and uploaded one at a time; afterwards the
server's embedding progress is watched until every file is done.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpload(container, cmd, args)
		},
	}

	cmd.Flags().StringP("knowledge", "k", "", "Target knowledge base ID (defaults to the configured one)")
	cmd.Flags().Bool("watch", true, "Watch ingestion progress after the upload")
	cmd.Flags().String("listen", "", "Serve /health and /v1/status on this address while watching")

	return cmd
}

func runUpload(container *initialization.Container, cmd *cobra.Command, args []string) error {
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

	notifier := consoleNotifier{}

	poller := managers.NewIngestionPoller(managers.IngestionPollerDependencies{
		Knowledge:   deps.Knowledge,
		Notifier:    notifier,
		KnowledgeID: knowledgeID,
		OnRefresh:   listRefresh(deps.Knowledge, knowledgeID),
	})

	coordinator := managers.NewUploadCoordinator(managers.UploadCoordinatorDependencies{
		Client:      deps.Client,
		Notifier:    notifier,
		Poller:      poller,
		KnowledgeID: knowledgeID,
	})

	candidates := make([]domain.FileCandidate, 0, len(args))

	for _, path := range args {
		info, err := os.Stat(path)
		if err != nil {
			notifier.Errorf("cannot read %s: %v", path, err)
			continue
		}
		if info.IsDir() {
			notifier.Errorf("%s is a directory", path)
			continue
		}

		candidates = append(candidates, domain.FileCandidate{
			Name:      filepath.Base(path),
			Path:      path,
			SizeBytes: info.Size(),
		})
	}

	items := coordinator.SelectFiles(candidates)
	if len(items) == 0 {
		return fmt.Errorf("no files accepted for upload")
	}

	for _, item := range items {
		fmt.Printf("   %s (%s)\n", item.Name, humanize.IBytes(uint64(item.SizeBytes)))
	}

	result, err := coordinator.UploadBatch(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d/%d files uploaded\n", result.SuccessCount, result.TotalCount)

	if result.SuccessCount == 0 {
		return fmt.Errorf("no files were uploaded")
	}

	config := deps.Config
	config.LastUploadAt = time.Now().UTC().Format(time.RFC3339)
	if err := container.GetConfigManager().SaveConfig(ctx, config); err != nil {
		log.Debug().Err(err).Msg("failed to record last upload time")
	}

	watch, _ := cmd.Flags().GetBool("watch")
	if !watch {
		poller.Stop()
		return nil
	}

	if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
		app := server.NewStatusServer(server.StatusServerDependencies{Poller: poller})
		go server.Run(ctx, app, listen)
	}

	fmt.Println("⏳ Waiting for ingestion to finish (Ctrl-C to stop watching)")

	select {
	case <-ctx.Done():
		poller.Stop()
	case <-poller.Done():
	}

	return nil
}

// listRefresh re-fetches the knowledge base's files and prints a status
// summary. The poller runs it once when it stops, whatever the reason.
func listRefresh(knowledge domain.KnowledgeManager, knowledgeID string) func(ctx context.Context) {
	return func(ctx context.Context) {
		result, err := knowledge.ListFiles(ctx, domain.ListFilesParams{
			KnowledgeID: knowledgeID,
			Page:        1,
			PageSize:    pagination.DefaultPageSize,
		})
		if err != nil {
			log.Debug().Err(err).Str("knowledge_id", knowledgeID).Msg("final list refresh failed")
			return
		}

		var completed, failed, inProgress int
		for _, f := range result.Files {
			switch f.EmbeddingStatus {
			case domain.EmbeddingStatus_Completed:
				completed++
			case domain.EmbeddingStatus_Failed:
				failed++
			default:
				inProgress++
			}
		}

		fmt.Printf("📋 %d files: %d completed, %d failed, %d in progress\n",
			result.Total, completed, failed, inProgress)

		for _, f := range result.Files {
			if f.EmbeddingStatus == domain.EmbeddingStatus_Failed && f.EmbeddingError != "" {
				fmt.Printf("   ❌ %s: %s\n", f.Name, f.EmbeddingError)
			}
		}
	}
}
