package cli

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/kbforge/kbforge/internal/initialization"
	"github.com/kbforge/kbforge/pkg/domain"
	"github.com/kbforge/kbforge/pkg/utils/pagination"
)

func NewFilesCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files",
		Short: "Manage knowledge base files",
		Long:  `List and delete the files of a knowledge base, including their server-side embedding status.`,
	}

	cmd.AddCommand(NewFilesListCommand(container))
	cmd.AddCommand(NewFilesDeleteCommand(container))

	return cmd
}

func NewFilesListCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files in a knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilesList(container, cmd)
		},
	}

	cmd.Flags().StringP("knowledge", "k", "", "Target knowledge base ID (defaults to the configured one)")
	cmd.Flags().Int("page", 1, "Page number")
	cmd.Flags().Int("page-size", 20, "Page size")

	return cmd
}

func runFilesList(container *initialization.Container, cmd *cobra.Command) error {
	ctx := context.Background()

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

	page, _ := cmd.Flags().GetInt("page")
	pageSize, _ := cmd.Flags().GetInt("page-size")

	params := pagination.Normalize(pagination.Params{Page: page, PageSize: pageSize})

	result, err := deps.Knowledge.ListFiles(ctx, domain.ListFilesParams{
		KnowledgeID: knowledgeID,
		Page:        params.Page,
		PageSize:    params.PageSize,
	})
	if err != nil {
		return err
	}

	fmt.Printf("📋 Files in %s (%d total, page %d/%d):\n",
		knowledgeID, result.Total, params.Page, pagination.PageCount(result.Total, params.PageSize))

	for _, f := range result.Files {
		line := fmt.Sprintf("   %s  %s  %s  %s", f.ID, f.Name, humanize.IBytes(uint64(f.FileSizeBytes)), f.EmbeddingStatus)
		if f.EmbeddingStatus == domain.EmbeddingStatus_Failed && f.EmbeddingError != "" {
			line += "  (" + f.EmbeddingError + ")"
		}
		fmt.Println(line)
	}

	return nil
}

func NewFilesDeleteCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <file-id>",
		Short: "Delete a file from a knowledge base",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runFilesDelete(container, cmd, args[0])
		},
	}

	cmd.Flags().StringP("knowledge", "k", "", "Target knowledge base ID (defaults to the configured one)")

	return cmd
}

func runFilesDelete(container *initialization.Container, cmd *cobra.Command, fileID string) error {
	ctx := context.Background()

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

	if err := deps.Knowledge.DeleteFile(ctx, knowledgeID, fileID); err != nil {
		return err
	}

	fmt.Printf("✅ Deleted %s\n", fileID)
	return nil
}
