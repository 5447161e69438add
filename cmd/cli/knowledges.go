package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kbforge/kbforge/internal/initialization"
)

func NewKnowledgesCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "knowledges",
		Short: "List knowledge bases",
		Long:  `List the knowledge bases visible with the configured credentials.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKnowledgesList(container, cmd)
		},
	}

	return cmd
}

func runKnowledgesList(container *initialization.Container, cmd *cobra.Command) error {
	ctx := context.Background()

	deps, err := container.BuildDependencies(ctx, apiURLOverride(cmd))
	if err != nil {
		return err
	}

	knowledges, err := deps.Knowledge.ListKnowledges(ctx)
	if err != nil {
		return err
	}

	if len(knowledges) == 0 {
		fmt.Println("No knowledge bases found")
		return nil
	}

	fmt.Println("📋 Knowledge bases:")
	for _, k := range knowledges {
		marker := " "
		if k.ID == deps.Config.DefaultKnowledgeID {
			marker = "*"
		}
		fmt.Printf(" %s %s  %s (%d files)\n", marker, k.ID, k.Name, k.FileCount)
	}

	return nil
}
