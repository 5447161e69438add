package cli

import (
	"fmt"
	"os"

	"github.com/kbforge/kbforge/internal/initialization"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "kbforge",
		Short: "KBForge knowledge-base CLI",
		Long: `KBForge is a client for the KBForge knowledge platform. It uploads document
batches into a knowledge base and watches server-side embedding progress until
every file reaches a terminal state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if debug, _ := cmd.Flags().GetBool("debug"); debug {
				zerolog.SetGlobalLevel(zerolog.DebugLevel)
			} else {
				zerolog.SetGlobalLevel(zerolog.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().String("api-url", "", "Override API URL")

	container, err := initialization.NewContainer()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize container: %v\n", err)
		os.Exit(1)
	}

	rootCmd.AddCommand(NewUploadCommand(container))
	rootCmd.AddCommand(NewWatchCommand(container))
	rootCmd.AddCommand(NewFilesCommand(container))
	rootCmd.AddCommand(NewKnowledgesCommand(container))
	rootCmd.AddCommand(NewStatusCommand(container))
	rootCmd.AddCommand(NewResetCommand(container))
	rootCmd.AddCommand(NewVersionCommand())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func apiURLOverride(cmd *cobra.Command) initialization.DependencyOverrides {
	apiURL, _ := cmd.Flags().GetString("api-url")
	return initialization.DependencyOverrides{APIBaseURL: apiURL}
}
