package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbforge/kbforge/internal/initialization"
)

func NewResetCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset configuration and start fresh",
		Long:  `Remove the stored client configuration. Environment variables still apply afterwards.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(container)
		},
	}

	return cmd
}

func runReset(container *initialization.Container) error {
	configManager := container.GetConfigManager()

	if err := configManager.ResetConfig(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to reset configuration")
		return err
	}

	fmt.Println("✅ Configuration reset successfully")
	return nil
}
