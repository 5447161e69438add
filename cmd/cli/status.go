package cli

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/kbforge/kbforge/internal/initialization"
)

func NewStatusCommand(container *initialization.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show current configuration status",
		Long:  `Display the current client configuration: API endpoint, credential state and the default knowledge base.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(container)
		},
	}

	return cmd
}

func runStatus(container *initialization.Container) error {
	configManager := container.GetConfigManager()

	if configManager.IsSetupComplete(context.Background()) {
		config, err := configManager.GetConfig(context.Background())
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load configuration")
			return err
		}

		fmt.Println("✅ Client is configured")
		fmt.Printf("   API URL: %s\n", config.APIBaseURL)
		fmt.Printf("   API key: %s\n", maskKey(config.APIKey))
		if config.DefaultKnowledgeID != "" {
			fmt.Printf("   Default knowledge base: %s\n", config.DefaultKnowledgeID)
		}
		if config.LastUploadAt != "" {
			fmt.Printf("   Last upload: %s\n", config.LastUploadAt)
		}
	} else {
		fmt.Println("❌ Client is not configured")
		fmt.Println("Set KBFORGE_API_URL and KBFORGE_API_KEY, or write ~/.kbforge/config.json")
	}

	return nil
}

func maskKey(key string) string {
	if len(key) <= 8 {
		return "(set)"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
