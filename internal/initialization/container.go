package initialization

import (
	"context"
	"fmt"

	"github.com/kbforge/kbforge/internal/managers"
	"github.com/kbforge/kbforge/pkg/clients/kbforge"
	"github.com/kbforge/kbforge/pkg/domain"
)

// Container wires the config manager, SDK client and managers for the CLI.
type Container struct {
	configManager domain.ConfigManager
}

func NewContainer() (*Container, error) {
	configManager, err := domain.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}

	return &Container{
		configManager: configManager,
	}, nil
}

func (c *Container) GetConfigManager() domain.ConfigManager {
	return c.configManager
}

// Dependencies holds everything a command needs to talk to the API.
type Dependencies struct {
	Config    domain.Config
	Client    *kbforge.Client
	Knowledge domain.KnowledgeManager
}

// DependencyOverrides carries command-line overrides applied on top of the
// stored configuration.
type DependencyOverrides struct {
	APIBaseURL string
}

func (c *Container) BuildDependencies(ctx context.Context, overrides DependencyOverrides) (*Dependencies, error) {
	config, err := c.configManager.GetConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if overrides.APIBaseURL != "" {
		config.APIBaseURL = overrides.APIBaseURL
	}

	if config.APIBaseURL == "" {
		return nil, fmt.Errorf("no API URL configured, set KBFORGE_API_URL or write ~/.kbforge/config.json")
	}

	client := kbforge.NewClient(
		kbforge.WithBaseURL(config.APIBaseURL),
		kbforge.WithAPIKey(config.APIKey),
	)

	knowledge := managers.NewKnowledgeManager(managers.KnowledgeManagerDependencies{
		Client: client,
	})

	return &Dependencies{
		Config:    config,
		Client:    client,
		Knowledge: knowledge,
	}, nil
}
