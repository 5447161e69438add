package domain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	APIBaseURL         string `mapstructure:"api_base_url"`
	APIKey             string `mapstructure:"api_key"`
	DefaultKnowledgeID string `mapstructure:"default_knowledge_id"`
	LastUploadAt       string `mapstructure:"last_upload_at"`
}

type ConfigManager interface {
	IsSetupComplete(ctx context.Context) bool
	GetConfig(ctx context.Context) (Config, error)
	SaveConfig(ctx context.Context, config Config) error
	ResetConfig(ctx context.Context) error
}

type configManager struct {
	viper *viper.Viper
}

func NewConfigManager() (ConfigManager, error) {
	v := viper.New()

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("KBFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	envMappings := map[string]string{
		"api_base_url":         "KBFORGE_API_URL",
		"api_key":              "KBFORGE_API_KEY",
		"default_knowledge_id": "KBFORGE_KNOWLEDGE_ID",
	}

	for configKey, envVar := range envMappings {
		if err := v.BindEnv(configKey, envVar); err != nil {
			log.Warn().Err(err).Msgf("Failed to bind environment variable %s for %s", envVar, configKey)
		}
	}

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.kbforge")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		log.Debug().Msg("Config file not found, using environment variables and defaults")
	} else {
		log.Debug().Msgf("Using config file: %s", v.ConfigFileUsed())
	}

	return &configManager{
		viper: v,
	}, nil
}

func (m *configManager) IsSetupComplete(ctx context.Context) bool {
	config, err := m.GetConfig(ctx)
	if err != nil {
		return false
	}

	return config.APIBaseURL != "" && config.APIKey != ""
}

func (m *configManager) GetConfig(ctx context.Context) (Config, error) {
	var config Config
	if err := m.viper.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("unable to decode config: %w", err)
	}

	return config, nil
}

func (m *configManager) SaveConfig(ctx context.Context, config Config) error {
	m.viper.Set("api_base_url", config.APIBaseURL)
	m.viper.Set("api_key", config.APIKey)
	m.viper.Set("default_knowledge_id", config.DefaultKnowledgeID)
	m.viper.Set("last_upload_at", config.LastUploadAt)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".kbforge")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.json")
	if err := m.viper.WriteConfigAs(configPath); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

func (m *configManager) ResetConfig(ctx context.Context) error {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configPath := filepath.Join(homeDir, ".kbforge", "config.json")
	if err := os.Remove(configPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove config file: %w", err)
	}

	for key := range m.viper.AllSettings() {
		m.viper.Set(key, nil)
	}

	setDefaults(m.viper)

	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api_base_url", "https://api.kbforge.io")
}
