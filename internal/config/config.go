// Package config provides centralized configuration management for the application.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/issuebridge/issuebridge/internal/logging"
)

// Config holds all configuration parameters for the application.
type Config struct {
	GitHub  GitHubConfig
	Jira    JiraConfig
	Webhook WebhookConfig

	// DefaultsJSON is an inline JSON document of default sync settings.
	// When set it takes precedence over DefaultsFile, matching the
	// behavior of the DEFAULT_BOT_CONFIG override.
	DefaultsJSON string

	// DefaultsFile is the path of a YAML document of default sync settings.
	DefaultsFile string
}

// GitHubConfig holds GitHub specific configuration.
type GitHubConfig struct {
	Token  string
	Domain string
}

// JiraConfig holds JIRA specific configuration.
type JiraConfig struct {
	URL      string
	Username string
	Token    string
}

// WebhookConfig holds webhook endpoint configuration.
type WebhookConfig struct {
	// Secret is the shared HMAC secret used to verify delivery signatures.
	Secret string

	// BotName is the bot's own account login; events sent by it are ignored.
	BotName string

	// ListenAddr is the address the HTTP server binds to.
	ListenAddr string
}

// LoadConfig initializes and loads configuration from environment variables.
func LoadConfig() (*Config, error) {
	// Initialize Viper for environment variables
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Map specific environment variables
	v.BindEnv("github.token", "GITHUB_TOKEN")
	v.BindEnv("github.domain", "GITHUB_DOMAIN")
	v.BindEnv("jira.url", "JIRA_URL")
	v.BindEnv("jira.username", "JIRA_USERNAME")
	v.BindEnv("jira.token", "JIRA_TOKEN")
	v.BindEnv("webhook.secret", "WEBHOOK_SECRET")
	v.BindEnv("webhook.botname", "BOT_NAME")
	v.BindEnv("webhook.listenaddr", "LISTEN_ADDR")
	v.BindEnv("defaults.json", "DEFAULT_BOT_CONFIG")
	v.BindEnv("defaults.file", "BOT_CONFIG_FILE")

	v.SetDefault("github.domain", "github.com")
	v.SetDefault("webhook.listenaddr", ":3000")
	v.SetDefault("defaults.file", "settings.yaml")

	config := &Config{
		GitHub: GitHubConfig{
			Token:  v.GetString("github.token"),
			Domain: v.GetString("github.domain"),
		},
		Jira: JiraConfig{
			URL:      v.GetString("jira.url"),
			Username: v.GetString("jira.username"),
			Token:    v.GetString("jira.token"),
		},
		Webhook: WebhookConfig{
			Secret:     v.GetString("webhook.secret"),
			BotName:    v.GetString("webhook.botname"),
			ListenAddr: v.GetString("webhook.listenaddr"),
		},
		DefaultsJSON: v.GetString("defaults.json"),
		DefaultsFile: v.GetString("defaults.file"),
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// validateConfig ensures that all required configuration values are provided.
func validateConfig(config *Config) error {
	var missingVars []string

	if config.GitHub.Token == "" {
		missingVars = append(missingVars, "GITHUB_TOKEN")
	}
	if config.Jira.URL == "" {
		missingVars = append(missingVars, "JIRA_URL")
	}
	if config.Jira.Username == "" {
		missingVars = append(missingVars, "JIRA_USERNAME")
	}
	if config.Jira.Token == "" {
		missingVars = append(missingVars, "JIRA_TOKEN")
	}
	if config.Webhook.Secret == "" {
		missingVars = append(missingVars, "WEBHOOK_SECRET")
	}

	if len(missingVars) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missingVars)
	}

	return nil
}

// LoadDefaultSettings loads the process-wide default sync settings. The
// inline JSON document wins over the YAML file when both are configured;
// a missing file leaves the defaults empty, so every setting must then
// come from the per-repository settings file.
// The result is read-only after startup; every request merges into its own
// copy and never mutates this one.
func (c *Config) LoadDefaultSettings() (map[string]any, error) {
	if c.DefaultsJSON != "" {
		var defaults map[string]any
		if err := json.Unmarshal([]byte(c.DefaultsJSON), &defaults); err != nil {
			return nil, fmt.Errorf("failed to parse DEFAULT_BOT_CONFIG: %w", err)
		}
		return defaults, nil
	}

	data, err := os.ReadFile(c.DefaultsFile)
	if errors.Is(err, os.ErrNotExist) {
		logging.Warn("default settings file not found, starting with empty defaults",
			"path", c.DefaultsFile)
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read default settings file: %w", err)
	}

	var defaults map[string]any
	if err := yaml.Unmarshal(data, &defaults); err != nil {
		return nil, fmt.Errorf("failed to parse default settings file: %w", err)
	}

	return defaults, nil
}
