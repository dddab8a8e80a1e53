package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// GitHub
	GitHubToken string

	// Slack
	SlackToken   string
	SlackChannel string

	// Opsgenie
	OpsgenieAPIKey string

	// HTTP response cache
	CacheBackend string // "sqlite" or "postgres"
	CachePath    string
	PostgresURL  string

	// API Server
	APIPort string
	APIHost string
}

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	return &Config{
		GitHubToken:    getEnv("GITHUB_TOKEN", ""),
		SlackToken:     getEnv("SLACK_TOKEN", ""),
		SlackChannel:   getEnv("SLACK_CHANNEL", ""),
		OpsgenieAPIKey: getEnv("OPSGENIE_API_KEY", ""),
		CacheBackend:   getEnv("CACHE_BACKEND", "sqlite"),
		CachePath:      getEnv("CACHE_PATH", "./http-cache.db"),
		PostgresURL:    getEnv("POSTGRES_URL", ""),
		APIPort:        getEnv("API_PORT", "8080"),
		APIHost:        getEnv("API_HOST", "localhost"),
	}, nil
}

// getEnv returns the value of an environment variable or a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.CacheBackend != "sqlite" && c.CacheBackend != "postgres" {
		return &ConfigError{Field: "CACHE_BACKEND", Message: "must be 'sqlite' or 'postgres'"}
	}
	if c.CacheBackend == "postgres" && c.PostgresURL == "" {
		return &ConfigError{Field: "POSTGRES_URL", Message: "PostgreSQL URL is required when CACHE_BACKEND is 'postgres'"}
	}
	return nil
}

// RequireGitHub ensures a GitHub credential is present.
func (c *Config) RequireGitHub() error {
	if c.GitHubToken == "" {
		return &ConfigError{Field: "GITHUB_TOKEN", Message: "GitHub token is required"}
	}
	return nil
}

// RequireSlack ensures Slack credentials are present.
func (c *Config) RequireSlack() error {
	if c.SlackToken == "" {
		return &ConfigError{Field: "SLACK_TOKEN", Message: "Slack API token is required"}
	}
	if c.SlackChannel == "" {
		return &ConfigError{Field: "SLACK_CHANNEL", Message: "Slack channel is required"}
	}
	return nil
}

// RequireOpsgenie ensures an Opsgenie credential is present.
func (c *Config) RequireOpsgenie() error {
	if c.OpsgenieAPIKey == "" {
		return &ConfigError{Field: "OPSGENIE_API_KEY", Message: "Opsgenie API key is required"}
	}
	return nil
}

// ConfigError represents a configuration error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}
