package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/sidharth-timber/tally-connect/internal/logger"
)

// Default endpoints. Tally listens on a fixed local port; the coordination
// server address has no meaningful default and must be configured.
const (
	DefaultTallyURL     = "http://localhost:9000"
	DefaultSyncInterval = 60 * time.Second
	DefaultServerPort   = "8080"
)

type Config struct {
	// Coordination server (the remote order-management side)
	ServerURL string
	APIKey    string

	// Tally import endpoint
	TallyURL string

	// Agent behaviour
	SyncInterval     time.Duration
	MasterSchemaFile string // optional YAML overriding master-record definitions

	// Coordination server mode (serve command)
	Port        string
	DatabaseURL string // optional; empty selects the in-memory store

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		ServerURL:        getEnv("SERVER_URL", ""),
		APIKey:           getEnv("API_KEY", ""),
		TallyURL:         getEnv("TALLY_URL", DefaultTallyURL),
		SyncInterval:     DefaultSyncInterval,
		MasterSchemaFile: getEnv("MASTER_SCHEMA_FILE", ""),
		Port:             getEnv("PORT", DefaultServerPort),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:    getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:        getEnv("LOG_OUTPUT", "stdout"),
	}

	if raw := getEnv("SYNC_INTERVAL_SECONDS", ""); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return nil, fmt.Errorf("invalid SYNC_INTERVAL_SECONDS %q", raw)
		}
		config.SyncInterval = time.Duration(secs) * time.Second
	}

	return config, nil
}

// ValidateAgent checks the settings the sync agent cannot run without.
// The serve command has no required settings, so validation is per-mode
// rather than part of Load.
func (c *Config) ValidateAgent() error {
	if c.ServerURL == "" {
		return fmt.Errorf("SERVER_URL is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
