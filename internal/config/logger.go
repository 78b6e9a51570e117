package config

import (
	"fmt"

	"go.uber.org/zap/zapcore"
)

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level  string
	Format string
	// File enables a rotating JSON log next to the console output.
	File       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// LoadLoggerConfig loads logging configuration from environment variables
func LoadLoggerConfig(getenv func(string) string) (*LoggerConfig, error) {
	config := &LoggerConfig{
		Level:  envString(getenv, "LOG_LEVEL", "info"),
		Format: envString(getenv, "LOG_FORMAT", "console"),
		File:   getenv("LOG_FILE"),
	}

	if _, err := zapcore.ParseLevel(config.Level); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL is invalid: %w", err)
	}
	if config.Format != "console" && config.Format != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be console or json, got %q", config.Format)
	}

	var err error
	if config.MaxSizeMB, err = envInt(getenv, "LOG_MAX_SIZE_MB", 100); err != nil {
		return nil, err
	}
	if config.MaxBackups, err = envInt(getenv, "LOG_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if config.MaxAgeDays, err = envInt(getenv, "LOG_MAX_AGE_DAYS", 28); err != nil {
		return nil, err
	}

	return config, nil
}
