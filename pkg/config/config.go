// Package config provides configuration for the converter. It loads
// settings from environment variables and optional .env files.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Config represents the application configuration. Command-line flags
// override any value set here.
type Config struct {
	// BackupPath is the MyExpenses backup database file.
	BackupPath string
	// ExcludeFiles are exclusion-list files, unioned.
	ExcludeFiles []string
	// MappingPath is an optional YAML label-mapping overlay.
	MappingPath string
	Debug       bool
}

// DefaultBackup is the backup file used when nothing else is
// configured, matching the conventional export name.
const DefaultBackup = "BACKUP"

// Load loads configuration from environment variables. It reads a
// .env file from the current directory when present; a custom path
// may be passed instead.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Ignore a missing default .env.
		_ = godotenv.Load()
	}

	cfg := &Config{
		BackupPath:  getEnvOrDefault("MEXP_BACKUP", DefaultBackup),
		MappingPath: os.Getenv("MEXP_MAPPING"),
		Debug:       os.Getenv("DEBUG") == "true",
	}
	if list := os.Getenv("MEXP_EXCLUDE"); list != "" {
		cfg.ExcludeFiles = filepath.SplitList(list)
	}
	return cfg, nil
}

// getEnvOrDefault returns the value of the environment variable or a
// default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
