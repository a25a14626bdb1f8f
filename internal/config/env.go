package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables that override the configuration file.
const (
	EnvStylesheet = "DN2DBK_STYLESHEET"
	EnvEngine     = "DN2DBK_ENGINE"
	EnvToplevel   = "DN2DBK_TOPLEVEL"
	EnvLogLevel   = "DN2DBK_LOG_LEVEL"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads .env and .env.local when present. Existing process environment
// variables are not overwritten.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", "path", name, "error", err)
			continue
		}
		slog.Debug("Loaded environment variables", "path", name)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvStylesheet); v != "" {
		cfg.Stylesheet = v
	}
	if v := os.Getenv(EnvEngine); v != "" {
		cfg.Engine = v
	}
	if v := os.Getenv(EnvToplevel); v != "" {
		cfg.Toplevel = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = LogLevel(v)
	}
}

func baseName(p string) string {
	return filepath.Base(filepath.Clean(p))
}
