package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/dn2docbook/internal/docbook"
	ferrors "git.home.luguber.info/inful/dn2docbook/internal/foundation/errors"
)

// DefaultPath is the configuration file read when no --config flag is given.
const DefaultPath = "dn2docbook.yaml"

// Config represents the application configuration.
type Config struct {
	// Stylesheet overrides the embedded DocUtils-to-DocBook stylesheet.
	Stylesheet string        `yaml:"stylesheet,omitempty"`
	Engine     string        `yaml:"engine"`
	Toplevel   string        `yaml:"toplevel"`
	Index      string        `yaml:"index"`
	Logging    LoggingConfig `yaml:"logging"`
	Metrics    MetricsConfig `yaml:"metrics"`
	Watch      WatchConfig   `yaml:"watch"`
}

// LoggingConfig selects the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls the Prometheus textfile export.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// WatchConfig tunes the watch command.
type WatchConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Engine == "" {
		cfg.Engine = "libxslt"
	}
	if cfg.Toplevel == "" {
		cfg.Toplevel = "chapter"
	}
	if cfg.Index == "" {
		cfg.Index = "index.xml"
	}
	cfg.Logging.Level = NormalizeLogLevel(string(cfg.Logging.Level))
	cfg.Logging.Format = NormalizeLogFormat(string(cfg.Logging.Format))
	if cfg.Watch.Debounce <= 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
}

// Load loads configuration from the specified file. The file must exist.
func Load(configPath string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ferrors.ConfigError("configuration file not found").
				WithCause(err).
				WithContext("path", configPath).
				Build()
		}
		return nil, ferrors.FileSystemError("failed to read config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return parse(configPath, data)
}

// LoadOptional behaves like Load but returns defaults when the file does not exist.
func LoadOptional(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); errors.Is(err, os.ErrNotExist) {
		loadEnvFiles()
		cfg := &Config{}
		applyEnvOverrides(cfg)
		applyDefaults(cfg)
		return cfg, validate(cfg)
	}
	return Load(configPath)
}

func parse(configPath string, data []byte) (*Config, error) {
	// Expand environment variables in the YAML content
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, ferrors.ConfigError("failed to unmarshal config").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func validate(cfg *Config) error {
	if _, err := docbook.ParseToplevel(cfg.Toplevel); err != nil {
		return ferrors.ConfigError("invalid toplevel").WithCause(err).Build()
	}
	if cfg.Index != "" && cfg.Index != baseName(cfg.Index) {
		return ferrors.ConfigError(fmt.Sprintf("index must be a file name, got %q", cfg.Index)).Build()
	}
	return nil
}

// Init creates a new configuration file with the defaults spelled out.
func Init(configPath string, force bool) error {
	if _, err := os.Stat(configPath); err == nil && !force {
		return ferrors.ValidationError(fmt.Sprintf("configuration file already exists: %s (use --force to overwrite)", configPath)).Build()
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	header := "# dn2docbook configuration. Environment variables (${VAR}) are expanded.\n"
	if err := os.WriteFile(configPath, append([]byte(header), data...), 0o644); err != nil {
		return ferrors.FileSystemError("failed to write config file").
			WithCause(err).
			WithContext("path", configPath).
			Build()
	}
	return nil
}
