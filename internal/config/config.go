package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/webtime/config.yaml"

// Config holds all webtime configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Daemon  DaemonConfig  `yaml:"daemon"`
	Report  ReportConfig  `yaml:"report"`
	Logging LoggingConfig `yaml:"logging"`
	Ignore  IgnoreConfig  `yaml:"ignore"`
}

type StorageConfig struct {
	Path       string `yaml:"path" env:"WEBTIME_STORAGE_PATH"`
	SQLiteFile string `yaml:"sqlite_file" env:"WEBTIME_SQLITE_FILE"`
	StoreName  string `yaml:"store_name" env:"WEBTIME_STORE_NAME"`
}

type DaemonConfig struct {
	Host                    string `yaml:"host" env:"WEBTIME_DAEMON_HOST"`
	Port                    int    `yaml:"port" env:"WEBTIME_DAEMON_PORT"`
	AutosaveIntervalMinutes int    `yaml:"autosave_interval_minutes" env:"WEBTIME_AUTOSAVE_INTERVAL_MINUTES"`
}

type ReportConfig struct {
	TopCount int `yaml:"top_count" env:"WEBTIME_TOP_COUNT"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"WEBTIME_LOG_LEVEL"`
}

type IgnoreConfig struct {
	Domains []string `yaml:"domains"`
}

// Load reads a YAML config file at path, merges it with defaults, applies
// environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate rejects configurations the core fails fast on.
func (c *Config) Validate() error {
	if c.Storage.StoreName == "" {
		return fmt.Errorf("config: storage.store_name is required")
	}
	if c.Daemon.Port < 1 || c.Daemon.Port > 65535 {
		return fmt.Errorf("config: daemon.port %d out of range", c.Daemon.Port)
	}
	if c.Daemon.AutosaveIntervalMinutes < 1 {
		return fmt.Errorf("config: daemon.autosave_interval_minutes must be positive")
	}
	return nil
}

// IsIgnored reports whether ticks for hostname are dropped.
func (c *Config) IsIgnored(hostname string) bool {
	for _, d := range c.Ignore.Domains {
		if d == hostname {
			return true
		}
	}
	return false
}

// DatabasePath resolves the SQLite file location from the storage section.
func (c *Config) DatabasePath() (string, error) {
	dir, err := expandPath(c.Storage.Path)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, c.Storage.SQLiteFile), nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		return cfg, nil
	}

	return Load(path)
}
