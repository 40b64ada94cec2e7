// ABOUTME: Configuration management for asksee with YAML, .env and environment overrides.
// ABOUTME: Handles the API endpoint, visualization defaults, log settings, and ~ expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/2389-research/asksee/internal/api"
)

// Defaults applied when the config file and environment leave a field empty.
const (
	DefaultTimeout  = 30 * time.Second
	DefaultDims     = 2
	DefaultLimit    = 300
	DefaultLogLevel = "info"
)

// Config stores asksee configuration loaded from ~/.config/asksee/config.yaml.
type Config struct {
	API APIConfig `yaml:"api"`
	Viz VizConfig `yaml:"viz"`
	Log LogConfig `yaml:"log"`
}

// APIConfig holds the knowledge API endpoint.
type APIConfig struct {
	URL     string        `yaml:"url" env:"ASKSEE_API_URL"`
	Timeout time.Duration `yaml:"timeout" env:"ASKSEE_API_TIMEOUT"`
}

// VizConfig holds the default projection settings.
type VizConfig struct {
	Dims  int `yaml:"dims"`
	Limit int `yaml:"limit"`
}

// LogConfig holds diagnostic logging settings.
type LogConfig struct {
	Level string `yaml:"level" env:"ASKSEE_LOG_LEVEL"`
	File  string `yaml:"file,omitempty" env:"ASKSEE_LOG_FILE"`
}

// Default returns a config with every default filled in.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	c.API.URL = strings.TrimRight(strings.TrimSpace(c.API.URL), "/")
	if c.API.URL == "" {
		c.API.URL = api.DefaultAPIURL
	}
	if c.API.Timeout <= 0 {
		c.API.Timeout = DefaultTimeout
	}
	if c.Viz.Dims != 3 {
		c.Viz.Dims = DefaultDims
	}
	if c.Viz.Limit <= 0 {
		c.Viz.Limit = DefaultLimit
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
}

// GetConfigPath returns the config file path.
func GetConfigPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "asksee", "config.yaml"), nil
}

// StateDir returns the directory for logs and other runtime state.
func StateDir() (string, error) {
	stateDir := os.Getenv("XDG_STATE_HOME")
	if stateDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		stateDir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateDir, "asksee"), nil
}

// LogPath returns the file the TUI logs to. An explicit log.file wins.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return ExpandPath(c.Log.File)
	}
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "asksee.log"), nil
}

// ExpandPath expands a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}
	if path == "~" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return home, nil
	}
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}

// Load reads config from disk, then applies .env and environment overrides.
// A missing file yields the defaults.
func Load() (*Config, error) {
	cfg, err := loadFile()
	if err != nil {
		return nil, err
	}

	// A missing .env is normal.
	_ = godotenv.Load()

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.applyDefaults()
	return cfg, nil
}

func loadFile() (*Config, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &cfg, nil
}

// Save writes config to disk.
func (c *Config) Save() error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}
