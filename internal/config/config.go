package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// ServerConfig holds connection settings for the work order backend.
type ServerConfig struct {
	// BaseURL is the root URL of the backend (e.g. http://localhost:8000).
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// TimeoutSec bounds every request; requests exceeding it fail
	// with a timeout error instead of hanging.
	TimeoutSec int `mapstructure:"timeout_sec" yaml:"timeout_sec"`
}

// StorageConfig selects the credential persistence backend.
type StorageConfig struct {
	// Backend is "keyring" (system keyring) or "file" (local database).
	Backend string `mapstructure:"backend" yaml:"backend"`

	// Path is the database location for the "file" backend.
	Path string `mapstructure:"path" yaml:"path"`
}

// LogConfig holds logging settings. The terminal is owned by the UI
// renderer, so logs always go to a file.
type LogConfig struct {
	File string `mapstructure:"file" yaml:"file"`
}

// Config is the top-level application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server" yaml:"server"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Log     LogConfig     `mapstructure:"log" yaml:"log"`
}

// DefaultPath returns the default configuration file location,
// ~/.config/icom/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "icom", "config.yaml")
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			BaseURL:    "http://localhost:8000",
			TimeoutSec: 10,
		},
		Storage: StorageConfig{
			Backend: "keyring",
			Path:    filepath.Join(filepath.Dir(DefaultPath()), "icom.db"),
		},
		Log: LogConfig{
			File: filepath.Join(filepath.Dir(DefaultPath()), "icom.log"),
		},
	}
}

// Load reads configuration from the given YAML file path using Viper.
// A missing file is not an error; defaults are returned instead.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("server.base_url", "http://localhost:8000")
	v.SetDefault("server.timeout_sec", 10)
	v.SetDefault("storage.backend", "keyring")
	v.SetDefault("storage.path", defaultConfig().Storage.Path)
	v.SetDefault("log.file", defaultConfig().Log.File)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}
