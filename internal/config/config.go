package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds the server settings. Values resolve in three layers:
// built-in defaults, then an optional TOML file, then environment
// variables.
type Config struct {
	Addr       string `toml:"addr"`
	DBPath     string `toml:"db_path"`
	HealthPath string `toml:"health_path"`
	Env        string `toml:"env"`
	LogLevel   string `toml:"log_level"`
}

const defaultConfigFile = "todo.toml"

func defaults() Config {
	return Config{
		Addr:       ":8080",
		DBPath:     "./data/todo.db",
		HealthPath: "/healthz",
		Env:        "development",
		LogLevel:   "info",
	}
}

// Load resolves the configuration. The file named by TODO_CONFIG is
// required when set; ./todo.toml is picked up when present.
func Load() (Config, error) {
	cfg := defaults()

	path := os.Getenv("TODO_CONFIG")
	explicit := path != ""
	if path == "" {
		path = defaultConfigFile
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if explicit {
		return cfg, fmt.Errorf("config file %s: %w", path, err)
	}

	envOverride("TODO_ADDR", &cfg.Addr)
	envOverride("TODO_DB_PATH", &cfg.DBPath)
	envOverride("TODO_HEALTH_PATH", &cfg.HealthPath)
	envOverride("TODO_ENV", &cfg.Env)
	envOverride("TODO_LOG_LEVEL", &cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func (c Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if !strings.HasPrefix(c.HealthPath, "/") {
		return fmt.Errorf("health_path must start with /: %q", c.HealthPath)
	}
	if c.DBPath == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	return nil
}
