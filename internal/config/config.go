// Package config loads newsdeck's YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultDBPath         = "newsdeck.db"
	defaultRefreshMinutes = 15
)

// Config holds runtime settings plus the seed feed list applied to the
// store on startup.
type Config struct {
	App   AppConfig `yaml:"app"`
	Feeds []Source  `yaml:"feeds"`
}

type AppConfig struct {
	DBPath         string `yaml:"db_path"`
	RefreshMinutes int    `yaml:"refresh_minutes"`
	CleanupDays    int    `yaml:"cleanup_days"`
}

// Source is one subscribed feed. An empty category means General.
type Source struct {
	URL      string `yaml:"url"`
	Category string `yaml:"category"`
}

// Load reads the config file at path. A missing file yields the
// defaults; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Config{
		App: AppConfig{
			DBPath:         defaultDBPath,
			RefreshMinutes: defaultRefreshMinutes,
		},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, cfg.Validate()
		}
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.App.DBPath == "" {
		cfg.App.DBPath = defaultDBPath
	}
	if cfg.App.RefreshMinutes == 0 {
		cfg.App.RefreshMinutes = defaultRefreshMinutes
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if path := os.Getenv("NEWSDECK_DB_PATH"); path != "" {
		cfg.App.DBPath = path
	}
}

func (c Config) Validate() error {
	if c.App.DBPath == "" {
		return errors.New("db_path is required")
	}
	if c.App.RefreshMinutes < 0 {
		return fmt.Errorf("refresh_minutes must not be negative: %d", c.App.RefreshMinutes)
	}
	if c.App.CleanupDays < 0 {
		return fmt.Errorf("cleanup_days must not be negative: %d", c.App.CleanupDays)
	}
	for _, source := range c.Feeds {
		if source.URL == "" {
			return errors.New("feed source with empty url")
		}
	}
	return nil
}

// RefreshInterval returns the background refresh period.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.App.RefreshMinutes) * time.Minute
}
