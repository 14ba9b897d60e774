// Package config loads and saves ember's settings. Settings are read once at
// startup; a running instance never re-reads them, so changes take effect on
// the next launch.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Config is the root configuration structure.
type Config struct {
	Freshness FreshnessConfig `json:"freshness"`
	UI        UIConfig        `json:"ui"`
}

// FreshnessConfig scales the bucket thresholds and places the legend.
type FreshnessConfig struct {
	// TimeMultiplier is the base threshold in seconds. Hot, warm and cool
	// thresholds are 2x, 10x and 100x this value.
	TimeMultiplier int `json:"timeMultiplier"`
	// Corner places the freshness legend overlay: "nw", "ne", "sw" or "se".
	// Purely cosmetic, never affects classification.
	Corner string `json:"corner"`
}

// UIConfig configures appearance.
type UIConfig struct {
	ShowFooter bool `json:"showFooter"`
	ShowLegend bool `json:"showLegend"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Freshness: FreshnessConfig{
			TimeMultiplier: 60,
			Corner:         "nw",
		},
		UI: UIConfig{
			ShowFooter: true,
			ShowLegend: true,
		},
	}
}

// Validate clamps invalid values back to defaults.
func (c *Config) Validate() error {
	if c.Freshness.TimeMultiplier <= 0 {
		c.Freshness.TimeMultiplier = 60
	}
	switch c.Freshness.Corner {
	case "nw", "ne", "sw", "se", "0", "1", "2", "3":
	default:
		c.Freshness.Corner = "nw"
	}
	return nil
}

// ConfigPath returns the path of the config file, ~/.config/ember/config.json.
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".config", "ember", "config.json")
	}
	return filepath.Join(home, ".config", "ember", "config.json")
}

// Load reads the config from the default location. A missing file yields the
// defaults without error.
func Load() (*Config, error) {
	return LoadFrom(ConfigPath())
}

// LoadFrom reads the config from an explicit path. A missing file yields the
// defaults without error; an unreadable or malformed file is an error.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to the default location, creating the directory if
// needed.
func Save(cfg *Config) error {
	return SaveTo(cfg, ConfigPath())
}

// SaveTo writes the config to an explicit path.
func SaveTo(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
