package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the environment-manager and workflow configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Bottles  BottlesConfig  `yaml:"bottles"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	Catalog  CatalogConfig  `yaml:"catalog"`
}

// BottlesConfig describes how the external environment manager is reached.
type BottlesConfig struct {
	// Flavor selects the Bottles installation: "auto", "flatpak" or "native".
	Flavor string `yaml:"flavor"`
	// PrefixBase is the directory under which wine prefixes live.
	PrefixBase string `yaml:"prefix_base"`
	// Environment is the bottle template passed to bottles-cli new.
	Environment string `yaml:"environment"`
	// Runner names the wine runner recorded in the manager's registry.
	Runner string `yaml:"runner"`
}

// TimeoutsConfig bounds every external call, in seconds.
type TimeoutsConfig struct {
	CreateSec       int `yaml:"create_s"`
	InstallSec      int `yaml:"install_s"`
	RunSec          int `yaml:"run_s"`
	ExtractSec      int `yaml:"extract_s"`
	ShortcutSec     int `yaml:"shortcut_s"`
	ShortcutPollSec int `yaml:"shortcut_poll_s"`
}

// CatalogConfig points at the optional dependency-catalog overlay.
type CatalogConfig struct {
	OverlayFile string `yaml:"overlay_file"`
}

// Default returns the baseline configuration.
func Default() Config {
	return Config{
		Version: 1,
		Bottles: BottlesConfig{
			Flavor:      "auto",
			PrefixBase:  "/mnt/data",
			Environment: "gaming",
			Runner:      "soda-7.0-9",
		},
		Timeouts: TimeoutsConfig{
			CreateSec:       300,
			InstallSec:      600,
			RunSec:          900,
			ExtractSec:      300,
			ShortcutSec:     30,
			ShortcutPollSec: 10,
		},
	}
}

// Load reads the YAML configuration from disk if it exists, otherwise returns
// the default configuration. Environment variables (optionally sourced from a
// .env file next to the config) override individual fields afterwards.
func Load(path string) (Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			cfg.ApplyDefaults()
			cfg.applyEnv()
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.ApplyDefaults()
	cfg.applyEnv()
	return cfg, nil
}

// ApplyDefaults ensures fields fall back to sensible defaults when the YAML
// omits them.
func (c *Config) ApplyDefaults() {
	defaults := Default()

	if c.Version == 0 {
		c.Version = defaults.Version
	}
	if c.Bottles.Flavor == "" {
		c.Bottles.Flavor = defaults.Bottles.Flavor
	}
	if c.Bottles.PrefixBase == "" {
		c.Bottles.PrefixBase = defaults.Bottles.PrefixBase
	}
	if c.Bottles.Environment == "" {
		c.Bottles.Environment = defaults.Bottles.Environment
	}
	if c.Bottles.Runner == "" {
		c.Bottles.Runner = defaults.Bottles.Runner
	}
	if c.Timeouts.CreateSec == 0 {
		c.Timeouts.CreateSec = defaults.Timeouts.CreateSec
	}
	if c.Timeouts.InstallSec == 0 {
		c.Timeouts.InstallSec = defaults.Timeouts.InstallSec
	}
	if c.Timeouts.RunSec == 0 {
		c.Timeouts.RunSec = defaults.Timeouts.RunSec
	}
	if c.Timeouts.ExtractSec == 0 {
		c.Timeouts.ExtractSec = defaults.Timeouts.ExtractSec
	}
	if c.Timeouts.ShortcutSec == 0 {
		c.Timeouts.ShortcutSec = defaults.Timeouts.ShortcutSec
	}
	if c.Timeouts.ShortcutPollSec == 0 {
		c.Timeouts.ShortcutPollSec = defaults.Timeouts.ShortcutPollSec
	}
}

// Validate rejects configuration values the workflow cannot work with.
func (c Config) Validate() error {
	switch c.Bottles.Flavor {
	case "auto", "flatpak", "native":
	default:
		return fmt.Errorf("unknown bottles flavor %q", c.Bottles.Flavor)
	}
	if c.Bottles.PrefixBase == "" {
		return errors.New("bottles prefix_base must not be empty")
	}
	return nil
}

// CreateTimeout bounds bottle creation.
func (c Config) CreateTimeout() time.Duration {
	return time.Duration(c.Timeouts.CreateSec) * time.Second
}

// InstallTimeout bounds a single component installation.
func (c Config) InstallTimeout() time.Duration {
	return time.Duration(c.Timeouts.InstallSec) * time.Second
}

// RunTimeout bounds target-binary execution.
func (c Config) RunTimeout() time.Duration {
	return time.Duration(c.Timeouts.RunSec) * time.Second
}

// ExtractTimeout bounds disk-image extraction.
func (c Config) ExtractTimeout() time.Duration {
	return time.Duration(c.Timeouts.ExtractSec) * time.Second
}

// ShortcutTimeout bounds a single shortcut registration call.
func (c Config) ShortcutTimeout() time.Duration {
	return time.Duration(c.Timeouts.ShortcutSec) * time.Second
}

// ShortcutPollWindow bounds the wait for a native shortcut to appear.
func (c Config) ShortcutPollWindow() time.Duration {
	return time.Duration(c.Timeouts.ShortcutPollSec) * time.Second
}

// Marshal returns the YAML encoding of the configuration.
func (c Config) Marshal() ([]byte, error) {
	buf, err := yaml.Marshal(&c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return buf, nil
}
