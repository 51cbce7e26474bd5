package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// applyEnv layers environment-variable overrides on top of the loaded
// configuration. A .env file in the working directory is sourced first, so a
// checked-in file can supply per-machine values without editing the YAML.
func (c *Config) applyEnv() {
	_ = godotenv.Load()

	if v := strings.TrimSpace(os.Getenv("BOTTLESMITH_FLAVOR")); v != "" {
		c.Bottles.Flavor = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv("BOTTLESMITH_PREFIX_BASE")); v != "" {
		c.Bottles.PrefixBase = v
	}
	if v := strings.TrimSpace(os.Getenv("BOTTLESMITH_ENVIRONMENT")); v != "" {
		c.Bottles.Environment = v
	}
	if v := strings.TrimSpace(os.Getenv("BOTTLESMITH_RUNNER")); v != "" {
		c.Bottles.Runner = v
	}
	if n, ok := envSeconds("BOTTLESMITH_RUN_TIMEOUT_S"); ok {
		c.Timeouts.RunSec = n
	}
	if n, ok := envSeconds("BOTTLESMITH_INSTALL_TIMEOUT_S"); ok {
		c.Timeouts.InstallSec = n
	}
}

func envSeconds(key string) (int, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
