package config

import (
	"os"
	"strings"

	"github.com/rshade/arffkit/internal/engine/cache"
)

// Environment variables read by ApplyEnv.
const (
	EnvHome       = "ARFFKIT_HOME"
	EnvProjectDir = "ARFFKIT_PROJECT_DIR"
	EnvLogLevel   = "ARFFKIT_LOG_LEVEL"
	EnvLogFormat  = "ARFFKIT_LOG_FORMAT"
	EnvStrategy   = "ARFFKIT_STRATEGY"
)

// ApplyEnv overrides fields from ARFFKIT_* environment variables. Invalid values are
// left for Validate to report, except cache settings, which fall back silently.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		c.Logging.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStrategy)); v != "" {
		c.Selection.Strategy = v
	}
	c.Cache.Enabled = cache.EnabledFromEnv(c.Cache.Enabled)
	c.Cache.TTLSeconds = cache.TTLFromEnv(c.Cache.TTLSeconds)
	c.Cache.Directory = cache.DirFromEnv(c.Cache.Directory)
}
