package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rs/zerolog"

	"github.com/rshade/arffkit/internal/engine/cache"
	"github.com/rshade/arffkit/internal/logging"
)

// CurrentSchemaVersion is written by `config init`.
const CurrentSchemaVersion = "1.0.0"

// supportedSchema is the range of config schema versions this build reads.
const supportedSchema = "^1"

// ErrInvalidConfig wraps every validation problem.
var ErrInvalidConfig = errors.New("invalid configuration")

// CheckSchemaVersion reports whether v is a supported config schema version.
// An empty version is accepted as the current one.
func CheckSchemaVersion(v string) error {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	ver, err := semver.NewVersion(v)
	if err != nil {
		return fmt.Errorf("version %q: %w", v, err)
	}
	constraint, err := semver.NewConstraint(supportedSchema)
	if err != nil {
		return fmt.Errorf("schema constraint: %w", err)
	}
	if !constraint.Check(ver) {
		return fmt.Errorf("version %s is not supported (want %s)", ver, supportedSchema)
	}
	return nil
}

// Validate checks every section and returns all problems joined under
// ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []error
	add := func(section string, err error) {
		if err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", section, err))
		}
	}

	add("version", CheckSchemaVersion(c.Version))

	_, selErr := c.Selection.ToSelectionConfig()
	add("selection", selErr)
	if c.Selection.NumToSelect < -1 {
		add("selection", fmt.Errorf("num_to_select must be -1 or greater, got %d", c.Selection.NumToSelect))
	}

	add("batch", c.Batch.validate())

	if _, err := zerolog.ParseLevel(strings.ToLower(c.Logging.Level)); err != nil || c.Logging.Level == "" {
		add("logging", fmt.Errorf("unknown level %q", c.Logging.Level))
	}
	switch c.Logging.Format {
	case logging.FormatConsole, logging.FormatJSON, "text":
	default:
		add("logging", fmt.Errorf("unknown format %q", c.Logging.Format))
	}

	if c.Cache.Enabled {
		add("cache", cache.ValidateTTL(c.Cache.TTLSeconds))
	}

	switch c.Output.DefaultFormat {
	case FormatTable, FormatJSON:
	default:
		add("output", fmt.Errorf("unknown default_format %q", c.Output.DefaultFormat))
	}
	if c.Output.Precision < 0 || c.Output.Precision > 12 {
		add("output", fmt.Errorf("precision must be between 0 and 12, got %d", c.Output.Precision))
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(problems...))
}

func (b BatchConfig) validate() error {
	if !strings.HasPrefix(b.Extension, ".") || len(b.Extension) < 2 {
		return fmt.Errorf("extension must start with a dot, got %q", b.Extension)
	}
	if strings.ContainsAny(b.Extension[1:], `./\`) {
		return fmt.Errorf("extension must be a single suffix, got %q", b.Extension)
	}
	if b.Suffix == "" {
		return errors.New("suffix cannot be empty")
	}
	if strings.ContainsAny(b.Suffix, `/\`) {
		return fmt.Errorf("suffix cannot contain path separators, got %q", b.Suffix)
	}
	return nil
}
