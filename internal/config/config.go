// Package config loads, validates and saves the arffkit YAML configuration.
//
// Precedence, lowest first: built-in defaults, ~/.arffkit/config.yaml, the
// project-local .arffkit/config.yaml, the --config overlay, ARFFKIT_* environment
// variables, and finally command-line flags (applied by the CLI).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/rshade/arffkit/internal/engine/cache"
	"github.com/rshade/arffkit/internal/selection"
)

// Output format names.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// configFileName is the file name used in every config directory.
const configFileName = "config.yaml"

// Config is the full arffkit configuration.
type Config struct {
	// Version is the config schema version (semver, major 1).
	Version   string          `yaml:"version" json:"version"`
	Selection SelectionConfig `yaml:"selection" json:"selection"`
	Batch     BatchConfig     `yaml:"batch" json:"batch"`
	Logging   LoggingConfig   `yaml:"logging" json:"logging"`
	Cache     CacheConfig     `yaml:"cache" json:"cache"`
	Output    OutputConfig    `yaml:"output" json:"output"`

	configPath string
}

// SelectionConfig chooses the reducer applied to every file of a batch.
type SelectionConfig struct {
	Strategy          string  `yaml:"strategy" json:"strategy"`
	Backward          bool    `yaml:"backward" json:"backward"`
	LocallyPredictive bool    `yaml:"locally_predictive" json:"locally_predictive"`
	Threshold         float64 `yaml:"threshold" json:"threshold"`
	NumToSelect       int     `yaml:"num_to_select" json:"num_to_select"`
	Class             string  `yaml:"class" json:"class"`
}

// BatchConfig holds the input naming rule and the default output directory.
type BatchConfig struct {
	Extension string `yaml:"extension" json:"extension"`
	Suffix    string `yaml:"suffix" json:"suffix"`
	// OutputDir defaults to the input directory when empty.
	OutputDir string `yaml:"output_dir,omitempty" json:"output_dir,omitempty"`
	// Console mirrors the process log to stderr.
	Console bool `yaml:"console" json:"console"`
}

// LoggingConfig configures the command logger.
type LoggingConfig struct {
	Level  string `yaml:"level" json:"level"`
	Format string `yaml:"format" json:"format"`
	File   string `yaml:"file,omitempty" json:"file,omitempty"`
}

// CacheConfig configures the selection cache.
type CacheConfig struct {
	Enabled    bool   `yaml:"enabled" json:"enabled"`
	TTLSeconds int    `yaml:"ttl_seconds" json:"ttl_seconds"`
	Directory  string `yaml:"directory,omitempty" json:"directory,omitempty"`
}

// OutputConfig configures summary rendering.
type OutputConfig struct {
	DefaultFormat string `yaml:"default_format" json:"default_format"`
	Precision     int    `yaml:"precision" json:"precision"`
}

func defaultSelection() SelectionConfig {
	return SelectionConfig{
		Strategy:          string(selection.StrategyCFSGreedy),
		Backward:          true,
		LocallyPredictive: true,
		Threshold:         selection.DefaultThreshold,
		NumToSelect:       selection.DefaultNumToSelect,
		Class:             selection.DefaultClass,
	}
}

func defaultBatch() BatchConfig {
	return BatchConfig{Extension: ".arff", Suffix: "_selection", Console: true}
}

func defaultLogging() LoggingConfig {
	return LoggingConfig{Level: "info", Format: "console"}
}

func defaultCache() CacheConfig {
	return CacheConfig{Enabled: true, TTLSeconds: cache.DefaultTTLSeconds}
}

func defaultOutput() OutputConfig {
	return OutputConfig{DefaultFormat: FormatTable, Precision: 4}
}

// New returns the built-in defaults. The config path points at the global config file.
func New() *Config {
	cfg := &Config{
		Version:   CurrentSchemaVersion,
		Selection: defaultSelection(),
		Batch:     defaultBatch(),
		Logging:   defaultLogging(),
		Cache:     defaultCache(),
		Output:    defaultOutput(),
	}
	if dir, err := Dir(); err == nil {
		cfg.configPath = filepath.Join(dir, configFileName)
	}
	return cfg
}

// Load reads path on top of the defaults. Fields absent from the file keep their
// default values.
func Load(path string) (*Config, error) {
	cfg := New()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	cfg.configPath = path
	return cfg, nil
}

// LoadDefault loads the global config file when it exists, defaults otherwise.
func LoadDefault() (*Config, error) {
	cfg := New()
	if cfg.configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(cfg.configPath); errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	return Load(cfg.configPath)
}

// ConfigPath returns the file Save writes to.
func (c *Config) ConfigPath() string {
	return c.configPath
}

// SetConfigPath changes the file Save writes to.
func (c *Config) SetConfigPath(path string) {
	c.configPath = path
}

// Save writes the configuration to ConfigPath, creating its directory.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.New("config path is not set")
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}
	if err = os.MkdirAll(filepath.Dir(c.configPath), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err = os.WriteFile(c.configPath, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", c.configPath, err)
	}
	return nil
}

// Dir returns the arffkit configuration directory: $ARFFKIT_HOME or ~/.arffkit.
func Dir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".arffkit"), nil
}

// CacheDir returns the configured cache directory, or <Dir>/cache.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Directory != "" {
		return c.Cache.Directory, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "cache"), nil
}

// ToSelectionConfig builds the immutable reducer configuration.
func (sc SelectionConfig) ToSelectionConfig() (selection.Config, error) {
	strategy, err := selection.ParseStrategy(sc.Strategy)
	if err != nil {
		return selection.Config{}, err
	}
	return selection.NewConfig(strategy,
		selection.WithBackward(sc.Backward),
		selection.WithLocallyPredictive(sc.LocallyPredictive),
		selection.WithThreshold(sc.Threshold),
		selection.WithNumToSelect(sc.NumToSelect),
		selection.WithClass(sc.Class),
	)
}
