package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rshade/arffkit/internal/config"
)

// NewConfigValidateCmd creates the config validate command for validating configuration.
func NewConfigValidateCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		Long: `Validates the effective configuration (global file, project overlay,
--config overlay and ARFFKIT_* environment) for syntax and semantic correctness.

This includes:
- Schema version compatibility
- Selection strategy, threshold and class
- Batch extension and suffix
- Logging level and format
- Cache TTL bounds
- Output format and precision`,
		Example: `  # Validate current configuration
  arffkit config validate

  # Validate and show detailed information
  arffkit config validate --verbose`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runConfigValidate(cmd, verbose)
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "show detailed validation information")

	return cmd
}

// runConfigValidate executes the configuration validation logic.
func runConfigValidate(cmd *cobra.Command, verbose bool) error {
	cfg, err := configFromContext(cmd.Context())
	if err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	cmd.Printf("Configuration is valid\n")

	if verbose {
		printVerboseDetails(cmd, cfg)
	}

	return nil
}

// printVerboseDetails prints detailed configuration information.
func printVerboseDetails(cmd *cobra.Command, cfg *config.Config) {
	cmd.Println()
	cmd.Println("Configuration details:")
	if path := cfg.ConfigPath(); path != "" {
		cmd.Printf("  Config file: %s\n", path)
	}
	if dir := stateFromContext(cmd.Context()).projectDir; dir != "" {
		cmd.Printf("  Project directory: %s\n", dir)
	}
	cmd.Printf("  Strategy: %s\n", cfg.Selection.Strategy)
	cmd.Printf("  Class attribute: %s\n", cfg.Selection.Class)
	cmd.Printf("  Input rule: *%s (skipping *%s%s)\n", cfg.Batch.Extension, cfg.Batch.Suffix, cfg.Batch.Extension)
	cmd.Printf("  Output format: %s\n", cfg.Output.DefaultFormat)
	cmd.Printf("  Output precision: %d\n", cfg.Output.Precision)
	cmd.Printf("  Logging level: %s\n", cfg.Logging.Level)
	if cfg.Logging.File != "" {
		cmd.Printf("  Log file: %s\n", cfg.Logging.File)
	}
	if cfg.Cache.Enabled {
		cmd.Printf("  Cache: enabled (ttl %ds)\n", cfg.Cache.TTLSeconds)
	} else {
		cmd.Println("  Cache: disabled")
	}
}
