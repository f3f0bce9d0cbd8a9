package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/arffkit/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// By default it writes the global ~/.arffkit/config.yaml; with --project it writes
// .arffkit/config.yaml in the project directory instead.
func NewConfigInitCmd() *cobra.Command {
	var (
		force   bool
		project bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

Without flags the global configuration at ~/.arffkit/config.yaml (or
$ARFFKIT_HOME/config.yaml) is created. With --project the file is created in
the project directory: --project-dir, $ARFFKIT_PROJECT_DIR, the nearest
.arffkit/ above the working directory, or ./.arffkit when none exists.`,
		Example: `  # Create global configuration
  arffkit config init

  # Create project-local configuration
  arffkit config init --project

  # Create configuration, overwriting existing
  arffkit config init --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := initTarget(cmd, project)
			if err != nil {
				return err
			}
			return initConfig(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&project, "project", false, "initialize the project-local configuration")

	return cmd
}

// initTarget returns the config file that init writes.
func initTarget(cmd *cobra.Command, project bool) (string, error) {
	if !project {
		path := config.New().ConfigPath()
		if path == "" {
			return "", errors.New("cannot determine the global configuration directory")
		}
		return path, nil
	}

	projectDir := stateFromContext(cmd.Context()).projectDir
	if projectDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("resolving working directory: %w", err)
		}
		projectDir = filepath.Join(wd, ".arffkit")
	}
	return filepath.Join(projectDir, "config.yaml"), nil
}

// initConfig saves the default configuration to path.
func initConfig(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	cfg := config.New()
	cfg.SetConfigPath(path)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}
