package cli

import (
	"context"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/arffkit/internal/config"
	"github.com/rshade/arffkit/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// NewRootCmd creates the root Cobra command for the arffkit CLI.
// It loads configuration, wires up logging, and registers the subcommands
// (select, merge, inspect, config, version).
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:     "arffkit",
		Short:   "Batch feature selection for ARFF datasets",
		Long:    "arffkit: reduce directories of ARFF datasets with CFS or information-gain ranking",
		Version: ver,
		Example: rootCmdExample,
		// Errors are returned to main, which prints them once.
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			state := loadConfig(cmd)
			ctx := withRunState(cmd.Context(), state)
			cmd.SetContext(ctx)

			result := setupLogging(cmd, state.cfg)
			logResult = &result
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return cleanupLogging(cmd, logResult)
		},
	}

	cmd.PersistentFlags().String("config", "", "overlay configuration file (top-level sections replace the global config)")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding .arffkit/config.yaml")
	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("log-level", "", "log level (trace, debug, info, warn, error)")

	cmd.AddCommand(NewSelectCmd(), NewMergeCmd(), NewInspectCmd(), newConfigCmd(), NewVersionCmd(ver))

	return cmd
}

const rootCmdExample = `  # Reduce every ARFF file in ./data with CFS and backward greedy search
  arffkit select ./data

  # Rank by information gain, keep merit > 0.3, write next to a separate directory
  arffkit select ./data --strategy infogain-ranker --threshold 0.3 -o ./reduced

  # Merge all ARFF files of a directory into one dataset
  arffkit merge ./parts --output all.arff --relation experiment

  # Show attributes and information gain of one file
  arffkit inspect ./data/sample.arff

  # Initialize configuration
  arffkit config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(NewConfigInitCmd(), NewConfigValidateCmd(), NewConfigShowCmd())
	return cmd
}

// runState is what PersistentPreRunE hands to subcommands through the context.
type runState struct {
	cfg        *config.Config
	loadErr    error
	projectDir string
}

type runStateKey struct{}

func withRunState(ctx context.Context, s *runState) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, runStateKey{}, s)
}

// stateFromContext returns the run state, loading defaults when none was stored.
func stateFromContext(ctx context.Context) *runState {
	if ctx != nil {
		if s, ok := ctx.Value(runStateKey{}).(*runState); ok {
			return s
		}
	}
	cfg := config.New()
	cfg.ApplyEnv()
	return &runState{cfg: cfg}
}

// configFromContext returns the effective configuration, or the error that occurred
// while loading it.
func configFromContext(ctx context.Context) (*config.Config, error) {
	s := stateFromContext(ctx)
	return s.cfg, s.loadErr
}

// loadConfig builds the effective configuration: global file, project overlay,
// --config overlay, then environment. A load error is kept in the state and
// surfaced by the commands that need the configuration.
func loadConfig(cmd *cobra.Command) *runState {
	state := &runState{}

	cfg, err := config.LoadDefault()
	if err != nil {
		state.loadErr = err
		cfg = config.New()
	}

	flagProject, _ := cmd.Flags().GetString("project-dir")
	wd, _ := os.Getwd()
	state.projectDir = config.ResolveProjectDir(cmd.Context(), flagProject, wd)
	config.MergeProjectConfig(cmd.Context(), cfg, state.projectDir)

	if overlay, _ := cmd.Flags().GetString("config"); overlay != "" {
		if mergeErr := config.ShallowMergeYAML(cfg, overlay); mergeErr != nil && state.loadErr == nil {
			state.loadErr = mergeErr
		}
	}

	cfg.ApplyEnv()
	state.cfg = cfg
	return state
}
