package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/rshade/arffkit/internal/config"
	"github.com/rshade/arffkit/internal/engine/batch"
	"github.com/rshade/arffkit/internal/engine/cache"
	"github.com/rshade/arffkit/internal/logging"
	"github.com/rshade/arffkit/internal/selection"
)

// selectOptions holds the flags of the select command.
type selectOptions struct {
	outputDir   string
	strategy    string
	threshold   float64
	numToSelect int
	forward     bool
	noLocal     bool
	class       string
	noCache     bool
	quiet       bool
	output      string
	tui         bool
}

// NewSelectCmd creates the select command, which reduces every eligible file of a
// directory with the configured strategy.
func NewSelectCmd() *cobra.Command {
	var opts selectOptions

	cmd := &cobra.Command{
		Use:   "select <input-dir>",
		Short: "Run feature selection over every ARFF file in a directory",
		Long: `Runs the configured feature-selection strategy on every *.arff file of a
directory (files ending in _selection.arff are skipped) and writes each reduced
dataset as <name>_selection.arff. One line per file is appended to
process_log.txt in the output directory.

Strategies:
  cfs-greedy       correlation-based subset evaluation with greedy stepwise search
  infogain-ranker  information-gain ranking, keeps merit above --threshold

A file that fails to load or reduce is logged and skipped; the command still
succeeds.`,
		Example: `  # CFS with backward search (default), outputs next to the inputs
  arffkit select ./data

  # Information-gain ranking into a separate directory
  arffkit select ./data --strategy infogain-ranker --threshold 0.3 -o ./reduced

  # Machine-readable summary
  arffkit select ./data --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelect(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory (default: batch.output_dir or the input directory)")
	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "selection strategy: "+selection.StrategyNames())
	cmd.Flags().Float64Var(&opts.threshold, "threshold", selection.DefaultThreshold, "ranker merit threshold")
	cmd.Flags().IntVar(&opts.numToSelect, "num-to-select", selection.DefaultNumToSelect, "ranker: caps the attributes above --threshold rather than replacing it (-1 = no cap)")
	cmd.Flags().BoolVar(&opts.forward, "forward", false, "CFS: search forward from the empty set instead of backward")
	cmd.Flags().BoolVar(&opts.noLocal, "no-locally-predictive", false, "CFS: do not add locally predictive attributes")
	cmd.Flags().StringVar(&opts.class, "class", "", `class attribute: "last", "first" or a name`)
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "recompute every selection")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "do not mirror the process log to stderr")
	cmd.Flags().StringVar(&opts.output, "output", "", "summary format: table or json")
	cmd.Flags().BoolVar(&opts.tui, "tui", false, "show an interactive progress and results view")

	return cmd
}

// applySelectFlags overrides config with the flags the user set explicitly.
func applySelectFlags(cmd *cobra.Command, cfg *config.Config, opts selectOptions) {
	flags := cmd.Flags()
	if flags.Changed("strategy") {
		cfg.Selection.Strategy = opts.strategy
	}
	if flags.Changed("threshold") {
		cfg.Selection.Threshold = opts.threshold
	}
	if flags.Changed("num-to-select") {
		cfg.Selection.NumToSelect = opts.numToSelect
	}
	if flags.Changed("forward") {
		cfg.Selection.Backward = !opts.forward
	}
	if flags.Changed("no-locally-predictive") {
		cfg.Selection.LocallyPredictive = !opts.noLocal
	}
	if flags.Changed("class") {
		cfg.Selection.Class = opts.class
	}
	if flags.Changed("no-cache") && opts.noCache {
		cfg.Cache.Enabled = false
	}
	if (flags.Changed("quiet") && opts.quiet) || opts.tui {
		cfg.Batch.Console = false
	}
	if flags.Changed("output") {
		cfg.Output.DefaultFormat = opts.output
	}
	if opts.outputDir != "" {
		cfg.Batch.OutputDir = opts.outputDir
	}
}

// runSelect executes the select command.
func runSelect(cmd *cobra.Command, inputDir string, opts selectOptions) error {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cfg, err := configFromContext(ctx)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applySelectFlags(cmd, cfg, opts)
	if err = cfg.Validate(); err != nil {
		return err
	}

	selCfg, err := cfg.Selection.ToSelectionConfig()
	if err != nil {
		return err
	}
	reducer, err := selection.New(selCfg)
	if err != nil {
		return err
	}

	info, err := os.Stat(inputDir)
	if err != nil {
		return fmt.Errorf("input directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("input directory: %s is not a directory", inputDir)
	}

	outputDir := cfg.Batch.OutputDir
	if outputDir == "" {
		outputDir = inputDir
	}
	if err = os.MkdirAll(outputDir, 0o750); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	var console io.Writer
	if cfg.Batch.Console {
		console = cmd.ErrOrStderr()
	}
	// Per-file records are info level; a quieter command log must not hide them.
	level := logging.ParseLevel(cfg.Logging.Level)
	if level > zerolog.InfoLevel {
		level = zerolog.InfoLevel
	}
	plog := logging.OpenProcessLog(outputDir, logging.ProcessLogOptions{
		Console: console,
		Level:   level,
		Format:  cfg.Logging.ToLoggingConfig().Format,
		RunID:   logging.RunIDFromContext(ctx),
	})
	defer func() {
		if closeErr := plog.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("closing process log")
		}
	}()
	if !plog.UsingFile() {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), plog.FallbackReason)
	}

	log.Debug().
		Str("input_dir", inputDir).
		Str("output_dir", outputDir).
		Stringer("selection", selCfg).
		Msg("starting batch")

	proc := batch.NewProcessor(reducer, plog.Logger).
		WithRule(batch.Rule{Extension: cfg.Batch.Extension, Suffix: cfg.Batch.Suffix}).
		WithCache(openCache(cfg, log)).
		WithProgressCallback(func(p *batch.Progress) {
			snap := p.Snapshot()
			log.Debug().
				Int("processed", snap.ProcessedFiles).
				Int("total", snap.TotalFiles).
				Float64("percent", snap.PercentComplete).
				Str("file", snap.Current).
				Msg("batch progress")
		})

	if opts.tui {
		if !isWriterTerminal(cmd.OutOrStdout()) {
			return errors.New("--tui requires a terminal")
		}
		return runSelectTUI(cmd, proc, inputDir, outputDir, cfg.Output.DefaultFormat)
	}

	summary, runErr := proc.ProcessDirectory(ctx, inputDir, outputDir)
	if summary != nil {
		if renderErr := renderSummary(cmd.OutOrStdout(), summary, cfg.Output.DefaultFormat); renderErr != nil {
			return renderErr
		}
	}
	return runErr
}

// openCache opens the selection cache, or returns nil when it is disabled or
// unavailable.
func openCache(cfg *config.Config, log *zerolog.Logger) *cache.FileStore {
	if !cfg.Cache.Enabled {
		return nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		log.Warn().Err(err).Msg("selection cache disabled")
		return nil
	}
	store, err := cache.NewFileStore(dir, true, cfg.Cache.TTLSeconds)
	if err != nil {
		log.Warn().Err(err).Str("dir", dir).Msg("selection cache disabled")
		return nil
	}
	log.Debug().Str("dir", store.Directory()).Int("ttl_seconds", cfg.Cache.TTLSeconds).Msg("selection cache opened")
	if removed, cleanErr := store.CleanupExpired(); cleanErr == nil && removed > 0 {
		log.Debug().Int("removed", removed).Msg("expired cache entries removed")
	}
	return store
}
