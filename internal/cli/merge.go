package cli

import (
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/rshade/arffkit/internal/arff"
	"github.com/rshade/arffkit/internal/engine/batch"
	"github.com/rshade/arffkit/internal/logging"
)

// NewMergeCmd creates the merge command, which concatenates the eligible ARFF files
// of a directory into one dataset.
func NewMergeCmd() *cobra.Command {
	var (
		output   string
		relation string
		class    string
	)

	cmd := &cobra.Command{
		Use:   "merge <input-dir>",
		Short: "Merge the ARFF files of a directory into one dataset",
		Long: `Concatenates the rows of every *.arff file in a directory, in name order.
All files must declare the same attributes with the same types; nominal value
lists are unioned, except for the class attribute, whose labels must match.
Files ending in _selection.arff are skipped. Every merge appends its progress and,
on failure, the reason it stopped to merge_log.txt beside the output file.`,
		Example: `  arffkit merge ./parts --output all.arff --relation experiment`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMerge(cmd, args[0], output, relation, class)
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "merged ARFF file to write (required)")
	cmd.Flags().StringVar(&relation, "relation", "", "relation name (default: output file name)")
	cmd.Flags().StringVar(&class, "class", "", `class attribute: "last", "first" or a name`)
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

// runMerge executes the merge command.
func runMerge(cmd *cobra.Command, inputDir, output, relation, class string) (err error) {
	ctx := cmd.Context()
	log := logging.FromContext(ctx)

	cfg, err := configFromContext(ctx)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	mlog := logging.OpenProcessLog(filepath.Dir(output), logging.ProcessLogOptions{
		Level:  zerolog.InfoLevel,
		Format: cfg.Logging.ToLoggingConfig().Format,
		RunID:  logging.RunIDFromContext(ctx),
		Name:   logging.MergeLogName,
	})
	defer func() {
		if closeErr := mlog.Close(); closeErr != nil {
			log.Warn().Err(closeErr).Msg("closing merge log")
		}
	}()
	if !mlog.UsingFile() {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), mlog.FallbackReason)
	}
	defer func() {
		if err != nil {
			mlog.Logger.Error().Err(err).Msg("Merge terminated")
		}
	}()
	if class == "" {
		class = cfg.Selection.Class
	}
	if relation == "" {
		base := filepath.Base(output)
		relation = strings.TrimSuffix(base, filepath.Ext(base))
	}

	files, err := batch.Enumerate(inputDir, batch.Rule{Extension: cfg.Batch.Extension, Suffix: cfg.Batch.Suffix})
	if err != nil {
		return err
	}
	// A previous merge written into the input directory is not an input.
	outAbs, _ := filepath.Abs(output)
	inputs := files[:0]
	for _, f := range files {
		if abs, _ := filepath.Abs(f.Path); abs != outAbs {
			inputs = append(inputs, f)
		}
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no suitable %s files found in %s", cfg.Batch.Extension, inputDir)
	}
	mlog.Logger.Info().Msgf("Merging %d files from %s into %s", len(inputs), inputDir, output)

	datasets := make([]*arff.Dataset, len(inputs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, f := range inputs {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			d, loadErr := arff.Load(f.Path)
			if loadErr != nil {
				return fmt.Errorf("%s: %w", f.Name, loadErr)
			}
			if classErr := d.SetClass(class); classErr != nil {
				return fmt.Errorf("%s: %w", f.Name, classErr)
			}
			datasets[i] = d
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return fmt.Errorf("loading inputs: %w", err)
	}

	merged, err := arff.Merge(relation, datasets...)
	if err != nil {
		return err
	}
	for i, f := range inputs {
		log.Debug().Str("file", f.Name).Int("instances", datasets[i].NumRows()).Msg("merged file")
		mlog.Logger.Info().
			Int("instances", datasets[i].NumRows()).
			Int("attributes", datasets[i].NumAttributes()).
			Msgf("%s has merged", f.Name)
	}

	if _, err = arff.Save(output, merged); err != nil {
		return fmt.Errorf("saving %s: %w", output, err)
	}
	mlog.Logger.Info().Int("instances", merged.NumRows()).Msgf("Merge completed: %s", filepath.Base(output))

	cmd.Println(printer.Sprintf("Merged %d files (%d instances, %d attributes) into %s",
		len(inputs), merged.NumRows(), merged.NumAttributes(), output))
	return nil
}
