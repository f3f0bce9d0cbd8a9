package batch

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rshade/arffkit/internal/arff"
	"github.com/rshade/arffkit/internal/engine/cache"
	"github.com/rshade/arffkit/internal/logging"
	"github.com/rshade/arffkit/internal/selection"
)

// Default naming rule.
const (
	DefaultExtension = ".arff"
	DefaultSuffix    = "_selection"
)

// ErrNilReducer is returned when a Processor is used without a reducer.
var ErrNilReducer = errors.New("batch reducer cannot be nil")

// InputFile is one eligible dataset file.
type InputFile struct {
	Name string
	Path string
}

// Rule decides which files are inputs and how outputs are named.
type Rule struct {
	// Extension includes the leading dot, e.g. ".arff".
	Extension string
	// Suffix marks generated outputs, e.g. "_selection".
	Suffix string
}

// DefaultRule returns the .arff / _selection rule.
func DefaultRule() Rule {
	return Rule{Extension: DefaultExtension, Suffix: DefaultSuffix}
}

// Eligible reports whether name is an input: it ends with the extension and not with
// suffix+extension. Both checks ignore case.
func (r Rule) Eligible(name string) bool {
	lower := strings.ToLower(name)
	ext := strings.ToLower(r.Extension)
	if !strings.HasSuffix(lower, ext) || len(lower) == len(ext) {
		return false
	}
	return !strings.HasSuffix(lower, strings.ToLower(r.Suffix)+ext)
}

// OutputName strips the extension, appends the suffix and reattaches the original
// extension verbatim: "sample.arff" becomes "sample_selection.arff".
func (r Rule) OutputName(name string) string {
	var ext string
	if strings.HasSuffix(strings.ToLower(name), strings.ToLower(r.Extension)) {
		ext = name[len(name)-len(r.Extension):]
	} else {
		ext = filepath.Ext(name)
	}
	return strings.TrimSuffix(name, ext) + r.Suffix + ext
}

// formatName is the upper-cased extension used in log messages, e.g. "ARFF".
func (r Rule) formatName() string {
	return strings.ToUpper(strings.TrimPrefix(r.Extension, "."))
}

// LoadFunc reads a dataset from path.
type LoadFunc func(path string) (*arff.Dataset, error)

// SaveFunc writes a dataset to path and returns the bytes written.
type SaveFunc func(path string, d *arff.Dataset) (int64, error)

// ProgressCallback is invoked after each file reaches a terminal state.
type ProgressCallback func(progress *Progress)

// Outcome is what one file of a batch produced: exactly one of Result and Failure
// is set.
type Outcome struct {
	Result  *ProcessResult
	Failure *FileFailure
}

// FileCallback is called after each file has been logged.
type FileCallback func(Outcome)

// Processor applies one reducer to every eligible file of a directory.
type Processor struct {
	reducer    selection.Reducer
	logger     zerolog.Logger
	rule       Rule
	load       LoadFunc
	save       SaveFunc
	cache      *cache.FileStore
	onProgress ProgressCallback
	onFile     FileCallback
}

// NewProcessor creates a processor that logs every record to logger. The logger is
// normally the process log of the output directory.
func NewProcessor(reducer selection.Reducer, logger zerolog.Logger) *Processor {
	return &Processor{
		reducer: reducer,
		logger:  logger,
		rule:    DefaultRule(),
		load:    arff.Load,
		save:    arff.Save,
	}
}

// WithProgressCallback sets a progress callback for the processor.
func (p *Processor) WithProgressCallback(callback ProgressCallback) *Processor {
	p.onProgress = callback
	return p
}

// WithFileCallback sets a callback that receives every per-file outcome.
func (p *Processor) WithFileCallback(callback FileCallback) *Processor {
	p.onFile = callback
	return p
}

// WithRule replaces the naming rule.
func (p *Processor) WithRule(rule Rule) *Processor {
	p.rule = rule
	return p
}

// WithCache enables the selection cache. A nil or disabled store is ignored.
func (p *Processor) WithCache(store *cache.FileStore) *Processor {
	if store != nil && store.IsEnabled() {
		p.cache = store
	}
	return p
}

// WithIO replaces dataset loading and saving. Nil functions keep the defaults.
func (p *Processor) WithIO(load LoadFunc, save SaveFunc) *Processor {
	if load != nil {
		p.load = load
	}
	if save != nil {
		p.save = save
	}
	return p
}

// Rule returns the naming rule in use.
func (p *Processor) Rule() Rule {
	return p.rule
}

// Enumerate lists the eligible regular files of dir (not recursive), sorted by name.
func (p *Processor) Enumerate(dir string) ([]InputFile, error) {
	return Enumerate(dir, p.rule)
}

// Enumerate lists the eligible regular files of dir under rule, sorted by name.
// Symlinks are followed and kept when they resolve to a regular file.
func Enumerate(dir string, rule Rule) ([]InputFile, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}

	var files []InputFile
	for _, e := range entries {
		if !rule.Eligible(e.Name()) {
			continue
		}
		path := filepath.Join(dir, e.Name())
		if e.Type()&fs.ModeSymlink != 0 {
			info, statErr := os.Stat(path)
			if statErr != nil || !info.Mode().IsRegular() {
				continue
			}
		} else if !e.Type().IsRegular() {
			continue
		}
		files = append(files, InputFile{Name: e.Name(), Path: path})
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ProcessOne loads, reduces and saves a single file. Load and reduction failures are
// returned as a *ProcessingError. A failed save is not an error: the result reports
// SaveSucceeded=false and the cause is logged.
func (p *Processor) ProcessOne(
	ctx context.Context,
	file InputFile,
	taskNumber int,
	outputDir string,
) (ProcessResult, error) {
	return p.run(ctx, newFileTracker(file.Name), file, taskNumber, outputDir)
}

// ProcessDirectory processes every eligible file of inputDir into outputDir. Per-file
// failures are logged and recorded in the summary; they never stop the run. The
// returned error is non-nil only when the input directory cannot be listed, the
// output directory cannot be created, or ctx is cancelled. A file interrupted by
// cancellation is not recorded as a failure.
func (p *Processor) ProcessDirectory(ctx context.Context, inputDir, outputDir string) (*Summary, error) {
	if p.reducer == nil {
		return nil, ErrNilReducer
	}

	summary := &Summary{
		RunID:     logging.RunIDFromContext(ctx),
		InputDir:  inputDir,
		OutputDir: outputDir,
		Strategy:  p.reducer.Name(),
		Results:   []ProcessResult{},
		Failures:  []FileFailure{},
		StartedAt: time.Now(),
	}

	files, err := p.Enumerate(inputDir)
	if err != nil {
		p.logger.Error().Err(err).Str("dir", inputDir).Msg("Error listing input directory")
		return nil, err
	}
	summary.Found = len(files)

	if len(files) == 0 {
		p.logger.Info().Msgf("No suitable %s files found in the directory.", p.rule.formatName())
		summary.EndedAt = time.Now()
		return summary, nil
	}

	if mkErr := os.MkdirAll(outputDir, 0o750); mkErr != nil {
		p.logger.Error().Err(mkErr).Str("dir", outputDir).Msg("Error creating output directory")
		return nil, fmt.Errorf("create output directory: %w", mkErr)
	}

	p.logger.Info().Msgf("Total number of suitable %s files found: %d", p.rule.formatName(), len(files))

	progress := NewProgress(len(files))
	var runErr error
	for i, file := range files {
		// Cooperative cancellation: only between files.
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			summary.Cancelled = true
			p.logger.Warn().Err(runErr).Int("remaining", len(files)-i).Msg("Run cancelled")
			break
		}

		task := i + 1
		p.logger.Info().Msgf("Processing task %d", task)

		tr := newFileTracker(file.Name)
		res, procErr := p.run(ctx, tr, file, task, outputDir)
		if procErr != nil && ctx.Err() != nil && isContextError(procErr) {
			runErr = ctx.Err()
			summary.Cancelled = true
			p.logger.Warn().Err(runErr).Str("file", file.Name).Int("remaining", len(files)-i).Msg("Run cancelled")
			break
		}
		var outcome Outcome
		if procErr != nil {
			stage := ErrUnknown
			var pe *ProcessingError
			if errors.As(procErr, &pe) {
				stage = pe.Stage
			}
			p.logger.Error().Err(procErr).
				Str("file", file.Name).
				Str("stage", stageName(stage)).
				Msgf("Error processing file: %s", file.Name)
			failure := FileFailure{
				TaskNumber: task,
				InputName:  file.Name,
				Stage:      stageName(stage),
				Error:      procErr.Error(),
			}
			summary.Failures = append(summary.Failures, failure)
			outcome.Failure = &failure
		} else {
			p.logger.Info().Msg(res.LogLine())
			summary.Results = append(summary.Results, res)
			outcome.Result = &res
		}

		if tErr := tr.to(StateLogged); tErr != nil {
			p.logger.Error().Err(tErr).Str("file", file.Name).Msg("Invalid file state")
		}

		progress.AddProcessed(file.Name, procErr != nil)
		if p.onFile != nil {
			p.onFile(outcome)
		}
		if p.onProgress != nil {
			p.onProgress(progress)
		}
	}

	if runErr == nil && ctx.Err() != nil {
		runErr = ctx.Err()
		summary.Cancelled = true
		p.logger.Warn().Err(runErr).Msg("Run cancelled")
	}

	p.logger.Info().Msg("All tasks completed successfully.")
	summary.EndedAt = time.Now()
	return summary, runErr
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// run drives one file through its states. Panics are recovered as ErrUnknown.
func (p *Processor) run(
	ctx context.Context,
	tr *fileTracker,
	file InputFile,
	taskNumber int,
	outputDir string,
) (res ProcessResult, err error) {
	start := time.Now()
	fail := func(stage, cause error) error {
		if tErr := tr.to(StateErrored); tErr != nil {
			cause = errors.Join(cause, tErr)
		}
		return &ProcessingError{Stage: stage, File: file.Name, Err: cause}
	}

	defer func() {
		if r := recover(); r != nil {
			res = ProcessResult{}
			err = fail(ErrUnknown, fmt.Errorf("panic: %v", r))
		}
	}()

	if p.reducer == nil {
		return res, fail(ErrReduce, ErrNilReducer)
	}

	data, err := p.load(file.Path)
	if err != nil {
		return res, fail(ErrLoad, err)
	}
	if err = tr.to(StateLoaded); err != nil {
		return res, fail(ErrUnknown, err)
	}

	reduced, hit, err := p.reduce(ctx, file, data)
	if err != nil {
		return res, fail(ErrReduce, err)
	}
	if reduced.NumAttributes() > data.NumAttributes() {
		return res, fail(ErrReduce, fmt.Errorf("reducer returned %d attributes for %d inputs",
			reduced.NumAttributes(), data.NumAttributes()))
	}
	if err = tr.to(StateReduced); err != nil {
		return res, fail(ErrUnknown, err)
	}

	outName := p.rule.OutputName(file.Name)
	outPath := filepath.Join(outputDir, outName)
	written, saveErr := p.save(outPath, reduced)
	if saveErr == nil {
		saveErr = verifySaved(outPath, written)
	}
	if saveErr != nil {
		p.logger.Error().Err(&ProcessingError{Stage: ErrSave, File: file.Name, Err: saveErr}).
			Str("file", file.Name).
			Str("output", outName).
			Msg("Error saving reduced dataset")
		err = tr.to(StateSaveFailed)
	} else {
		err = tr.to(StateSaved)
	}
	if err != nil {
		return ProcessResult{}, fail(ErrUnknown, err)
	}

	return ProcessResult{
		TaskNumber:       taskNumber,
		InputName:        file.Name,
		InputAttributes:  data.NumAttributes(),
		OutputName:       outName,
		OutputAttributes: reduced.NumAttributes(),
		SaveSucceeded:    saveErr == nil,
		CacheHit:         hit,
		Duration:         time.Since(start),
	}, nil
}

// reduce returns the reduced dataset, replaying a cached selection when available.
func (p *Processor) reduce(ctx context.Context, file InputFile, data *arff.Dataset) (*arff.Dataset, bool, error) {
	var key string
	if p.cache != nil {
		var err error
		key, err = cache.FileKey(file.Path, p.reducer.Fingerprint())
		if err != nil {
			p.logger.Debug().Err(err).Str("file", file.Name).Msg("cache key unavailable")
		} else if replay, ok := p.replay(key, file, data); ok {
			return replay, true, nil
		}
	}

	reduced, err := p.reducer.Reduce(ctx, data)
	if err != nil {
		return nil, false, err
	}

	if p.cache != nil && key != "" {
		if putErr := p.cache.Put(key, p.reducer.Fingerprint(), file.Name, reduced.AttributeNames()); putErr != nil {
			p.logger.Debug().Err(putErr).Str("file", file.Name).Msg("cache store failed")
		}
	}
	return reduced, false, nil
}

func (p *Processor) replay(key string, file InputFile, data *arff.Dataset) (*arff.Dataset, bool) {
	entry, err := p.cache.Get(key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheNotFound) {
			p.logger.Debug().Err(err).Str("file", file.Name).Msg("cache lookup failed")
		}
		return nil, false
	}
	out, err := data.SelectByName(entry.Attributes)
	if err != nil || out.NumAttributes() == 0 {
		p.logger.Debug().Err(err).Str("file", file.Name).Msg("cached selection does not fit dataset")
		return nil, false
	}
	out.ClassIndex = out.NumAttributes() - 1
	p.logger.Debug().Str("file", file.Name).Dur("age", entry.Age()).Msg("cache hit")
	return out, true
}

// verifySaved checks that path is a regular file of exactly written bytes.
func verifySaved(path string, written int64) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("verify output: %w", err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("verify output: %s is not a regular file", path)
	}
	if info.Size() != written {
		return fmt.Errorf("verify output: size %d, wrote %d bytes", info.Size(), written)
	}
	return nil
}
