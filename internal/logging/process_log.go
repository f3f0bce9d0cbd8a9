package logging

import (
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// Run log file names.
const (
	// ProcessLogName is the file every batch run appends to inside its output directory.
	ProcessLogName = "process_log.txt"
	// MergeLogName is the file every merge appends to beside its output file.
	MergeLogName = "merge_log.txt"
)

// ProcessLogOptions configures OpenProcessLog.
type ProcessLogOptions struct {
	// Console also receives every record when non-nil.
	Console io.Writer
	Level   zerolog.Level
	Format  string
	RunID   string
	// Name overrides the log file name; ProcessLogName when empty.
	Name string
}

// ProcessLog is the explicitly owned logger of one batch run. It must be closed.
type ProcessLog struct {
	Logger zerolog.Logger
	Path   string

	// FallbackReason is set when the log file could not be opened and the log
	// only reaches the console.
	FallbackReason string

	file *os.File
}

// OpenProcessLog opens outputDir/process_log.txt (or opts.Name) in append mode and
// fans records out to it and the console. It never returns nil: when the file cannot
// be opened the log degrades to console-only and records why.
func OpenProcessLog(outputDir string, opts ProcessLogOptions) *ProcessLog {
	name := opts.Name
	if name == "" {
		name = ProcessLogName
	}
	pl := &ProcessLog{Path: filepath.Join(outputDir, name)}

	var writers []io.Writer
	if opts.Console != nil {
		writers = append(writers, consoleWriter(opts.Console, opts.Format))
	}

	f, err := openAppend(pl.Path)
	if err != nil {
		pl.FallbackReason = err.Error()
	} else {
		pl.file = f
		writers = append(writers, fileWriter(f, opts.Format))
	}

	var out io.Writer = io.Discard
	if len(writers) > 0 {
		out = zerolog.MultiLevelWriter(writers...)
	}

	ctx := zerolog.New(out).Level(opts.Level).With().Timestamp()
	if opts.RunID != "" {
		ctx = ctx.Str("run_id", opts.RunID)
	}
	pl.Logger = ctx.Logger()

	if pl.FallbackReason != "" {
		pl.Logger.Error().Str("path", pl.Path).Str("reason", pl.FallbackReason).
			Msg("Error setting up process log file, logging to console only")
	}
	return pl
}

// UsingFile reports whether records reach the log file.
func (p *ProcessLog) UsingFile() bool {
	return p.file != nil
}

// Close flushes and closes the log file. Later records are discarded.
func (p *ProcessLog) Close() error {
	if p == nil || p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	p.Logger = zerolog.Nop()
	return err
}

func consoleWriter(w io.Writer, format string) io.Writer {
	if format == FormatJSON {
		return w
	}
	return zerolog.ConsoleWriter{Out: w, NoColor: !isTerminal(w), TimeFormat: "2006-01-02 15:04:05"}
}

func fileWriter(f *os.File, format string) io.Writer {
	if format == FormatJSON {
		return f
	}
	return zerolog.ConsoleWriter{Out: f, NoColor: true, TimeFormat: "2006-01-02 15:04:05"}
}
