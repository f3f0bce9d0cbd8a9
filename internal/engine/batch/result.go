package batch

import (
	"errors"
	"fmt"
	"time"
)

// Failure stages. Use errors.Is on a ProcessingError to classify it.
var (
	ErrLoad    = errors.New("load failure")
	ErrReduce  = errors.New("reduction failure")
	ErrSave    = errors.New("save failure")
	ErrUnknown = errors.New("unknown failure")
)

// ProcessingError is returned by ProcessOne when a file cannot be processed.
type ProcessingError struct {
	Stage error
	File  string
	Err   error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Stage, e.File, e.Err)
}

// Unwrap exposes both the stage sentinel and the cause.
func (e *ProcessingError) Unwrap() []error {
	return []error{e.Stage, e.Err}
}

// ProcessResult describes one processed file. It is built once and never modified.
type ProcessResult struct {
	TaskNumber       int           `json:"task"`
	InputName        string        `json:"input"`
	InputAttributes  int           `json:"input_attributes"`
	OutputName       string        `json:"output"`
	OutputAttributes int           `json:"output_attributes"`
	SaveSucceeded    bool          `json:"save_succeeded"`
	CacheHit         bool          `json:"cache_hit"`
	Duration         time.Duration `json:"duration_ns"`
}

// SaveStatus renders SaveSucceeded the way the process log prints it.
func (r ProcessResult) SaveStatus() string {
	if r.SaveSucceeded {
		return "successful"
	}
	return "failed"
}

// LogLine formats the per-file process log record.
func (r ProcessResult) LogLine() string {
	return fmt.Sprintf("Task %d // Input file: %s - attributes: %d // Output file: %s - attributes: %d - Save %s",
		r.TaskNumber, r.InputName, r.InputAttributes, r.OutputName, r.OutputAttributes, r.SaveStatus())
}

// FileFailure records a file that ended in the errored state.
type FileFailure struct {
	TaskNumber int    `json:"task"`
	InputName  string `json:"input"`
	Stage      string `json:"stage"`
	Error      string `json:"error"`
}

// Summary is the outcome of ProcessDirectory.
type Summary struct {
	RunID     string          `json:"run_id"`
	InputDir  string          `json:"input_dir"`
	OutputDir string          `json:"output_dir"`
	Strategy  string          `json:"strategy"`
	Found     int             `json:"found"`
	Results   []ProcessResult `json:"results"`
	Failures  []FileFailure   `json:"failures"`
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
	Cancelled bool            `json:"cancelled"`
}

// Saved counts results whose output was verified on disk.
func (s *Summary) Saved() int {
	n := 0
	for _, r := range s.Results {
		if r.SaveSucceeded {
			n++
		}
	}
	return n
}

// AttributesRemoved sums input minus output attribute counts over all results.
func (s *Summary) AttributesRemoved() int {
	n := 0
	for _, r := range s.Results {
		n += r.InputAttributes - r.OutputAttributes
	}
	return n
}

// Duration is the wall-clock time of the run.
func (s *Summary) Duration() time.Duration {
	return s.EndedAt.Sub(s.StartedAt)
}

func stageName(stage error) string {
	switch {
	case errors.Is(stage, ErrLoad):
		return "load"
	case errors.Is(stage, ErrReduce):
		return "reduce"
	case errors.Is(stage, ErrSave):
		return "save"
	default:
		return "unknown"
	}
}
