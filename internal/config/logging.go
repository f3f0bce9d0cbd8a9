package config

import (
	"strings"

	"github.com/rshade/arffkit/internal/logging"
)

// ToLoggingConfig converts config.LoggingConfig to logging.Config for use with
// the internal/logging package.
//
// The conversion applies these rules:
//   - Level is lower-cased; Format "text" is an alias of "console"
//   - If File is set, Output becomes "file" and File is passed through
//   - If File is empty, Output defaults to "stderr"
func (lc LoggingConfig) ToLoggingConfig() logging.Config {
	output := logging.OutputStderr
	if lc.File != "" {
		output = logging.OutputFile
	}

	format := lc.Format
	if format == "text" || format == "" {
		format = logging.FormatConsole
	}

	return logging.Config{
		Level:  strings.ToLower(lc.Level),
		Format: format,
		Output: output,
		File:   lc.File,
	}
}
