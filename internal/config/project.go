package config

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rshade/arffkit/internal/logging"
)

// projectDirName is the project-local configuration directory.
const projectDirName = ".arffkit"

// ResolveProjectDir determines the project-local .arffkit directory path.
// It checks (in order):
//  1. flagValue (--project-dir CLI flag)
//  2. ARFFKIT_PROJECT_DIR env var
//  3. walking up from startDir until a directory containing .arffkit/ is found,
//     stopping at the global config directory
//
// Returns an absolute path to the .arffkit directory, or "" when none is found.
// Does NOT create the directory.
func ResolveProjectDir(ctx context.Context, flagValue, startDir string) string {
	if flagValue != "" {
		return toAbsProjectDir(ctx, flagValue)
	}

	if envDir := os.Getenv(EnvProjectDir); envDir != "" {
		return toAbsProjectDir(ctx, envDir)
	}

	if startDir == "" {
		return ""
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return ""
	}
	globalDir, _ := Dir()
	for {
		candidate := filepath.Join(dir, projectDirName)
		if candidate == globalDir {
			// The global config directory is never a project.
			return ""
		}
		if info, statErr := os.Stat(candidate); statErr == nil && info.IsDir() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// MergeProjectConfig shallow-merges projectDir/config.yaml onto cfg. A missing
// file is not an error; a malformed one is logged and skipped.
func MergeProjectConfig(ctx context.Context, cfg *Config, projectDir string) {
	if projectDir == "" {
		return
	}

	overlayPath := filepath.Join(projectDir, configFileName)
	if _, err := os.Stat(overlayPath); err != nil {
		return
	}

	merged := *cfg
	if err := ShallowMergeYAML(&merged, overlayPath); err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Str("operation", "merge_project_config").
			Err(err).
			Str("overlay_path", overlayPath).
			Msg("failed to merge project config, using global settings")
		return
	}
	*cfg = merged
}

// toAbsProjectDir converts dir to an absolute path and appends ".arffkit" unless
// it already ends with it.
func toAbsProjectDir(ctx context.Context, dir string) string {
	abs, err := filepath.Abs(dir)
	if err != nil {
		logger := logging.FromContext(ctx)
		logger.Warn().
			Str("component", "config").
			Err(err).
			Str("dir", dir).
			Msg("failed to resolve absolute path for project directory")
		abs = dir
	}

	if filepath.Base(abs) == projectDirName {
		return abs
	}

	return filepath.Join(abs, projectDirName)
}
