package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rshade/arffkit/internal/arff"
	"github.com/rshade/arffkit/internal/cli"
	"github.com/rshade/arffkit/internal/config"
	"github.com/rshade/arffkit/internal/engine/cache"
	"github.com/rshade/arffkit/internal/logging"
)

const sampleARFF = `@relation toy
@attribute noise {z}
@attribute perfect {x,y}
@attribute num numeric
@attribute copy {x,y}
@attribute class {a,b}
@data
z,x,1,x,a
z,x,2,x,a
z,x,3,x,a
z,x,4,x,a
z,y,5,y,b
z,y,6,y,b
z,y,7,y,b
z,y,8,y,b
`

// isolate points every arffkit directory at fresh temp dirs.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvHome, t.TempDir())
	t.Setenv(config.EnvProjectDir, t.TempDir())
	t.Setenv(config.EnvLogLevel, "error")
	t.Setenv(cache.EnvCacheDir, t.TempDir())
}

// execute runs the root command with args and returns stdout and stderr.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	root := cli.NewRootCmd("test")
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func writeARFF(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(sampleARFF), 0o600))
}

func TestSelect_TableSummaryAndProcessLog(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeARFF(t, dir, "sample.arff")

	stdout, stderr, err := execute(t, "select", dir)
	require.NoError(t, err)

	assert.Contains(t, stdout, "SELECTION SUMMARY")
	assert.Contains(t, stdout, "sample_selection.arff")
	assert.Contains(t, stdout, "Files: 1 found, 1 reduced, 1 saved, 0 failed")
	assert.Contains(t, stderr, "Processing task 1")

	logData, err := os.ReadFile(filepath.Join(dir, logging.ProcessLogName))
	require.NoError(t, err)
	log := string(logData)
	assert.Contains(t, log, "Total number of suitable ARFF files found: 1")
	assert.Contains(t, log,
		"Task 1 // Input file: sample.arff - attributes: 5 // Output file: sample_selection.arff - attributes: 2 - Save successful")
	assert.Contains(t, log, "All tasks completed successfully.")

	reduced, err := arff.Load(filepath.Join(dir, "sample_selection.arff"))
	require.NoError(t, err)
	assert.Equal(t, []string{"perfect", "class"}, reduced.AttributeNames())
}

func TestSelect_JSONOutputDirAndQuiet(t *testing.T) {
	isolate(t)
	in := t.TempDir()
	out := filepath.Join(t.TempDir(), "reduced")
	writeARFF(t, in, "b.arff")
	writeARFF(t, in, "a.arff")
	require.NoError(t, os.WriteFile(filepath.Join(in, "notes.txt"), []byte("ignored"), 0o600))

	stdout, stderr, err := execute(t, "select", in,
		"--strategy", "infogain-ranker", "--threshold", "0.5", "-o", out, "--output", "json", "--quiet", "--no-cache")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "Processing task")

	var summary struct {
		Strategy string `json:"strategy"`
		Found    int    `json:"found"`
		Results  []struct {
			Task             int    `json:"task"`
			Input            string `json:"input"`
			Output           string `json:"output"`
			OutputAttributes int    `json:"output_attributes"`
			SaveSucceeded    bool   `json:"save_succeeded"`
			CacheHit         bool   `json:"cache_hit"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	assert.Equal(t, 2, summary.Found)
	require.Len(t, summary.Results, 2)
	assert.Equal(t, "a.arff", summary.Results[0].Input)
	assert.Equal(t, "b.arff", summary.Results[1].Input)
	for _, r := range summary.Results {
		assert.True(t, r.SaveSucceeded)
		assert.False(t, r.CacheHit)
		// perfect, num and copy each carry one bit of gain; the class is appended.
		assert.Equal(t, 4, r.OutputAttributes)
	}

	assert.FileExists(t, filepath.Join(out, "a_selection.arff"))
	assert.FileExists(t, filepath.Join(out, "b_selection.arff"))
	assert.FileExists(t, filepath.Join(out, logging.ProcessLogName))
	assert.NoFileExists(t, filepath.Join(in, logging.ProcessLogName))
}

func TestSelect_SecondRunUsesCache(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeARFF(t, dir, "sample.arff")

	_, _, err := execute(t, "select", dir, "-q")
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(dir, "sample_selection.arff")))

	stdout, _, err := execute(t, "select", dir, "-q", "--output", "json")
	require.NoError(t, err)
	var summary struct {
		Results []struct {
			CacheHit bool `json:"cache_hit"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &summary))
	require.Len(t, summary.Results, 1)
	assert.True(t, summary.Results[0].CacheHit)
	assert.FileExists(t, filepath.Join(dir, "sample_selection.arff"))
}

func TestSelect_EmptyDirectory(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	stdout, _, err := execute(t, "select", dir, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Files: 0 found")

	logData, err := os.ReadFile(filepath.Join(dir, logging.ProcessLogName))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "No suitable ARFF files found in the directory.")
	assert.NotContains(t, string(logData), "All tasks completed successfully.")
}

func TestSelect_Errors(t *testing.T) {
	isolate(t)

	t.Run("missing input directory", func(t *testing.T) {
		_, _, err := execute(t, "select", filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input directory")
	})

	t.Run("unknown strategy", func(t *testing.T) {
		_, _, err := execute(t, "select", t.TempDir(), "--strategy", "bogus")
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		assert.Contains(t, err.Error(), "cfs-greedy or infogain-ranker")
	})

	t.Run("missing argument", func(t *testing.T) {
		_, _, err := execute(t, "select")
		require.Error(t, err)
	})
}

func TestSelect_Help(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "select", "--help")
	require.NoError(t, err)
	assert.Contains(t, stdout, "selection strategy: cfs-greedy or infogain-ranker")
	assert.Contains(t, stdout, "caps the attributes above --threshold")
}

func TestSelect_BrokenFileDoesNotFailRun(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeARFF(t, dir, "good.arff")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.arff"), []byte("@relation bad\n@data\n1,2\n"), 0o600))

	stdout, _, err := execute(t, "select", dir, "-q")
	require.NoError(t, err)
	assert.Contains(t, stdout, "FAILURES")
	assert.Contains(t, stdout, "bad.arff")

	logData, err := os.ReadFile(filepath.Join(dir, logging.ProcessLogName))
	require.NoError(t, err)
	assert.Contains(t, string(logData), "Error processing file: bad.arff")
	assert.Contains(t, string(logData), "Task 2 // Input file: good.arff")
}

func TestMerge(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeARFF(t, dir, "part1.arff")
	writeARFF(t, dir, "part2.arff")
	writeARFF(t, dir, "part1_selection.arff")
	output := filepath.Join(t.TempDir(), "all.arff")

	stdout, _, err := execute(t, "merge", dir, "--output", output)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Merged 2 files (16 instances, 5 attributes) into "+output)

	merged, err := arff.Load(output)
	require.NoError(t, err)
	assert.Equal(t, "all", merged.Relation)
	assert.Equal(t, 16, merged.NumRows())

	logData, err := os.ReadFile(filepath.Join(filepath.Dir(output), logging.MergeLogName))
	require.NoError(t, err)
	log := string(logData)
	assert.Contains(t, log, "Merging 2 files from "+dir)
	assert.Contains(t, log, "part1.arff has merged")
	assert.Contains(t, log, "part2.arff has merged")
	assert.Contains(t, log, "Merge completed: all.arff")
	assert.NotContains(t, log, "part1_selection.arff")
	assert.NotContains(t, log, "Merge terminated")
}

func TestMerge_Errors(t *testing.T) {
	isolate(t)

	t.Run("output flag required", func(t *testing.T) {
		_, _, err := execute(t, "merge", t.TempDir())
		require.Error(t, err)
	})

	t.Run("no inputs", func(t *testing.T) {
		_, _, err := execute(t, "merge", t.TempDir(), "--output", filepath.Join(t.TempDir(), "x.arff"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "no suitable .arff files")
	})

	t.Run("termination reason is logged", func(t *testing.T) {
		in := t.TempDir()
		writeARFF(t, in, "good.arff")
		require.NoError(t, os.WriteFile(filepath.Join(in, "bad.arff"), []byte("@relation bad\n@data\n"), 0o600))
		outDir := t.TempDir()

		_, _, err := execute(t, "merge", in, "--output", filepath.Join(outDir, "x.arff"))
		require.Error(t, err)

		logData, readErr := os.ReadFile(filepath.Join(outDir, logging.MergeLogName))
		require.NoError(t, readErr)
		assert.Contains(t, string(logData), "Merge terminated")
		assert.Contains(t, string(logData), "bad.arff")
		assert.NoFileExists(t, filepath.Join(outDir, "x.arff"))
	})
}

func TestInspect(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeARFF(t, dir, "sample.arff")
	path := filepath.Join(dir, "sample.arff")

	t.Run("table", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", path)
		require.NoError(t, err)
		assert.Contains(t, stdout, "Relation: toy")
		assert.Contains(t, stdout, "Instances: 8")
		assert.Contains(t, stdout, "perfect")
		assert.Contains(t, stdout, "(class)")
		assert.Contains(t, stdout, "CFS merit of all attributes")
	})

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute(t, "inspect", path, "--output", "json")
		require.NoError(t, err)

		var report struct {
			Relation   string `json:"relation"`
			Instances  int    `json:"instances"`
			Class      string `json:"class"`
			Attributes []struct {
				Name     string   `json:"name"`
				Type     string   `json:"type"`
				Class    bool     `json:"class"`
				InfoGain *float64 `json:"info_gain"`
			} `json:"attributes"`
		}
		require.NoError(t, json.Unmarshal([]byte(stdout), &report))
		assert.Equal(t, 8, report.Instances)
		assert.Equal(t, "class", report.Class)
		require.Len(t, report.Attributes, 5)
		assert.True(t, report.Attributes[4].Class)
		assert.Nil(t, report.Attributes[4].InfoGain)
		require.NotNil(t, report.Attributes[1].InfoGain)
		assert.InDelta(t, 1.0, *report.Attributes[1].InfoGain, 1e-9)
		require.NotNil(t, report.Attributes[0].InfoGain)
		assert.InDelta(t, 0.0, *report.Attributes[0].InfoGain, 1e-9)
	})

	t.Run("missing file", func(t *testing.T) {
		_, _, err := execute(t, "inspect", filepath.Join(dir, "missing.arff"))
		require.Error(t, err)
	})
}

func TestVersion(t *testing.T) {
	isolate(t)

	stdout, _, err := execute(t, "version", "--short")
	require.NoError(t, err)
	assert.Equal(t, "test\n", stdout)

	stdout, _, err = execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "arffkit test")
	assert.Contains(t, stdout, "commit:")
}
