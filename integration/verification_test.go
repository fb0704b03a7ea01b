//go:build integration

package integration

import (
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type jsonResult struct {
	Source   string `json:"source"`
	Score    int    `json:"score"`
	Findings []struct {
		Severity string `json:"severity"`
		Title    string `json:"title"`
	} `json:"findings"`
}

// TestValidateJSONOutput verifies the JSON report of a clean and a failing package.
func TestValidateJSONOutput(t *testing.T) {
	clean := writeExtension(t, cleanManifest)
	failing := writeExtension(t, failingManifest)

	out, err := runStorecheck(t, nil, "validate", clean, failing,
		"--output", "json", "--cache-backend", "none", "--quiet")
	require.NoError(t, err)

	var results []jsonResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Len(t, results, 2)

	assert.Equal(t, 100, results[0].Score)
	assert.Empty(t, results[0].Findings)

	assert.Less(t, results[1].Score, 100)
	assert.NotEmpty(t, results[1].Findings)
}

// TestValidateParquetOutput verifies that parquet reports land in the requested file.
func TestValidateParquetOutput(t *testing.T) {
	target := filepath.Join(t.TempDir(), "findings.parquet")
	_, err := runStorecheck(t, nil, "validate", writeExtension(t, failingManifest),
		"--output", "parquet", "--output-file", target, "--cache-backend", "none")
	require.NoError(t, err)

	info, err := os.Stat(target)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

// TestCheckExitCodes verifies the gate passes clean packages and fails the rest with exit code 1.
func TestCheckExitCodes(t *testing.T) {
	t.Run("clean package passes", func(t *testing.T) {
		out, err := runStorecheck(t, nil, "check", writeExtension(t, cleanManifest), "--cache-backend", "none")
		require.NoError(t, err)
		assert.Contains(t, out, "Policy Check Results:")
	})

	t.Run("low score fails", func(t *testing.T) {
		_, err := runStorecheck(t, nil, "check", writeExtension(t, failingManifest),
			"--cache-backend", "none", "--fail-on", "none", "--min-score", "100")
		var exitErr *exec.ExitError
		require.True(t, errors.As(err, &exitErr))
		assert.Equal(t, 1, exitErr.ExitCode())
	})
}

// TestCacheRoundTrip verifies that the second run of an unchanged package is served from the SQLite cache.
func TestCacheRoundTrip(t *testing.T) {
	ext := writeExtension(t, cleanManifest)
	cacheFile := filepath.Join(t.TempDir(), "home")
	require.NoError(t, os.MkdirAll(cacheFile, 0o755))
	env := []string{"HOME=" + cacheFile}

	var cached []bool
	for range 2 {
		out, err := runStorecheck(t, env, "validate", ext, "--output", "json", "--quiet")
		require.NoError(t, err)
		var results []struct {
			Cached bool `json:"cached"`
		}
		require.NoError(t, json.Unmarshal([]byte(out), &results))
		require.Len(t, results, 1)
		cached = append(cached, results[0].Cached)
	}
	assert.Equal(t, []bool{false, true}, cached)
}

// TestRulesOutput verifies that the rulebook can be exported as JSON.
func TestRulesOutput(t *testing.T) {
	out, err := runStorecheck(t, nil, "rules", "--output", "json", "--cache-backend", "none")
	require.NoError(t, err)

	var rulebook map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rulebook))
	assert.NotEmpty(t, rulebook)
}
