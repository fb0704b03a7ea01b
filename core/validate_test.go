package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/storecheck/internal/iocache"
	"github.com/huangsam/storecheck/schema"
)

func TestValidatePath(t *testing.T) {
	dir := writeExtension(t, cleanManifest)

	res, err := ValidatePath(context.Background(), testConfig(), dir)
	require.NoError(t, err)

	assert.Equal(t, dir, res.Source)
	assert.Equal(t, "Tab Organizer", res.Extension)
	assert.Equal(t, "1.2.0", res.Version)
	assert.Len(t, res.Digest, 64)
	assert.False(t, res.Cached)
	assert.Equal(t, 1+len(iconSizes), res.Files)
	assert.Equal(t, int64(len(cleanManifest)+3*len(iconSizes)), res.Bytes)
	assert.Equal(t, 100, res.Score)
	assert.Empty(t, res.Findings)
	assert.Equal(t, schema.Summary{}, res.Summary)
}

func TestValidatePathNonTextFields(t *testing.T) {
	dir := writeExtension(t, `{"name": 42, "version": ["1"], "manifest_version": 3}`)

	res, err := ValidatePath(context.Background(), testConfig(), dir)
	require.NoError(t, err)
	assert.Empty(t, res.Extension)
	assert.Empty(t, res.Version)
	assert.NotEmpty(t, res.Findings)
}

func TestValidatePathErrors(t *testing.T) {
	t.Run("missing path", func(t *testing.T) {
		_, err := ValidatePath(context.Background(), testConfig(), filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})

	t.Run("bad manifest", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "manifest.json"), []byte("{not json"), 0o644))
		_, err := ValidatePath(context.Background(), testConfig(), dir)
		assert.Error(t, err)
	})
}

func TestValidateSubmission(t *testing.T) {
	res := ValidateSubmission(context.Background(), testConfig(), cleanSubmission(t))
	assert.Equal(t, "inline", res.Source)
	assert.Equal(t, 100, res.Score)
	assert.Equal(t, 1+len(iconSizes), res.Files)
}

func TestValidateAllKeepsOrder(t *testing.T) {
	paths := []string{
		writeExtension(t, cleanManifest),
		writeExtension(t, failingManifest),
		writeExtension(t, cleanManifest),
		writeExtension(t, failingManifest),
		writeExtension(t, cleanManifest),
	}

	for _, workers := range []int{1, 3, 16} {
		cfg := testConfig(paths...)
		cfg.Workers = workers

		results, err := validateAll(context.Background(), cfg, paths)
		require.NoError(t, err)
		require.Len(t, results, len(paths))
		for i, res := range results {
			assert.Equal(t, paths[i], res.Source)
			if i%2 == 0 {
				assert.Equal(t, 100, res.Score)
			} else {
				assert.Less(t, res.Score, 100)
			}
		}
	}
}

func TestValidateAllJoinsErrors(t *testing.T) {
	good := writeExtension(t, cleanManifest)
	missing1 := filepath.Join(t.TempDir(), "missing1")
	missing2 := filepath.Join(t.TempDir(), "missing2")
	paths := []string{missing1, good, missing2}

	results, err := validateAll(context.Background(), testConfig(paths...), paths)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing1")
	assert.Contains(t, err.Error(), "missing2")
	assert.Equal(t, good, results[1].Source)
}

func TestValidateAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	path := writeExtension(t, cleanManifest)
	_, err := validateAll(ctx, testConfig(path), []string{path})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRecordRun(t *testing.T) {
	dir := writeExtension(t, failingManifest)

	history := &iocache.MockHistoryStore{}
	history.On("BeginRun", mock.MatchedBy(func(meta schema.RunMetadata) bool {
		return meta.Source == dir && meta.Extension == "Tabs" && len(meta.Digest) == 64 &&
			meta.ConfigParams["fingerprint"] != ""
	})).Return(int64(7), nil)
	history.On("RecordFindings", int64(7), mock.Anything).Return(nil)
	history.On("EndRun", int64(7), mock.Anything, mock.Anything).Return(nil)

	mgr := &iocache.MockStoreManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetHistoryStore").Return(history)

	res, err := ValidatePath(WithStoreManager(context.Background(), mgr), testConfig(), dir)
	require.NoError(t, err)

	history.AssertExpectations(t)
	recorded := history.Calls[1].Arguments.Get(1).([]schema.Finding)
	assert.Equal(t, res.Findings, recorded)
	ended := history.Calls[2].Arguments.Get(2).(schema.Report)
	assert.Equal(t, res.Score, ended.Score)
}

func TestRecordRunFailures(t *testing.T) {
	tests := []struct {
		name  string
		runID int64
		err   error
	}{
		{"begin fails", 0, errors.New("db down")},
		{"no-op store", 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			history := &iocache.MockHistoryStore{}
			history.On("BeginRun", mock.Anything).Return(tt.runID, tt.err)

			mgr := &iocache.MockStoreManager{}
			mgr.On("GetReportStore").Return(nil)
			mgr.On("GetHistoryStore").Return(history)

			res := ValidateSubmission(WithStoreManager(context.Background(), mgr), testConfig(), cleanSubmission(t))
			assert.Equal(t, 100, res.Score)
			history.AssertNotCalled(t, "RecordFindings", mock.Anything, mock.Anything)
			history.AssertNotCalled(t, "EndRun", mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestRecordRunWithoutHistoryStore(t *testing.T) {
	mgr := &iocache.MockStoreManager{}
	mgr.On("GetReportStore").Return(nil)
	mgr.On("GetHistoryStore").Return(nil)

	res := ValidateSubmission(WithStoreManager(context.Background(), mgr), testConfig(), cleanSubmission(t))
	assert.Equal(t, 100, res.Score)
	mgr.AssertExpectations(t)
}
