package iocache

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huangsam/storecheck/schema"
)

func TestPrintCacheStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintCacheStatus(&buf, schema.CacheStatus{Backend: "none"})
	assert.Equal(t, "Cache Backend: none\nConnected: false\n", buf.String())

	buf.Reset()
	PrintCacheStatus(&buf, schema.CacheStatus{
		Backend:         "sqlite",
		Connected:       true,
		TotalEntries:    2,
		LastEntryTime:   time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
		OldestEntryTime: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		TableSizeBytes:  4096,
	})
	out := buf.String()
	assert.Contains(t, out, "Total Entries: 2")
	assert.Contains(t, out, "Last Entry: 2025-01-02T00:00:00Z")
	assert.Contains(t, out, "Table Size: 4096 bytes")
}

func TestPrintHistoryStatus(t *testing.T) {
	var buf bytes.Buffer
	PrintHistoryStatus(&buf, schema.HistoryStatus{
		Backend:       "sqlite",
		Connected:     true,
		TotalRuns:     1,
		LastRunID:     7,
		TotalFindings: 3,
		TableSizes:    map[string]int64{findingsTable: 3, runsTable: 1},
	})
	out := buf.String()
	assert.Contains(t, out, "Last Run ID: 7")
	assert.Contains(t, out, "Total Findings: 3")
	// Tables are listed in name order.
	assert.Less(t, bytes.Index(buf.Bytes(), []byte(findingsTable)), bytes.Index(buf.Bytes(), []byte(runsTable)))
}

func TestExecuteHistoryExport(t *testing.T) {
	t.Run("requires output file", func(t *testing.T) {
		err := ExecuteHistoryExport(&MockHistoryStore{}, "", &bytes.Buffer{})
		assert.ErrorContains(t, err, "--output-file is required")
	})

	t.Run("no history", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true}, nil)
		err := ExecuteHistoryExport(store, "out", &bytes.Buffer{})
		assert.ErrorContains(t, err, "no validation history")
		store.AssertExpectations(t)
	})

	t.Run("status failure", func(t *testing.T) {
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{}, errors.New("boom"))
		err := ExecuteHistoryExport(store, "out", &bytes.Buffer{})
		assert.ErrorContains(t, err, "boom")
	})

	t.Run("writes both files", func(t *testing.T) {
		score := int32(80)
		suggestion := "Add icons."
		store := &MockHistoryStore{}
		store.On("GetStatus").Return(schema.HistoryStatus{Backend: "sqlite", Connected: true, TotalRuns: 1, TotalFindings: 1}, nil)
		store.On("GetAllRuns").Return([]schema.RunRecord{
			{RunID: 1, StartTime: time.Now(), Source: "a.zip", Digest: "d", Score: &score},
		}, nil)
		store.On("GetAllFindings").Return([]schema.FindingRecord{
			{RunID: 1, Ordinal: 0, Category: "icons", Kind: "error", Severity: "critical", Title: "Missing icons", Suggestion: &suggestion},
		}, nil)

		base := filepath.Join(t.TempDir(), "history")
		var buf bytes.Buffer
		require.NoError(t, ExecuteHistoryExport(store, base, &buf))

		for _, suffix := range []string{".runs.parquet", ".findings.parquet"} {
			info, err := os.Stat(base + suffix)
			require.NoError(t, err)
			assert.Positive(t, info.Size())
		}
		assert.Contains(t, buf.String(), "Exported 1 validation runs")
		assert.Contains(t, buf.String(), "Exported 1 findings")
		store.AssertExpectations(t)
	})
}
