// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/storecheck/schema"
)

// StoreManager defines the interface for reaching the persistence stores.
// This allows the storage layer to be mocked for testing.
type StoreManager interface {
	GetReportStore() CacheStore
	GetHistoryStore() HistoryStore
}

// CacheStore defines the interface for cached report storage.
// This allows mocking the store for testing.
type CacheStore interface {
	Get(key string) ([]byte, int, int64, error)
	Set(key string, value []byte, version int, timestamp int64) error
	GetStatus() (schema.CacheStatus, error)
	Close() error
}

// HistoryStore defines the interface for recording validation runs and their findings.
type HistoryStore interface {
	// BeginRun creates a new validation run and returns its unique ID
	BeginRun(meta schema.RunMetadata) (int64, error)

	// RecordFindings stores the findings of a run in report order
	RecordFindings(runID int64, findings []schema.Finding) error

	// EndRun updates the run with its score and summary counts
	EndRun(runID int64, endTime time.Time, report schema.Report) error

	// GetStatus returns status information about the history store
	GetStatus() (schema.HistoryStatus, error)

	// GetAllRuns returns every recorded run, oldest first
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllFindings returns every recorded finding ordered by run and ordinal
	GetAllFindings() ([]schema.FindingRecord, error)

	// Close closes the underlying connection
	Close() error
}
