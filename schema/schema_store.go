package schema

import "time"

// RunMetadata describes a validation run when it is recorded in history.
type RunMetadata struct {
	StartTime    time.Time
	Source       string
	Extension    string
	Version      string
	Digest       string
	ConfigParams map[string]any
}

// RunRecord represents a row from the storecheck_validation_runs table.
type RunRecord struct {
	RunID         int64
	StartTime     time.Time
	EndTime       *time.Time
	RunDurationMs *int32
	Source        string
	Extension     *string
	Version       *string
	Digest        string
	Score         *int32
	CriticalCount *int32
	ErrorCount    *int32
	WarningCount  *int32
	ConfigParams  *string
}

// FindingRecord represents a row from the storecheck_findings table.
type FindingRecord struct {
	RunID       int64
	Ordinal     int32
	Category    string
	Kind        string
	Severity    string
	Title       string
	Message     string
	Requirement string
	Suggestion  *string
}
