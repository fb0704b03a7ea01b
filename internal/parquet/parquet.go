// Package parquet provides data structures and functions for exporting storecheck
// validation data to Parquet files using github.com/parquet-go/parquet-go.
package parquet

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/huangsam/storecheck/schema"
)

// ValidationRun represents a single recorded validation run.
// This struct maps to the storecheck_validation_runs database table.
type ValidationRun struct {
	// RunID is the unique identifier for this run
	RunID int64 `parquet:"run_id,snappy"`

	// StartTime is when validation began (stored as TIMESTAMP with nanosecond precision)
	StartTime time.Time `parquet:"start_time,snappy"`

	// EndTime is when validation completed (nullable)
	EndTime *time.Time `parquet:"end_time,optional,snappy"`

	// RunDurationMs is the duration of the run in milliseconds (nullable)
	RunDurationMs *int32 `parquet:"run_duration_ms,optional,snappy"`

	// Source is the path or label of the validated package
	Source string `parquet:"source,snappy"`

	// Extension is the declared extension name (nullable)
	Extension *string `parquet:"extension_name,optional,snappy"`

	// Version is the declared extension version (nullable)
	Version *string `parquet:"extension_version,optional,snappy"`

	// Digest identifies the manifest bytes and file list
	Digest string `parquet:"digest,snappy"`

	// Score is the compliance score, 0-100 (nullable until the run ends)
	Score *int32 `parquet:"score,optional,snappy"`

	CriticalCount *int32 `parquet:"critical_count,optional,snappy"`
	ErrorCount    *int32 `parquet:"error_count,optional,snappy"`
	WarningCount  *int32 `parquet:"warning_count,optional,snappy"`

	// ConfigParams contains the JSON-encoded configuration parameters (nullable)
	ConfigParams *string `parquet:"config_params,optional,snappy"`
}

// Finding represents one recorded finding of a validation run.
// This struct maps to the storecheck_findings database table.
type Finding struct {
	RunID       int64   `parquet:"run_id,snappy"`
	Ordinal     int32   `parquet:"ordinal,snappy"`
	Category    string  `parquet:"category,dict,snappy"`
	Kind        string  `parquet:"kind,dict,snappy"`
	Severity    string  `parquet:"severity,dict,snappy"`
	Title       string  `parquet:"title,snappy"`
	Message     string  `parquet:"message,snappy"`
	Requirement string  `parquet:"requirement,snappy"`
	Suggestion  *string `parquet:"suggestion,optional,snappy"`
}

// ReportFinding is one finding of a fresh validation result, flattened with
// the package it belongs to. Packages without findings yield a single row
// with empty finding columns so that their score is still exported.
type ReportFinding struct {
	Source      string `parquet:"source,snappy"`
	Extension   string `parquet:"extension_name,snappy"`
	Version     string `parquet:"extension_version,snappy"`
	Digest      string `parquet:"digest,snappy"`
	Score       int32  `parquet:"score,snappy"`
	Category    string `parquet:"category,dict,snappy"`
	Kind        string `parquet:"kind,dict,snappy"`
	Severity    string `parquet:"severity,dict,snappy"`
	Title       string `parquet:"title,snappy"`
	Message     string `parquet:"message,snappy"`
	Requirement string `parquet:"requirement,snappy"`
	Suggestion  string `parquet:"suggestion,snappy"`
}

// WriteRows writes rows to w using the schema inferred from T's struct tags.
func WriteRows[T any](w io.Writer, rows []T) error {
	writer := parquet.NewGenericWriter[T](w)
	if _, err := writer.Write(rows); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write data to parquet file: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize parquet file: %w", err)
	}
	return nil
}

// writeFile creates outputPath and writes rows to it.
func writeFile[T any](rows []T, outputPath string) error {
	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := WriteRows(file, rows); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// WriteValidationRunsParquet writes a slice of ValidationRun structs to a Parquet file.
func WriteValidationRunsParquet(data []ValidationRun, outputPath string) error {
	return writeFile(data, outputPath)
}

// WriteFindingsParquet writes a slice of Finding structs to a Parquet file.
func WriteFindingsParquet(data []Finding, outputPath string) error {
	return writeFile(data, outputPath)
}

// ConvertRunRecords converts schema.RunRecord to ValidationRun for Parquet export.
func ConvertRunRecords(records []schema.RunRecord) []ValidationRun {
	result := make([]ValidationRun, len(records))
	for i, record := range records {
		result[i] = ValidationRun{
			RunID:         record.RunID,
			StartTime:     record.StartTime,
			EndTime:       record.EndTime,
			RunDurationMs: record.RunDurationMs,
			Source:        record.Source,
			Extension:     record.Extension,
			Version:       record.Version,
			Digest:        record.Digest,
			Score:         record.Score,
			CriticalCount: record.CriticalCount,
			ErrorCount:    record.ErrorCount,
			WarningCount:  record.WarningCount,
			ConfigParams:  record.ConfigParams,
		}
	}
	return result
}

// ConvertFindingRecords converts schema.FindingRecord to Finding for Parquet export.
func ConvertFindingRecords(records []schema.FindingRecord) []Finding {
	result := make([]Finding, len(records))
	for i, record := range records {
		result[i] = Finding{
			RunID:       record.RunID,
			Ordinal:     record.Ordinal,
			Category:    record.Category,
			Kind:        record.Kind,
			Severity:    record.Severity,
			Title:       record.Title,
			Message:     record.Message,
			Requirement: record.Requirement,
			Suggestion:  record.Suggestion,
		}
	}
	return result
}

// ConvertValidationResults flattens validation results into ReportFinding rows.
func ConvertValidationResults(results []schema.ValidationResult) []ReportFinding {
	var rows []ReportFinding
	for _, res := range results {
		base := ReportFinding{
			Source:    res.Source,
			Extension: res.Extension,
			Version:   res.Version,
			Digest:    res.Digest,
			Score:     int32(res.Score),
		}
		if len(res.Findings) == 0 {
			rows = append(rows, base)
			continue
		}
		for _, f := range res.Findings {
			row := base
			row.Category = string(f.Category)
			row.Kind = string(f.Kind)
			row.Severity = string(f.Severity)
			row.Title = f.Title
			row.Message = f.Message
			row.Requirement = f.Requirement
			row.Suggestion = f.Suggestion
			rows = append(rows, row)
		}
	}
	return rows
}
