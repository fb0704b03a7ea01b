package iocache

import (
	"errors"
	"fmt"
	"io"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/internal/parquet"
)

// ExecuteHistoryExport exports validation history to two Parquet files:
// <outputFile>.runs.parquet and <outputFile>.findings.parquet.
func ExecuteHistoryExport(store contract.HistoryStore, outputFile string, out io.Writer) error {
	if outputFile == "" {
		return errors.New("--output-file is required for export command")
	}
	if store == nil {
		return errors.New("history store is not initialized")
	}

	status, err := store.GetStatus()
	if err != nil {
		return fmt.Errorf("failed to get history status: %w", err)
	}
	if status.TotalRuns == 0 {
		return errors.New("no validation history found to export")
	}

	_, _ = fmt.Fprintf(out, "Exporting data from %s backend...\n", status.Backend)
	_, _ = fmt.Fprintf(out, "Total validation runs: %d\n", status.TotalRuns)
	_, _ = fmt.Fprintf(out, "Total findings: %d\n", status.TotalFindings)

	runs, err := store.GetAllRuns()
	if err != nil {
		return fmt.Errorf("failed to retrieve validation runs: %w", err)
	}
	findings, err := store.GetAllFindings()
	if err != nil {
		return fmt.Errorf("failed to retrieve findings: %w", err)
	}

	parquetRuns := parquet.ConvertRunRecords(runs)
	runsFile := outputFile + ".runs.parquet"
	if err := parquet.WriteValidationRunsParquet(parquetRuns, runsFile); err != nil {
		return fmt.Errorf("failed to write validation runs: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d validation runs to: %s\n", len(parquetRuns), runsFile)

	parquetFindings := parquet.ConvertFindingRecords(findings)
	findingsFile := outputFile + ".findings.parquet"
	if err := parquet.WriteFindingsParquet(parquetFindings, findingsFile); err != nil {
		return fmt.Errorf("failed to write findings: %w", err)
	}
	_, _ = fmt.Fprintf(out, "Exported %d findings to: %s\n", len(parquetFindings), findingsFile)

	return nil
}
