package outwriter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/huangsam/storecheck/core/policy"
	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/internal/parquet"
	"github.com/huangsam/storecheck/schema"
)

// ErrParquetNeedsFile is returned when parquet output is requested without an output file.
var ErrParquetNeedsFile = errors.New("parquet output requires --output-file")

// WriteReports outputs validation results, dispatching based on the output format configured.
func WriteReports(results []schema.ValidationResult, cfg *contract.Config, duration time.Duration) error {
	switch cfg.Output {
	case schema.JSONOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, results)
		}, "💾 Wrote JSON"); err != nil {
			return fmt.Errorf("error writing JSON output: %w", err)
		}
	case schema.CSVOut:
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsCSV(w, results)
		}, "💾 Wrote CSV"); err != nil {
			return fmt.Errorf("error writing CSV output: %w", err)
		}
	case schema.ParquetOut:
		if cfg.OutputFile == "" {
			return ErrParquetNeedsFile
		}
		if err := writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return parquet.WriteRows(w, parquet.ConvertValidationResults(results))
		}, "💾 Wrote Parquet"); err != nil {
			return fmt.Errorf("error writing Parquet output: %w", err)
		}
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeReportsText(w, results, cfg, duration)
		}, "💾 Wrote table")
	}
	return nil
}

// writeReportsText writes one block per package followed by a run footer.
func writeReportsText(w io.Writer, results []schema.ValidationResult, cfg *contract.Config, duration time.Duration) error {
	bold := fmt.Sprint
	if cfg.UseColors {
		bold = color.New(color.Bold).SprintFunc()
	}

	for i, res := range results {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := writeReportHeader(w, res, cfg, bold); err != nil {
			return err
		}
		if len(res.Findings) == 0 {
			if _, err := fmt.Fprintf(w, "%s No issues found\n", contract.KindSymbol(schema.SuccessKind, cfg.UseEmojis)); err != nil {
				return err
			}
			continue
		}
		if err := writeFindingsTable(w, res.Findings, cfg); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "Validated %d package(s) in %v with %d workers. Cache backend: %s\n",
		len(results), duration, cfg.Workers, cfg.CacheBackend)
	return err
}

// writeReportHeader writes the package identity, score and finding counts.
func writeReportHeader(w io.Writer, res schema.ValidationResult, cfg *contract.Config, bold func(...any) string) error {
	name := res.Extension
	if name == "" {
		name = "(unnamed)"
	}
	if res.Version != "" {
		name += " v" + res.Version
	}

	label := schema.GetPlainLabel(res.Score)
	if cfg.UseColors {
		label = contract.GetColorLabel(res.Score)
	}

	prefix := ""
	if cfg.UseEmojis {
		prefix = "📦 "
	}
	cached := ""
	if res.Cached {
		cached = " (cached)"
	}

	if _, err := fmt.Fprintf(w, "%s%s: %s%s\n", prefix, bold(name), contract.TruncatePath(res.Source, GetMaxTableMessageWidth(cfg)), cached); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Score: %d/%d %s | %d critical, %d error(s), %d warning(s), %d info | %d file(s), %s\n",
		res.Score, policy.MaxScore, label,
		res.Summary.Critical, res.Summary.Errors, res.Summary.Warnings, res.Summary.Infos,
		res.Files, policy.FormatMB(res.Bytes))
	return err
}

// writeFindingsTable generates and writes the human-readable findings table.
func writeFindingsTable(w io.Writer, findings []schema.Finding, cfg *contract.Config) error {
	table := tablewriter.NewWriter(w)
	table.Header([]string{"#", "Severity", "Type", "Category", "Title", "Message"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignLeft
	})

	maxWidth := GetMaxTableMessageWidth(cfg)
	data := make([][]string, 0, len(findings))
	for i, f := range findings {
		severity := strings.ToUpper(string(f.Severity))
		if cfg.UseColors {
			severity = contract.GetSeverityLabel(f.Severity)
		}
		data = append(data, []string{
			strconv.Itoa(i + 1),
			severity,
			contract.KindSymbol(f.Kind, cfg.UseEmojis),
			string(f.Category),
			f.Title,
			contract.TruncateText(f.Message, maxWidth),
		})
	}

	if err := table.Bulk(data); err != nil {
		return err
	}
	return table.Render()
}

// writeReportsCSV writes one row per finding. Packages without findings get a single row.
func writeReportsCSV(w io.Writer, results []schema.ValidationResult) error {
	header := []string{
		"source", "extension", "version", "digest", "score",
		"category", "type", "severity", "title", "message", "requirement", "suggestion",
	}
	return writeCSVWithHeader(w, header, func(cw *csv.Writer) error {
		for _, row := range parquet.ConvertValidationResults(results) {
			record := []string{
				row.Source, row.Extension, row.Version, row.Digest, strconv.Itoa(int(row.Score)),
				row.Category, row.Kind, row.Severity, row.Title, row.Message, row.Requirement, row.Suggestion,
			}
			if err := cw.Write(record); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}

