package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// ErrCheckFailed is returned when at least one package fails the gate.
var ErrCheckFailed = errors.New("policy check failed")

// maxFailuresShown limits the failure lines printed per run.
const maxFailuresShown = 10

// ExecuteCheck runs the check command for CI/CD gating.
// It validates every path and returns ErrCheckFailed when a package scores
// below --min-score or has a finding at or above --fail-on severity.
func ExecuteCheck(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	start := time.Now()

	builder := NewCheckResultBuilder(ctx, cfg, mgr)

	if _, err := builder.ValidatePrerequisites(); err != nil {
		return err
	}
	if _, err := builder.RunValidation(); err != nil {
		return err
	}
	builder.EvaluateGate().BuildResult()

	result := builder.GetResult()
	if err := printCheckResult(os.Stdout, result, cfg, time.Since(start)); err != nil {
		return err
	}
	if !result.Passed {
		return fmt.Errorf("%w: %d violation(s) found", ErrCheckFailed, len(result.Failures))
	}
	return nil
}

// printCheckResult prints the check result in a concise format suitable for CI/CD.
func printCheckResult(w io.Writer, result *schema.CheckResult, cfg *contract.Config, duration time.Duration) error {
	if err := printCheckHeader(w, result, duration); err != nil {
		return err
	}
	if result.Passed {
		return printCheckSuccess(w, result, cfg)
	}
	return printCheckFailure(w, result, cfg)
}

// printCheckHeader prints the common header information for check results.
func printCheckHeader(w io.Writer, result *schema.CheckResult, duration time.Duration) error {
	if _, err := fmt.Fprintln(w, "Policy Check Results:"); err != nil {
		return err
	}

	labels := []string{"Min score:", "Fail on:"}
	values := []any{result.MinScore, result.FailOn}

	maxLabelLen := 0
	for _, label := range labels {
		maxLabelLen = max(maxLabelLen, len(label))
	}
	for i, label := range labels {
		if _, err := fmt.Fprintf(w, "  %-*s %v\n", maxLabelLen+1, label, values[i]); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(w, "\nChecked %d package(s) in %v\n\n", result.Total, duration.Round(time.Millisecond))
	return err
}

// printCheckSuccess prints the success case output.
func printCheckSuccess(w io.Writer, result *schema.CheckResult, cfg *contract.Config) error {
	marker := "PASS"
	if cfg.UseEmojis {
		marker = "✅"
	}
	if _, err := fmt.Fprintf(w, "%s All packages passed policy checks\n\n", marker); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "Scores observed:"); err != nil {
		return err
	}
	for _, res := range result.Results {
		if _, err := fmt.Fprintf(w, "  %s: %d (%s)\n", res.Source, res.Score, schema.GetPlainLabel(res.Score)); err != nil {
			return err
		}
	}
	return nil
}

// printCheckFailure prints the failure case output.
func printCheckFailure(w io.Writer, result *schema.CheckResult, cfg *contract.Config) error {
	marker := "FAIL"
	if cfg.UseEmojis {
		marker = "❌"
	}
	if _, err := fmt.Fprintf(w, "%s Policy check failed: %d violation(s) found across %d package(s)\n\n",
		marker, len(result.Failures), result.Total); err != nil {
		return err
	}

	for i, f := range result.Failures {
		if i >= maxFailuresShown {
			_, err := fmt.Fprintf(w, "  ... and %d more\n", len(result.Failures)-i)
			return err
		}
		if _, err := fmt.Fprintf(w, "  - %s (score: %d): %s\n", f.Source, f.Score, f.Reason); err != nil {
			return err
		}
	}
	return nil
}
