package core

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/huangsam/storecheck/core/policy"
	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// validateAll validates every path with a pool of cfg.Workers goroutines.
// Results keep the order of paths; load failures are joined into one error.
func validateAll(ctx context.Context, cfg *contract.Config, paths []string) ([]schema.ValidationResult, error) {
	results := make([]schema.ValidationResult, len(paths))
	errs := make([]error, len(paths))

	indexCh := make(chan int, len(paths))
	var wg sync.WaitGroup

	workers := max(1, min(cfg.Workers, len(paths)))
	for range workers {
		wg.Go(func() {
			for i := range indexCh {
				// Each worker writes to a unique index, so no locking is needed
				if err := ctx.Err(); err != nil {
					errs[i] = err
					continue
				}
				results[i], errs[i] = ValidatePath(ctx, cfg, paths[i])
			}
		})
	}

	for i := range paths {
		indexCh <- i
	}
	close(indexCh)
	wg.Wait()

	return results, errors.Join(errs...)
}

// ValidatePath loads the package at path and validates it.
func ValidatePath(ctx context.Context, cfg *contract.Config, path string) (schema.ValidationResult, error) {
	start := time.Now()
	sub, err := policy.LoadSubmission(path)
	if err != nil {
		return schema.ValidationResult{}, err
	}
	return validateSubmission(ctx, cfg, sub, start), nil
}

// ValidateSubmission validates a submission that is already in memory.
func ValidateSubmission(ctx context.Context, cfg *contract.Config, sub *policy.Submission) schema.ValidationResult {
	return validateSubmission(ctx, cfg, sub, time.Now())
}

func validateSubmission(ctx context.Context, cfg *contract.Config, sub *policy.Submission, start time.Time) schema.ValidationResult {
	report, cached := cachedValidate(ctx, sub, cfg.Rulebook)

	result := schema.NewValidationResult(sub.Source, report)
	if sub.Manifest.Name.IsText {
		result.Extension = sub.Manifest.Name.Value
	}
	if sub.Manifest.Version.IsText {
		result.Version = sub.Manifest.Version.Value
	}
	result.Digest = sub.Digest
	result.Cached = cached
	result.Files = len(sub.Files)
	result.Bytes = sub.Files.TotalBytes()
	result.Duration = time.Since(start)

	recordRun(ctx, cfg, result, start)
	return result
}

// recordRun stores the result in the history store when one is configured.
// Failures are logged and never fail the validation itself.
func recordRun(ctx context.Context, cfg *contract.Config, result schema.ValidationResult, start time.Time) {
	mgr := storeManagerFromContext(ctx)
	if mgr == nil {
		return
	}
	history := mgr.GetHistoryStore()
	if history == nil {
		return
	}

	runID, err := history.BeginRun(schema.RunMetadata{
		StartTime:    start,
		Source:       result.Source,
		Extension:    result.Extension,
		Version:      result.Version,
		Digest:       result.Digest,
		ConfigParams: cfg.ConfigParams(),
	})
	if err != nil {
		contract.LogWarn("History tracking initialization failed", err)
		return
	}
	if runID <= 0 {
		return
	}

	if err := history.RecordFindings(runID, result.Findings); err != nil {
		contract.LogWarn("Failed to record findings", err)
	}
	if err := history.EndRun(runID, time.Now(), result.Report); err != nil {
		contract.LogWarn("Failed to finalize history tracking", err)
	}
}
