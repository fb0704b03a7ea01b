// Package core orchestrates validation runs: loading packages, running the
// policy validator with a worker pool, caching reports and recording history.
package core

import (
	"context"
	"errors"
	"time"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/internal/outwriter"
)

// ExecutorFunc defines the function signature for executing the different commands.
type ExecutorFunc func(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error

// ErrNoPaths is returned when a command has nothing to validate.
var ErrNoPaths = errors.New("no extension paths given")

// ExecuteValidate validates every configured path and writes the reports.
// It serves as the main entry point for the 'validate' command.
func ExecuteValidate(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) error {
	if len(cfg.Paths) == 0 {
		return ErrNoPaths
	}
	start := time.Now()

	if !shouldSuppressHeader(ctx) {
		outwriter.LogValidationHeader(cfg)
	}

	results, err := validateAll(WithStoreManager(ctx, mgr), cfg, cfg.Paths)
	if err != nil {
		return err
	}

	if err := outwriter.WriteReports(results, cfg, time.Since(start)); err != nil {
		return err
	}
	if !shouldSuppressHeader(ctx) {
		outwriter.LogSummary(results, cfg)
	}
	return nil
}

// ExecuteRules displays the active rulebook.
// This is a static display that does not load any package.
func ExecuteRules(_ context.Context, cfg *contract.Config, _ contract.StoreManager) error {
	return outwriter.WriteRules(cfg.Rulebook, cfg)
}
