package core

import (
	"context"
	"fmt"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// CheckResultBuilder builds the check result using a builder pattern.
type CheckResultBuilder struct {
	cfg      *contract.Config
	mgr      contract.StoreManager
	ctx      context.Context
	results  []schema.ValidationResult
	failures []schema.CheckFailure
	result   *schema.CheckResult
}

// NewCheckResultBuilder creates a new builder for check results.
func NewCheckResultBuilder(ctx context.Context, cfg *contract.Config, mgr contract.StoreManager) *CheckResultBuilder {
	return &CheckResultBuilder{
		cfg: cfg,
		mgr: mgr,
		ctx: ctx,
	}
}

// ValidatePrerequisites makes sure there is something to check.
func (b *CheckResultBuilder) ValidatePrerequisites() (*CheckResultBuilder, error) {
	if len(b.cfg.Paths) == 0 {
		return nil, fmt.Errorf("%w. Example: storecheck check ./my-extension", ErrNoPaths)
	}
	if b.cfg.Rulebook == nil {
		return nil, fmt.Errorf("check requires a rulebook")
	}
	return b, nil
}

// RunValidation validates every configured path.
func (b *CheckResultBuilder) RunValidation() (*CheckResultBuilder, error) {
	results, err := validateAll(WithStoreManager(b.ctx, b.mgr), b.cfg, b.cfg.Paths)
	if err != nil {
		return nil, err
	}
	b.results = results
	return b, nil
}

// EvaluateGate compares every result against the minimum score and the fail-on severity.
func (b *CheckResultBuilder) EvaluateGate() *CheckResultBuilder {
	b.failures = []schema.CheckFailure{}
	for _, res := range b.results {
		if res.Score < b.cfg.MinScore {
			b.failures = append(b.failures, schema.CheckFailure{
				Source: res.Source,
				Score:  res.Score,
				Reason: fmt.Sprintf("score %d is below the minimum of %d", res.Score, b.cfg.MinScore),
			})
		}
		if n := countAtLeast(res.Findings, b.cfg.FailOn); n > 0 {
			b.failures = append(b.failures, schema.CheckFailure{
				Source: res.Source,
				Score:  res.Score,
				Reason: fmt.Sprintf("%d finding(s) at or above %s severity", n, b.cfg.FailOn),
			})
		}
	}
	return b
}

// BuildResult constructs the final CheckResult.
func (b *CheckResultBuilder) BuildResult() *CheckResultBuilder {
	b.result = &schema.CheckResult{
		Passed:   len(b.failures) == 0,
		MinScore: b.cfg.MinScore,
		FailOn:   b.cfg.FailOn,
		Total:    len(b.results),
		Failures: b.failures,
		Results:  b.results,
	}
	return b
}

// GetResult returns the built CheckResult.
func (b *CheckResultBuilder) GetResult() *schema.CheckResult {
	return b.result
}

// countAtLeast counts findings whose severity reaches threshold.
// The none threshold never matches.
func countAtLeast(findings []schema.Finding, threshold schema.Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity.AtLeast(threshold) {
			n++
		}
	}
	return n
}
