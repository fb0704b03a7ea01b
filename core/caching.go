package core

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/storecheck/core/policy"
	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// currentCacheVersion defines the version of the cached report schema
const currentCacheVersion = 1

// cacheTTL bounds how long a cached report is trusted.
const cacheTTL = 30 * 24 * time.Hour

// cachedValidate returns the report for a submission, reusing a cached one when
// the same package was validated under the same rulebook. The bool reports a cache hit.
func cachedValidate(ctx context.Context, sub *policy.Submission, rb *schema.Rulebook) (schema.Report, bool) {
	mgr := storeManagerFromContext(ctx)
	if mgr == nil {
		return sub.Validate(rb), false
	}
	reports := mgr.GetReportStore()
	if reports == nil {
		// Fallback to direct computation
		return sub.Validate(rb), false
	}

	key := generateCacheKey(sub.Digest, rb)
	if report := checkCacheHit(reports, key); report != nil {
		return *report, true
	}
	return computeAndStore(reports, key, sub, rb), false
}

// checkCacheHit attempts to retrieve and validate a cached report
func checkCacheHit(reports contract.CacheStore, key string) *schema.Report {
	data, version, ts, err := reports.Get(key)
	if err != nil {
		return nil // Cache miss
	}

	if version != currentCacheVersion || time.Since(time.Unix(ts, 0)) > cacheTTL {
		return nil // Stale or version mismatch
	}

	var report schema.Report
	if err := json.Unmarshal(data, &report); err != nil || report.Findings == nil {
		return nil
	}
	return &report
}

// computeAndStore validates the submission and stores the report in cache
func computeAndStore(reports contract.CacheStore, key string, sub *policy.Submission, rb *schema.Rulebook) schema.Report {
	report := sub.Validate(rb)
	if data, err := json.Marshal(report); err == nil {
		if err := reports.Set(key, data, currentCacheVersion, time.Now().Unix()); err != nil {
			contract.LogWarn("Report caching failed", err)
		}
	}
	return report
}

// generateCacheKey creates a unique key from the package digest and the active rulebook
func generateCacheKey(digest string, rb *schema.Rulebook) string {
	key := fmt.Sprintf("%s:%s", digest, rb.Fingerprint())
	return fmt.Sprintf("%x", sha256.Sum256([]byte(key)))
}
