package policy

import "github.com/huangsam/storecheck/schema"

// MaxScore is the score of a submission without findings.
const MaxScore = 100

// Score deducts the penalty of every finding from MaxScore, clamped to [0, MaxScore].
func Score(findings []schema.Finding, rb *schema.Rulebook) int {
	score := MaxScore
	for _, f := range findings {
		score -= rb.Penalty(f.Severity)
	}
	return max(0, min(MaxScore, score))
}
