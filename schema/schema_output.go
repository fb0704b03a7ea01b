package schema

import "time"

// ValidationResult is a report together with the data needed to present it.
type ValidationResult struct {
	Source    string        `json:"source"`
	Extension string        `json:"extension,omitempty"`
	Version   string        `json:"version,omitempty"`
	Digest    string        `json:"digest"`
	Cached    bool          `json:"cached"`
	Files     int           `json:"files"`
	Bytes     int64         `json:"bytes"`
	Summary   Summary       `json:"summary"`
	Duration  time.Duration `json:"-"`
	Report
}

// GetPlainLabel returns a plain text label for a compliance score.
// Higher scores are better, so the label reads as a grade.
func GetPlainLabel(score int) string {
	switch {
	case score >= 90:
		return "Excellent"
	case score >= 70:
		return "Good"
	case score >= 40:
		return "Fair"
	default:
		return "Poor"
	}
}

// NewValidationResult wraps a report with its derived summary.
func NewValidationResult(source string, report Report) ValidationResult {
	return ValidationResult{
		Source:  source,
		Summary: Summarize(report),
		Report:  report,
	}
}
