// Package schema has configs, models and global variables for all parts of storecheck.
package schema

// Finding is one rule outcome produced by a validation run.
// Findings are created once and never edited afterwards.
type Finding struct {
	Category    Category `json:"category"`
	Kind        Kind     `json:"type"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Requirement string   `json:"requirement"`
	Suggestion  string   `json:"suggestion,omitempty"`
	Severity    Severity `json:"severity"`
}

// Report is the complete output of one validation run.
type Report struct {
	Findings []Finding `json:"findings"`
	Score    int       `json:"score"`
}

// Summary holds the display counts derived from a report.
type Summary struct {
	Critical int `json:"critical"`
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`
	Infos    int `json:"infos"`
	Total    int `json:"total"`
}

// Summarize counts findings by severity and kind.
func Summarize(report Report) Summary {
	s := Summary{Total: len(report.Findings)}
	for _, f := range report.Findings {
		if f.Severity == CriticalSeverity {
			s.Critical++
		}
		switch f.Kind {
		case ErrorKind:
			s.Errors++
		case WarningKind:
			s.Warnings++
		case InfoKind:
			s.Infos++
		}
	}
	return s
}

// GroupByCategory returns the findings bucketed by category, keeping the
// original order within each bucket. Categories without findings are omitted.
func GroupByCategory(findings []Finding) map[Category][]Finding {
	groups := make(map[Category][]Finding)
	for _, f := range findings {
		groups[f.Category] = append(groups[f.Category], f)
	}
	return groups
}
