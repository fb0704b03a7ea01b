package policy

import (
	"fmt"
	"strings"

	"github.com/huangsam/storecheck/schema"
)

// checkContent covers the package size, prohibited keywords and the single purpose policy.
func checkContent(m *Manifest, files FileSet, rb *schema.Rulebook) []schema.Finding {
	var findings []schema.Finding

	if total := files.TotalBytes(); total > rb.MaxPackageBytes {
		findings = append(findings, schema.Finding{
			Category:    schema.ContentCategory,
			Kind:        schema.ErrorKind,
			Title:       "Package too large",
			Message:     fmt.Sprintf("The package is %s; the upload limit is %s.", FormatMB(total), FormatMB(rb.MaxPackageBytes)),
			Requirement: fmt.Sprintf("Packages must not exceed %s.", FormatMB(rb.MaxPackageBytes)),
			Suggestion:  "Remove unused assets and source maps, or load large data at runtime.",
			Severity:    schema.HighSeverity,
		})
	}

	text := strings.ToLower(m.Name.Value + m.Description.Value)
	for _, keyword := range rb.ProhibitedKeywords {
		if !strings.Contains(text, strings.ToLower(keyword)) {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:    schema.ContentCategory,
			Kind:        schema.WarningKind,
			Title:       "Prohibited content keyword",
			Message:     fmt.Sprintf("The name or description mentions %q.", keyword),
			Requirement: "Items must not promote prohibited or deceptive content.",
			Suggestion:  "Reword the listing if the term is unrelated to prohibited content.",
			Severity:    schema.HighSeverity,
		})
	}

	if n := m.PurposeCount(); n > rb.MaxPurposes {
		findings = append(findings, schema.Finding{
			Category:    schema.ContentCategory,
			Kind:        schema.InfoKind,
			Title:       "Multiple functionalities",
			Message:     fmt.Sprintf("The extension declares %d surfaces (content scripts, background, action, options page).", n),
			Requirement: "Extensions must have a single purpose that is narrow and easy to understand.",
			Suggestion:  "Make sure every surface serves the same purpose.",
			Severity:    schema.LowSeverity,
		})
	}

	return findings
}
