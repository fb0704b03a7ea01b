package policy

import (
	"fmt"
	"strings"

	"github.com/huangsam/storecheck/schema"
)

// checkPrivacy requires a privacy policy when user data may be collected.
func checkPrivacy(m *Manifest, _ FileSet, rb *schema.Rulebook) []schema.Finding {
	var findings []schema.Finding

	var collecting []string
	for _, p := range m.Permissions {
		if rb.CollectsData(p) {
			collecting = append(collecting, p)
		}
	}
	if len(collecting) > 0 && !m.PrivacyPolicy.Present {
		findings = append(findings, schema.Finding{
			Category:    schema.PrivacyCategory,
			Kind:        schema.ErrorKind,
			Title:       "Privacy policy required",
			Message:     fmt.Sprintf("Permissions %s can access user data but no privacy policy is declared.", strings.Join(collecting, ", ")),
			Requirement: "Items that handle user data must post a privacy policy.",
			Suggestion:  "Publish a privacy policy and link it from the developer dashboard.",
			Severity:    schema.CriticalSeverity,
		})
	}

	if m.HasPermission("identity") {
		findings = append(findings, schema.Finding{
			Category:    schema.PrivacyCategory,
			Kind:        schema.InfoKind,
			Title:       "Identity access",
			Message:     "The identity permission gives access to the user's Google account.",
			Requirement: "Disclose account data usage in the privacy practices tab.",
			Suggestion:  "Explain why sign-in is needed in the store listing.",
			Severity:    schema.MediumSeverity,
		})
	}

	if m.HasPermission("cookies") {
		findings = append(findings, schema.Finding{
			Category:    schema.PrivacyCategory,
			Kind:        schema.InfoKind,
			Title:       "Cookie access",
			Message:     "The cookies permission can read and change cookies for granted hosts.",
			Requirement: "Disclose cookie usage in the privacy practices tab.",
			Suggestion:  "Limit host permissions to the sites whose cookies are needed.",
			Severity:    schema.MediumSeverity,
		})
	}

	return findings
}
