package policy

import (
	"fmt"
	"strings"

	"github.com/huangsam/storecheck/schema"
)

// checkPermissions covers dangerous permissions, the permission count and
// host patterns declared in the wrong key.
func checkPermissions(m *Manifest, _ FileSet, rb *schema.Rulebook) []schema.Finding {
	if !m.HasPermissions {
		return nil
	}

	var findings []schema.Finding
	for _, p := range rb.DangerousPermissions {
		if !m.HasPermission(p) {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:    schema.PermissionsCategory,
			Kind:        schema.WarningKind,
			Title:       "Broad permission requested",
			Message:     fmt.Sprintf("The %q permission grants broad access and triggers an install warning.", p),
			Requirement: "Request only the narrowest permissions needed to implement the extension's features.",
			Suggestion:  fmt.Sprintf("Remove %q or replace it with a narrower permission or optional_permissions.", p),
			Severity:    schema.HighSeverity,
		})
	}

	if n := len(m.Permissions); n > rb.MaxPermissions {
		findings = append(findings, schema.Finding{
			Category:    schema.PermissionsCategory,
			Kind:        schema.WarningKind,
			Title:       "Too many permissions",
			Message:     fmt.Sprintf("The extension requests %d permissions; more than %d draws extra review.", n, rb.MaxPermissions),
			Requirement: "Request only the narrowest permissions needed to implement the extension's features.",
			Suggestion:  "Drop unused permissions or move them to optional_permissions.",
			Severity:    schema.MediumSeverity,
		})
	}

	if m.ManifestVersion.Is(3) {
		for _, p := range m.Permissions {
			if !strings.Contains(p, "://") {
				continue
			}
			findings = append(findings, schema.Finding{
				Category:    schema.PermissionsCategory,
				Kind:        schema.ErrorKind,
				Title:       "Host permission in permissions",
				Message:     fmt.Sprintf("Host pattern %q is listed under permissions.", p),
				Requirement: "In Manifest V3, host patterns must be declared in host_permissions.",
				Suggestion:  "Move host patterns to the host_permissions key.",
				Severity:    schema.HighSeverity,
			})
			break
		}
	}

	return findings
}
