package policy

import (
	"fmt"

	"github.com/huangsam/storecheck/schema"
)

const requiredFieldsRequirement = "Every manifest must declare name, version, description and manifest_version."

// checkManifest covers required fields, name and description bounds,
// the version format and the manifest version.
func checkManifest(m *Manifest, _ FileSet, rb *schema.Rulebook) []schema.Finding {
	var findings []schema.Finding

	required := []struct {
		field   string
		present bool
	}{
		{"name", m.Name.Present},
		{"version", m.Version.Present},
		{"description", m.Description.Present},
		{"manifest_version", m.ManifestVersion.Present},
	}
	for _, r := range required {
		if r.present {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:    schema.ManifestCategory,
			Kind:        schema.ErrorKind,
			Title:       "Missing required field",
			Message:     fmt.Sprintf("The manifest does not declare %q.", r.field),
			Requirement: requiredFieldsRequirement,
			Suggestion:  fmt.Sprintf("Add a %q entry to manifest.json.", r.field),
			Severity:    schema.CriticalSeverity,
		})
	}

	if n, ok := m.Name.Len(); ok && m.Name.Present {
		switch {
		case n < rb.NameMinLength:
			findings = append(findings, schema.Finding{
				Category:    schema.MetadataCategory,
				Kind:        schema.ErrorKind,
				Title:       "Name too short",
				Message:     fmt.Sprintf("The name has %d characters; at least %d are required.", n, rb.NameMinLength),
				Requirement: fmt.Sprintf("Extension names must be %d to %d characters long.", rb.NameMinLength, rb.NameMaxLength),
				Suggestion:  "Use a name that describes what the extension does.",
				Severity:    schema.HighSeverity,
			})
		case n > rb.NameMaxLength:
			findings = append(findings, schema.Finding{
				Category:    schema.MetadataCategory,
				Kind:        schema.ErrorKind,
				Title:       "Name too long",
				Message:     fmt.Sprintf("The name has %d characters; at most %d are allowed.", n, rb.NameMaxLength),
				Requirement: fmt.Sprintf("Extension names must be %d to %d characters long.", rb.NameMinLength, rb.NameMaxLength),
				Suggestion:  "Shorten the name and move details into the description.",
				Severity:    schema.HighSeverity,
			})
		}
	}

	if n, ok := m.Description.Len(); ok && m.Description.Present {
		switch {
		case n < rb.DescriptionMinLength:
			findings = append(findings, schema.Finding{
				Category:    schema.MetadataCategory,
				Kind:        schema.ErrorKind,
				Title:       "Description too short",
				Message:     fmt.Sprintf("The description has %d characters; at least %d are required.", n, rb.DescriptionMinLength),
				Requirement: "The description must explain the single purpose of the extension.",
				Suggestion:  "Describe what the extension does and who it is for.",
				Severity:    schema.HighSeverity,
			})
		case n > rb.DescriptionMaxLength:
			findings = append(findings, schema.Finding{
				Category:    schema.MetadataCategory,
				Kind:        schema.WarningKind,
				Title:       "Description too long",
				Message:     fmt.Sprintf("The description has %d characters; the store shows only the first %d.", n, rb.DescriptionMaxLength),
				Requirement: fmt.Sprintf("Manifest descriptions are limited to %d characters.", rb.DescriptionMaxLength),
				Suggestion:  "Keep the manifest description short and put details in the store listing.",
				Severity:    schema.MediumSeverity,
			})
		}
	}

	if m.Version.Present && !rb.VersionMatches(m.Version.Value) {
		findings = append(findings, schema.Finding{
			Category:    schema.ManifestCategory,
			Kind:        schema.ErrorKind,
			Title:       "Invalid version format",
			Message:     fmt.Sprintf("Version %q is not a dot-separated list of integers.", m.Version.Value),
			Requirement: "The version must be dot-separated integers, such as 1.0.0.",
			Suggestion:  "Use a numeric version such as 1.0.0 and bump it for every upload.",
			Severity:    schema.HighSeverity,
		})
	}

	if m.ManifestVersion.Is(2) {
		findings = append(findings, schema.Finding{
			Category:    schema.ManifestCategory,
			Kind:        schema.WarningKind,
			Title:       "Manifest V2 is deprecated",
			Message:     "The extension uses manifest_version 2, which the store no longer accepts for new items.",
			Requirement: "New and updated items must use Manifest V3.",
			Suggestion:  "Migrate to manifest_version 3.",
			Severity:    schema.HighSeverity,
		})
	}

	return findings
}
