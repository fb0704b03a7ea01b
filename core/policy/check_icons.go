package policy

import (
	"fmt"

	"github.com/huangsam/storecheck/schema"
)

// checkIcons covers required and recommended sizes and the declared icon files.
// It stops early when no icons are declared.
func checkIcons(m *Manifest, files FileSet, rb *schema.Rulebook) []schema.Finding {
	if !m.HasIcons {
		return []schema.Finding{{
			Category:    schema.IconsCategory,
			Kind:        schema.ErrorKind,
			Title:       "Missing icons",
			Message:     "The manifest does not declare any icons.",
			Requirement: fmt.Sprintf("Items must provide icons of sizes %s.", joinSizes(rb.RequiredIconSizes)),
			Suggestion:  "Add an \"icons\" object mapping each size to a PNG file.",
			Severity:    schema.CriticalSeverity,
		}}
	}

	var findings []schema.Finding
	for _, size := range rb.RequiredIconSizes {
		if m.HasIcon(size) {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:    schema.IconsCategory,
			Kind:        schema.ErrorKind,
			Title:       "Missing required icon",
			Message:     fmt.Sprintf("No %spx icon is declared.", size),
			Requirement: fmt.Sprintf("Items must provide icons of sizes %s.", joinSizes(rb.RequiredIconSizes)),
			Suggestion:  fmt.Sprintf("Add a %sx%s PNG and declare it under icons[%q].", size, size, size),
			Severity:    schema.HighSeverity,
		})
	}

	for _, size := range rb.RecommendedIconSizes {
		if m.HasIcon(size) {
			continue
		}
		findings = append(findings, schema.Finding{
			Category:    schema.IconsCategory,
			Kind:        schema.InfoKind,
			Title:       "Recommended icon size missing",
			Message:     fmt.Sprintf("No %spx icon is declared.", size),
			Requirement: "Extra icon sizes keep the icon sharp on toolbars and high density displays.",
			Suggestion:  fmt.Sprintf("Consider adding a %sx%s icon.", size, size),
			Severity:    schema.LowSeverity,
		})
	}

	for _, icon := range m.Icons {
		file, ok := files.Lookup(icon.Path)
		if !ok {
			findings = append(findings, schema.Finding{
				Category:    schema.IconsCategory,
				Kind:        schema.ErrorKind,
				Title:       "Icon file not found",
				Message:     fmt.Sprintf("The %spx icon points to %q, which is not in the package.", icon.Size, icon.Path),
				Requirement: "Every declared icon must exist in the package.",
				Suggestion:  "Fix the path or add the missing file.",
				Severity:    schema.HighSeverity,
			})
			continue
		}
		if file.Size > rb.MaxIconBytes {
			findings = append(findings, schema.Finding{
				Category:    schema.IconsCategory,
				Kind:        schema.WarningKind,
				Title:       "Icon file too large",
				Message:     fmt.Sprintf("Icon %q is %s; the limit is %s.", file.Name, FormatMB(file.Size), FormatMB(rb.MaxIconBytes)),
				Requirement: "Icons should be small PNG files.",
				Suggestion:  "Compress the image or reduce its dimensions.",
				Severity:    schema.MediumSeverity,
			})
		}
	}

	return findings
}

func joinSizes(sizes []string) string {
	out := ""
	for i, s := range sizes {
		switch {
		case i == 0:
		case i == len(sizes)-1:
			out += " and "
		default:
			out += ", "
		}
		out += s + "x" + s
	}
	return out
}

// FormatMB renders a byte count in MiB with one decimal, such as "130.0MB".
func FormatMB(size int64) string {
	return fmt.Sprintf("%.1fMB", float64(size)/schema.MiB)
}
