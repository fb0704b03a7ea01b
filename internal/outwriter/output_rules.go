package outwriter

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/huangsam/storecheck/core/policy"
	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// ruleEntry is one flattened rulebook setting.
type ruleEntry struct {
	Key   string
	Value string
}

// flattenRulebook lists the rulebook settings in display order.
func flattenRulebook(rb *schema.Rulebook) []ruleEntry {
	entries := []ruleEntry{
		{"name_length", fmt.Sprintf("%d-%d", rb.NameMinLength, rb.NameMaxLength)},
		{"description_length", fmt.Sprintf("%d-%d", rb.DescriptionMinLength, rb.DescriptionMaxLength)},
		{"version_pattern", rb.VersionPattern},
		{"required_icon_sizes", strings.Join(rb.RequiredIconSizes, "|")},
		{"recommended_icon_sizes", strings.Join(rb.RecommendedIconSizes, "|")},
		{"max_icon_size", policy.FormatMB(rb.MaxIconBytes)},
		{"max_package_size", policy.FormatMB(rb.MaxPackageBytes)},
		{"max_permissions", strconv.Itoa(rb.MaxPermissions)},
		{"max_purposes", strconv.Itoa(rb.MaxPurposes)},
		{"dangerous_permissions", strings.Join(rb.DangerousPermissions, "|")},
		{"data_collection_permissions", strings.Join(rb.DataCollectionPermissions, "|")},
		{"prohibited_keywords", strings.Join(rb.ProhibitedKeywords, "|")},
	}
	for _, s := range schema.AllSeverities {
		entries = append(entries, ruleEntry{"penalty_" + string(s), strconv.Itoa(rb.Penalty(s))})
	}
	return entries
}

// WriteRules displays the active rulebook.
func WriteRules(rb *schema.Rulebook, cfg *contract.Config) error {
	switch cfg.Output {
	case schema.JSONOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, rb)
		}, "💾 Wrote JSON")
	case schema.CSVOut:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRulesCSV(w, rb)
		}, "💾 Wrote CSV")
	case schema.ParquetOut:
		return fmt.Errorf("parquet output is not supported for the rulebook")
	default:
		return writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeRulesText(w, rb, cfg)
		}, "💾 Wrote text")
	}
}

func writeRulesText(w io.Writer, rb *schema.Rulebook, cfg *contract.Config) error {
	title := "Store Policy Rulebook"
	if cfg.UseEmojis {
		title = "📋 " + title
	}
	if _, err := fmt.Fprintf(w, "%s (%s)\n", title, rb.Fingerprint()); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, strings.Repeat("=", len("Store Policy Rulebook"))); err != nil {
		return err
	}
	for _, e := range flattenRulebook(rb) {
		value := strings.ReplaceAll(e.Value, "|", ", ")
		if _, err := fmt.Fprintf(w, "  %-28s %s\n", e.Key+":", value); err != nil {
			return err
		}
	}
	return nil
}

func writeRulesCSV(w io.Writer, rb *schema.Rulebook) error {
	return writeCSVWithHeader(w, []string{"rule", "value"}, func(cw *csv.Writer) error {
		for _, e := range flattenRulebook(rb) {
			if err := cw.Write([]string{e.Key, e.Value}); err != nil {
				return fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
		return nil
	})
}
