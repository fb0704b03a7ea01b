// Package outwriter has output and writer logic.
package outwriter

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// LogValidationHeader prints a one-line header before a validation run.
func LogValidationHeader(cfg *contract.Config) {
	logValidationHeader(os.Stderr, cfg)
}

func logValidationHeader(w io.Writer, cfg *contract.Config) {
	prefix := ""
	if cfg.UseEmojis {
		prefix = "🔎 "
	}
	_, _ = fmt.Fprintf(w, "%sValidating %d package(s) with %d workers (rulebook %s)\n",
		prefix, len(cfg.Paths), cfg.Workers, cfg.Rulebook.Fingerprint())
}

// LogSummary prints the toast-style count of critical issues and errors.
func LogSummary(results []schema.ValidationResult, cfg *contract.Config) {
	logSummary(os.Stderr, results, cfg)
}

func logSummary(w io.Writer, results []schema.ValidationResult, cfg *contract.Config) {
	_, _ = fmt.Fprintln(w, FormatSummary(results, cfg.UseEmojis))
}

// FormatSummary returns "N critical issue(s), M error(s) found" over all results.
func FormatSummary(results []schema.ValidationResult, emojis bool) string {
	var critical, errs int
	for _, res := range results {
		critical += res.Summary.Critical
		errs += res.Summary.Errors
	}

	var b strings.Builder
	if emojis {
		if critical+errs == 0 {
			b.WriteString("✅ ")
		} else {
			b.WriteString("🚨 ")
		}
	}
	fmt.Fprintf(&b, "%d critical issue(s), %d error(s) found", critical, errs)
	return b.String()
}
