package outwriter

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huangsam/storecheck/internal/contract"
	"github.com/huangsam/storecheck/schema"
)

// sampleResults returns a package with issues followed by a clean package.
func sampleResults() []schema.ValidationResult {
	noisy := schema.NewValidationResult("build/noisy.zip", schema.Report{
		Score: 50,
		Findings: []schema.Finding{
			{
				Category:    schema.PermissionsCategory,
				Kind:        schema.WarningKind,
				Severity:    schema.HighSeverity,
				Title:       "Dangerous permission",
				Message:     `The permission "tabs" grants access to sensitive data.`,
				Requirement: "Only request permissions the extension needs.",
			},
			{
				Category:    schema.ManifestCategory,
				Kind:        schema.ErrorKind,
				Severity:    schema.CriticalSeverity,
				Title:       "Missing version",
				Message:     "The manifest has no version field.",
				Requirement: "Every package must declare a version.",
				Suggestion:  `Add "version": "1.0.0".`,
			},
		},
	})
	noisy.Extension = "Noisy Tabs"
	noisy.Digest = "abc123"
	noisy.Files = 3
	noisy.Bytes = 2048

	clean := schema.NewValidationResult("build/clean", schema.Report{Score: 100, Findings: []schema.Finding{}})
	clean.Extension = "Clean"
	clean.Version = "1.2.0"
	clean.Digest = "def456"
	return []schema.ValidationResult{noisy, clean}
}

func TestFormatSummary(t *testing.T) {
	results := sampleResults()

	tests := []struct {
		name     string
		results  []schema.ValidationResult
		emojis   bool
		expected string
	}{
		{"issues plain", results, false, "1 critical issue(s), 1 error(s) found"},
		{"issues emoji", results, true, "🚨 1 critical issue(s), 1 error(s) found"},
		{"clean emoji", results[1:], true, "✅ 0 critical issue(s), 0 error(s) found"},
		{"empty", nil, false, "0 critical issue(s), 0 error(s) found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatSummary(tt.results, tt.emojis))
		})
	}
}

func TestLogSummary(t *testing.T) {
	var buf bytes.Buffer
	logSummary(&buf, sampleResults(), &contract.Config{})
	assert.Equal(t, "1 critical issue(s), 1 error(s) found\n", buf.String())
}

func TestLogValidationHeader(t *testing.T) {
	rb := schema.DefaultRulebook()
	cfg := &contract.Config{Paths: []string{"a", "b"}, Workers: 4, Rulebook: rb}

	var buf bytes.Buffer
	logValidationHeader(&buf, cfg)
	assert.Equal(t, "Validating 2 package(s) with 4 workers (rulebook "+rb.Fingerprint()+")\n", buf.String())

	buf.Reset()
	cfg.UseEmojis = true
	logValidationHeader(&buf, cfg)
	assert.Contains(t, buf.String(), "🔎 Validating 2 package(s)")
}
