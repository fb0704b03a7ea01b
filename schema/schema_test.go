package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	report := Report{
		Findings: []Finding{
			{Kind: ErrorKind, Severity: CriticalSeverity},
			{Kind: ErrorKind, Severity: HighSeverity},
			{Kind: WarningKind, Severity: HighSeverity},
			{Kind: InfoKind, Severity: LowSeverity},
			{Kind: InfoKind, Severity: MediumSeverity},
		},
		Score: 20,
	}

	assert.Equal(t, Summary{Critical: 1, Errors: 2, Warnings: 1, Infos: 2, Total: 5}, Summarize(report))
	assert.Equal(t, Summary{}, Summarize(Report{}))
}

func TestGroupByCategory(t *testing.T) {
	findings := []Finding{
		{Category: IconsCategory, Title: "a"},
		{Category: PrivacyCategory, Title: "b"},
		{Category: IconsCategory, Title: "c"},
	}
	groups := GroupByCategory(findings)
	assert.Len(t, groups, 2)
	assert.Equal(t, "a", groups[IconsCategory][0].Title)
	assert.Equal(t, "c", groups[IconsCategory][1].Title)
	assert.NotContains(t, groups, ManifestCategory)
}

func TestSeverityAtLeast(t *testing.T) {
	tests := []struct {
		severity Severity
		other    Severity
		expected bool
	}{
		{CriticalSeverity, CriticalSeverity, true},
		{HighSeverity, CriticalSeverity, false},
		{CriticalSeverity, LowSeverity, true},
		{LowSeverity, MediumSeverity, false},
		{CriticalSeverity, NoSeverity, false},
		{Severity("bogus"), LowSeverity, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.severity)+"_"+string(tt.other), func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.severity.AtLeast(tt.other))
		})
	}
}

func TestGetPlainLabel(t *testing.T) {
	tests := []struct {
		score    int
		expected string
	}{
		{100, "Excellent"},
		{90, "Excellent"},
		{89, "Good"},
		{70, "Good"},
		{69, "Fair"},
		{40, "Fair"},
		{39, "Poor"},
		{0, "Poor"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, GetPlainLabel(tt.score), "score %d", tt.score)
	}
}

func TestRulebook(t *testing.T) {
	rb := DefaultRulebook()

	assert.True(t, rb.VersionMatches("1.0.0"))
	assert.True(t, rb.VersionMatches("2"))
	assert.False(t, rb.VersionMatches("1.0.0a"))
	assert.False(t, rb.VersionMatches("1..0"))
	assert.False(t, rb.VersionMatches(""))

	assert.Contains(t, rb.DangerousPermissions, "<all_urls>")
	assert.NotContains(t, rb.DangerousPermissions, "storage")
	assert.True(t, rb.CollectsData("cookies"))
	assert.False(t, rb.CollectsData("downloads"))
	assert.Equal(t, 25, rb.Penalty(CriticalSeverity))
	assert.Equal(t, 0, rb.Penalty(NoSeverity))
}

func TestRulebookFingerprint(t *testing.T) {
	a, b := DefaultRulebook(), DefaultRulebook()
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
	assert.Len(t, a.Fingerprint(), 16)

	b.MaxPermissions = 20
	assert.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}

func TestRulebookCompile(t *testing.T) {
	rb := DefaultRulebook()
	rb.VersionPattern = `^v\d+$`
	assert.NoError(t, rb.Compile())
	assert.True(t, rb.VersionMatches("v3"))

	rb.VersionPattern = `(`
	assert.Error(t, rb.Compile())
}

func TestNewValidationResult(t *testing.T) {
	report := Report{Findings: []Finding{{Kind: ErrorKind, Severity: CriticalSeverity}}, Score: 75}
	result := NewValidationResult("ext.zip", report)
	assert.Equal(t, "ext.zip", result.Source)
	assert.Equal(t, 1, result.Summary.Critical)
	assert.Equal(t, 75, result.Score)
}
