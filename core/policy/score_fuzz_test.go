package policy

import (
	"testing"

	"github.com/huangsam/storecheck/schema"
)

// FuzzScore checks bounds and the critical penalty for arbitrary severity mixes.
func FuzzScore(f *testing.F) {
	f.Add(uint8(0), uint8(0), uint8(0), uint8(0))
	f.Add(uint8(1), uint8(1), uint8(1), uint8(1))
	f.Add(uint8(4), uint8(0), uint8(0), uint8(0))
	f.Add(uint8(0), uint8(2), uint8(3), uint8(9))

	rb := schema.DefaultRulebook()
	f.Fuzz(func(t *testing.T, critical, high, medium, low uint8) {
		var findings []schema.Finding
		for range critical {
			findings = append(findings, schema.Finding{Severity: schema.CriticalSeverity})
		}
		for range high {
			findings = append(findings, schema.Finding{Severity: schema.HighSeverity})
		}
		for range medium {
			findings = append(findings, schema.Finding{Severity: schema.MediumSeverity})
		}
		for range low {
			findings = append(findings, schema.Finding{Severity: schema.LowSeverity})
		}

		score := Score(findings, rb)
		if score < 0 || score > 100 {
			t.Fatalf("score %d out of bounds", score)
		}

		extra := Score(append(findings, schema.Finding{Severity: schema.CriticalSeverity}), rb)
		if want := max(0, score-25); extra != want {
			t.Fatalf("extra critical: got %d, want %d", extra, want)
		}
	})
}
