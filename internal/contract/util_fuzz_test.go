package contract

import (
	"testing"
	"unicode/utf8"
)

// FuzzTruncateText fuzzes TruncateText with random text and widths.
func FuzzTruncateText(f *testing.F) {
	seeds := []struct {
		text  string
		width int
	}{
		{"Privacy policy required", 10},
		{"", 0},
		{"日本語のテキスト", 4},
		{"short", 100},
	}
	for _, seed := range seeds {
		f.Add(seed.text, seed.width)
	}

	f.Fuzz(func(t *testing.T, text string, width int) {
		if !utf8.ValidString(text) {
			return
		}
		got := TruncateText(text, width)
		if width > 3 && utf8.RuneCountInString(got) > width {
			t.Fatalf("TruncateText(%q, %d) = %q is wider than %d", text, width, got, width)
		}
	})
}
