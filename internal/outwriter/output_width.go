package outwriter

import (
	"os"

	"golang.org/x/term"

	"github.com/huangsam/storecheck/internal/contract"
)

// Column budget for the findings table, excluding the message column.
const (
	fixedColumnsWidth = 60 // # + Severity + Type + Category + Title with borders/padding
	minMessageWidth   = 20
	maxMessageWidth   = 100
)

// getTerminalWidth returns the width override, the detected terminal width,
// or a conservative default when neither is available.
func getTerminalWidth(cfg *contract.Config) int {
	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		return cfg.Width
	}
	detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detectedWidth <= 0 {
		return 80 // Conservative default for narrow terminals and CI
	}
	return detectedWidth
}

// GetMaxTableMessageWidth calculates the maximum width for finding messages
// in table output based on terminal width.
func GetMaxTableMessageWidth(cfg *contract.Config) int {
	available := getTerminalWidth(cfg) - fixedColumnsWidth
	return min(max(available, minMessageWidth), maxMessageWidth)
}
