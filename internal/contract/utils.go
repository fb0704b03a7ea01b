package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/huangsam/storecheck/schema"
)

// Color variables for console output.
var (
	CriticalColor = color.New(color.FgRed, color.Bold)     // CriticalColor represents standard danger.
	HighColor     = color.New(color.FgMagenta, color.Bold) // HighColor represents strong, distinct warning.
	MediumColor   = color.New(color.FgYellow)              // MediumColor represents standard caution, not bold.
	LowColor      = color.New(color.FgCyan)                // LowColor represents informational / low-priority signal.
	PassColor     = color.New(color.FgGreen, color.Bold)   // PassColor marks healthy scores.
)

// GetSeverityLabel returns a colored severity label for console output (table).
func GetSeverityLabel(s schema.Severity) string {
	text := strings.ToUpper(string(s))
	switch s {
	case schema.CriticalSeverity:
		return CriticalColor.Sprint(text)
	case schema.HighSeverity:
		return HighColor.Sprint(text)
	case schema.MediumSeverity:
		return MediumColor.Sprint(text)
	default:
		return LowColor.Sprint(text)
	}
}

// GetColorLabel returns a colored grade for a compliance score.
// It uses schema.GetPlainLabel to determine the string, and then applies the appropriate color.
func GetColorLabel(score int) string {
	text := schema.GetPlainLabel(score)
	switch {
	case score >= 90:
		return PassColor.Sprint(text)
	case score >= 70:
		return LowColor.Sprint(text)
	case score >= 40:
		return MediumColor.Sprint(text)
	default:
		return CriticalColor.Sprint(text)
	}
}

// KindSymbol returns a short marker for a finding kind.
func KindSymbol(k schema.Kind, emojis bool) string {
	if !emojis {
		return strings.ToUpper(string(k))
	}
	switch k {
	case schema.ErrorKind:
		return "❌"
	case schema.WarningKind:
		return "⚠️"
	case schema.SuccessKind:
		return "✅"
	default:
		return "ℹ️"
	}
}

// SelectOutputFile returns the appropriate file handle for output, based on the provided
// file path. An empty path selects os.Stdout.
func SelectOutputFile(filePath string) (*os.File, error) {
	if filePath == "" {
		return os.Stdout, nil
	}
	return os.Create(filePath)
}

// LogFatal logs an error and exits the program.
func LogFatal(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Fatal %s: %v\n", msg, err)
	os.Exit(1)
}

// LogWarn logs a warning message to stderr.
func LogWarn(msg string, err error) {
	_, _ = fmt.Fprintf(os.Stderr, "Warn %s: %v\n", msg, err)
}

// GetCacheDBFilePath returns the path to the SQLite DB file for the report cache.
func GetCacheDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".storecheck_cache.db"
	}
	return filepath.Join(homeDir, ".storecheck_cache.db")
}

// GetHistoryDBFilePath returns the path to the SQLite DB file for validation history.
func GetHistoryDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".storecheck_history.db"
	}
	return filepath.Join(homeDir, ".storecheck_history.db")
}

// TruncateText shortens text to maxWidth runes with an ellipsis suffix.
// Requires maxWidth > 3 so that at least one character of content remains.
func TruncateText(text string, maxWidth int) string {
	runes := []rune(text)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return text
}

// TruncatePath truncates a file path to a maximum width with ellipsis prefix,
// keeping the file name visible.
func TruncatePath(path string, maxWidth int) string {
	runes := []rune(path)
	if len(runes) > maxWidth && maxWidth > 3 {
		return "..." + string(runes[len(runes)-maxWidth+3:])
	}
	return path
}

// ParseBoolString parses a string value into a boolean.
// Accepts "yes", "no", "true", "false", "1", "0" (case-insensitive).
// Returns an error for invalid values.
func ParseBoolString(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "yes", "true", "1":
		return true, nil
	case "no", "false", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid boolean string: %s (expected yes/no/true/false/1/0)", s)
	}
}
