package contract

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
)

// Color variables for console output.
var (
	BlockerColor  = color.New(color.FgRed, color.Bold)     // blockers demand immediate attention.
	CriticalColor = color.New(color.FgRed)                 // critical issues are one step down.
	MajorColor    = color.New(color.FgMagenta, color.Bold) // majors carry strong, distinct warning.
	MinorColor    = color.New(color.FgYellow)              // minors are standard caution, not bold.
	TrivialColor  = color.New(color.FgCyan)                // trivials are informational only.
)

// GetPriorityLabel returns the display label for a priority, with a
// placeholder for issues that never carried one. This is the core logic
// used for CSV, JSON, and table printing.
func GetPriorityLabel(priority string) string {
	if priority == "" {
		return "None"
	}
	return priority
}

// GetPriorityColorLabel returns a colored priority label for console
// output (table). It uses GetPriorityLabel to determine the string, and
// then applies the appropriate color.
func GetPriorityColorLabel(priority string) string {
	text := GetPriorityLabel(priority)

	switch text {
	case "Blocker":
		return BlockerColor.Sprint(text)
	case "Critical":
		return CriticalColor.Sprint(text)
	case "Major":
		return MajorColor.Sprint(text)
	case "Minor":
		return MinorColor.Sprint(text)
	case "Trivial":
		return TrivialColor.Sprint(text)
	default:
		return text
	}
}

// SelectOutputFile returns the appropriate file handle for output, based
// on the provided file path. An empty path means stdout.
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

// GetTrackerDBFilePath returns the path to the SQLite DB file for the
// issue tracker mirror.
func GetTrackerDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trackline_issues.db"
	}
	return filepath.Join(homeDir, ".trackline_issues.db")
}

// GetStoreDBFilePath returns the path to the SQLite DB file for metric
// run storage.
func GetStoreDBFilePath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".trackline_metrics.db"
	}
	return filepath.Join(homeDir, ".trackline_metrics.db")
}

// TruncateLabel truncates a row label to a maximum width with ellipsis suffix.
// Requires maxWidth > 3 so there is room for both the ellipsis and at
// least one character of content.
func TruncateLabel(label string, maxWidth int) string {
	runes := []rune(label)
	if len(runes) > maxWidth && maxWidth > 3 {
		return string(runes[:maxWidth-3]) + "..."
	}
	return label
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
