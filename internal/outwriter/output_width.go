// Package outwriter has output and writer logic.
package outwriter

import (
	"os"

	"github.com/trackline/trackline/internal/contract"
	"golang.org/x/term"
)

// GetMaxTableLabelWidth calculates the maximum width for row labels in table
// output based on terminal width and the number of count columns beside them.
func GetMaxTableLabelWidth(cfg *contract.Config, countCols int) int {
	var termWidth int

	// Check for absolute width override from flag/env
	if cfg.Width > 0 {
		termWidth = cfg.Width
	}

	if termWidth == 0 { // Not set by override
		// Get terminal width
		detectedWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
		if err != nil || detectedWidth <= 0 {
			// Fallback to conservative default if terminal size can't be detected
			termWidth = 80 // Conservative default for narrow terminals and CI
		} else {
			termWidth = detectedWidth
		}
	}

	// Reserve space for each count column with borders/padding
	baseWidth := countCols * 9

	// Reserve space for outer borders, separators, and padding
	baseWidth += 8

	// Calculate available space for the label column
	available := termWidth - baseWidth
	if available < 12 {
		// Minimum reasonable label width
		return 12
	}
	if available > 40 {
		// Maximum label width to prevent overly wide tables
		return 40
	}
	return available
}
