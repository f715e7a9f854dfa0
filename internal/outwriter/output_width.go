package outwriter

import (
	"os"

	"github.com/huangsam/githours/internal/contract"
	"golang.org/x/term"
)

const (
	fallbackTermWidth = 80 // Conservative default for narrow terminals and CI
	minMessageWidth   = 15
	maxMessageWidth   = 72
)

// terminalWidth returns the width override or the detected terminal width.
func terminalWidth(cfg *contract.Config) int {
	if cfg.Width > 0 {
		return cfg.Width
	}
	detected, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || detected <= 0 {
		return fallbackTermWidth
	}
	return detected
}

// getMaxMessageWidth calculates how many runes of a commit message fit in the
// commits table once the fixed columns are accounted for.
func getMaxMessageWidth(cfg *contract.Config) int {
	// Rank + Hours + Contributor + Commit + Date columns, then borders and padding
	reserved := 6 + 8 + 20 + 10 + 18 + 20
	return min(max(terminalWidth(cfg)-reserved, minMessageWidth), maxMessageWidth)
}
