package modals

import (
	"github.com/charmbracelet/x/ansi"
)

// TruncateString truncates a string to maxWidth cells with an ellipsis.
func TruncateString(s string, maxWidth int) string {
	return ansi.Truncate(s, maxWidth, "...")
}
