// Package tui provides terminal output components for forge.
//
// Styles use AdaptiveColor so tables and status lines render sensibly on
// both light and dark terminals. Call CheckNoColor() at the start of a
// command to respect the NO_COLOR environment variable and TERM=dumb.
package tui

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/forgeworks/forge/internal/constants"
)

//nolint:gochecknoglobals // Intentional package-level constants for TUI styling API
var (
	// ColorPrimary is blue, used for active states and primary actions.
	ColorPrimary = lipgloss.AdaptiveColor{Light: "#0087AF", Dark: "#00D7FF"}

	// ColorSuccess is green, used for completed runs.
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#008700", Dark: "#00FF87"}

	// ColorWarning is yellow, used for attention-required states.
	ColorWarning = lipgloss.AdaptiveColor{Light: "#AF8700", Dark: "#FFD700"}

	// ColorError is red, used for failed runs.
	ColorError = lipgloss.AdaptiveColor{Light: "#AF0000", Dark: "#FF5F5F"}

	// ColorMuted is gray, used for inactive states and secondary text.
	ColorMuted = lipgloss.AdaptiveColor{Light: "#585858", Dark: "#6C6C6C"}
)

// StatusColors returns the semantic color for each workflow status.
func StatusColors() map[constants.WorkflowStatus]lipgloss.AdaptiveColor {
	return map[constants.WorkflowStatus]lipgloss.AdaptiveColor{
		constants.StatusInitialized:     ColorMuted,
		constants.StatusInProgress:      ColorPrimary,
		constants.StatusWaitingForInput: ColorWarning,
		constants.StatusCompleted:       ColorSuccess,
		constants.StatusFailed:          ColorError,
	}
}

// StatusIcon returns the icon for a workflow status. Icons are paired with
// color and text so no state is conveyed by color alone.
func StatusIcon(status constants.WorkflowStatus) string {
	switch status {
	case constants.StatusCompleted:
		return "✓"
	case constants.StatusFailed:
		return "✗"
	case constants.StatusInProgress:
		return "▶"
	case constants.StatusWaitingForInput:
		return "⏸"
	case constants.StatusInitialized:
		return "·"
	default:
		return "?"
	}
}

// TableStyles holds lipgloss styles for table rendering.
type TableStyles struct {
	Header       lipgloss.Style
	Cell         lipgloss.Style
	Dim          lipgloss.Style
	StatusColors map[constants.WorkflowStatus]lipgloss.AdaptiveColor
}

// NewTableStyles creates styles for table rendering.
func NewTableStyles() *TableStyles {
	return &TableStyles{
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.AdaptiveColor{Light: "#333333", Dark: "#DDDDDD"}),
		Cell: lipgloss.NewStyle(),
		Dim: lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#666666", Dark: "#888888"}),
		StatusColors: StatusColors(),
	}
}

// CheckNoColor disables color output when the terminal does not support it.
func CheckNoColor() {
	if !HasColorSupport() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// HasColorSupport returns true if the terminal supports colors.
// Returns false if NO_COLOR is set (any value including empty string) or
// TERM=dumb, following https://no-color.org/.
func HasColorSupport() bool {
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return true
}
