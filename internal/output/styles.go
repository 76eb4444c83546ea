package output

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ANSI 256 colors used by the CLI.
var (
	// ColorCyan is used for identifiable nouns: script names, file paths.
	ColorCyan = lipgloss.Color("14")

	// ColorBlue is used for links the user is expected to open.
	ColorBlue = lipgloss.Color("75")

	// ColorGreen is used for the "written" artifact status.
	ColorGreen = lipgloss.Color("82")

	// ColorYellow is used for the "skipped" artifact status.
	ColorYellow = lipgloss.Color("220")

	// ColorBoldRed is used for the "failed" artifact status (matches ERROR level).
	ColorBoldRed = lipgloss.Color("204")

	// ColorGreenCheck is used for the completion checkmark (✔).
	ColorGreenCheck = lipgloss.Color("10")
)

// Styles by what they mark.
var (
	// StyleNoun styles identifiable nouns (script names, artifact paths).
	StyleNoun = lipgloss.NewStyle().Foreground(ColorCyan)

	// StyleLink styles URLs.
	StyleLink = lipgloss.NewStyle().Foreground(ColorBlue).Underline(true)

	// StyleDim styles structural chrome (scope prefixes, separators).
	StyleDim = lipgloss.NewStyle().Faint(true)
)

// Artifact status constants.
const (
	StatusWritten = "written"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// StatusStyle returns the lipgloss style for an artifact status string.
// Unknown statuses return an unstyled default.
func StatusStyle(status string) lipgloss.Style {
	switch status {
	case StatusWritten:
		return lipgloss.NewStyle().Foreground(ColorGreen)
	case StatusSkipped:
		return lipgloss.NewStyle().Foreground(ColorYellow)
	case StatusFailed:
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBoldRed)
	default:
		return lipgloss.NewStyle()
	}
}

// minArtifactColumnWidth keeps status words aligned across lines.
const minArtifactColumnWidth = 40

// FormatArtifactLine renders an artifact path with a right-aligned,
// color-coded status suffix.
//
// Format: a:<path>  <status>
func FormatArtifactLine(path, status string) string {
	padding := minArtifactColumnWidth - len(path)
	if padding < 2 {
		padding = 2
	}

	return StyleDim.Render("a:") + StyleNoun.Render(path) + strings.Repeat(" ", padding) + StatusStyle(status).Render(status)
}

// FormatCheckmark renders a green checkmark with a message for stdout output.
func FormatCheckmark(msg string) string {
	check := lipgloss.NewStyle().Foreground(ColorGreenCheck).Render("✔")
	return check + " " + msg
}

// FormatLink renders a URL.
func FormatLink(url string) string {
	return StyleLink.Render(url)
}
