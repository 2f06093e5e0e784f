package ui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color scheme shared by every command
var (
	// Primary colors
	PrimaryColor   = "#2563EB" // Deep blue
	SecondaryColor = "#7C3AED" // Purple
	TertiaryColor  = "#10B981" // Emerald green

	// Status colors
	SuccessColor = "#10B981" // Emerald green
	ErrorColor   = "#EF4444" // Red
	WarningColor = "#F59E0B" // Amber
	InfoColor    = "#3B82F6" // Blue

	// Text colors
	HeaderColor  = "#F9FAFB" // Near white
	TextColor    = "#E5E7EB" // Light gray
	DimTextColor = "#9CA3AF" // Dimmed gray

	// Border and accents
	BorderColor    = "#374151" // Dark gray border
	HighlightColor = "#8B5CF6" // Bright purple for highlights
)

// Style definitions
var (
	HeaderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(HeaderColor)).
			Bold(true)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(SuccessColor))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(ErrorColor))

	WarningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(WarningColor))

	InfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(InfoColor))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(DimTextColor))

	Highlight = lipgloss.NewStyle().
			Foreground(lipgloss.Color(HighlightColor)).
			Bold(true)

	TitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(PrimaryColor)).
			Bold(true).
			MarginBottom(1)

	SubtitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(SecondaryColor)).
			MarginBottom(1)

	// Table styles
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color(HeaderColor))

	TableRowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(TextColor))
)

// TerminalWidth returns the layout width used by the print helpers.
func TerminalWidth() int {
	// Safe default for terminals
	return 80
}

// IsCI reports whether we run in a CI environment.
func IsCI() bool {
	return os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != ""
}

// CenterText centers text on the terminal line.
func CenterText(text string) string {
	width := TerminalWidth()
	padding := (width - len(text)) / 2
	if padding < 0 {
		padding = 0
	}
	return fmt.Sprintf("%s%s", strings.Repeat(" ", padding), text)
}

// TruncateWithEllipsis shortens a string to fit the given width.
func TruncateWithEllipsis(s string, width int) string {
	if len(s) <= width {
		return s
	}
	if width <= 3 {
		return s[:width]
	}
	return s[:width-3] + "..."
}
