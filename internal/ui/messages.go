package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"
)

// Symbols with consistent appearance across commands.
const (
	SuccessSymbol = "✓"
	ErrorSymbol   = "✗"
	InfoSymbol    = "ℹ"
	WarningSymbol = "⚠"
	BulletSymbol  = "•"
)

// PrintLogo prints the wasmbench banner.
func PrintLogo() {
	logo := `█░█░█ ▄▀█ █▀ █▀▄▀█ █▄▄ █▀▀ █▄░█ █▀▀ █░█
▀▄▀▄▀ █▀█ ▄█ █░▀░█ █▄█ ██▄ █░▀█ █▄▄ █▀█`

	lines := strings.Split(logo, "\n")
	colors := []string{PrimaryColor, InfoColor}
	for i, line := range lines {
		colorIdx := i % len(colors)
		fmt.Println(lipgloss.NewStyle().Foreground(lipgloss.Color(colors[colorIdx])).Render(line))
	}

	subtitle := "\nProxy Wasm VM Memory Benchmarks"
	fmt.Println(CenterText(SubtitleStyle.Render(subtitle)))
}

// PrintSuccess prints a success message.
func PrintSuccess(message string) {
	fmt.Println(SuccessStyle.Bold(true).Render(SuccessSymbol + " " + wrap(message)))
}

// PrintError prints an error message inside a visible box.
func PrintError(message string) {
	errorBox := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(ErrorColor)).
		Padding(0, 1).
		Render(ErrorStyle.Bold(true).Render(ErrorSymbol + " Error: " + wrap(message)))

	fmt.Println(errorBox)
}

// PrintWarning prints a warning message.
func PrintWarning(message string) {
	fmt.Println(WarningStyle.Bold(true).Render(WarningSymbol + " " + wrap(message)))
}

// PrintInfo prints a label/value pair.
func PrintInfo(label, value string) {
	fmt.Printf("%s %s\n",
		DimStyle.Bold(true).Render(label+":"),
		InfoStyle.Render(value))
}

// PrintHighlight prints highlighted text.
func PrintHighlight(text string) {
	fmt.Println(TitleStyle.Render(text))
}

// wrap rewraps long messages to the terminal width, leaving room for the
// leading symbol.
func wrap(message string) string {
	return wordwrap.String(message, TerminalWidth()-4)
}

// Table is a formatted table with headers and rows.
type Table struct {
	Headers     []string
	Rows        [][]string
	ColumnWidth []int
}

// NewTable creates a table with the given headers.
func NewTable(headers []string) *Table {
	columnWidth := make([]int, len(headers))
	for i, h := range headers {
		columnWidth[i] = len(h) + 4
	}
	return &Table{
		Headers:     headers,
		ColumnWidth: columnWidth,
	}
}

// AddRow adds a row, widening columns as needed.
func (t *Table) AddRow(values ...string) {
	if len(values) != len(t.Headers) {
		panic(fmt.Sprintf("row has %d values, expected %d", len(values), len(t.Headers)))
	}
	for i, v := range values {
		if len(v)+4 > t.ColumnWidth[i] {
			t.ColumnWidth[i] = len(v) + 4
		}
	}
	t.Rows = append(t.Rows, values)
}

// Render returns the styled table.
func (t *Table) Render() string {
	var b strings.Builder

	for i, h := range t.Headers {
		b.WriteString(TableHeaderStyle.Render(pad(h, t.ColumnWidth[i])))
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		for i, v := range row {
			b.WriteString(TableRowStyle.Render(pad(v, t.ColumnWidth[i])))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// RenderPlain returns the table without styling, for --plain output.
func (t *Table) RenderPlain() string {
	var b strings.Builder

	for i, h := range t.Headers {
		b.WriteString(pad(h, t.ColumnWidth[i]))
	}
	b.WriteString("\n")

	for _, row := range t.Rows {
		for i, v := range row {
			b.WriteString(pad(v, t.ColumnWidth[i]))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
