// Package ui holds the lipgloss styles and render helpers for the CLI
// tables and panels. Styling degrades to plain text when stdout is not
// a terminal.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	okStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("42"))
)

func Title(s string) string { return titleStyle.Render(s) }

func Warn(s string) string { return warnStyle.Render(s) }

func Dim(s string) string { return dimStyle.Render(s) }

func OK(s string) string { return okStyle.Render(s) }

// Panel wraps body in a rounded border with an optional heading line.
func Panel(heading, body string) string {
	if heading != "" {
		body = headerStyle.Render(heading) + "\n" + body
	}
	return panelStyle.Render(body)
}

// Table renders rows under a styled header, columns left-aligned and
// sized to the widest cell.
func Table(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && lipgloss.Width(cell) > widths[i] {
				widths[i] = lipgloss.Width(cell)
			}
		}
	}

	var b strings.Builder
	b.WriteString(headerStyle.Render(formatRow(headers, widths)))
	b.WriteString("\n")
	b.WriteString(dimStyle.Render(rule(widths)))
	for _, row := range rows {
		b.WriteString("\n")
		b.WriteString(formatRow(row, widths))
	}
	return b.String()
}

func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i < len(widths) {
			parts[i] = fmt.Sprintf("%-*s", widths[i], cell)
		} else {
			parts[i] = cell
		}
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func rule(widths []int) string {
	total := 0
	for _, w := range widths {
		total += w
	}
	total += 2 * (len(widths) - 1)
	return strings.Repeat("─", total)
}

// Duration formats a workout duration in whole minutes and seconds,
// e.g. 3000 → "50m 00s".
func Duration(totalSec int) string {
	return fmt.Sprintf("%dm %02ds", totalSec/60, totalSec%60)
}
