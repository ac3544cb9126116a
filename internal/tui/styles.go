package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/andresmejia3/posecoach/internal/analyzer"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(18)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	successStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)
)

// renderMetric renders a label/value row, coloring the value with style.
func renderMetric(label, value string, style lipgloss.Style) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		style.Render(value),
	)
}

func renderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

// qualityStyle colors a form or alignment label by how good it is.
func qualityStyle(label string) lipgloss.Style {
	switch label {
	case analyzer.FormExcellent, analyzer.AlignmentCorrect:
		return successStyle.Bold(true)
	case analyzer.FormGood:
		return metricValueStyle
	case analyzer.FormNeedsWork, analyzer.FormShaky, analyzer.AlignmentOff:
		return warningStyle.Bold(true)
	}
	return metricValueStyle.Foreground(mutedColor)
}
