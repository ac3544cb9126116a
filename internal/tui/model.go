// Package tui renders a live terminal dashboard for a tracking session.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/guptarohit/asciigraph"

	"github.com/andresmejia3/posecoach/internal/analyzer"
	"github.com/andresmejia3/posecoach/internal/session"
)

// maxHistory is how many detected frames the angle chart keeps.
const maxHistory = 120

// MetricsMsg carries the result of one analyzed frame.
type MetricsMsg struct {
	Frame      int
	Metrics    analyzer.Metrics
	Baseline   float64
	Calibrated bool
}

// WarningMsg reports a recoverable problem with the frame stream.
type WarningMsg struct {
	Err error
}

// DoneMsg is sent once the session has stopped.
type DoneMsg struct {
	Summary session.Summary
	Err     error
}

// Model is the live session dashboard.
type Model struct {
	title  string
	source string

	frames     int
	detected   int
	lastFrame  int
	latest     analyzer.Metrics
	baseline   float64
	calibrated bool
	history    []float64

	warnings    int
	lastWarning string

	done    bool
	summary session.Summary
	err     error

	width int
}

// New creates a dashboard for the given exercise and frame source.
func New(exercise, source string) Model {
	return Model{
		title:  fmt.Sprintf("posecoach · %s", exercise),
		source: source,
		latest: analyzer.Metrics{Alignment: analyzer.NoReading, FormQuality: analyzer.NoReading},
	}
}

// Init initializes the dashboard
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.width = msg.Width
	case MetricsMsg:
		m.frames++
		m.lastFrame = msg.Frame
		m.latest = msg.Metrics
		m.baseline, m.calibrated = msg.Baseline, msg.Calibrated
		if msg.Metrics.Detected() {
			m.detected++
			m.history = append(m.history, float64(msg.Metrics.RangeOfMotion))
			if len(m.history) > maxHistory {
				m.history = m.history[len(m.history)-maxHistory:]
			}
		}
	case WarningMsg:
		m.warnings++
		m.lastWarning = msg.Err.Error()
	case DoneMsg:
		m.done = true
		m.summary = msg.Summary
		if !errors.Is(msg.Err, context.Canceled) {
			m.err = msg.Err
		}
	}
	return m, nil
}

// View renders the dashboard
func (m Model) View() string {
	var sections []string
	sections = append(sections, headerStyle.Render(m.title))

	formCard := m.renderFormCard()
	sessionCard := m.renderSessionCard()
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Top, formCard, "  ", sessionCard))

	if len(m.history) > 2 {
		sections = append(sections, m.renderChart())
	}

	if m.lastWarning != "" {
		sections = append(sections, warningStyle.Render(fmt.Sprintf("⚠️  %d warnings, last: %s", m.warnings, m.lastWarning)))
	}

	switch {
	case m.err != nil:
		sections = append(sections, errorStyle.Render(fmt.Sprintf("Session failed: %v", m.err)))
	case m.done:
		sections = append(sections, successStyle.Render(fmt.Sprintf("🏁 Session complete: %d reps in %s frames", m.summary.Reps, humanize.Comma(int64(m.summary.Frames)))))
	}

	sections = append(sections, statusStyle.Render(renderKeyHelp("q", "quit")))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderFormCard() string {
	title := cardTitleStyle.Render("Form")

	score := analyzer.NoReading
	rom := analyzer.NoReading
	if m.latest.Detected() {
		score = fmt.Sprintf("%.1f", m.latest.PostureScore)
		rom = fmt.Sprintf("%d°", m.latest.RangeOfMotion)
	}

	lines := []string{
		renderMetric("Posture Score", score, metricValueStyle),
		renderMetric("Alignment", m.latest.Alignment, qualityStyle(m.latest.Alignment)),
		renderMetric("Form Quality", m.latest.FormQuality, qualityStyle(m.latest.FormQuality)),
		renderMetric("Range of Motion", rom, metricValueStyle),
		renderMetric("Reps", fmt.Sprintf("%d", m.latest.Reps), successStyle.Bold(true)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(38).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m Model) renderSessionCard() string {
	title := cardTitleStyle.Render("Session")

	baseline := "calibrating"
	if m.calibrated {
		baseline = fmt.Sprintf("%.1f°", m.baseline)
	}

	lines := []string{
		renderMetric("Source", m.source, metricValueStyle),
		renderMetric("Frame", fmt.Sprintf("#%d", m.lastFrame), metricValueStyle),
		renderMetric("Frames", humanize.Comma(int64(m.frames)), metricValueStyle),
		renderMetric("With Pose", humanize.Comma(int64(m.detected)), metricValueStyle),
		renderMetric("Baseline", baseline, metricValueStyle),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(38).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m Model) renderChart() string {
	title := cardTitleStyle.Render("Joint Angle - Smoothed")

	width := 60
	if m.width > 0 && m.width-12 < width {
		width = max(m.width-12, 10)
	}

	graph := asciigraph.Plot(m.history,
		asciigraph.Height(8),
		asciigraph.Width(width),
		asciigraph.Precision(0),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, strings.TrimRight(graph, "\n")))
}
