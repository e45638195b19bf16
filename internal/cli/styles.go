// Package cli renders categorization results, summaries, and the correction
// review loop for the terminal.
package cli

import (
	"fmt"

	"github.com/Veraticus/spice-categorizer/internal/model"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorAccent = lipgloss.Color("#FF6B6B")
	colorGood   = lipgloss.Color("#4ECDC4")
	colorCaveat = lipgloss.Color("#FFE66D")
	colorHint   = lipgloss.Color("#95E1D3")
	colorMuted  = lipgloss.Color("#666666")
	colorRule   = lipgloss.Color("#333")
)

// Styles shared by the table and summary renderers.
var (
	SuccessStyle = lipgloss.NewStyle().Foreground(colorGood)
	ErrorStyle   = lipgloss.NewStyle().Foreground(colorAccent)
	SubtleStyle  = lipgloss.NewStyle().Foreground(colorMuted)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(colorRule)

	warningStyle = lipgloss.NewStyle().Foreground(colorCaveat)
	infoStyle    = lipgloss.NewStyle().Foreground(colorHint)
	headingStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	boxStyle     = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorRule).
			Padding(1, 2)
)

const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	RobotIcon   = "🤖"
	ChartIcon   = "📊"
	tagIcon     = "🏷️"
)

func tagged(style lipgloss.Style, icon, message string) string {
	return style.Render(icon + " " + message)
}

// FormatSuccess renders a completed action.
func FormatSuccess(message string) string { return tagged(SuccessStyle, SuccessIcon, message) }

// FormatError renders a failure.
func FormatError(message string) string { return tagged(ErrorStyle, ErrorIcon, message) }

// FormatWarning renders something the user should double-check.
func FormatWarning(message string) string { return tagged(warningStyle, WarningIcon, message) }

// FormatInfo renders a neutral status line.
func FormatInfo(message string) string { return tagged(infoStyle, InfoIcon, message) }

// FormatTitle renders a section heading.
func FormatTitle(title string) string {
	return tagged(headingStyle.MarginBottom(1), tagIcon, title)
}

// FormatPrompt renders a question awaiting an answer.
func FormatPrompt(prompt string) string {
	return headingStyle.Render(prompt + " → ")
}

// MethodStyle colors a resolution method by how much it can be trusted.
// Local tiers are green, the oracle is neutral, and fallbacks are flagged.
func MethodStyle(method model.Method) lipgloss.Style {
	switch method {
	case model.MethodExact, model.MethodPattern:
		return SuccessStyle
	case model.MethodOracle:
		return infoStyle
	default:
		return warningStyle
	}
}

// FormatConfidence renders a confidence as a whole percentage.
func FormatConfidence(confidence float64) string {
	return fmt.Sprintf("%.0f%%", confidence*100)
}

// RenderBox frames content under a heading.
func RenderBox(title, content string) string {
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, headingStyle.Render(title), content))
}
