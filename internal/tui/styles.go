package tui

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	ColorPrimary   = lipgloss.Color("#8B5CF6") // Violet
	ColorSecondary = lipgloss.Color("#06B6D4") // Cyan
	ColorAccent    = lipgloss.Color("#F59E0B") // Amber
	ColorSuccess   = lipgloss.Color("#10B981") // Emerald
	ColorError     = lipgloss.Color("#EF4444") // Red
	ColorMuted     = lipgloss.Color("#6B7280") // Gray
	ColorDimmed    = lipgloss.Color("#374151") // Dark Gray

	ColorBgPanel = lipgloss.Color("#1E293B") // Slate 800
	ColorText    = lipgloss.Color("#F8FAFC") // Slate 50
	ColorTextDim = lipgloss.Color("#64748B") // Slate 500
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	PathStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim).
			Italic(true)

	PanelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDimmed)
)

// Source lines
var (
	ExecutedLineStyle = lipgloss.NewStyle().
				Foreground(ColorSuccess)

	NextLineStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorBgPanel).
			Bold(true)

	PendingLineStyle = lipgloss.NewStyle().
				Foreground(ColorMuted)

	LineNumberStyle = lipgloss.NewStyle().
			Foreground(ColorTextDim)
)

// Plot cells, indexed by cell class.
var plotStyles = [4]lipgloss.Style{
	cellEmpty:    lipgloss.NewStyle(),
	cellExecuted: lipgloss.NewStyle().Foreground(ColorSecondary),
	cellPending:  lipgloss.NewStyle().Foreground(ColorDimmed),
	cellTool:     lipgloss.NewStyle().Foreground(ColorAccent).Bold(true),
}

// Status bar
var (
	StatusStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Background(ColorPrimary).
			Bold(true).
			Padding(0, 1)

	StatusTextStyle = lipgloss.NewStyle().
			Foreground(ColorText).
			Padding(0, 1)

	OnStyle = lipgloss.NewStyle().
		Foreground(ColorSuccess)

	OffStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError)
)
