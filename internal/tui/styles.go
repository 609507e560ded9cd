package tui

import "github.com/charmbracelet/lipgloss"

var (
	ColorAccent = lipgloss.Color("#F4A259")
	ColorWater  = lipgloss.Color("#5DA9E9")
	ColorDeep   = lipgloss.Color("#596E79")
	ColorText   = lipgloss.Color("#E0E0E0")
	ColorAlert  = lipgloss.Color("#FF6B6B")
	ColorGood   = lipgloss.Color("#4ECDC4")
	ColorMuted  = lipgloss.Color("#6c757d")
)

var (
	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true).
			Border(lipgloss.NormalBorder(), false, false, true, false).
			BorderForeground(ColorDeep).
			Padding(0, 1)

	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorAccent).
			Bold(true)

	StyleSubtitle = lipgloss.NewStyle().
			Foreground(ColorDeep).
			Italic(true)

	StyleGood  = lipgloss.NewStyle().Foreground(ColorGood).Bold(true)
	StyleBad   = lipgloss.NewStyle().Foreground(ColorAlert).Bold(true)
	StyleMuted = lipgloss.NewStyle().Foreground(ColorMuted)

	StyleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorDeep).
			Padding(0, 1).
			Margin(0, 1)

	StyleApp = lipgloss.NewStyle().Margin(1, 2)
)
