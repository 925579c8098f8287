package tui

import "github.com/charmbracelet/lipgloss"

var (
	accentFg  = lipgloss.Color("#7C3AED")
	dimFg     = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#6B7280"}
	borderCol = lipgloss.Color("#243141")
	okFg      = lipgloss.Color("#22C55E")
	errFg     = lipgloss.Color("#EF4444")

	titleStyle = lipgloss.NewStyle().Foreground(accentFg).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(dimFg)
	boxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(borderCol).Padding(0, 1)
	labelStyle = lipgloss.NewStyle().Foreground(dimFg).Width(11)
	okStyle    = lipgloss.NewStyle().Foreground(okFg)
	errStyle   = lipgloss.NewStyle().Foreground(errFg)

	cellStyles = map[cell]lipgloss.Style{
		cellOcean:   lipgloss.NewStyle(),
		cellGrid:    lipgloss.NewStyle().Foreground(lipgloss.Color("#1E3A5F")),
		cellLand:    lipgloss.NewStyle().Foreground(lipgloss.Color("#3F6212")),
		cellMarker:  lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316")).Bold(true),
		cellCluster: lipgloss.NewStyle().Foreground(lipgloss.Color("#FACC15")).Bold(true),
	}
)
