// ABOUTME: Shared lipgloss styles for the asksee terminal UI.
// ABOUTME: Colours follow the projector palette used by the plot renderers.
package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/2389-research/asksee/internal/viz"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	brandStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	promptStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	noticeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("189"))

	tabStyle       = lipgloss.NewStyle().Padding(0, 2).Foreground(lipgloss.Color("241"))
	activeTabStyle = lipgloss.NewStyle().Padding(0, 2).Bold(true).Underline(true).Foreground(lipgloss.Color("212"))

	plotStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(viz.PointColor)).
			Background(lipgloss.Color(viz.Background))
	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)
