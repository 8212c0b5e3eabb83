// ABOUTME: lipgloss styles for the terminal editor.
// ABOUTME: Severity colors follow the web console's notifications.

package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/pyconkr/console/internal/notify"
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	focusedLabel  = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).MarginTop(1)
	readOnlyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	promptStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	severityStyles = map[notify.Severity]lipgloss.Style{
		notify.Success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		notify.Info:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		notify.Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		notify.Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)
