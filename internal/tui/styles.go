package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	borderStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	paneTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	paneFocusedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	selectedStyle    = lipgloss.NewStyle().Background(lipgloss.Color("57")).Foreground(lipgloss.Color("230"))
	dimStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	userStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
	assistantStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	thinkingStyle    = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("243"))
	toolNameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("214"))
	toolInputStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("109"))
	toolErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	toolPendingStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("220"))
	hookStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("135"))
	spawnStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("81"))
	statusStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warningStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStatusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	timestampStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	followOnStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("114"))
)
