package app

import (
	"github.com/charmbracelet/lipgloss"

	"sourcebot/internal/types"
)

var (
	headerStyle         = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	helpStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	statusStyle         = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	goalStyle           = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	paneTitleStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	stepDoneStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	stepActiveStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("110")).Bold(true)
	stepPendingStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	supplierStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	recommendationStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("180"))
	draftHeaderStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("69")).Bold(true)
	draftBodyStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("250"))
	draftSentStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("70"))
	selectedStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("236"))
	dividerStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	connectedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("70")).Bold(true)
	disconnectedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	unreadBadgeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
	pendingBadgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)

	toastLowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("240")).Bold(true)
	toastMediumStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("29")).Bold(true)
	toastHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("136")).Bold(true)
	toastCriticalStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("230")).Background(lipgloss.Color("160")).Bold(true)
)

func priorityStyle(priority types.Priority) lipgloss.Style {
	switch priority {
	case types.PriorityLow:
		return toastLowStyle
	case types.PriorityHigh:
		return toastHighStyle
	case types.PriorityCritical:
		return toastCriticalStyle
	default:
		return toastMediumStyle
	}
}

func priorityGlyph(priority types.Priority) string {
	switch priority {
	case types.PriorityCritical:
		return "!!"
	case types.PriorityHigh:
		return "! "
	default:
		return "  "
	}
}
