package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/renato0307/duet/internal/domain"
)

// Text styles
var (
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	LabelStyle = lipgloss.NewStyle().
			Foreground(ColorSubtle)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	NormalStyle = lipgloss.NewStyle().
			Foreground(ColorNormal)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess).
			Bold(true)

	ThinkingStyle = lipgloss.NewStyle().
			Foreground(ColorThinking).
			Italic(true)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorHighlight)
)

// Process state styles
var (
	ExitedStyle = lipgloss.NewStyle().
			Foreground(ColorExited)

	RunningStyle = lipgloss.NewStyle().
			Foreground(ColorRunning)

	StartingStyle = lipgloss.NewStyle().
			Foreground(ColorStarting)
)

// Table styles
var (
	TableCellStyle = lipgloss.NewStyle().
			Foreground(ColorNormal).
			PaddingRight(2)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(ColorSecondary).
				PaddingRight(2)
)

// StateStyle returns the style of a process state
func StateStyle(state domain.ProcessState) lipgloss.Style {
	switch state {
	case domain.ProcessRunning:
		return RunningStyle
	case domain.ProcessStarting:
		return StartingStyle
	default:
		return ExitedStyle
	}
}

// ToolStatusStyle returns the style of a tool call status
func ToolStatusStyle(status domain.ToolStatus) lipgloss.Style {
	color := ColorToolPending
	switch status {
	case domain.ToolRunning:
		color = ColorToolRunning
	case domain.ToolCompleted:
		color = ColorToolCompleted
	case domain.ToolError:
		color = ColorToolError
	}
	return lipgloss.NewStyle().Foreground(color)
}
