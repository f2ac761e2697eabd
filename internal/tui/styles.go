// Package tui provides the terminal user interface for the copilot CLI.
package tui

import "github.com/charmbracelet/lipgloss"

// Tokyo Night inspired color palette
var (
	ColorBg      = lipgloss.Color("#1a1b26")
	ColorBgAlt   = lipgloss.Color("#24283b")
	ColorFg      = lipgloss.Color("#c0caf5")
	ColorFgMuted = lipgloss.Color("#565f89")
	ColorSuccess = lipgloss.Color("#9ece6a")
	ColorInfo    = lipgloss.Color("#7aa2f7")
	ColorDanger  = lipgloss.Color("#f7768e")
	ColorPending = lipgloss.Color("#e0af68")
	ColorAccent  = lipgloss.Color("#d4a373")
)

// Role icons for transcript lines
var RoleIcons = map[string]string{
	"user":      "❯",
	"assistant": "●",
	"tool":      "⚙",
	"system":    "◆",
	"agent":     "▣",
}

// StatusColor returns the color for an output status.
func StatusColor(status string) lipgloss.Color {
	switch status {
	case "PENDING":
		return ColorPending
	case "SUCCESS":
		return ColorSuccess
	case "ERROR":
		return ColorDanger
	default:
		return ColorFgMuted
	}
}

// Common styles
var (
	StyleTitle = lipgloss.NewStyle().
			Foreground(ColorFg).
			Bold(true)

	StyleHeader = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			Bold(true)

	StyleUser = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	StyleAssistant = lipgloss.NewStyle().
			Foreground(ColorFg)

	StyleAction = lipgloss.NewStyle().
			Foreground(ColorAccent)

	StyleMuted = lipgloss.NewStyle().
			Foreground(ColorFgMuted)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	StyleWarning = lipgloss.NewStyle().
			Foreground(ColorPending)

	StyleHelp = lipgloss.NewStyle().
			Foreground(ColorFgMuted).
			MarginTop(1)

	StyleBorder = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorFgMuted).
			Padding(0, 1)
)

// StatusStyle returns styled text for an output status.
func StatusStyle(status string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(StatusColor(status))
}
