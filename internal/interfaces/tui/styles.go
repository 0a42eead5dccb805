package tui

import (
	"github.com/charmbracelet/lipgloss"
)

// Color constants
const (
	ColorPrimary = lipgloss.Color("39")  // Cyan/blue
	ColorMuted   = lipgloss.Color("241") // Gray
	ColorGreen   = lipgloss.Color("82")  // Green for gains
	ColorRed     = lipgloss.Color("196") // Red for losses
)

// Shared styles
var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	GainStyle = lipgloss.NewStyle().Foreground(ColorGreen)

	LossStyle = lipgloss.NewStyle().Foreground(ColorRed)

	NeutralStyle = lipgloss.NewStyle()

	LabelStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	KeyStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	DescStyle = lipgloss.NewStyle().Foreground(ColorMuted)

	LogTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorMuted)
)

// plStyle picks the style for a profit/loss cell by sign.
func plStyle(sign int) lipgloss.Style {
	switch {
	case sign > 0:
		return GainStyle
	case sign < 0:
		return LossStyle
	default:
		return NeutralStyle
	}
}
