// ABOUTME: Lipgloss styles for the terminal views
// ABOUTME: Meter colours follow the tray icon palette
package ui

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"

	"github.com/micmonitor/micmonitor/pkg/icon"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).PaddingLeft(1)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)

	errorBoxStyle = boxStyle.BorderForeground(lipgloss.Color("#FF0000"))

	errorTextStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))

	selectedStyle = lipgloss.NewStyle().Bold(true)

	helpStyle = lipgloss.NewStyle().Faint(true)
)

// hexColor converts a palette colour to a lipgloss colour
func hexColor(c color.RGBA) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B))
}

// barStyles returns one style per tier plus the unlit style
func barStyles(p icon.Palette) (map[icon.Tier]lipgloss.Style, lipgloss.Style) {
	lit := map[icon.Tier]lipgloss.Style{
		icon.TierLow:  lipgloss.NewStyle().Foreground(hexColor(p.Low)),
		icon.TierMid:  lipgloss.NewStyle().Foreground(hexColor(p.Mid)),
		icon.TierHigh: lipgloss.NewStyle().Foreground(hexColor(p.High)),
	}
	return lit, lipgloss.NewStyle().Foreground(hexColor(p.Unlit))
}
