// Package theme holds the shared colors and lipgloss styles.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/notice"
)

// Adaptive color pairs (dark terminal value, light terminal value).
var (
	ColorBlue    = lipgloss.AdaptiveColor{Dark: "#5B9BD5", Light: "#2B6CB0"}
	ColorGreen   = lipgloss.AdaptiveColor{Dark: "#6BCB77", Light: "#2F855A"}
	ColorYellow  = lipgloss.AdaptiveColor{Dark: "#FFD93D", Light: "#B7791F"}
	ColorRed     = lipgloss.AdaptiveColor{Dark: "#FF6B6B", Light: "#C53030"}
	ColorOrange  = lipgloss.AdaptiveColor{Dark: "#FFA94D", Light: "#C05621"}
	ColorMagenta = lipgloss.AdaptiveColor{Dark: "#CC5DE8", Light: "#805AD5"}
	ColorGray    = lipgloss.AdaptiveColor{Dark: "#868E96", Light: "#718096"}
	ColorWhite   = lipgloss.AdaptiveColor{Dark: "#F8F9FA", Light: "#1A202C"}
	ColorSubtle  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#CBD5E0"}
	ColorBorder  = lipgloss.AdaptiveColor{Dark: "#495057", Light: "#E2E8F0"}
)

// HeaderStyle is used for top-level section headers and the application title.
var HeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite).
	Background(ColorBlue).
	Padding(0, 1)

// StatusBarStyle is used for the bottom status bar.
var StatusBarStyle = lipgloss.NewStyle().
	Foreground(ColorWhite).
	Background(ColorSubtle).
	Padding(0, 1)

// DetailPanelStyle wraps the thread reader content area.
var DetailPanelStyle = lipgloss.NewStyle().
	Padding(1, 2).
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorBorder)

// ListItemStyle is the base style for items in a list.
var ListItemStyle = lipgloss.NewStyle().
	PaddingLeft(2)

// SelectedItemStyle highlights the currently focused list item.
var SelectedItemStyle = lipgloss.NewStyle().
	PaddingLeft(1).
	Bold(true).
	Foreground(ColorBlue).
	Border(lipgloss.NormalBorder(), false, false, false, true).
	BorderForeground(ColorBlue)

// HelpStyle is used for keyboard shortcut hints and help text.
var HelpStyle = lipgloss.NewStyle().
	Foreground(ColorGray).
	Italic(true)

// AlertStyle returns the banner style of a notice severity.
func AlertStyle(sev notice.Severity) lipgloss.Style {
	base := lipgloss.NewStyle().
		Bold(true).
		Padding(0, 1).
		Border(lipgloss.NormalBorder(), false, false, false, true)

	switch sev {
	case notice.Success:
		return base.Foreground(ColorGreen).BorderForeground(ColorGreen)
	case notice.Danger:
		return base.Foreground(ColorRed).BorderForeground(ColorRed)
	case notice.Warning:
		return base.Foreground(ColorOrange).BorderForeground(ColorOrange)
	default:
		return base.Foreground(ColorBlue).BorderForeground(ColorBlue)
	}
}

// UnreadStyle marks unread rows.
var UnreadStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorWhite)

// MutedStyle is used for secondary text such as dates and ids.
var MutedStyle = lipgloss.NewStyle().
	Foreground(ColorGray)

// PageStyle returns the style of a page number in the pager.
func PageStyle(current bool) lipgloss.Style {
	if current {
		return lipgloss.NewStyle().Bold(true).Foreground(ColorBlue).Underline(true)
	}
	return lipgloss.NewStyle().Foreground(ColorGray)
}

// ChipStyle renders a selected recipient. Locked chips cannot be removed.
func ChipStyle(locked bool) lipgloss.Style {
	base := lipgloss.NewStyle().Padding(0, 1).MarginRight(1)
	if locked {
		return base.Foreground(ColorWhite).Background(ColorMagenta)
	}
	return base.Foreground(ColorWhite).Background(ColorBlue)
}
