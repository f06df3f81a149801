package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/theme"
)

// Layout manages the frame around the active view.
type Layout struct {
	Width           int
	Height          int
	HeaderHeight    int
	StatusBarHeight int
}

// NewLayout creates a Layout with the given terminal dimensions.
// HeaderHeight and StatusBarHeight default to 1.
func NewLayout(width, height int) Layout {
	return Layout{
		Width:           width,
		Height:          height,
		HeaderHeight:    1,
		StatusBarHeight: 1,
	}
}

// ContentWidth returns the full available width.
func (l Layout) ContentWidth() int {
	return l.Width
}

// ContentHeight returns the height left for the active view.
func (l Layout) ContentHeight() int {
	h := l.Height - l.HeaderHeight - l.StatusBarHeight
	if h < 0 {
		return 0
	}
	return h
}

// Unread is the pair of counters shown in the header. Negative values are
// unknown and not shown.
type Unread struct {
	Messages      int
	Notifications int
}

// String renders the counters, e.g. "✉ 3 · 🔔 1".
func (u Unread) String() string {
	var parts []string
	if u.Messages >= 0 {
		parts = append(parts, fmt.Sprintf("✉ %d", u.Messages))
	}
	if u.Notifications >= 0 {
		parts = append(parts, fmt.Sprintf("🔔 %d", u.Notifications))
	}
	return strings.Join(parts, " · ")
}

// RenderHeader renders the top bar: application and view title on the
// left, server and unread counters on the right.
func (l Layout) RenderHeader(title string, status string) string {
	titleRendered := theme.HeaderStyle.Render(title)

	statusRendered := theme.HeaderStyle.
		Align(lipgloss.Right).
		Render(status)

	return l.fill(theme.HeaderStyle, titleRendered, statusRendered)
}

// RenderStatusBar renders key hints as "key desc" pairs.
func (l Layout) RenderStatusBar(hints []key.Binding) string {
	parts := make([]string, 0, len(hints))
	for _, b := range hints {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	rendered := theme.StatusBarStyle.Render(strings.Join(parts, " | "))
	return l.fill(theme.StatusBarStyle, rendered, "")
}

// RenderStatusMessage renders a one-off message in place of the key hints.
func (l Layout) RenderStatusMessage(text string) string {
	rendered := theme.StatusBarStyle.Foreground(theme.ColorYellow).Render(text)
	return l.fill(theme.StatusBarStyle, rendered, "")
}

// fill pads the gap between left and right with the style's background.
func (l Layout) fill(style lipgloss.Style, left, right string) string {
	gap := l.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	filler := lipgloss.NewStyle().
		Width(gap).
		Background(style.GetBackground()).
		Render("")

	return lipgloss.JoinHorizontal(lipgloss.Top, left, filler, right)
}

// RenderWithFrame composes a full terminal view by vertically joining
// the header, content area, and status bar. Content is padded or cut to
// the content height so the status bar stays at the bottom.
func (l Layout) RenderWithFrame(
	header string,
	content string,
	statusBar string,
) string {
	content = lipgloss.NewStyle().
		Height(l.ContentHeight()).
		MaxHeight(l.ContentHeight()).
		Render(content)

	return lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		content,
		statusBar,
	)
}
