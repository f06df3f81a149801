package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/theme"
)

// Alerts is the banner at the top of a view. Notices are posted into
// severity slots; the banner shows the most important one and clears the
// rest, so a stale warning never outlives a newer success.
type Alerts struct {
	pending notice.Set
	shown   notice.Notice
}

// NewAlerts returns a banner seeded with notices handed off by the
// previous view.
func NewAlerts(seed notice.Set) *Alerts {
	a := &Alerts{pending: seed}
	a.sync()
	return a
}

// Post shows text in the slot for sev.
func (a *Alerts) Post(sev notice.Severity, text string) {
	a.pending.Post(sev, text)
	a.sync()
}

// PostError shows err in the slot its type selects.
func (a *Alerts) PostError(err error) {
	a.pending.PostError(err)
	a.sync()
}

func (a *Alerts) sync() {
	if n, ok := a.pending.Take(); ok {
		a.shown = n
	}
}

// Current returns the notice on display.
func (a *Alerts) Current() notice.Notice {
	return a.shown
}

// Dismiss hides the banner.
func (a *Alerts) Dismiss() {
	a.shown = notice.Notice{}
}

// Height is the number of lines View takes.
func (a *Alerts) Height() int {
	if a.shown.Empty() {
		return 0
	}
	return 1
}

// View renders the banner, or nothing when no notice is shown.
func (a *Alerts) View(width int) string {
	if a.shown.Empty() {
		return ""
	}
	style := theme.AlertStyle(a.shown.Severity)
	text := a.shown.Text
	if room := width - style.GetHorizontalFrameSize(); room > 0 && lipgloss.Width(text) > room {
		text = truncate(text, room)
	}
	return style.Render(text)
}

func truncate(s string, width int) string {
	if width <= 1 {
		return "…"
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes)) > width-1 {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
