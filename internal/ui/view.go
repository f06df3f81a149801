// Package ui holds the pieces shared by every routed view: the View
// contract, the environment views are built from, the alert banner, the
// pager strip and the frame layout.
package ui

import (
	"context"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/timer"
)

// View is a routed screen. The root model owns exactly one at a time and
// calls Destroy before replacing it.
type View interface {
	Init() tea.Cmd
	Update(msg tea.Msg) tea.Cmd
	View() string
	SetSize(width, height int)

	// Destroy stops the view's timers. Results that arrive afterwards are
	// ignored.
	Destroy()

	Title() string
	KeyHints() []key.Binding

	// CapturesInput reports whether printable keys belong to the view, so
	// the root model must not treat them as global shortcuts.
	CapturesInput() bool
}

// Env is what a view is built from.
type Env struct {
	Ctx    context.Context
	Config *model.AppConfig
	Keys   *keys.KeyMap

	// Tick schedules timer ticks. Nil uses tea.Tick.
	Tick timer.TickFunc

	// Mailbox carries notices across one route change. The departing view
	// posts into it and the arriving view drains it.
	Mailbox *notice.Set

	Width  int
	Height int
}

// Handoff posts text to the mailbox so the next view shows it.
func (e Env) Handoff(sev notice.Severity, text string) {
	if e.Mailbox != nil {
		e.Mailbox.Post(sev, text)
	}
}

// HandoffError posts err to the mailbox.
func (e Env) HandoffError(err error) {
	if e.Mailbox != nil {
		e.Mailbox.PostError(err)
	}
}

// Drain empties the mailbox into a fresh set.
func (e Env) Drain() notice.Set {
	if e.Mailbox == nil {
		return notice.Set{}
	}
	return e.Mailbox.DrainAll()
}
