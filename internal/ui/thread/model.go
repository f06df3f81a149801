// Package thread is the conversation reader at "/read/:id".
package thread

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/confirm"
	"github.com/nhle/mailterm/internal/markup"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/poll"
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/timer"
	"github.com/nhle/mailterm/internal/ui"
)

type threadMsg = poll.Result[*model.Thread]

// deletedMsg reports the outcome of a delete issued from the reader.
type deletedMsg struct {
	loop   int
	thread bool
	text   string
	err    error
}

// Model is the thread reader.
type Model struct {
	env    ui.Env
	api    api.Threads
	id     int64
	loop   *poll.Loop
	alerts *ui.Alerts

	subject  string
	messages []model.ThreadMessage
	total    int

	// unread holds every message seen unread since the view opened. The
	// server marks a thread read on the first fetch, so later fetches alone
	// would lose the highlight.
	unread map[int64]struct{}

	cursor   int
	offsets  []int
	viewport viewport.Model

	flow  confirm.Flow
	modal *confirm.Modal

	width  int
	height int
}

// New creates a reader for the thread containing message item id.
func New(env ui.Env, svc api.Threads, id int64) *Model {
	m := &Model{
		env:      env,
		api:      svc,
		id:       id,
		loop:     poll.New(env.Config.PollInterval(), env.Tick),
		alerts:   ui.NewAlerts(env.Drain()),
		unread:   make(map[int64]struct{}),
		viewport: viewport.New(env.Width, env.Height),
	}
	m.SetSize(env.Width, env.Height)
	return m
}

// Init starts the first fetch.
func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

func (m *Model) fetch() tea.Cmd {
	ticket, ok := m.loop.Begin()
	if !ok {
		return nil
	}
	svc, id := m.api, m.id
	return poll.Fetch(m.env.Ctx, ticket, func(ctx context.Context) (*model.Thread, error) {
		return svc.Thread(ctx, id)
	})
}

// Update handles messages for the reader.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case threadMsg:
		return m.applyThread(msg)

	case timer.TickMsg:
		if m.loop.Tick(msg) {
			return m.fetch()
		}
		return nil

	case confirm.HiddenMsg:
		m.modal = nil
		out := m.flow.Hidden(msg.Intent)
		switch out.Kind {
		case confirm.Cancelled:
			return m.fetch()
		case confirm.Commit:
			if out.Target.Thread && m.total == 0 {
				return m.fetch()
			}
			return m.delete(out.Target)
		}
		return nil

	case deletedMsg:
		if msg.loop != m.loop.ID() || m.loop.State() == poll.Destroyed {
			return nil
		}
		return m.applyDelete(msg)

	case tea.KeyMsg:
		if m.modal != nil {
			return m.updateModal(msg)
		}
		return m.handleKeys(msg)
	}

	if m.modal != nil {
		return m.updateModal(msg)
	}
	return nil
}

func (m *Model) applyThread(msg threadMsg) tea.Cmd {
	if !m.loop.Settle(msg.Ticket) {
		return nil
	}

	// Nothing safe to show without the thread; go back to the inbox and
	// let it display the reason.
	if msg.Err != nil {
		m.env.HandoffError(msg.Err)
		return router.Navigate(router.Home)
	}

	t := msg.Value
	if t == nil {
		t = &model.Thread{}
	}
	m.subject = t.Subject
	m.messages = t.Messages
	m.total = t.Total
	for _, tm := range m.messages {
		if !tm.Read {
			m.unread[tm.ID] = struct{}{}
		}
	}
	if m.cursor >= len(m.messages) {
		m.cursor = max(len(m.messages)-1, 0)
	}

	if m.loop.FirstEmpty(m.total) {
		m.alerts.Post(notice.Info, m.env.Config.Trans.EmptyThread)
	}
	m.render()

	if m.flow.Active() {
		return nil
	}
	return m.loop.Schedule()
}

func (m *Model) applyDelete(msg deletedMsg) tea.Cmd {
	if msg.thread {
		if msg.err != nil {
			m.alerts.PostError(msg.err)
			return m.fetch()
		}
		m.env.Handoff(notice.Success, msg.text)
		return router.Navigate(router.Home)
	}

	if msg.err != nil {
		m.alerts.PostError(msg.err)
	} else {
		m.alerts.Post(notice.Success, msg.text)
	}
	return m.fetch()
}

func (m *Model) handleKeys(msg tea.KeyMsg) tea.Cmd {
	k := m.env.Keys
	switch {
	case key.Matches(msg, k.Up):
		if m.cursor > 0 {
			m.cursor--
			m.render()
		}
	case key.Matches(msg, k.Down):
		if m.cursor < len(m.messages)-1 {
			m.cursor++
			m.render()
		}

	case key.Matches(msg, k.Back):
		return router.Navigate(router.Home)
	case key.Matches(msg, k.Reply):
		return router.Navigate(router.ReplyPath(m.id))
	case key.Matches(msg, k.Refresh):
		return m.fetch()
	case key.Matches(msg, k.Dismiss):
		m.alerts.Dismiss()

	case key.Matches(msg, k.Delete):
		if tm, ok := m.Selected(); ok {
			return m.openConfirm(
				confirm.Target{ID: tm.ID},
				"Delete message?",
				fmt.Sprintf("The message from %s will be deleted.", tm.Sender),
			)
		}
	case key.Matches(msg, k.DeleteAll):
		var first int64
		if len(m.messages) > 0 {
			first = m.messages[0].ID
		}
		return m.openConfirm(
			confirm.Target{ID: first, Thread: true},
			"Delete conversation?",
			"Every message in this conversation will be deleted.",
		)
	}
	return nil
}

func (m *Model) openConfirm(t confirm.Target, title, description string) tea.Cmd {
	m.loop.Pause()
	m.flow.Open(t)
	m.modal = confirm.NewModal(title, description, "Delete", m.width/2)
	return m.modal.Init()
}

func (m *Model) updateModal(msg tea.Msg) tea.Cmd {
	cmd, intent, done := m.modal.Update(msg)
	if !done {
		return cmd
	}
	return m.flow.Resolve(intent)
}

func (m *Model) delete(t confirm.Target) tea.Cmd {
	ctx, svc, loop := m.env.Ctx, m.api, m.loop.ID()
	return func() tea.Msg {
		text, err := svc.DeleteMessageItem(ctx, t.ID, t.Thread)
		return deletedMsg{loop: loop, thread: t.Thread, text: text, err: err}
	}
}

// Selected returns the message under the cursor.
func (m *Model) Selected() (model.ThreadMessage, bool) {
	if m.cursor < 0 || m.cursor >= len(m.messages) {
		return model.ThreadMessage{}, false
	}
	return m.messages[m.cursor], true
}

// Messages returns the messages of the last fetch.
func (m *Model) Messages() []model.ThreadMessage { return m.messages }

// Subject returns the thread subject.
func (m *Model) Subject() string { return m.subject }

// IsUnread reports whether id was unread at any fetch since the view opened.
func (m *Model) IsUnread(id int64) bool {
	_, ok := m.unread[id]
	return ok
}

// Alerts returns the view's alert banner.
func (m *Model) Alerts() *ui.Alerts { return m.alerts }

// Loop returns the view's poll loop.
func (m *Model) Loop() *poll.Loop { return m.loop }

// render rebuilds the viewport content and keeps the cursor in view.
func (m *Model) render() {
	var b strings.Builder
	m.offsets = m.offsets[:0]
	line := 0

	bodyWidth := max(m.width-4, 10)
	for i, tm := range m.messages {
		m.offsets = append(m.offsets, line)

		head := tm.Sender + " · " + tm.Sent
		if m.env.Config.Display.ShowMessageItemIDs {
			head += fmt.Sprintf(" · #%d", tm.ID)
		}
		if m.IsUnread(tm.ID) {
			head = theme.UnreadStyle.Render("● " + head)
		} else {
			head = theme.MutedStyle.Render("  " + head)
		}
		if i == m.cursor {
			head = theme.SelectedItemStyle.Render(head)
		} else {
			head = theme.ListItemStyle.Render(head)
		}

		body := lipgloss.NewStyle().
			PaddingLeft(4).
			Width(bodyWidth).
			Render(markup.ToText(tm.Body))

		block := head + "\n" + body + "\n\n"
		b.WriteString(block)
		line += strings.Count(block, "\n")
	}

	m.viewport.SetContent(b.String())

	if m.cursor < len(m.offsets) {
		top := m.offsets[m.cursor]
		if top < m.viewport.YOffset || top >= m.viewport.YOffset+m.viewport.Height {
			m.viewport.SetYOffset(top)
		}
	}
}

// View renders the reader.
func (m *Model) View() string {
	if m.modal != nil {
		return m.modal.View()
	}

	sections := []string{}
	if a := m.alerts.View(m.width); a != "" {
		sections = append(sections, a)
	}
	title := m.subject
	if title == "" {
		title = "(no subject)"
	}
	sections = append(sections,
		lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(title),
		m.viewport.View(),
	)
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the reader dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.viewport.Width = width
	// Alert and subject lines.
	m.viewport.Height = max(height-2, 1)
	m.render()
}

// Destroy stops polling.
func (m *Model) Destroy() {
	m.loop.Destroy()
}

// Title names the view in the header.
func (m *Model) Title() string { return "Conversation" }

// KeyHints lists the keys shown in the status bar.
func (m *Model) KeyHints() []key.Binding {
	k := m.env.Keys
	if m.modal != nil {
		return []key.Binding{
			key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n/esc", "cancel")),
		}
	}
	return []key.Binding{k.Up, k.Down, k.Reply, k.Delete, k.DeleteAll, k.Back, k.Help}
}

// CapturesInput reports whether the confirmation modal has the keyboard.
func (m *Model) CapturesInput() bool {
	return m.modal != nil
}
