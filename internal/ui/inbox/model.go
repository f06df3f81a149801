// Package inbox is the paged, polled list of conversations at "/".
package inbox

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/confirm"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/pager"
	"github.com/nhle/mailterm/internal/poll"
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/timer"
	"github.com/nhle/mailterm/internal/ui"
)

type pageMsg = poll.Result[*model.InboxPage]

// deletedMsg reports the outcome of a conversation delete.
type deletedMsg struct {
	loop int
	text string
	err  error
}

// Model is the inbox view.
type Model struct {
	env    ui.Env
	api    api.Inbox
	loop   *poll.Loop
	pager  *pager.Pager
	sort   *model.InboxSort
	alerts *ui.Alerts
	list   list.Model
	total  int

	flow  confirm.Flow
	modal *confirm.Modal

	width  int
	height int
}

// New creates the inbox view. sort is shared with the root model so the
// chosen order survives navigation.
func New(env ui.Env, svc api.Inbox, sort *model.InboxSort) *Model {
	if sort == nil {
		s := model.DefaultInboxSort()
		sort = &s
	}

	l := list.New([]list.Item{}, Delegate{ShowIDs: env.Config.Display.ShowMessageItemIDs}, env.Width, env.Height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	m := &Model{
		env:    env,
		api:    svc,
		loop:   poll.New(env.Config.PollInterval(), env.Tick),
		pager:  pager.New(env.Config.Messaging.InboxPerPage),
		sort:   sort,
		alerts: ui.NewAlerts(env.Drain()),
		list:   l,
	}
	m.SetSize(env.Width, env.Height)
	return m
}

// Init starts the first fetch.
func (m *Model) Init() tea.Cmd {
	return m.fetch()
}

// fetch requests the current page with the current sort. Any pending
// reschedule is cancelled first.
func (m *Model) fetch() tea.Cmd {
	ticket, ok := m.loop.Begin()
	if !ok {
		return nil
	}
	q := api.InboxQuery{Page: m.pager.Current, PerPage: m.pager.PerPage, Sort: *m.sort}
	svc := m.api
	return poll.Fetch(m.env.Ctx, ticket, func(ctx context.Context) (*model.InboxPage, error) {
		return svc.Inbox(ctx, q)
	})
}

// reschedule arms the poll timer unless a delete confirmation holds it.
func (m *Model) reschedule() tea.Cmd {
	if m.flow.Active() {
		return nil
	}
	return m.loop.Schedule()
}

// Update handles messages for the inbox view.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageMsg:
		return m.applyPage(msg)

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
			return m.reschedule()
		case confirm.Commit:
			return m.delete(out.Target)
		}
		return nil

	case deletedMsg:
		if msg.loop != m.loop.ID() || m.loop.State() == poll.Destroyed {
			return nil
		}
		if msg.err != nil {
			m.alerts.PostError(msg.err)
		} else {
			m.alerts.Post(notice.Success, msg.text)
		}
		return m.fetch()

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

func (m *Model) applyPage(msg pageMsg) tea.Cmd {
	if !m.loop.Settle(msg.Ticket) {
		return nil
	}

	if msg.Err != nil {
		m.setItems(nil)
		m.total = 0
		m.alerts.Post(notice.Danger, msg.Err.Error())
		return m.reschedule()
	}

	page := msg.Value
	if page == nil {
		page = &model.InboxPage{}
	}
	m.setItems(page.Messages)
	m.total = page.Total

	// The current page no longer exists, e.g. its last conversation was
	// deleted. Fetch the page the pager moved to.
	if m.pager.SetTotal(page.Total) {
		return m.fetch()
	}
	if m.loop.FirstEmpty(page.Total) {
		m.alerts.Post(notice.Info, m.env.Config.Trans.EmptyInbox)
	}
	return m.reschedule()
}

func (m *Model) setItems(msgs []model.MessageSummary) {
	items := make([]list.Item, len(msgs))
	for i, s := range msgs {
		items[i] = Item{Summary: s}
	}
	m.list.SetItems(items)
}

// handleKeys processes key input while no modal is open.
func (m *Model) handleKeys(msg tea.KeyMsg) tea.Cmd {
	k := m.env.Keys
	switch {
	case key.Matches(msg, k.Up):
		m.list.CursorUp()
	case key.Matches(msg, k.Down):
		m.list.CursorDown()

	case key.Matches(msg, k.Select):
		if s, ok := m.Selected(); ok {
			return router.Navigate(router.ReadPath(s.ID))
		}

	case key.Matches(msg, k.Reply):
		if s, ok := m.Selected(); ok {
			return router.Navigate(router.ReplyPath(s.ID))
		}

	case key.Matches(msg, k.PrevPage):
		if m.pager.Prev() {
			return m.fetch()
		}
	case key.Matches(msg, k.NextPage):
		if m.pager.Next() {
			return m.fetch()
		}

	case key.Matches(msg, k.SortDate):
		m.sort.Choose(model.SortByDate)
		return m.fetch()
	case key.Matches(msg, k.SortSender):
		m.sort.Choose(model.SortBySender)
		return m.fetch()

	case key.Matches(msg, k.Refresh):
		return m.fetch()

	case key.Matches(msg, k.Dismiss):
		m.alerts.Dismiss()

	case key.Matches(msg, k.Delete):
		if s, ok := m.Selected(); ok {
			return m.openConfirm(s)
		}
	}
	return nil
}

func (m *Model) openConfirm(s model.MessageSummary) tea.Cmd {
	m.loop.Pause()
	m.flow.Open(confirm.Target{ID: s.ID, Thread: true})
	m.modal = confirm.NewModal(
		"Delete conversation?",
		fmt.Sprintf("%q and all its messages will be deleted.", s.Subject),
		"Delete",
		m.width/2,
	)
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
		return deletedMsg{loop: loop, text: text, err: err}
	}
}

// Selected returns the conversation under the cursor.
func (m *Model) Selected() (model.MessageSummary, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.MessageSummary{}, false
	}
	return it.Summary, true
}

// Items returns the conversations on the current page.
func (m *Model) Items() []model.MessageSummary {
	out := make([]model.MessageSummary, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		out = append(out, it.(Item).Summary)
	}
	return out
}

// Total returns the number of conversations reported by the last fetch.
func (m *Model) Total() int { return m.total }

// Pager returns the inbox pager.
func (m *Model) Pager() *pager.Pager { return m.pager }

// Alerts returns the view's alert banner.
func (m *Model) Alerts() *ui.Alerts { return m.alerts }

// Loop returns the view's poll loop.
func (m *Model) Loop() *poll.Loop { return m.loop }

// View renders the inbox.
func (m *Model) View() string {
	if m.modal != nil {
		return m.modal.View()
	}

	sortLine := theme.MutedStyle.Render(fmt.Sprintf(
		"%d conversations · sorted by %s %s", m.total, m.sort.Field, m.sort.Direction,
	))

	sections := []string{}
	if a := m.alerts.View(m.width); a != "" {
		sections = append(sections, a)
	}
	sections = append(sections, sortLine, m.list.View())
	if p := ui.RenderPager(m.pager); p != "" {
		sections = append(sections, p)
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the inbox dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	// Alert, sort line and pager.
	m.list.SetSize(width, max(height-3, 1))
}

// Destroy stops polling.
func (m *Model) Destroy() {
	m.loop.Destroy()
}

// Title names the view in the header.
func (m *Model) Title() string { return "Inbox" }

// KeyHints lists the keys shown in the status bar.
func (m *Model) KeyHints() []key.Binding {
	k := m.env.Keys
	if m.modal != nil {
		return []key.Binding{
			key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n/esc", "cancel")),
		}
	}
	return []key.Binding{
		k.Select, k.Compose, k.Reply, k.Delete, k.PrevPage, k.NextPage,
		k.SortDate, k.SortSender, k.Notifications, k.Help, k.Quit,
	}
}

// CapturesInput reports whether the confirmation modal has the keyboard.
func (m *Model) CapturesInput() bool {
	return m.modal != nil
}
