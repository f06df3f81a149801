// Package notifications is the paged, polled notification feed at
// "/notifications".
package notifications

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/confirm"
	"github.com/nhle/mailterm/internal/markup"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/pager"
	"github.com/nhle/mailterm/internal/poll"
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/timer"
	"github.com/nhle/mailterm/internal/ui"
)

type pageMsg = poll.Result[*model.NotificationPage]

type readMsg struct {
	loop         int
	notification model.Notification
	err          error
}

type deletedMsg struct {
	loop int
	text string
	err  error
}

// Model is the notification feed.
type Model struct {
	env    ui.Env
	api    api.Notifications
	loop   *poll.Loop
	pager  *pager.Pager
	alerts *ui.Alerts
	list   list.Model
	total  int

	// open is the notification whose body is shown, after it was marked
	// read.
	open *model.Notification

	flow  confirm.Flow
	modal *confirm.Modal

	width  int
	height int
}

// New creates the notification feed.
func New(env ui.Env, svc api.Notifications) *Model {
	l := list.New([]list.Item{}, delegate{showIDs: env.Config.Display.ShowMessageItemIDs}, env.Width, env.Height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowPagination(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)

	m := &Model{
		env:    env,
		api:    svc,
		loop:   poll.New(env.Config.PollInterval(), env.Tick),
		pager:  pager.New(env.Config.Messaging.NotificationsPerPage),
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

func (m *Model) fetch() tea.Cmd {
	ticket, ok := m.loop.Begin()
	if !ok {
		return nil
	}
	svc, page, perPage := m.api, m.pager.Current, m.pager.PerPage
	return poll.Fetch(m.env.Ctx, ticket, func(ctx context.Context) (*model.NotificationPage, error) {
		return svc.Notifications(ctx, page, perPage)
	})
}

func (m *Model) reschedule() tea.Cmd {
	if m.flow.Active() {
		return nil
	}
	return m.loop.Schedule()
}

// Update handles messages for the feed.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case pageMsg:
		return m.applyPage(msg)

	case timer.TickMsg:
		if m.loop.Tick(msg) {
			return m.fetch()
		}
		return nil

	case readMsg:
		if msg.loop != m.loop.ID() || m.loop.State() == poll.Destroyed {
			return nil
		}
		if msg.err != nil {
			m.alerts.Post(notice.Danger, msg.err.Error())
			return nil
		}
		n := msg.notification
		n.Read = true
		m.open = &n
		m.markRead(n.ID)
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
			m.pager.Reset()
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
		page = &model.NotificationPage{}
	}
	m.setItems(page.Notifications)
	m.total = page.Total

	if m.pager.SetTotal(page.Total) {
		return m.fetch()
	}
	if m.loop.FirstEmpty(page.Total) {
		m.alerts.Post(notice.Info, m.env.Config.Trans.NoNotifications)
	}
	return m.reschedule()
}

func (m *Model) setItems(ns []model.Notification) {
	items := make([]list.Item, len(ns))
	for i, n := range ns {
		items[i] = Item{Notification: n}
	}
	m.list.SetItems(items)
}

// markRead flips the local read flag so the row updates before the next
// poll.
func (m *Model) markRead(id int64) {
	for i, it := range m.list.Items() {
		item := it.(Item)
		if item.Notification.ID == id {
			item.Notification.Read = true
			m.list.SetItem(i, item)
			return
		}
	}
}

func (m *Model) handleKeys(msg tea.KeyMsg) tea.Cmd {
	k := m.env.Keys
	switch {
	case key.Matches(msg, k.Up):
		m.list.CursorUp()
	case key.Matches(msg, k.Down):
		m.list.CursorDown()

	case key.Matches(msg, k.Select):
		if n, ok := m.Selected(); ok {
			return m.openNotification(n)
		}

	case key.Matches(msg, k.Back):
		if m.open != nil {
			m.open = nil
			return nil
		}
		return router.Navigate(router.Home)

	case key.Matches(msg, k.PrevPage):
		if m.pager.Prev() {
			return m.fetch()
		}
	case key.Matches(msg, k.NextPage):
		if m.pager.Next() {
			return m.fetch()
		}

	case key.Matches(msg, k.Refresh):
		return m.fetch()
	case key.Matches(msg, k.Dismiss):
		m.alerts.Dismiss()

	case key.Matches(msg, k.Delete):
		if n, ok := m.Selected(); ok {
			return m.openConfirm(n)
		}
	}
	return nil
}

// openNotification marks n read; the body is shown once the server
// confirmed.
func (m *Model) openNotification(n model.Notification) tea.Cmd {
	ctx, svc, loop := m.env.Ctx, m.api, m.loop.ID()
	return func() tea.Msg {
		err := svc.MarkNotificationRead(ctx, n.ID)
		return readMsg{loop: loop, notification: n, err: err}
	}
}

func (m *Model) openConfirm(n model.Notification) tea.Cmd {
	m.loop.Pause()
	m.flow.Open(confirm.Target{ID: n.ID})
	m.modal = confirm.NewModal(
		"Delete notification?",
		fmt.Sprintf("%q will be deleted.", n.Subject),
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
		text, err := svc.DeleteMessageItem(ctx, t.ID, false)
		return deletedMsg{loop: loop, text: text, err: err}
	}
}

// Selected returns the notification under the cursor.
func (m *Model) Selected() (model.Notification, bool) {
	it, ok := m.list.SelectedItem().(Item)
	if !ok {
		return model.Notification{}, false
	}
	return it.Notification, true
}

// Items returns the notifications on the current page.
func (m *Model) Items() []model.Notification {
	out := make([]model.Notification, 0, len(m.list.Items()))
	for _, it := range m.list.Items() {
		out = append(out, it.(Item).Notification)
	}
	return out
}

// Opened returns the notification being read, if any.
func (m *Model) Opened() (model.Notification, bool) {
	if m.open == nil {
		return model.Notification{}, false
	}
	return *m.open, true
}

// Pager returns the feed pager.
func (m *Model) Pager() *pager.Pager { return m.pager }

// Alerts returns the view's alert banner.
func (m *Model) Alerts() *ui.Alerts { return m.alerts }

// View renders the feed.
func (m *Model) View() string {
	if m.modal != nil {
		return m.modal.View()
	}

	sections := []string{}
	if a := m.alerts.View(m.width); a != "" {
		sections = append(sections, a)
	}
	sections = append(sections,
		theme.MutedStyle.Render(fmt.Sprintf("%d notifications", m.total)),
		m.list.View(),
	)
	if p := ui.RenderPager(m.pager); p != "" {
		sections = append(sections, p)
	}
	if m.open != nil {
		sections = append(sections, m.renderOpen())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderOpen() string {
	n := m.open
	title := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorWhite).Render(n.Subject)
	body := markup.ToText(n.Body)
	link := theme.MutedStyle.Render(n.URL)
	return theme.DetailPanelStyle.
		Width(max(m.width-4, 10)).
		Render(lipgloss.JoinVertical(lipgloss.Left, title, "", body, "", link))
}

// SetSize updates the feed dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, max(m.env.Config.Messaging.NotificationsPerPage, 1))
}

// Destroy stops polling.
func (m *Model) Destroy() {
	m.loop.Destroy()
}

// Title names the view in the header.
func (m *Model) Title() string { return "Notifications" }

// KeyHints lists the keys shown in the status bar.
func (m *Model) KeyHints() []key.Binding {
	k := m.env.Keys
	if m.modal != nil {
		return []key.Binding{
			key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "delete")),
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n/esc", "cancel")),
		}
	}
	return []key.Binding{k.Select, k.Delete, k.PrevPage, k.NextPage, k.Inbox, k.Back, k.Help}
}

// CapturesInput reports whether the confirmation modal has the keyboard.
func (m *Model) CapturesInput() bool {
	return m.modal != nil
}
