// Package app is the root Bubble Tea model. It owns the active routed view,
// the notice mailbox views hand off through, and the unread counters in the
// header.
package app

import (
	"context"
	"log"
	"net/url"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/poll"
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/timer"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/ui/command"
	helpview "github.com/nhle/mailterm/internal/ui/help"
	"github.com/nhle/mailterm/internal/ui/setup"
)

// overlay is a panel drawn over the active view.
type overlay int

const (
	overlayNone overlay = iota
	overlayHelp
	overlayCommand
)

type unreadMsg = poll.Result[ui.Unread]

// Options configures the root model.
type Options struct {
	Ctx    context.Context
	Config *model.AppConfig
	Keys   *keys.KeyMap

	// Service is the messaging API. When nil the setup form runs first and
	// Connect builds the service from its answers.
	Service api.Service
	Connect func(baseURL, token string) api.Service

	// Save persists the setup form's answers.
	Save setup.SaveFunc

	// Tick schedules timer ticks. Nil uses tea.Tick.
	Tick timer.TickFunc
}

// Model is the root Bubble Tea model.
type Model struct {
	ctx     context.Context
	config  *model.AppConfig
	keys    *keys.KeyMap
	tick    timer.TickFunc
	svc     api.Service
	connect func(baseURL, token string) api.Service
	save    setup.SaveFunc

	// mailbox outlives every view; sort outlives every inbox.
	mailbox *notice.Set
	sort    *model.InboxSort

	route router.Route
	view  ui.View

	overlay     overlay
	helpView    helpview.Model
	commandView command.Model

	unreadLoop *poll.Loop
	unread     ui.Unread

	layout        ui.Layout
	ready         bool
	statusMessage string
}

// New creates the root model. It starts on the inbox, or on the setup form
// when no service is given.
func New(opts Options) Model {
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}
	if opts.Config == nil {
		opts.Config = model.DefaultAppConfig()
	}
	if opts.Keys == nil {
		opts.Keys = keys.DefaultKeyMap()
	}
	sort := model.DefaultInboxSort()

	m := Model{
		ctx:         opts.Ctx,
		config:      opts.Config,
		keys:        opts.Keys,
		tick:        opts.Tick,
		svc:         opts.Service,
		connect:     opts.Connect,
		save:        opts.Save,
		mailbox:     &notice.Set{},
		sort:        &sort,
		helpView:    helpview.New(opts.Keys, 80, 24),
		commandView: command.New(80, 24),
		unreadLoop:  poll.New(opts.Config.PollInterval(), opts.Tick),
		unread:      ui.Unread{Messages: -1, Notifications: -1},
		layout:      ui.NewLayout(80, 24),
	}

	if m.svc == nil {
		m.view = setup.New(m.env(), m.save)
	} else {
		m.route = router.Match(router.Home)
		m.view = m.build(m.route)
	}
	return m
}

// Init starts the first view and the unread counter.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.view.Init(), m.fetchUnread())
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		w, h := m.layout.ContentWidth(), m.layout.ContentHeight()
		m.view.SetSize(w, h)
		m.helpView.SetSize(w, h)
		m.commandView.SetSize(w, h)
		return m, m.view.Update(msg)

	case router.NavigateMsg:
		cmd := m.navigate(msg.Path)
		return m, cmd

	case setup.DoneMsg:
		cmd := m.connected(msg)
		return m, cmd

	case unreadMsg:
		cmd := m.applyUnread(msg)
		return m, cmd

	case timer.TickMsg:
		if m.unreadLoop.Tick(msg) {
			return m, m.fetchUnread()
		}
		return m, m.view.Update(msg)

	case command.CommandMsg:
		m.overlay = overlayNone
		cmd := m.executeCommand(string(msg))
		return m, cmd

	case command.CancelMsg:
		m.overlay = overlayNone
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.overlay == overlayCommand {
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, tea.Batch(cmd, m.view.Update(msg))
	}
	return m, m.view.Update(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.statusMessage = ""

	if msg.String() == "ctrl+c" {
		return m, m.quit()
	}

	switch m.overlay {
	case overlayHelp:
		if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
			m.overlay = overlayNone
		}
		return m, nil
	case overlayCommand:
		var cmd tea.Cmd
		m.commandView, cmd = m.commandView.Update(msg)
		return m, cmd
	}

	if m.svc == nil || m.view.CapturesInput() {
		return m, m.view.Update(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, m.quit()
	case key.Matches(msg, m.keys.Help):
		m.openHelp()
		return m, nil
	case key.Matches(msg, m.keys.Command):
		m.overlay = overlayCommand
		cmd := m.commandView.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Inbox):
		cmd := m.navigate(router.Home)
		return m, cmd
	case key.Matches(msg, m.keys.Notifications):
		cmd := m.navigate("/notifications")
		return m, cmd
	case key.Matches(msg, m.keys.Compose):
		cmd := m.navigate("/compose")
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		return m, tea.Batch(m.view.Update(msg), m.fetchUnread())
	}
	return m, m.view.Update(msg)
}

func (m *Model) openHelp() {
	m.helpView.SetView(m.view.Title(), m.view.KeyHints())
	m.overlay = overlayHelp
}

func (m *Model) env() ui.Env {
	return ui.Env{
		Ctx:     m.ctx,
		Config:  m.config,
		Keys:    m.keys,
		Tick:    m.tick,
		Mailbox: m.mailbox,
		Width:   m.layout.ContentWidth(),
		Height:  m.layout.ContentHeight(),
	}
}

// navigate replaces the active view with the one path resolves to. The old
// view is destroyed first so its timers stop and its late results are
// dropped.
func (m *Model) navigate(path string) tea.Cmd {
	if m.svc == nil {
		return nil
	}
	m.overlay = overlayNone
	m.view.Destroy()
	m.route = router.Match(path)
	m.view = m.build(m.route)
	return tea.Batch(m.view.Init(), m.fetchUnread())
}

// connected swaps the setup form for the inbox once the server is known.
func (m *Model) connected(msg setup.DoneMsg) tea.Cmd {
	m.config.Server.BaseURL = msg.BaseURL
	if m.connect == nil {
		log.Printf("setup finished without a connect func")
		return tea.Quit
	}
	m.svc = m.connect(msg.BaseURL, msg.Token)
	return m.navigate(router.Home)
}

func (m *Model) quit() tea.Cmd {
	m.view.Destroy()
	m.unreadLoop.Destroy()
	return tea.Quit
}

// View renders the frame: header, the active view or overlay, status bar.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("mailterm · "+m.view.Title(), m.headerStatus())
	statusBar := m.layout.RenderStatusBar(m.keyHints())
	if m.statusMessage != "" {
		statusBar = m.layout.RenderStatusMessage(m.statusMessage)
	}
	return m.layout.RenderWithFrame(header, m.renderContent(), statusBar)
}

func (m Model) renderContent() string {
	switch m.overlay {
	case overlayHelp:
		return m.helpView.View()
	case overlayCommand:
		return m.commandView.View()
	default:
		return m.view.View()
	}
}

// headerStatus shows the server host and the unread counters.
func (m Model) headerStatus() string {
	host := m.config.Server.BaseURL
	if u, err := url.Parse(host); err == nil && u.Host != "" {
		host = u.Host
	}
	if counts := m.unread.String(); counts != "" {
		if host == "" {
			return counts
		}
		return host + "  " + counts
	}
	return host
}

func (m Model) keyHints() []key.Binding {
	switch m.overlay {
	case overlayHelp:
		return []key.Binding{m.keys.Help, m.keys.Back}
	case overlayCommand:
		return []key.Binding{
			key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "run")),
			key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close")),
		}
	}
	return m.view.KeyHints()
}

// Route returns the resolved route of the active view.
func (m Model) Route() router.Route { return m.route }

// ActiveView returns the routed view on screen.
func (m Model) ActiveView() ui.View { return m.view }

// Unread returns the last known unread counters.
func (m Model) Unread() ui.Unread { return m.unread }

// Sort returns the inbox ordering shared by every inbox view.
func (m Model) Sort() model.InboxSort { return *m.sort }
