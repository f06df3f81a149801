package app

import (
	"fmt"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/timer/timertest"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/ui/inbox"
	"github.com/nhle/mailterm/internal/ui/setup"
	"github.com/nhle/mailterm/internal/ui/uitest"
)

// driver adapts the value-receiver root model to uitest.Pump.
type driver struct {
	m Model
}

func (d *driver) Update(msg tea.Msg) tea.Cmd {
	mdl, cmd := d.m.Update(msg)
	d.m = mdl.(Model)
	return cmd
}

// held stops at quit and spinner frames.
func held(msg tea.Msg) bool {
	switch msg.(type) {
	case tea.QuitMsg, spinner.TickMsg:
		return true
	}
	return false
}

func inboxOf(n int) func(api.InboxQuery) (*model.InboxPage, error) {
	return func(api.InboxQuery) (*model.InboxPage, error) {
		var ms []model.MessageSummary
		for i := 0; i < n; i++ {
			ms = append(ms, model.MessageSummary{
				ID:      int64(5 + i),
				Sender:  "Ann Archer",
				Subject: fmt.Sprintf("Subject %d", i),
				Count:   1,
			})
		}
		return &model.InboxPage{Messages: ms, Total: n}, nil
	}
}

func counts(messages, notifications int) func(bool) (int, error) {
	return func(n bool) (int, error) {
		if n {
			return notifications, nil
		}
		return messages, nil
	}
}

func fakeAPI() *uitest.API {
	return &uitest.API{
		InboxFunc:  inboxOf(3),
		UnreadFunc: counts(3, 1),
		NotificationsFunc: func(int, int) (*model.NotificationPage, error) {
			return &model.NotificationPage{Notifications: []model.Notification{{ID: 1, Subject: "Hi"}}, Total: 1}, nil
		},
	}
}

func start(t *testing.T, fake *uitest.API) (*driver, *timertest.Clock) {
	t.Helper()
	clock := timertest.New()
	d := &driver{m: New(Options{Service: fake, Tick: clock.Tick})}
	uitest.Pump(d, held, tea.WindowSizeMsg{Width: 100, Height: 30})
	uitest.Pump(d, held, uitest.Run(d.m.Init())...)
	return d, clock
}

func TestStartsOnInboxWithUnreadCounts(t *testing.T) {
	fake := fakeAPI()
	d, _ := start(t, fake)

	assert.Equal(t, router.Inbox, d.m.Route().View)
	assert.Len(t, fake.InboxCalls, 1)
	assert.Equal(t, []bool{false, true}, fake.UnreadCalls)
	assert.Equal(t, ui.Unread{Messages: 3, Notifications: 1}, d.m.Unread())

	view := d.m.View()
	assert.Contains(t, view, "mailterm · Inbox")
	assert.Contains(t, view, "✉ 3")
}

func TestUnreadCountsArePolled(t *testing.T) {
	fake := fakeAPI()
	d, clock := start(t, fake)

	fake.UnreadFunc = counts(0, 4)
	uitest.Pump(d, held, clock.Advance(10*time.Second)...)
	assert.Equal(t, ui.Unread{Messages: 0, Notifications: 4}, d.m.Unread())
	assert.Len(t, fake.InboxCalls, 2, "the inbox polls on its own timer")
}

func TestUnreadFailureKeepsCounts(t *testing.T) {
	fake := fakeAPI()
	d, clock := start(t, fake)

	fake.UnreadFunc = func(bool) (int, error) {
		return 0, &api.Error{Status: 401, Type: api.TypeError, Message: "Not logged in"}
	}
	uitest.Pump(d, held, clock.Advance(10*time.Second)...)
	assert.Equal(t, ui.Unread{Messages: 3, Notifications: 1}, d.m.Unread())
	assert.Contains(t, d.m.View(), sessionExpired)
}

func TestNavigationReplacesView(t *testing.T) {
	fake := fakeAPI()
	d, clock := start(t, fake)

	uitest.Pump(d, held, uitest.Key("n"))
	assert.Equal(t, router.Notifications, d.m.Route().View)
	assert.Equal(t, []int{0}, fake.NotifCalls)

	uitest.Pump(d, held, clock.Advance(10*time.Second)...)
	assert.Len(t, fake.InboxCalls, 1, "the old inbox stopped polling")
	assert.Len(t, fake.NotifCalls, 2)
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	d, _ := start(t, fakeAPI())

	uitest.Pump(d, held, router.NavigateMsg{Path: "/compose"})
	require.Equal(t, router.Compose, d.m.Route().View)

	uitest.Pump(d, held, router.NavigateMsg{Path: "/nope"})
	assert.Equal(t, router.Route{View: router.Inbox, Path: "/"}, d.m.Route())
}

func TestHandedOffNoticeReachesNextView(t *testing.T) {
	fake := fakeAPI()
	fake.ThreadFunc = func(int64) (*model.Thread, error) {
		return nil, &api.Error{Status: 404, Type: api.TypeWarning, Message: "Message item not found"}
	}
	d, _ := start(t, fake)

	uitest.Pump(d, held, router.NavigateMsg{Path: router.ReadPath(9)})

	require.Equal(t, router.Inbox, d.m.Route().View)
	in, ok := d.m.ActiveView().(*inbox.Model)
	require.True(t, ok)
	assert.Equal(t, notice.Notice{Severity: notice.Warning, Text: "Message item not found"}, in.Alerts().Current())
}

func TestGlobalKeysYieldToInput(t *testing.T) {
	d, _ := start(t, fakeAPI())
	uitest.Pump(d, held, uitest.Key("c"))
	require.Equal(t, router.Compose, d.m.Route().View)

	out := uitest.Pump(d, held, uitest.Key("n"), uitest.Key("q"))
	assert.Equal(t, router.Compose, d.m.Route().View)
	assert.Empty(t, out)

	out = uitest.Pump(d, held, uitest.Key("ctrl+c"))
	assert.Equal(t, []tea.Msg{tea.QuitMsg{}}, out)
}

func TestQuitKey(t *testing.T) {
	d, _ := start(t, fakeAPI())
	out := uitest.Pump(d, held, uitest.Key("q"))
	assert.Equal(t, []tea.Msg{tea.QuitMsg{}}, out)
}

func TestCommandPaletteNavigates(t *testing.T) {
	d, _ := start(t, fakeAPI())

	d.Update(uitest.Key(":"))
	assert.Contains(t, d.m.View(), "Command Palette")

	uitest.Pump(d, held, uitest.Type("notifications")...)
	uitest.Pump(d, held, uitest.Key("enter"))
	assert.Equal(t, router.Notifications, d.m.Route().View)
	assert.NotContains(t, d.m.View(), "Command Palette")
}

func TestSortCommandSharesOrdering(t *testing.T) {
	fake := fakeAPI()
	d, _ := start(t, fake)

	cmd := d.m.executeCommand("sort sender")
	uitest.Pump(d, held, uitest.Run(cmd)...)

	assert.Equal(t, model.InboxSort{Field: model.SortBySender, Direction: model.SortDesc}, d.m.Sort())
	require.Len(t, fake.InboxCalls, 2)
	assert.Equal(t, model.SortBySender, fake.InboxCalls[1].Sort.Field)

	// The ordering survives leaving and re-entering the inbox.
	uitest.Pump(d, held, uitest.Key("n"), uitest.Key("i"))
	assert.Equal(t, model.SortBySender, fake.InboxCalls[len(fake.InboxCalls)-1].Sort.Field)
}

func TestUnknownCommandShowsStatus(t *testing.T) {
	d, _ := start(t, fakeAPI())

	d.m.executeCommand("frobnicate")
	assert.Contains(t, d.m.View(), "Unknown command: frobnicate")

	uitest.Pump(d, held, uitest.Key("j"))
	assert.NotContains(t, d.m.View(), "Unknown command")
}

func TestHelpOverlay(t *testing.T) {
	d, _ := start(t, fakeAPI())

	uitest.Pump(d, held, uitest.Key("?"))
	assert.Contains(t, d.m.View(), "Keyboard Shortcuts · Inbox")

	// Keys do not reach the view while help is open.
	uitest.Pump(d, held, uitest.Key("n"))
	assert.Equal(t, router.Inbox, d.m.Route().View)

	uitest.Pump(d, held, uitest.Key("esc"))
	assert.NotContains(t, d.m.View(), "Keyboard Shortcuts")
}

func TestSetupConnectsThenOpensInbox(t *testing.T) {
	fake := fakeAPI()
	clock := timertest.New()
	cfg := model.DefaultAppConfig()

	var gotURL, gotToken string
	d := &driver{m: New(Options{
		Config: cfg,
		Tick:   clock.Tick,
		Connect: func(baseURL, token string) api.Service {
			gotURL, gotToken = baseURL, token
			return fake
		},
	})}
	assert.Equal(t, "Setup", d.m.ActiveView().Title())

	// Navigation is ignored until a server is known.
	uitest.Pump(d, held, router.NavigateMsg{Path: "/compose"})
	assert.Equal(t, "Setup", d.m.ActiveView().Title())

	uitest.Pump(d, held, setup.DoneMsg{BaseURL: "https://mail.example.com", Token: "secret"})

	assert.Equal(t, "https://mail.example.com", gotURL)
	assert.Equal(t, "secret", gotToken)
	assert.Equal(t, "https://mail.example.com", cfg.Server.BaseURL)
	assert.Equal(t, router.Inbox, d.m.Route().View)
	assert.Len(t, fake.InboxCalls, 1)
}
