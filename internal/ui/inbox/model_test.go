package inbox

import (
	"fmt"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/confirm"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/timer/timertest"
	"github.com/nhle/mailterm/internal/ui/uitest"
)

func summaries(n int, firstID int64) []model.MessageSummary {
	out := make([]model.MessageSummary, n)
	for i := range out {
		out[i] = model.MessageSummary{
			ID:      firstID + int64(i),
			Sender:  "Ann Archer",
			Subject: fmt.Sprintf("Subject %d", i),
			Count:   1,
		}
	}
	return out
}

func pageOf(total int) func(api.InboxQuery) (*model.InboxPage, error) {
	return func(q api.InboxQuery) (*model.InboxPage, error) {
		n := total - q.Page*q.PerPage
		if n > q.PerPage {
			n = q.PerPage
		}
		if n < 0 {
			n = 0
		}
		return &model.InboxPage{Messages: summaries(n, int64(q.Page*q.PerPage)+5), Total: total}, nil
	}
}

func newInbox(t *testing.T, fake *uitest.API) (*Model, *timertest.Clock) {
	t.Helper()
	clock := timertest.New()
	m := New(uitest.NewEnv(clock), fake, nil)
	uitest.Pump(m, nil, uitest.Run(m.Init())...)
	return m, clock
}

// advance moves the clock and delivers due ticks, returning whatever the
// view emits that is not handled internally.
func advance(m *Model, clock *timertest.Clock, d time.Duration) []tea.Msg {
	return uitest.Pump(m, isNavigate, clock.Advance(d)...)
}

func isNavigate(msg tea.Msg) bool {
	_, ok := msg.(router.NavigateMsg)
	return ok
}

func TestInitialFetchAndPoll(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(3)}
	m, clock := newInbox(t, fake)

	require.Len(t, fake.InboxCalls, 1)
	assert.Equal(t, api.InboxQuery{Page: 0, PerPage: 10, Sort: model.DefaultInboxSort()}, fake.InboxCalls[0])
	assert.Len(t, m.Items(), 3)
	assert.Equal(t, 3, m.Total())

	advance(m, clock, 9*time.Second)
	assert.Len(t, fake.InboxCalls, 1)
	advance(m, clock, time.Second)
	assert.Len(t, fake.InboxCalls, 2)
}

func TestEmptyNoticePostedOnce(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(0)}
	m, clock := newInbox(t, fake)

	cfg := model.DefaultAppConfig()
	assert.Equal(t, notice.Notice{Severity: notice.Info, Text: cfg.Trans.EmptyInbox}, m.Alerts().Current())

	m.Alerts().Dismiss()
	advance(m, clock, 10*time.Second)
	require.Len(t, fake.InboxCalls, 2)
	assert.True(t, m.Alerts().Current().Empty())
}

func TestTeardownStopsPolling(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(3)}
	m, clock := newInbox(t, fake)

	m.Destroy()
	advance(m, clock, time.Minute)
	assert.Len(t, fake.InboxCalls, 1)
}

func TestResultAfterTeardownIgnored(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(3)}
	clock := timertest.New()
	m := New(uitest.NewEnv(clock), fake, nil)

	inFlight := uitest.Run(m.Init())
	m.Destroy()
	uitest.Pump(m, nil, inFlight...)

	assert.Empty(t, m.Items())
	assert.Equal(t, 0, clock.Scheduled())
}

func TestStaleResultIgnored(t *testing.T) {
	calls := 0
	fake := &uitest.API{InboxFunc: func(q api.InboxQuery) (*model.InboxPage, error) {
		calls++
		return &model.InboxPage{Messages: summaries(calls, 1), Total: calls}, nil
	}}
	clock := timertest.New()
	m := New(uitest.NewEnv(clock), fake, nil)

	first := m.Init()
	second := m.Update(uitest.Key("ctrl+r"))

	older := uitest.Run(first)
	newer := uitest.Run(second)

	// The older response arrives last and is dropped.
	uitest.Pump(m, nil, newer...)
	uitest.Pump(m, nil, older...)

	assert.Equal(t, 2, m.Total())
	assert.Len(t, m.Items(), 2)
}

func TestFailureClearsItemsAndReschedules(t *testing.T) {
	fail := false
	fake := &uitest.API{InboxFunc: func(q api.InboxQuery) (*model.InboxPage, error) {
		if fail {
			return nil, &api.Error{Status: 500, Type: api.TypeError, Message: "server error"}
		}
		return pageOf(25)(q)
	}}
	m, clock := newInbox(t, fake)
	uitest.Pump(m, nil, uitest.Key("l"))
	require.Equal(t, 1, m.Pager().Current)

	fail = true
	advance(m, clock, 10*time.Second)

	assert.Empty(t, m.Items())
	assert.Equal(t, 0, m.Total())
	assert.Equal(t, notice.Notice{Severity: notice.Danger, Text: "server error"}, m.Alerts().Current())
	assert.Equal(t, 1, m.Pager().Current, "failure leaves the pager alone")

	fail = false
	advance(m, clock, 10*time.Second)
	assert.Len(t, m.Items(), 10)
}

func TestPagingRefetchesImmediately(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(25)}
	m, _ := newInbox(t, fake)
	require.Equal(t, 3, m.Pager().PageCount)

	uitest.Pump(m, nil, uitest.Key("l"), uitest.Key("l"), uitest.Key("l"))
	require.Len(t, fake.InboxCalls, 3)
	assert.Equal(t, 1, fake.InboxCalls[1].Page)
	assert.Equal(t, 2, fake.InboxCalls[2].Page)
	assert.Len(t, m.Items(), 5)

	uitest.Pump(m, nil, uitest.Key("h"))
	assert.Equal(t, 1, fake.InboxCalls[3].Page)
}

func TestShrinkingTotalMovesToLastPage(t *testing.T) {
	total := 25
	fake := &uitest.API{InboxFunc: func(q api.InboxQuery) (*model.InboxPage, error) {
		return pageOf(total)(q)
	}}
	m, clock := newInbox(t, fake)
	uitest.Pump(m, nil, uitest.Key("l"), uitest.Key("l"))
	require.Equal(t, 2, m.Pager().Current)

	total = 20
	advance(m, clock, 10*time.Second)

	assert.Equal(t, 1, m.Pager().Current)
	last := fake.InboxCalls[len(fake.InboxCalls)-1]
	assert.Equal(t, 1, last.Page)
	assert.Len(t, m.Items(), 10)
}

func TestSortKeys(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(3)}
	m, _ := newInbox(t, fake)

	uitest.Pump(m, nil, uitest.Key("2"))
	assert.Equal(t, model.InboxSort{Field: model.SortBySender, Direction: model.SortDesc}, fake.InboxCalls[1].Sort)

	uitest.Pump(m, nil, uitest.Key("2"))
	assert.Equal(t, model.InboxSort{Field: model.SortBySender, Direction: model.SortAsc}, fake.InboxCalls[2].Sort)
}

func TestSelectNavigatesToThread(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(3)}
	m, _ := newInbox(t, fake)

	m.Update(uitest.Key("j"))
	held := uitest.Pump(m, isNavigate, uitest.Key("enter"))
	require.Len(t, held, 1)
	assert.Equal(t, router.NavigateMsg{Path: "/read/6"}, held[0])

	held = uitest.Pump(m, isNavigate, uitest.Key("r"))
	assert.Equal(t, router.NavigateMsg{Path: "/reply/6"}, held[0])
}

func TestDeleteCancelDoesNotDelete(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(3)}
	m, clock := newInbox(t, fake)

	m.Update(uitest.Key("d"))
	require.True(t, m.CapturesInput())

	// The poll is paused while the modal is open.
	advance(m, clock, time.Minute)
	require.Len(t, fake.InboxCalls, 1)

	uitest.Pump(m, nil, uitest.Key("n"))
	assert.False(t, m.CapturesInput())
	assert.Empty(t, fake.Deletes)

	advance(m, clock, 10*time.Second)
	assert.Len(t, fake.InboxCalls, 2)
}

func TestDeleteConfirmDeletesOnce(t *testing.T) {
	fake := &uitest.API{
		InboxFunc:  pageOf(3),
		DeleteFunc: func(int64, bool) (string, error) { return "Conversation deleted!", nil },
	}
	m, _ := newInbox(t, fake)

	m.Update(uitest.Key("d"))
	uitest.Pump(m, nil, uitest.Key("y"))

	require.Len(t, fake.Deletes, 1)
	assert.Equal(t, uitest.DeleteCall{MIID: 5, Thread: true}, fake.Deletes[0])
	assert.Equal(t, notice.Notice{Severity: notice.Success, Text: "Conversation deleted!"}, m.Alerts().Current())
	assert.Len(t, fake.InboxCalls, 2, "delete reloads the page")

	// A second confirmation without a new open commits nothing.
	uitest.Pump(m, nil, confirm.HiddenMsg{Intent: confirm.Confirm})
	assert.Len(t, fake.Deletes, 1)
}

func TestDeleteFailurePostsNotice(t *testing.T) {
	fake := &uitest.API{
		InboxFunc: pageOf(3),
		DeleteFunc: func(int64, bool) (string, error) {
			return "", &api.Error{Status: 404, Type: api.TypeWarning, Message: "Message item not found"}
		},
	}
	m, _ := newInbox(t, fake)

	m.Update(uitest.Key("d"))
	uitest.Pump(m, nil, uitest.Key("y"))
	assert.Equal(t, notice.Notice{Severity: notice.Warning, Text: "Message item not found"}, m.Alerts().Current())
}

func TestHandedOffNoticeShown(t *testing.T) {
	clock := timertest.New()
	env := uitest.NewEnv(clock)
	env.Mailbox.Post(notice.Success, "Message sent!")

	m := New(env, &uitest.API{InboxFunc: pageOf(1)}, nil)
	assert.Equal(t, "Message sent!", m.Alerts().Current().Text)
	assert.True(t, env.Mailbox.Empty())
}

func TestViewRenders(t *testing.T) {
	fake := &uitest.API{InboxFunc: pageOf(25)}
	m, _ := newInbox(t, fake)
	out := m.View()
	assert.Contains(t, out, "Subject 0")
	assert.Contains(t, out, "25 conversations")

	m.Update(uitest.Key("d"))
	assert.Contains(t, m.View(), "Delete conversation?")
}
