// Package uitest drives routed views in tests: it runs commands
// synchronously, builds key messages and provides a scriptable API fake.
package uitest

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/timer/timertest"
	"github.com/nhle/mailterm/internal/ui"
)

// NewEnv returns an environment on the fake clock with default config and
// an empty mailbox.
func NewEnv(clock *timertest.Clock) ui.Env {
	return ui.Env{
		Ctx:     context.Background(),
		Config:  model.DefaultAppConfig(),
		Keys:    keys.DefaultKeyMap(),
		Tick:    clock.Tick,
		Mailbox: &notice.Set{},
		Width:   100,
		Height:  30,
	}
}

// Run executes cmd and every command batched inside it, returning the
// messages they produce in order.
func Run(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, Run(c)...)
		}
		return out
	}
	if msg == nil {
		return nil
	}
	return []tea.Msg{msg}
}

// Updater is the part of a view Pump needs.
type Updater interface {
	Update(msg tea.Msg) tea.Cmd
}

// Pump feeds msgs to v, then keeps feeding back the messages its commands
// produce until none are left. Messages matching skip are returned instead
// of being delivered, which lets a test stop at navigation or ticks.
func Pump(v Updater, skip func(tea.Msg) bool, msgs ...tea.Msg) []tea.Msg {
	var held []tea.Msg
	queue := append([]tea.Msg(nil), msgs...)
	for steps := 0; len(queue) > 0; steps++ {
		if steps > 1000 {
			panic("uitest: message loop does not settle")
		}
		msg := queue[0]
		queue = queue[1:]
		if skip != nil && skip(msg) {
			held = append(held, msg)
			continue
		}
		queue = append(queue, Run(v.Update(msg))...)
	}
	return held
}

// Key builds a key message from its string form, e.g. "d", "enter",
// "ctrl+s".
func Key(s string) tea.KeyMsg {
	if t, ok := special[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

var special = map[string]tea.KeyType{
	"enter":     tea.KeyEnter,
	"esc":       tea.KeyEsc,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"backspace": tea.KeyBackspace,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"left":      tea.KeyLeft,
	"right":     tea.KeyRight,
	"pgup":      tea.KeyPgUp,
	"pgdown":    tea.KeyPgDown,
	"ctrl+a":    tea.KeyCtrlA,
	"ctrl+r":    tea.KeyCtrlR,
	"ctrl+s":    tea.KeyCtrlS,
	"ctrl+c":    tea.KeyCtrlC,
}

// Type returns one key message per rune of s.
func Type(s string) []tea.Msg {
	msgs := make([]tea.Msg, 0, len(s))
	for _, r := range s {
		msgs = append(msgs, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
	return msgs
}

// DeleteCall records one delete request.
type DeleteCall struct {
	MIID   int64
	Thread bool
}

// API is a scriptable api.Service. Unset funcs fail with an error so a
// test notices unexpected calls.
type API struct {
	InboxFunc         func(api.InboxQuery) (*model.InboxPage, error)
	ThreadFunc        func(miid int64) (*model.Thread, error)
	NotificationsFunc func(page, perPage int) (*model.NotificationPage, error)
	ReplyInfoFunc     func(miid int64) (*model.ReplyInfo, error)
	SearchFunc        func(model.SearchRequest) (*model.SearchResult, error)
	SendFunc          func(model.OutgoingMessage) (string, error)
	DeleteFunc        func(miid int64, thread bool) (string, error)
	MarkReadFunc      func(id int64) error
	UnreadFunc        func(notifications bool) (int, error)

	InboxCalls    []api.InboxQuery
	ThreadCalls   []int64
	NotifCalls    []int
	SearchCalls   []model.SearchRequest
	Sent          []model.OutgoingMessage
	Deletes       []DeleteCall
	MarkReadCalls []int64
	UnreadCalls   []bool
}

var _ api.Service = (*API)(nil)

func unexpected(call string) error {
	return fmt.Errorf("uitest: unexpected %s call", call)
}

func (a *API) Inbox(_ context.Context, q api.InboxQuery) (*model.InboxPage, error) {
	a.InboxCalls = append(a.InboxCalls, q)
	if a.InboxFunc == nil {
		return nil, unexpected("Inbox")
	}
	return a.InboxFunc(q)
}

func (a *API) Thread(_ context.Context, miid int64) (*model.Thread, error) {
	a.ThreadCalls = append(a.ThreadCalls, miid)
	if a.ThreadFunc == nil {
		return nil, unexpected("Thread")
	}
	return a.ThreadFunc(miid)
}

func (a *API) Notifications(_ context.Context, page, perPage int) (*model.NotificationPage, error) {
	a.NotifCalls = append(a.NotifCalls, page)
	if a.NotificationsFunc == nil {
		return nil, unexpected("Notifications")
	}
	return a.NotificationsFunc(page, perPage)
}

func (a *API) ReplyInfo(_ context.Context, miid int64) (*model.ReplyInfo, error) {
	if a.ReplyInfoFunc == nil {
		return nil, unexpected("ReplyInfo")
	}
	return a.ReplyInfoFunc(miid)
}

func (a *API) SearchRecipients(_ context.Context, req model.SearchRequest) (*model.SearchResult, error) {
	a.SearchCalls = append(a.SearchCalls, req)
	if a.SearchFunc == nil {
		return nil, unexpected("SearchRecipients")
	}
	return a.SearchFunc(req)
}

func (a *API) SendMessage(_ context.Context, msg model.OutgoingMessage) (string, error) {
	a.Sent = append(a.Sent, msg)
	if a.SendFunc == nil {
		return "", unexpected("SendMessage")
	}
	return a.SendFunc(msg)
}

func (a *API) DeleteMessageItem(_ context.Context, miid int64, thread bool) (string, error) {
	a.Deletes = append(a.Deletes, DeleteCall{MIID: miid, Thread: thread})
	if a.DeleteFunc == nil {
		return "", unexpected("DeleteMessageItem")
	}
	return a.DeleteFunc(miid, thread)
}

func (a *API) MarkNotificationRead(_ context.Context, id int64) error {
	a.MarkReadCalls = append(a.MarkReadCalls, id)
	if a.MarkReadFunc == nil {
		return unexpected("MarkNotificationRead")
	}
	return a.MarkReadFunc(id)
}

func (a *API) UnreadCount(_ context.Context, notifications bool) (int, error) {
	a.UnreadCalls = append(a.UnreadCalls, notifications)
	if a.UnreadFunc == nil {
		return 0, unexpected("UnreadCount")
	}
	return a.UnreadFunc(notifications)
}
