package app

import (
	"context"
	"log"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/poll"
	"github.com/nhle/mailterm/internal/ui"
)

const sessionExpired = "Session rejected by the server: run mailterm login"

// fetchUnread starts a count request, superseding any pending one.
func (m *Model) fetchUnread() tea.Cmd {
	if m.svc == nil {
		return nil
	}
	ticket, ok := m.unreadLoop.Begin()
	if !ok {
		return nil
	}
	svc := m.svc
	return poll.Fetch(m.ctx, ticket, func(ctx context.Context) (ui.Unread, error) {
		messages, err := svc.UnreadCount(ctx, false)
		if err != nil {
			return ui.Unread{}, err
		}
		notifications, err := svc.UnreadCount(ctx, true)
		if err != nil {
			return ui.Unread{}, err
		}
		return ui.Unread{Messages: messages, Notifications: notifications}, nil
	})
}

// applyUnread keeps the last good counters when a request fails. The
// header is decoration, so failures are only logged, except a rejected
// session which the user has to act on.
func (m *Model) applyUnread(msg unreadMsg) tea.Cmd {
	if !m.unreadLoop.Settle(msg.Ticket) {
		return nil
	}
	if msg.Err != nil {
		log.Printf("unread count: %v", msg.Err)
		if api.IsAuthError(msg.Err) {
			m.statusMessage = sessionExpired
		}
	} else {
		m.unread = msg.Value
	}
	return m.unreadLoop.Schedule()
}
