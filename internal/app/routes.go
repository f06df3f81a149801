package app

import (
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/ui"
	"github.com/nhle/mailterm/internal/ui/compose"
	"github.com/nhle/mailterm/internal/ui/inbox"
	"github.com/nhle/mailterm/internal/ui/notifications"
	"github.com/nhle/mailterm/internal/ui/thread"
)

// build creates the view of r. It drains the mailbox, so notices handed off
// by the previous view show up in the new one.
func (m *Model) build(r router.Route) ui.View {
	env := m.env()
	switch r.View {
	case router.Read:
		return thread.New(env, m.svc, r.ID)
	case router.Reply:
		return compose.New(env, m.svc, r.ID)
	case router.Compose:
		return compose.New(env, m.svc, 0)
	case router.Notifications:
		return notifications.New(env, m.svc)
	default:
		return inbox.New(env, m.svc, m.sort)
	}
}
