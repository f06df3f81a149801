package notifications

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/theme"
)

// Item wraps a model.Notification for the list.
type Item struct {
	Notification model.Notification
}

// FilterValue returns the string used for filtering.
func (i Item) FilterValue() string { return i.Notification.Subject }

type delegate struct {
	showIDs bool
}

func (d delegate) Height() int { return 1 }

func (d delegate) Spacing() int { return 0 }

func (d delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	n := it.Notification

	line := n.Subject
	if d.showIDs {
		line += theme.MutedStyle.Render(fmt.Sprintf(" #%d", n.ID))
	}
	line += " " + theme.MutedStyle.Render(n.Sent)

	if !n.Read {
		line = theme.UnreadStyle.Render("● " + line)
	} else {
		line = "  " + line
	}
	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}
	fmt.Fprint(w, line)
}
