package inbox

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/theme"
)

// Item wraps a model.MessageSummary so it can be used in a bubbles/list.
type Item struct {
	Summary model.MessageSummary
}

// FilterValue returns the string used for filtering.
func (i Item) FilterValue() string { return i.Summary.Subject }

// Delegate renders one inbox row.
type Delegate struct {
	ShowIDs bool
}

// Height returns the number of lines each item takes.
func (d Delegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d Delegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d Delegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single inbox row.
func (d Delegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(Item)
	if !ok {
		return
	}
	fmt.Fprint(w, renderRow(it.Summary, d.ShowIDs, index == m.Index()))
}

func renderRow(s model.MessageSummary, showIDs, selected bool) string {
	marker := " "
	if s.Unread > 0 {
		marker = "●"
	}

	subject := s.Subject
	if s.Count > 1 {
		subject = fmt.Sprintf("%s (%d)", subject, s.Count)
	}

	parts := []string{marker, fmt.Sprintf("%-20s", s.Sender), subject}
	if showIDs {
		parts = append(parts, theme.MutedStyle.Render(fmt.Sprintf("#%d", s.ID)))
	}
	parts = append(parts, theme.MutedStyle.Render(s.Sent))
	line := strings.Join(parts, " ")

	if s.Unread > 0 {
		line = theme.UnreadStyle.Render(line)
	}
	if selected {
		return theme.SelectedItemStyle.Render(line)
	}
	return theme.ListItemStyle.Render(line)
}
