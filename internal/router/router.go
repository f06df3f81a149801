// Package router maps navigation paths to views.
package router

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

// View identifies a routed screen.
type View int

const (
	Inbox View = iota
	Compose
	Reply
	Read
	Notifications
)

func (v View) String() string {
	switch v {
	case Inbox:
		return "inbox"
	case Compose:
		return "compose"
	case Reply:
		return "reply"
	case Read:
		return "read"
	case Notifications:
		return "notifications"
	default:
		return "unknown"
	}
}

// Route is a resolved path.
type Route struct {
	View View
	// ID is the message item id for Reply and Read.
	ID   int64
	Path string
}

// Home is the inbox path. Unknown paths resolve to it.
const Home = "/"

// Match resolves path. Paths that name no view, or carry a malformed id,
// resolve to the inbox.
func Match(path string) Route {
	clean := "/" + strings.Trim(path, "/")

	switch clean {
	case "/compose":
		return Route{View: Compose, Path: clean}
	case "/notifications":
		return Route{View: Notifications, Path: clean}
	}

	for prefix, view := range map[string]View{"/reply/": Reply, "/read/": Read} {
		rest, ok := strings.CutPrefix(clean, prefix)
		if !ok {
			continue
		}
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			break
		}
		return Route{View: view, ID: id, Path: clean}
	}

	return Route{View: Inbox, Path: Home}
}

// ReadPath returns the thread path of a message item.
func ReadPath(id int64) string {
	return fmt.Sprintf("/read/%d", id)
}

// ReplyPath returns the reply path of a message item.
func ReplyPath(id int64) string {
	return fmt.Sprintf("/reply/%d", id)
}

// NavigateMsg asks the root model to switch to Path.
type NavigateMsg struct {
	Path string
}

// Navigate returns a command that emits a NavigateMsg.
func Navigate(path string) tea.Cmd {
	return func() tea.Msg {
		return NavigateMsg{Path: path}
	}
}
