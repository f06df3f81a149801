package app

import (
	"log"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/router"
)

// executeCommand handles a command string from the command palette.
func (m *Model) executeCommand(line string) tea.Cmd {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	name, args := fields[0], fields[1:]

	switch name {
	case "inbox", "home":
		return m.navigate(router.Home)
	case "notifications", "notes":
		return m.navigate("/notifications")
	case "compose", "new":
		return m.navigate("/compose")
	case "read", "reply":
		if len(args) != 1 {
			break
		}
		// Malformed ids fall through to the router, which redirects home.
		return m.navigate("/" + name + "/" + args[0])
	case "refresh":
		return tea.Batch(m.view.Update(tea.KeyMsg{Type: tea.KeyCtrlR}), m.fetchUnread())
	case "sort":
		if len(args) != 1 || (args[0] != model.SortByDate && args[0] != model.SortBySender) {
			break
		}
		m.sort.Choose(args[0])
		return m.navigate(router.Home)
	case "help":
		m.openHelp()
		return nil
	case "quit", "q":
		return m.quit()
	}

	log.Printf("unknown command %q", line)
	m.statusMessage = "Unknown command: " + line
	return nil
}
