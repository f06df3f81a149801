// Package help is the "?" overlay listing the keys of the active view and
// the global ones.
package help

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/keys"
	"github.com/nhle/mailterm/internal/theme"
)

// Model is the help overlay view.
type Model struct {
	keys   *keys.KeyMap
	help   help.Model
	title  string
	view   []key.Binding
	width  int
	height int
}

// New creates a new help view model.
func New(keys *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.Width = width
	h.ShowAll = true
	return Model{
		keys:   keys,
		help:   h,
		width:  width,
		height: height,
	}
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the help view.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// SetView records the active view's name and keys.
func (m *Model) SetView(title string, bindings []key.Binding) {
	m.title = title
	m.view = bindings
}

// ShortHelp implements help.KeyMap.
func (m Model) ShortHelp() []key.Binding {
	return m.view
}

// FullHelp implements help.KeyMap: the view's keys first, then the global
// groups.
func (m Model) FullHelp() [][]key.Binding {
	groups := [][]key.Binding{}
	if len(m.view) > 0 {
		groups = append(groups, m.view)
	}
	return append(groups, m.keys.FullHelp()...)
}

// View renders the help overlay.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	heading := "Keyboard Shortcuts"
	if m.title != "" {
		heading += " · " + m.title
	}
	title := titleStyle.Render(heading)

	m.help.Width = m.width - 4
	helpText := m.help.View(m)

	content := lipgloss.JoinVertical(lipgloss.Left, title, helpText)

	return theme.DetailPanelStyle.
		Width(m.width - 4).
		Height(m.height - 4).
		Render(content)
}

// SetSize updates the help view dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = width - 4
}
