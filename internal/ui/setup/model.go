// Package setup is the first-run form that asks for the messaging server
// and an optional session token.
package setup

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/ui"
)

// DoneMsg reports the saved connection settings.
type DoneMsg struct {
	BaseURL string
	Token   string
}

// SaveFunc persists the settings, typically to the config file and the
// keyring.
type SaveFunc func(baseURL, token string) error

// Model is the setup form.
type Model struct {
	env    ui.Env
	save   SaveFunc
	form   *huh.Form
	alerts *ui.Alerts

	baseURL string
	token   string
	saved   bool

	width  int
	height int
}

// New creates the setup form, prefilled with the configured server.
func New(env ui.Env, save SaveFunc) *Model {
	m := &Model{
		env:     env,
		save:    save,
		alerts:  ui.NewAlerts(env.Drain()),
		baseURL: env.Config.Server.BaseURL,
		width:   env.Width,
		height:  env.Height,
	}
	m.form = m.buildForm()
	return m
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Server URL").
				Description("Root of the messaging API").
				Placeholder("https://example.com/messaging/api").
				Value(&m.baseURL).
				Validate(validateURL),
			huh.NewInput().
				Title("Session token").
				Description("Leave empty to connect without one").
				EchoMode(huh.EchoModePassword).
				Value(&m.token),
		),
	).WithWidth(max(m.width-8, 40)).WithShowHelp(false)
}

// Init starts the form.
func (m *Model) Init() tea.Cmd {
	return m.form.Init()
}

// Update forwards msg to the form and saves once it completes.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if m.saved {
		return nil
	}
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.submit(m.baseURL, m.token)
	case huh.StateAborted:
		return tea.Quit
	}
	return cmd
}

// submit saves the settings. On failure the form starts over with the
// error shown.
func (m *Model) submit(baseURL, token string) tea.Cmd {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	token = strings.TrimSpace(token)

	if err := m.save(baseURL, token); err != nil {
		m.alerts.Post(notice.Danger, err.Error())
		m.baseURL, m.token = baseURL, token
		m.form = m.buildForm()
		return m.form.Init()
	}
	m.saved = true
	return func() tea.Msg {
		return DoneMsg{BaseURL: baseURL, Token: token}
	}
}

// Alerts returns the banner showing save failures.
func (m *Model) Alerts() *ui.Alerts { return m.alerts }

// View renders the form.
func (m *Model) View() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1).
		Render("Connect to a messaging server")

	sections := []string{title}
	if a := m.alerts.View(m.width); a != "" {
		sections = append(sections, a)
	}
	sections = append(sections, m.form.View())
	return lipgloss.NewStyle().Padding(1, 2).Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.form = m.form.WithWidth(max(width-8, 40))
}

// Destroy is a no-op; the form owns no timers.
func (m *Model) Destroy() {}

// Title names the view in the header.
func (m *Model) Title() string { return "Setup" }

// KeyHints lists the keys shown in the status bar.
func (m *Model) KeyHints() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next field")),
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "save")),
		key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// CapturesInput is always true: every key edits the form.
func (m *Model) CapturesInput() bool { return true }

func validateURL(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("URL is required")
	}
	parsed, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("URL must start with http:// or https://")
	}
	if parsed.Host == "" {
		return fmt.Errorf("URL must include a host (e.g., https://example.com)")
	}
	return nil
}
