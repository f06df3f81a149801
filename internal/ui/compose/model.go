// Package compose is the message form at "/compose" and "/reply/:id".
package compose

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/mailterm/internal/api"
	"github.com/nhle/mailterm/internal/markup"
	"github.com/nhle/mailterm/internal/model"
	"github.com/nhle/mailterm/internal/notice"
	"github.com/nhle/mailterm/internal/router"
	"github.com/nhle/mailterm/internal/search"
	"github.com/nhle/mailterm/internal/theme"
	"github.com/nhle/mailterm/internal/timer"
	"github.com/nhle/mailterm/internal/ui"
)

// field is the focused part of the form.
type field int

const (
	fieldTo field = iota
	fieldChips
	fieldSubject
	fieldBody
	fieldCount
)

// errNoRecipients is shown when sending without anyone to send to.
const errNoRecipients = "Add at least one recipient"

type replyInfoMsg struct {
	owner int
	info  *model.ReplyInfo
	err   error
}

type sentMsg struct {
	owner int
	text  string
	err   error
}

// instances numbers compose views so results of a closed form are not
// applied to the next one.
var instances int64

// Model is the compose and reply form.
type Model struct {
	env    ui.Env
	api    api.Composer
	owner  int
	miid   int64
	search *search.Controller
	alerts *ui.Alerts

	to      textinput.Model
	subject textinput.Model
	body    textarea.Model
	spinner spinner.Model

	focus     field
	candidate int
	chip      int
	spinning  bool
	sending   bool
	destroyed bool

	// replyTo and replyBody quote the message being answered.
	replyTo   string
	replyBody string

	width  int
	height int
}

// New creates the form. A non-zero miid makes it a reply to that message
// item.
func New(env ui.Env, svc api.Composer, miid int64) *Model {
	owner := int(atomic.AddInt64(&instances, 1))

	to := textinput.New()
	to.Prompt = "> "
	to.Placeholder = fmt.Sprintf("search recipients (%d+ characters)", env.Config.Messaging.MinSearchChars)
	to.Cursor.SetMode(cursor.CursorStatic)

	subject := textinput.New()
	subject.Prompt = ""
	subject.Placeholder = "subject"
	subject.CharLimit = 255
	subject.Cursor.SetMode(cursor.CursorStatic)

	body := textarea.New()
	body.Placeholder = "write your message..."
	body.ShowLineNumbers = false
	body.CharLimit = 0
	body.Cursor.SetMode(cursor.CursorStatic)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.ColorBlue)

	m := &Model{
		env:   env,
		api:   svc,
		owner: owner,
		miid:  miid,
		search: search.New(env.Ctx, svc, search.Options{
			Debounce: env.Config.SearchDebounce(),
			MinChars: env.Config.Messaging.MinSearchChars,
			Tick:     env.Tick,
		}),
		alerts:  ui.NewAlerts(env.Drain()),
		to:      to,
		subject: subject,
		body:    body,
		spinner: sp,
	}
	m.setFocus(fieldTo)
	m.SetSize(env.Width, env.Height)
	return m
}

// Init loads the reply prefill when replying.
func (m *Model) Init() tea.Cmd {
	if m.miid == 0 {
		return nil
	}
	ctx, svc, owner, miid := m.env.Ctx, m.api, m.owner, m.miid
	return func() tea.Msg {
		info, err := svc.ReplyInfo(ctx, miid)
		return replyInfoMsg{owner: owner, info: info, err: err}
	}
}

// Update handles messages for the form.
func (m *Model) Update(msg tea.Msg) tea.Cmd {
	if m.destroyed {
		return nil
	}

	switch msg := msg.(type) {
	case replyInfoMsg:
		if msg.owner != m.owner {
			return nil
		}
		return m.applyReplyInfo(msg)

	case sentMsg:
		if msg.owner != m.owner {
			return nil
		}
		return m.applySent(msg)

	case timer.TickMsg:
		cmd, ok := m.search.Tick(msg)
		if !ok {
			return nil
		}
		return m.withSpinner(cmd)

	case search.ResultMsg:
		cmd, err := m.search.Apply(msg)
		if err != nil {
			m.alerts.Post(notice.Danger, err.Error())
		}
		m.clampCursors()
		return m.withSpinner(cmd)

	case spinner.TickMsg:
		if !m.search.Searching() {
			m.spinning = false
			return nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return cmd

	case tea.KeyMsg:
		return m.handleKeys(msg)
	}
	return nil
}

func (m *Model) applyReplyInfo(msg replyInfoMsg) tea.Cmd {
	if msg.err != nil {
		m.env.HandoffError(msg.err)
		return router.Navigate(router.ReadPath(m.miid))
	}
	info := msg.info
	if info == nil {
		info = &model.ReplyInfo{}
	}

	// The original sender comes first and stays selected.
	var locked string
	if len(info.Recipients) > 0 {
		locked = info.Recipients[0].ID
	}
	m.search.Prefill(info.Recipients, locked)
	m.subject.SetValue(info.Subject)
	m.replyTo = info.Sender
	m.replyBody = info.Body
	m.setFocus(fieldBody)
	return nil
}

func (m *Model) applySent(msg sentMsg) tea.Cmd {
	m.sending = false
	if msg.err != nil {
		m.env.HandoffError(msg.err)
		return router.Navigate(router.Home)
	}
	m.env.Handoff(notice.Success, msg.text)
	if m.miid != 0 {
		return router.Navigate(router.ReadPath(m.miid))
	}
	return router.Navigate(router.Home)
}

func (m *Model) handleKeys(msg tea.KeyMsg) tea.Cmd {
	k := m.env.Keys
	switch {
	case key.Matches(msg, k.Send):
		return m.send()
	case key.Matches(msg, k.TargetAll):
		m.toggleTargetAll()
		return nil
	case key.Matches(msg, k.Back):
		if m.miid != 0 {
			return router.Navigate(router.ReadPath(m.miid))
		}
		return router.Navigate(router.Home)
	case key.Matches(msg, k.NextField):
		m.setFocus((m.focus + 1) % fieldCount)
		return nil
	case key.Matches(msg, k.PrevField):
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return nil
	case key.Matches(msg, k.PrevResults):
		return m.withSpinner(m.search.PrevPage())
	case key.Matches(msg, k.NextResults):
		return m.withSpinner(m.search.NextPage())
	}

	switch m.focus {
	case fieldTo:
		return m.updateTo(msg)
	case fieldChips:
		return m.updateChips(msg)
	case fieldSubject:
		var cmd tea.Cmd
		m.subject, cmd = m.subject.Update(msg)
		return cmd
	case fieldBody:
		var cmd tea.Cmd
		m.body, cmd = m.body.Update(msg)
		return cmd
	}
	return nil
}

// updateTo handles the recipient query field. Arrow keys move through the
// candidates and enter selects one; everything else edits the query.
func (m *Model) updateTo(msg tea.KeyMsg) tea.Cmd {
	if m.search.TargetAll() {
		return nil
	}

	results := m.search.Results()
	switch msg.Type {
	case tea.KeyUp:
		if m.candidate > 0 {
			m.candidate--
		}
		return nil
	case tea.KeyDown:
		if m.candidate < len(results)-1 {
			m.candidate++
		}
		return nil
	case tea.KeyEnter:
		if m.candidate < len(results) {
			cmd := m.search.Select(results[m.candidate].ID)
			m.clampCursors()
			return m.withSpinner(cmd)
		}
		return nil
	}

	before := m.to.Value()
	var cmd tea.Cmd
	m.to, cmd = m.to.Update(msg)
	if m.to.Value() == before {
		return cmd
	}
	m.candidate = 0
	return tea.Batch(cmd, m.search.SetQuery(m.to.Value()))
}

// updateChips handles the selected recipients. Left and right move between
// them, backspace removes one.
func (m *Model) updateChips(msg tea.KeyMsg) tea.Cmd {
	sel := m.search.Selection()
	switch msg.Type {
	case tea.KeyLeft:
		if m.chip > 0 {
			m.chip--
		}
	case tea.KeyRight:
		if m.chip < len(sel)-1 {
			m.chip++
		}
	case tea.KeyBackspace, tea.KeyDelete:
		if m.chip < len(sel) {
			cmd := m.search.Remove(sel[m.chip].ID)
			m.clampCursors()
			return m.withSpinner(cmd)
		}
	}
	return nil
}

func (m *Model) toggleTargetAll() {
	if !m.env.Config.Messaging.IsSuperUser {
		return
	}
	on := !m.search.TargetAll()
	m.search.SetTargetAll(on)
	if on {
		m.to.Reset()
		m.clampCursors()
	}
}

func (m *Model) send() tea.Cmd {
	if m.sending {
		return nil
	}
	recipients := append([]model.Recipient{}, m.search.Selection()...)
	if len(recipients) == 0 && !m.search.TargetAll() {
		m.alerts.Post(notice.Warning, errNoRecipients)
		return nil
	}

	m.sending = true
	out := model.OutgoingMessage{
		Recipients: recipients,
		TargetAll:  m.search.TargetAll(),
		Subject:    strings.TrimSpace(m.subject.Value()),
		Body:       m.body.Value(),
		MIID:       m.miid,
	}
	ctx, svc, owner := m.env.Ctx, m.api, m.owner
	return func() tea.Msg {
		text, err := svc.SendMessage(ctx, out)
		return sentMsg{owner: owner, text: text, err: err}
	}
}

// withSpinner starts the spinner alongside a search request.
func (m *Model) withSpinner(cmd tea.Cmd) tea.Cmd {
	if cmd == nil || !m.search.Searching() || m.spinning {
		return cmd
	}
	m.spinning = true
	return tea.Batch(cmd, m.spinner.Tick)
}

func (m *Model) clampCursors() {
	if n := len(m.search.Results()); m.candidate >= n {
		m.candidate = max(n-1, 0)
	}
	if n := len(m.search.Selection()); m.chip >= n {
		m.chip = max(n-1, 0)
	}
}

func (m *Model) setFocus(f field) {
	m.focus = f
	m.to.Blur()
	m.subject.Blur()
	m.body.Blur()
	switch f {
	case fieldTo:
		m.to.Focus()
	case fieldSubject:
		m.subject.Focus()
	case fieldBody:
		m.body.Focus()
	}
}

// Search returns the recipient search state.
func (m *Model) Search() *search.Controller { return m.search }

// Alerts returns the view's alert banner.
func (m *Model) Alerts() *ui.Alerts { return m.alerts }

// Subject returns the subject field value.
func (m *Model) Subject() string { return m.subject.Value() }

// IsReply reports whether the form answers an existing message.
func (m *Model) IsReply() bool { return m.miid != 0 }

// View renders the form.
func (m *Model) View() string {
	sections := []string{}
	if a := m.alerts.View(m.width); a != "" {
		sections = append(sections, a)
	}

	sections = append(sections, m.label("To", fieldTo, fieldChips), m.renderRecipients())
	if !m.search.TargetAll() {
		sections = append(sections, m.renderQuery())
		if c := m.renderCandidates(); c != "" {
			sections = append(sections, c)
		}
	}
	sections = append(sections,
		m.label("Subject", fieldSubject),
		m.subject.View(),
		m.label("Message", fieldBody),
		m.body.View(),
	)
	if m.replyTo != "" {
		sections = append(sections, m.renderQuoted())
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) label(text string, fields ...field) string {
	style := lipgloss.NewStyle().Bold(true).Foreground(theme.ColorGray)
	for _, f := range fields {
		if m.focus == f {
			style = style.Foreground(theme.ColorBlue)
		}
	}
	return style.Render(text)
}

func (m *Model) renderRecipients() string {
	if m.search.TargetAll() {
		return theme.ChipStyle(true).Render("Everyone")
	}
	sel := m.search.Selection()
	if len(sel) == 0 {
		return theme.MutedStyle.Render("no recipients yet")
	}
	chips := make([]string, len(sel))
	for i, r := range sel {
		text := r.Name
		if m.focus == fieldChips && i == m.chip {
			text = "▸ " + text
		}
		chips[i] = theme.ChipStyle(m.search.IsLocked(r.ID)).Render(text)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func (m *Model) renderQuery() string {
	status := ""
	switch {
	case m.search.Searching():
		status = m.spinner.View() + " searching"
	case m.search.Count() > 0:
		status = theme.MutedStyle.Render(fmt.Sprintf("%d matches", m.search.Count()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, m.to.View(), " ", status)
}

func (m *Model) renderCandidates() string {
	results := m.search.Results()
	if len(results) == 0 {
		return ""
	}
	lines := make([]string, 0, len(results)+1)
	for i, r := range results {
		line := fmt.Sprintf("%s %s", r.Name, theme.MutedStyle.Render("("+r.Type+")"))
		if i == m.candidate && m.focus == fieldTo {
			lines = append(lines, theme.SelectedItemStyle.Render(line))
		} else {
			lines = append(lines, theme.ListItemStyle.Render(line))
		}
	}
	if p := ui.RenderPager(m.search.Pager()); p != "" {
		lines = append(lines, p)
	}
	return strings.Join(lines, "\n")
}

func (m *Model) renderQuoted() string {
	head := theme.MutedStyle.Render(m.replyTo + " wrote:")
	return theme.DetailPanelStyle.
		Width(max(m.width-4, 10)).
		Render(head + "\n" + markup.Quote(m.replyBody))
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.to.Width = max(width-30, 10)
	m.subject.Width = max(width-4, 10)
	m.body.SetWidth(max(width-2, 10))
	m.body.SetHeight(max(height/3, 3))
}

// Destroy cancels the pending search. Late results are ignored.
func (m *Model) Destroy() {
	m.destroyed = true
	m.search.Stop()
}

// Title names the view in the header.
func (m *Model) Title() string {
	if m.miid != 0 {
		return "Reply"
	}
	return "New message"
}

// KeyHints lists the keys shown in the status bar.
func (m *Model) KeyHints() []key.Binding {
	k := m.env.Keys
	hints := []key.Binding{k.Send, k.NextField, k.PrevField, k.NextResults, k.Back}
	if m.env.Config.Messaging.IsSuperUser {
		hints = append(hints, k.TargetAll)
	}
	return hints
}

// CapturesInput is always true: every printable key edits a field.
func (m *Model) CapturesInput() bool { return true }
