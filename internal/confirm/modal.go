package confirm

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the yes/no form shown while a Flow is open.
type Modal struct {
	form   *huh.Form
	answer *bool
}

// NewModal builds a confirmation form. The affirmative button is labelled
// with action, e.g. "Delete".
func NewModal(title, description, action string, width int) *Modal {
	if width < 40 {
		width = 40
	}
	answer := new(bool)
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Description(description).
				Affirmative(action).
				Negative("Cancel").
				Value(answer),
		),
	).WithWidth(width).WithShowHelp(false)

	return &Modal{form: form, answer: answer}
}

// Init starts the form.
func (m *Modal) Init() tea.Cmd {
	return m.form.Init()
}

// Update forwards msg to the form. When the form finishes it reports the
// chosen Intent and done is true; aborting with esc counts as Cancel. The
// y and n keys answer without going through the form.
func (m *Modal) Update(msg tea.Msg) (cmd tea.Cmd, intent Intent, done bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		switch km.String() {
		case "y", "Y":
			return nil, Confirm, true
		case "n", "N", "esc":
			return nil, Cancel, true
		}
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		if *m.answer {
			return nil, Confirm, true
		}
		return nil, Cancel, true
	case huh.StateAborted:
		return nil, Cancel, true
	}
	return cmd, Cancel, false
}

// View renders the form.
func (m *Modal) View() string {
	return lipgloss.NewStyle().Padding(1, 2).Render(m.form.View())
}
