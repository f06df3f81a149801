// Package confirm gates destructive actions behind a confirmation modal.
//
// The modal resolves to an explicit Intent. The owning view closes the modal
// and dispatches the HiddenMsg returned by Flow.Resolve, so the action runs in
// the event-loop turn after the modal is gone. Flow.Hidden then reads and
// clears the pending target; a second confirmation without a new Open finds
// nothing to commit.
package confirm

import tea "github.com/charmbracelet/bubbletea"

// Intent is the user's answer to the modal.
type Intent int

const (
	Cancel Intent = iota
	Confirm
)

func (i Intent) String() string {
	if i == Confirm {
		return "confirm"
	}
	return "cancel"
}

// Target is the item awaiting confirmation.
type Target struct {
	ID int64
	// Thread deletes every message of the thread the item belongs to.
	Thread bool
}

// State is the phase of a Flow.
type State int

const (
	Closed State = iota
	Open
	Closing
)

// Kind classifies the outcome of a hidden modal.
type Kind int

const (
	Noop Kind = iota
	Cancelled
	Commit
)

// Outcome tells the owning view what to do once the modal is gone.
type Outcome struct {
	Kind   Kind
	Target Target
}

// HiddenMsg reports that the modal has been dismissed with Intent.
type HiddenMsg struct {
	Intent Intent
}

// Flow holds the pending delete target of one view.
type Flow struct {
	state   State
	pending *Target
}

// State returns the current phase.
func (f *Flow) State() State {
	return f.state
}

// Active reports whether the modal is showing or closing.
func (f *Flow) Active() bool {
	return f.state != Closed
}

// Pending returns the recorded target, if any.
func (f *Flow) Pending() (Target, bool) {
	if f.pending == nil {
		return Target{}, false
	}
	return *f.pending, true
}

// Open records t as the pending target. The caller pauses its poll loop and
// shows the modal.
func (f *Flow) Open(t Target) {
	f.pending = &t
	f.state = Open
}

// Resolve starts closing the modal and returns the command that delivers
// the HiddenMsg in a later turn.
func (f *Flow) Resolve(intent Intent) tea.Cmd {
	if f.state != Open {
		return nil
	}
	f.state = Closing
	return func() tea.Msg {
		return HiddenMsg{Intent: intent}
	}
}

// Hidden finishes the flow. Confirm takes the pending target, which is
// cleared so a repeated confirmation is a Noop. Cancel drops it.
func (f *Flow) Hidden(intent Intent) Outcome {
	if f.state == Closed {
		return Outcome{Kind: Noop}
	}
	f.state = Closed

	target := f.pending
	f.pending = nil

	if intent == Cancel {
		return Outcome{Kind: Cancelled}
	}
	if target == nil {
		return Outcome{Kind: Noop}
	}
	return Outcome{Kind: Commit, Target: *target}
}
