// Package poll drives the fetch-and-reschedule cycle of a polled view.
//
// A Loop does not perform requests itself. The owning model asks it for a
// Ticket when a fetch starts, runs the request as a tea.Cmd that returns a
// Result carrying the ticket, and hands the ticket back to Settle when the
// result arrives. Settle rejects results from superseded requests and from
// loops that were destroyed while the request was in flight.
package poll

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/mailterm/internal/timer"
)

// DefaultInterval is the delay between two fetches of a polled view.
const DefaultInterval = 10 * time.Second

// State is the phase of a Loop.
type State int

const (
	Idle State = iota
	Fetching
	Scheduled
	Destroyed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Scheduled:
		return "scheduled"
	case Destroyed:
		return "destroyed"
	default:
		return "unknown"
	}
}

// Ticket identifies one request issued by a Loop.
type Ticket struct {
	Loop int
	Seq  int
}

// Result is the message a fetch command returns.
type Result[T any] struct {
	Ticket Ticket
	Value  T
	Err    error
}

// Fetch wraps fn in a command that reports its outcome as a Result.
func Fetch[T any](ctx context.Context, ticket Ticket, fn func(context.Context) (T, error)) tea.Cmd {
	return func() tea.Msg {
		v, err := fn(ctx)
		return Result[T]{Ticket: ticket, Value: v, Err: err}
	}
}

// Loop holds the reschedule timer and request generation of one view.
type Loop struct {
	timer     *timer.Timer
	state     State
	seq       int
	emptySeen bool
}

// New creates an idle loop that reschedules after interval. A nil tick uses
// tea.Tick.
func New(interval time.Duration, tick timer.TickFunc) *Loop {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Loop{timer: timer.New(interval, tick)}
}

// State returns the current phase.
func (l *Loop) State() State {
	return l.state
}

// ID returns the process-unique id of the loop. Views use it to tag
// messages of their own commands.
func (l *Loop) ID() int {
	return l.timer.ID()
}

// Interval returns the reschedule delay.
func (l *Loop) Interval() time.Duration {
	return l.timer.Delay()
}

// Begin cancels any pending reschedule and starts a new request. It returns
// false once the loop is destroyed.
func (l *Loop) Begin() (Ticket, bool) {
	if l.state == Destroyed {
		return Ticket{}, false
	}
	l.timer.Stop()
	l.seq++
	l.state = Fetching
	return Ticket{Loop: l.timer.ID(), Seq: l.seq}, true
}

// Settle reports whether the result for t should be applied. Results of
// superseded requests and results arriving after Destroy are rejected.
func (l *Loop) Settle(t Ticket) bool {
	if l.state == Destroyed || t.Loop != l.timer.ID() || t.Seq != l.seq {
		return false
	}
	if l.state == Fetching {
		l.state = Idle
	}
	return true
}

// FirstEmpty reports true the first time it is called with a zero total and
// false on every call after that.
func (l *Loop) FirstEmpty(total int) bool {
	if total != 0 || l.emptySeen {
		return false
	}
	l.emptySeen = true
	return true
}

// Schedule arms the reschedule timer, replacing any pending one.
func (l *Loop) Schedule() tea.Cmd {
	if l.state == Destroyed {
		return nil
	}
	l.state = Scheduled
	return l.timer.Start()
}

// Tick reports whether msg is this loop's live reschedule tick. The caller
// starts a new fetch when it is.
func (l *Loop) Tick(msg timer.TickMsg) bool {
	if l.state == Destroyed || !l.timer.Fired(msg) {
		return false
	}
	l.state = Idle
	return true
}

// Pause cancels the pending reschedule without destroying the loop.
func (l *Loop) Pause() {
	l.timer.Stop()
	if l.state == Scheduled {
		l.state = Idle
	}
}

// Destroy cancels the pending reschedule. No further request is started and
// in-flight results are rejected.
func (l *Loop) Destroy() {
	l.timer.Stop()
	l.state = Destroyed
}
