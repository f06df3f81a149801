// Package timer provides cancellable one-shot timers for the Bubble Tea
// event loop.
//
// A Timer never fires more than once per Start. Start and Stop both bump the
// timer's generation tag, so a tick that is already in flight when the timer
// is restarted or stopped is recognised as stale on arrival and ignored.
package timer

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

var lastID int64

func nextID() int {
	return int(atomic.AddInt64(&lastID, 1))
}

// TickFunc schedules fn to run after d and delivers its result as a message.
// tea.Tick satisfies it; tests substitute a fake clock.
type TickFunc func(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd

// TickMsg is delivered when a timer's delay has elapsed. Pass it to Fired on
// the timer that produced it.
type TickMsg struct {
	ID  int
	tag int
}

// Timer is a single restartable delay.
type Timer struct {
	id      int
	tag     int
	delay   time.Duration
	tick    TickFunc
	pending bool
}

// New creates a stopped timer. A nil tick uses tea.Tick.
func New(delay time.Duration, tick TickFunc) *Timer {
	if tick == nil {
		tick = tea.Tick
	}
	return &Timer{
		id:    nextID(),
		delay: delay,
		tick:  tick,
	}
}

// ID returns the timer's process-unique id.
func (t *Timer) ID() int {
	return t.id
}

// Delay returns the configured delay.
func (t *Timer) Delay() time.Duration {
	return t.delay
}

// Pending reports whether a started timer has not yet fired or been stopped.
func (t *Timer) Pending() bool {
	return t.pending
}

// Start arms the timer, cancelling any previous arming first.
func (t *Timer) Start() tea.Cmd {
	t.tag++
	t.pending = true

	id, tag := t.id, t.tag
	return t.tick(t.delay, func(time.Time) tea.Msg {
		return TickMsg{ID: id, tag: tag}
	})
}

// Stop cancels the timer. Stopping a stopped timer is a no-op.
func (t *Timer) Stop() {
	if !t.pending {
		return
	}
	t.tag++
	t.pending = false
}

// Fired reports whether msg is the live tick of this timer, and if so marks
// the timer as no longer pending. Ticks from other timers, and stale ticks
// from an earlier arming, return false.
func (t *Timer) Fired(msg TickMsg) bool {
	if msg.ID != t.id || msg.tag != t.tag || !t.pending {
		return false
	}
	t.pending = false
	return true
}
