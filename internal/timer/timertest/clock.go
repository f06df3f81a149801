// Package timertest provides a deterministic clock for timer-driven models.
package timertest

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type entry struct {
	due time.Duration
	seq int
	fn  func(time.Time) tea.Msg
}

// Clock is a fake time source. Its Tick method records scheduled callbacks
// instead of sleeping; Advance moves simulated time forward and returns the
// messages that came due, in the order they would have fired.
type Clock struct {
	now     time.Duration
	seq     int
	pending []entry
}

// New returns a clock at simulated time zero.
func New() *Clock {
	return &Clock{}
}

// Tick satisfies timer.TickFunc. The returned command is nil: delivery
// happens through Advance.
func (c *Clock) Tick(d time.Duration, fn func(time.Time) tea.Msg) tea.Cmd {
	c.seq++
	c.pending = append(c.pending, entry{due: c.now + d, seq: c.seq, fn: fn})
	return nil
}

// Now returns the elapsed simulated time.
func (c *Clock) Now() time.Duration {
	return c.now
}

// Scheduled returns the number of callbacks that have not come due yet.
// Callbacks of stopped timers still count; their ticks are discarded by the
// timer on delivery.
func (c *Clock) Scheduled() int {
	return len(c.pending)
}

// Advance moves the clock forward by d and returns the due messages.
func (c *Clock) Advance(d time.Duration) []tea.Msg {
	c.now += d

	var due, rest []entry
	for _, e := range c.pending {
		if e.due <= c.now {
			due = append(due, e)
		} else {
			rest = append(rest, e)
		}
	}
	c.pending = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due != due[j].due {
			return due[i].due < due[j].due
		}
		return due[i].seq < due[j].seq
	})

	msgs := make([]tea.Msg, 0, len(due))
	for _, e := range due {
		msgs = append(msgs, e.fn(time.Unix(0, 0).Add(e.due)))
	}
	return msgs
}
