package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/mailterm/internal/timer"
	"github.com/nhle/mailterm/internal/timer/timertest"
)

func ticks(t *testing.T, msgs []tea.Msg) []timer.TickMsg {
	t.Helper()
	out := make([]timer.TickMsg, 0, len(msgs))
	for _, m := range msgs {
		tick, ok := m.(timer.TickMsg)
		require.True(t, ok)
		out = append(out, tick)
	}
	return out
}

func TestLoopCycle(t *testing.T) {
	clock := timertest.New()
	l := New(DefaultInterval, clock.Tick)
	assert.Equal(t, Idle, l.State())

	ticket, ok := l.Begin()
	require.True(t, ok)
	assert.Equal(t, Fetching, l.State())

	assert.True(t, l.Settle(ticket))
	l.Schedule()
	assert.Equal(t, Scheduled, l.State())

	assert.Empty(t, clock.Advance(9*time.Second))
	fired := ticks(t, clock.Advance(time.Second))
	require.Len(t, fired, 1)
	assert.True(t, l.Tick(fired[0]))
}

func TestBeginCancelsPendingReschedule(t *testing.T) {
	clock := timertest.New()
	l := New(DefaultInterval, clock.Tick)

	ticket, _ := l.Begin()
	l.Settle(ticket)
	l.Schedule()

	// A page change forces an immediate fetch before the tick.
	clock.Advance(3 * time.Second)
	_, ok := l.Begin()
	require.True(t, ok)

	for _, tick := range ticks(t, clock.Advance(time.Minute)) {
		assert.False(t, l.Tick(tick), "stale tick must not start a fetch")
	}
}

func TestSettleRejectsSupersededResult(t *testing.T) {
	l := New(DefaultInterval, timertest.New().Tick)

	first, _ := l.Begin()
	second, _ := l.Begin()

	assert.False(t, l.Settle(first))
	assert.True(t, l.Settle(second))
}

func TestSettleRejectsOtherLoop(t *testing.T) {
	clock := timertest.New()
	a := New(DefaultInterval, clock.Tick)
	b := New(DefaultInterval, clock.Tick)

	ticket, _ := a.Begin()
	b.Begin()
	assert.False(t, b.Settle(ticket))
}

func TestDestroyWhileFetching(t *testing.T) {
	clock := timertest.New()
	l := New(DefaultInterval, clock.Tick)

	ticket, _ := l.Begin()
	l.Destroy()

	assert.False(t, l.Settle(ticket), "in-flight result after teardown is a no-op")
	_, ok := l.Begin()
	assert.False(t, ok)
	assert.Nil(t, l.Schedule())
	assert.Equal(t, Destroyed, l.State())
}

func TestDestroyCancelsTimer(t *testing.T) {
	clock := timertest.New()
	l := New(DefaultInterval, clock.Tick)

	ticket, _ := l.Begin()
	l.Settle(ticket)
	l.Schedule()
	l.Destroy()

	for _, tick := range ticks(t, clock.Advance(time.Hour)) {
		assert.False(t, l.Tick(tick))
	}
}

func TestPauseKeepsLoopAlive(t *testing.T) {
	clock := timertest.New()
	l := New(DefaultInterval, clock.Tick)

	ticket, _ := l.Begin()
	l.Settle(ticket)
	l.Schedule()
	l.Pause()
	assert.Equal(t, Idle, l.State())

	for _, tick := range ticks(t, clock.Advance(time.Minute)) {
		assert.False(t, l.Tick(tick))
	}

	l.Schedule()
	fired := ticks(t, clock.Advance(DefaultInterval))
	require.Len(t, fired, 1)
	assert.True(t, l.Tick(fired[0]))
}

func TestFirstEmptyOnce(t *testing.T) {
	l := New(DefaultInterval, nil)

	assert.False(t, l.FirstEmpty(4))
	assert.True(t, l.FirstEmpty(0))
	assert.False(t, l.FirstEmpty(0))
}

func TestFetchReportsResult(t *testing.T) {
	ticket := Ticket{Loop: 1, Seq: 2}
	cmd := Fetch(context.Background(), ticket, func(context.Context) (int, error) {
		return 7, nil
	})
	assert.Equal(t, Result[int]{Ticket: ticket, Value: 7}, cmd())

	boom := errors.New("boom")
	cmd = Fetch(context.Background(), ticket, func(context.Context) (int, error) {
		return 0, boom
	})
	res := cmd().(Result[int])
	assert.ErrorIs(t, res.Err, boom)
}

func TestZeroIntervalUsesDefault(t *testing.T) {
	assert.Equal(t, DefaultInterval, New(0, nil).Interval())
}
