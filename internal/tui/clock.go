package tui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/username/calendar-pager/internal/toast"
)

// timerFiredMsg delivers a loopClock callback to Update.
type timerFiredMsg struct {
	id int
}

// loopClock is a toast.Clock whose callbacks run inside Update. Each
// AfterFunc queues a tea.Tick; the model drains the queue into its
// returned command.
type loopClock struct {
	now     func() time.Time
	next    int
	timers  map[int]*loopTimer
	pending []tea.Cmd
}

type loopTimer struct {
	clock *loopClock
	id    int
	due   time.Time
	f     func()
}

func newLoopClock(now func() time.Time) *loopClock {
	if now == nil {
		now = time.Now
	}
	return &loopClock{now: now, timers: make(map[int]*loopTimer)}
}

func (c *loopClock) Now() time.Time { return c.now() }

func (c *loopClock) AfterFunc(d time.Duration, f func()) toast.Timer {
	c.next++
	t := &loopTimer{clock: c, id: c.next, due: c.now().Add(d), f: f}
	c.timers[t.id] = t
	id := t.id
	c.pending = append(c.pending, tea.Tick(d, func(time.Time) tea.Msg {
		return timerFiredMsg{id: id}
	}))
	return t
}

func (t *loopTimer) Stop() bool {
	if _, ok := t.clock.timers[t.id]; !ok {
		return false
	}
	delete(t.clock.timers, t.id)
	return true
}

// fire runs the callback of a timer that has not been stopped.
func (c *loopClock) fire(id int) {
	t, ok := c.timers[id]
	if !ok {
		return
	}
	delete(c.timers, id)
	t.f()
}

// drain returns the ticks queued since the last call.
func (c *loopClock) drain() tea.Cmd {
	if len(c.pending) == 0 {
		return nil
	}
	cmds := c.pending
	c.pending = nil
	return tea.Batch(cmds...)
}

// earliest returns the pending timer due first.
func (c *loopClock) earliest() (*loopTimer, bool) {
	var first *loopTimer
	for _, t := range c.timers {
		if first == nil || t.due.Before(first.due) || (t.due.Equal(first.due) && t.id < first.id) {
			first = t
		}
	}
	return first, first != nil
}
