package adapter

import (
	"fmt"
	"testing"

	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/pkg/dateutil"
)

type fakeSurface struct {
	size   layout.Size
	offset float64
	sets   int
}

func (s *fakeSurface) Viewport() layout.Size { return s.size }
func (s *fakeSurface) ContentOffset() float64 { return s.offset }
func (s *fakeSurface) SetContentOffset(x float64, animated bool) {
	s.offset = x
	s.sets++
}

type fakeCommitter struct {
	state  *fakeState
	events []string
}

func (c *fakeCommitter) BeginTransition(t Transition) {
	c.events = append(c.events, fmt.Sprintf("begin %s->%s", t.From, t.TargetMonth))
}

func (c *fakeCommitter) CommitTransition(t Transition) {
	c.state.focus = t.TargetMonth
	c.events = append(c.events, fmt.Sprintf("commit %s", t.TargetMonth))
}

func (c *fakeCommitter) EndTransition(t Transition) {
	c.events = append(c.events, fmt.Sprintf("end %s->%s", t.From, t.TargetMonth))
}

func newPager(focus dateutil.Month, r calendar.MonthRange, offset float64) (*Pager, *fakeSurface, *fakeCommitter, *fakeState) {
	source, state := newSource(focus, r)
	committer := &fakeCommitter{state: state}
	surface := &fakeSurface{size: layout.Size{Width: 390, Height: 320}, offset: offset}
	p := NewPager(source, committer, nil)
	p.Attach(surface)
	return p, surface, committer, state
}

func assertEvents(t *testing.T, got []string, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("events[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPager_UnboundedForward(t *testing.T) {
	p, surface, committer, state := newPager(month(2022, 9), calendar.Unbounded(), 390)

	adjusted := p.DragEnded(700)
	if adjusted != 780 {
		t.Errorf("DragEnded(700) = %g, want 780", adjusted)
	}
	if p.State() != Pending {
		t.Fatalf("State() = %v, want pending", p.State())
	}
	if tr, ok := p.PendingTransition(); !ok || tr.TargetPage != 2 || tr.TargetMonth.String() != "2022-10" {
		t.Errorf("PendingTransition() = %+v, %v", tr, ok)
	}
	assertEvents(t, committer.events, "begin 2022-09->2022-10")
	if !state.focus.Equal(month(2022, 9)) {
		t.Errorf("focus changed before deceleration ended")
	}

	surface.offset = adjusted
	p.DecelerationEnded()

	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	assertEvents(t, committer.events, "begin 2022-09->2022-10", "commit 2022-10", "end 2022-09->2022-10")
	if surface.offset != 390 {
		t.Errorf("offset after re-centring = %g, want 390", surface.offset)
	}
}

func TestPager_UnboundedBackward(t *testing.T) {
	p, surface, committer, _ := newPager(month(2022, 9), calendar.Unbounded(), 390)

	surface.offset = p.DragEnded(-40)
	p.DecelerationEnded()

	assertEvents(t, committer.events, "begin 2022-09->2022-08", "commit 2022-08", "end 2022-09->2022-08")
	if surface.offset != 390 {
		t.Errorf("offset after re-centring = %g, want 390", surface.offset)
	}
}

func TestPager_SamePage(t *testing.T) {
	p, surface, committer, _ := newPager(month(2022, 9), calendar.Unbounded(), 390)

	if got := p.DragEnded(420); got != 390 {
		t.Errorf("DragEnded(420) = %g, want 390", got)
	}
	p.DecelerationEnded()

	if p.State() != Idle || len(committer.events) != 0 || surface.sets != 0 {
		t.Errorf("drag back to the focus page must not transition: %v", committer.events)
	}
}

func TestPager_BoundedKeepsOffset(t *testing.T) {
	p, surface, committer, _ := newPager(month(2022, 9), calendar.Between(month(2022, 8), month(2022, 12)), 390)

	surface.offset = p.DragEnded(800)
	p.DecelerationEnded()

	assertEvents(t, committer.events, "begin 2022-09->2022-10", "commit 2022-10", "end 2022-09->2022-10")
	if surface.offset != 780 || surface.sets != 0 {
		t.Errorf("bounded range must not nudge: offset %g, %d sets", surface.offset, surface.sets)
	}
}

func TestPager_LowerBound(t *testing.T) {
	sep := month(2022, 9)
	p, surface, _, state := newPager(sep, calendar.From(sep), 0)

	surface.offset = p.DragEnded(390)
	p.DecelerationEnded()
	if !state.focus.Equal(sep.AddMonths(1)) || surface.offset != 390 {
		t.Fatalf("leaving the bound: focus %s, offset %g", state.focus, surface.offset)
	}

	surface.offset = p.DragEnded(780)
	p.DecelerationEnded()
	if !state.focus.Equal(sep.AddMonths(2)) || surface.offset != 390 {
		t.Errorf("moving on: focus %s, offset %g, want 2022-11 at 390", state.focus, surface.offset)
	}

	surface.offset = p.DragEnded(0)
	p.DecelerationEnded()
	surface.offset = p.DragEnded(0)
	p.DecelerationEnded()
	if !state.focus.Equal(sep) || surface.offset != 0 {
		t.Errorf("back to the bound: focus %s, offset %g, want 2022-09 at 0", state.focus, surface.offset)
	}
}

func TestPager_ClampsTarget(t *testing.T) {
	p, _, committer, _ := newPager(month(2022, 9), calendar.Unbounded(), 390)

	if got := p.DragEnded(-1000); got != 0 {
		t.Errorf("DragEnded(-1000) = %g, want 0", got)
	}
	p.Resolve()
	if got := p.DragEnded(5000); got != 780 {
		t.Errorf("DragEnded(5000) = %g, want 780", got)
	}
	if len(committer.events) != 4 {
		t.Errorf("events = %v", committer.events)
	}
}

func TestPager_NewDragResolvesPending(t *testing.T) {
	p, _, committer, state := newPager(month(2022, 9), calendar.Unbounded(), 390)

	p.DragEnded(780)
	p.DragBegan()

	if p.State() != Idle {
		t.Errorf("State() = %v, want idle", p.State())
	}
	if !state.focus.Equal(month(2022, 10)) {
		t.Errorf("focus = %s, want 2022-10", state.focus)
	}
	assertEvents(t, committer.events, "begin 2022-09->2022-10", "commit 2022-10", "end 2022-09->2022-10")

	p.DragBegan()
	if len(committer.events) != 3 {
		t.Errorf("DragBegan while idle must not emit: %v", committer.events)
	}
}

func TestPager_DragEndedResolvesPending(t *testing.T) {
	p, surface, committer, state := newPager(month(2022, 9), calendar.Unbounded(), 390)

	surface.offset = p.DragEnded(780)

	// The window moves under 2022-10 before the second target is snapped,
	// so 1170 on the old window is page 2 of the new one.
	if got := p.DragEnded(1170); got != 780 {
		t.Errorf("DragEnded(1170) = %g, want 780", got)
	}
	if !state.focus.Equal(month(2022, 10)) {
		t.Errorf("focus = %s, want 2022-10", state.focus)
	}
	assertEvents(t, committer.events,
		"begin 2022-09->2022-10", "commit 2022-10", "end 2022-09->2022-10",
		"begin 2022-10->2022-11")

	surface.offset = 780
	p.DecelerationEnded()
	if !state.focus.Equal(month(2022, 11)) || surface.offset != 390 {
		t.Errorf("focus %s at %g, want 2022-11 at 390", state.focus, surface.offset)
	}
}

func TestPager_PageWidth(t *testing.T) {
	p, surface, committer, _ := newPager(month(2022, 9), calendar.Unbounded(), 500)

	// The surface still reports 390 wide.
	p.SetPageWidth(500)
	if got := p.DragEnded(980); got != 1000 {
		t.Errorf("DragEnded(980) = %g, want 1000", got)
	}
	surface.offset = 1000
	p.DecelerationEnded()

	assertEvents(t, committer.events, "begin 2022-09->2022-10", "commit 2022-10", "end 2022-09->2022-10")
	if surface.offset != 500 {
		t.Errorf("offset after re-centring = %g, want 500", surface.offset)
	}
}
