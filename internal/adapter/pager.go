package adapter

import (
	"math"

	"github.com/username/calendar-pager/pkg/dateutil"
	"go.uber.org/zap"
)

// PagerState is the state of the page transition machine.
type PagerState int

const (
	Idle PagerState = iota
	Pending
)

func (s PagerState) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Transition is a page change decided at the end of a drag.
type Transition struct {
	From        dateutil.Month
	TargetPage  int
	TargetMonth dateutil.Month
}

// Committer applies transitions. Begin runs when the target is known,
// Commit adopts the new focus month and End runs after the viewport is
// re-centred.
type Committer interface {
	BeginTransition(t Transition)
	CommitTransition(t Transition)
	EndTransition(t Transition)
}

// Pager turns the drag lifecycle of a surface into month transitions.
type Pager struct {
	source    *DataSource
	surface   Surface
	committer Committer
	logger    *zap.Logger

	width   float64
	pending *Transition
}

// NewPager creates an idle pager.
func NewPager(source *DataSource, committer Committer, logger *zap.Logger) *Pager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pager{source: source, committer: committer, logger: logger}
}

// Attach sets the surface whose offsets the pager reads and adjusts. The
// page width starts at the surface's viewport width.
func (p *Pager) Attach(surface Surface) {
	p.surface = surface
	p.width = surface.Viewport().Width
}

// SetPageWidth sets the width of one page, the viewport width the layout
// was built for. Offsets use it rather than the surface's viewport.
func (p *Pager) SetPageWidth(w float64) {
	p.width = w
}

// PageWidth returns the width offsets are computed with.
func (p *Pager) PageWidth() float64 { return p.width }

// State returns Idle or Pending.
func (p *Pager) State() PagerState {
	if p.pending != nil {
		return Pending
	}
	return Idle
}

// PendingTransition returns the transition awaiting deceleration.
func (p *Pager) PendingTransition() (Transition, bool) {
	if p.pending == nil {
		return Transition{}, false
	}
	return *p.pending, true
}

// DragBegan resolves a pending transition before the new drag is tracked.
func (p *Pager) DragBegan() {
	if p.pending != nil {
		p.logger.Debug("Drag began while a transition is pending, resolving it")
		p.Resolve()
	}
}

// DragEnded snaps the projected offset targetX to a page boundary and
// returns the adjusted target. When the page holds another month than the
// focus, the pager becomes Pending and the transition begins. A transition
// still pending from an earlier drag is resolved first and targetX is
// shifted along with the window.
func (p *Pager) DragEnded(targetX float64) float64 {
	if p.surface == nil {
		return targetX
	}
	if p.pending != nil {
		p.logger.Debug("Drag ended while a transition is pending, resolving it")
		before := p.surface.ContentOffset()
		p.Resolve()
		targetX += p.surface.ContentOffset() - before
	}
	width := p.width
	if width <= 0 {
		return targetX
	}

	page := int(math.Round(targetX / width))
	if page < 0 {
		page = 0
	}
	if n := p.source.SectionCount(); page >= n {
		page = n - 1
	}
	adjusted := float64(page) * width

	focus := p.source.state.FocusMonth()
	target := p.source.MonthForSection(page)
	if target.Equal(focus) {
		return adjusted
	}

	t := Transition{From: focus, TargetPage: page, TargetMonth: target}
	p.pending = &t
	p.logger.Debug("Page transition pending",
		zap.String("from", focus.String()),
		zap.String("to", target.String()),
		zap.Int("page", page))
	p.committer.BeginTransition(t)
	return adjusted
}

// DecelerationEnded resolves the pending transition, if any.
func (p *Pager) DecelerationEnded() {
	if p.pending != nil {
		p.Resolve()
	}
}

// Resolve commits the pending transition. When the window moved under the
// committed month, the offset is nudged so the same page stays on screen.
func (p *Pager) Resolve() {
	if p.pending == nil {
		return
	}
	t := *p.pending
	p.pending = nil

	p.committer.CommitTransition(t)

	if p.surface != nil {
		if page, ok := p.source.PageIndex(t.TargetMonth); ok && page != t.TargetPage {
			p.surface.SetContentOffset(p.surface.ContentOffset()+float64(page-t.TargetPage)*p.width, false)
		}
	}

	p.logger.Debug("Page transition resolved",
		zap.String("from", t.From.String()),
		zap.String("to", t.TargetMonth.String()))
	p.committer.EndTransition(t)
}
