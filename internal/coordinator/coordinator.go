// Package coordinator keeps the focus month, month range and display
// option of a paged month calendar in sync with its layout engine, data
// source and host surface.
package coordinator

import (
	"fmt"
	"time"

	"github.com/username/calendar-pager/internal/adapter"
	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/pkg/dateutil"
	"go.uber.org/zap"
)

// ViewProvider renders cells and, optionally, weekday headers.
type ViewProvider[C any] interface {
	Cell(ctx adapter.CellContext) C
	WeekdayHeader(w dateutil.Weekday) (string, bool)
}

// Delegate is told about month changes. WillChangeMonth always precedes
// the matching DidChangeMonth.
type Delegate interface {
	WillChangeMonth(old, next dateutil.Month)
	DidChangeMonth(old, next dateutil.Month)
}

// DelegateFuncs adapts two functions to Delegate. Nil funcs are skipped.
type DelegateFuncs struct {
	WillChange func(old, next dateutil.Month)
	DidChange  func(old, next dateutil.Month)
}

func (d DelegateFuncs) WillChangeMonth(old, next dateutil.Month) {
	if d.WillChange != nil {
		d.WillChange(old, next)
	}
}

func (d DelegateFuncs) DidChangeMonth(old, next dateutil.Month) {
	if d.DidChange != nil {
		d.DidChange(old, next)
	}
}

// Header is a weekday label with the column it sits above.
type Header struct {
	Weekday dateutil.Weekday
	Label   string
	Span    layout.Span
}

// Coordinator owns the calendar state. All methods must be called from the
// goroutine running the host's event loop.
type Coordinator[C any] struct {
	focus    dateutil.Month
	r        calendar.MonthRange
	option   calendar.DisplayOption
	provider ViewProvider[C]
	delegate Delegate
	host     adapter.Host[C]

	plans  *calendar.PlanCache
	engine *layout.Engine
	source *adapter.DataSource
	pager  *adapter.Pager

	selected []dateutil.Date
	logger   *zap.Logger
}

// New creates a coordinator showing initial. It panics when r is invalid
// or does not contain initial.
func New[C any](initial dateutil.Month, r calendar.MonthRange, provider ViewProvider[C], params layout.Params, logger *zap.Logger) *Coordinator[C] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := r.Validate(); err != nil {
		panic(fmt.Sprintf("coordinator: invalid month range: %v", err))
	}

	c := &Coordinator[C]{
		focus:    initial,
		provider: provider,
		plans:    calendar.NewPlanCache(),
		logger:   logger,
	}
	c.checkRange(r)
	c.r = r
	c.checkFocus(initial)

	c.engine = layout.NewEngine(params, c.plans, logger.Named("layout"))
	c.source = adapter.NewDataSource(c, c.plans)
	c.pager = adapter.NewPager(c.source, transitions[C]{c}, logger.Named("pager"))
	c.engine.InvalidateIfNeeded(c.context())
	return c
}

// Bind attaches the host surface, lays out the window and aligns the
// viewport on the focus month.
func (c *Coordinator[C]) Bind(host adapter.Host[C]) {
	c.host = host
	c.pager.Attach(host)
	c.engine.SetViewport(host.Viewport())
	c.engine.InvalidateIfNeeded(c.context())
	c.engine.Prepare()
	host.ReloadData()
	c.alignOffset(false)
}

// SetDelegate replaces the delegate; nil disables notifications.
func (c *Coordinator[C]) SetDelegate(d Delegate) {
	c.delegate = d
}

// Layout returns the geometry engine, for hosts that position cells and
// for observers of layout changes.
func (c *Coordinator[C]) Layout() *layout.Engine {
	return c.engine
}

// FocusMonth returns the current month.
func (c *Coordinator[C]) FocusMonth() dateutil.Month { return c.focus }

// MonthRange returns the navigable range.
func (c *Coordinator[C]) MonthRange() calendar.MonthRange { return c.r }

// DisplayOption returns the row policy.
func (c *Coordinator[C]) DisplayOption() calendar.DisplayOption { return c.option }

// Location returns the timezone every month and date must use.
func (c *Coordinator[C]) Location() *time.Location { return c.focus.Location() }

// SetFocusMonth moves to m without animation. It panics when m lies
// outside the range or uses another timezone.
func (c *Coordinator[C]) SetFocusMonth(m dateutil.Month) {
	c.checkFocus(m)
	c.pager.Resolve()
	c.setFocus(m)
	c.alignOffset(false)
}

// SetMonthRange replaces the range. A focus month outside the new range is
// clamped to the nearest bound. It panics on invalid bounds.
func (c *Coordinator[C]) SetMonthRange(r calendar.MonthRange) {
	if err := r.Validate(); err != nil {
		panic(fmt.Sprintf("coordinator: invalid month range: %v", err))
	}
	c.checkRange(r)
	c.pager.Resolve()

	c.r = r
	if clamped := r.Clamp(c.focus); !clamped.Equal(c.focus) {
		c.logger.Debug("Focus month clamped to range",
			zap.String("from", c.focus.String()),
			zap.String("to", clamped.String()),
			zap.String("range", r.String()))
		c.focus = clamped
	}
	c.refresh()
	c.alignOffset(false)
}

// SetDisplayOption switches between dynamic and fixed rows.
func (c *Coordinator[C]) SetDisplayOption(o calendar.DisplayOption) {
	c.option = o
	c.refresh()
	c.alignOffset(false)
}

// SetLayoutParams replaces the geometry parameters and relays out the
// window when they changed.
func (c *Coordinator[C]) SetLayoutParams(p layout.Params) {
	if p == c.engine.Params() {
		return
	}
	c.engine.SetParams(p)
	if c.host == nil {
		return
	}
	c.engine.PrepareIfNeeded()
	c.host.ReloadData()
	c.alignOffset(false)
}

// Scroll animates to m. It does nothing when m is the focus month or lies
// outside the range.
func (c *Coordinator[C]) Scroll(m dateutil.Month) {
	c.checkZone(m)
	c.pager.Resolve()
	if m.Equal(c.focus) || !c.r.Contains(m) {
		return
	}

	old := c.focus
	distance, err := old.MonthsUntil(m)
	if err != nil {
		panic(err)
	}
	c.willChange(old, m)
	c.setFocus(m)

	if c.host != nil {
		width := c.pager.PageWidth()
		target, _ := c.source.PageIndex(m)
		if !c.r.IsBounded() {
			start := target - distance
			if start < 0 {
				start = 0
			}
			if n := c.source.SectionCount(); start > n-1 {
				start = n - 1
			}
			c.host.SetContentOffset(float64(start)*width, false)
		}
		c.host.SetContentOffset(float64(target)*width, true)
	}

	c.logger.Debug("Scrolled to month",
		zap.String("from", old.String()),
		zap.String("to", m.String()),
		zap.Int("distance", distance))
	c.didChange(old, m)
}

// Cell returns the rendered cell for date when it is on screen.
func (c *Coordinator[C]) Cell(date dateutil.Date) (C, bool, error) {
	var zero C
	if err := c.checkDate(date); err != nil {
		return zero, false, err
	}
	if c.host == nil {
		return zero, false, nil
	}
	path, ok := c.source.VisibleIndexPath(date)
	if !ok {
		return zero, false, nil
	}
	cell, ok := c.host.VisibleCell(path)
	return cell, ok, nil
}

// Reload asks the host to reload every cell.
func (c *Coordinator[C]) Reload() {
	if c.host != nil {
		c.host.ReloadData()
	}
}

// ReloadDate asks the host to reload the cells showing date. Dates outside
// the window are ignored.
func (c *Coordinator[C]) ReloadDate(date dateutil.Date) error {
	if err := c.checkDate(date); err != nil {
		return err
	}
	paths := c.source.IndexPaths(date)
	if len(paths) == 0 || c.host == nil {
		return nil
	}
	c.host.ReloadItems(paths)
	return nil
}

// SelectedDates returns the selection in selection order.
func (c *Coordinator[C]) SelectedDates() []dateutil.Date {
	return append([]dateutil.Date(nil), c.selected...)
}

// IsSelected reports whether date is selected.
func (c *Coordinator[C]) IsSelected(date dateutil.Date) bool {
	return c.selectionIndex(date) >= 0
}

// ToggleSelection adds date to the selection or removes it, then reloads
// its cells.
func (c *Coordinator[C]) ToggleSelection(date dateutil.Date) error {
	if err := c.checkDate(date); err != nil {
		return err
	}
	if i := c.selectionIndex(date); i >= 0 {
		c.selected = append(c.selected[:i], c.selected[i+1:]...)
	} else {
		c.selected = append(c.selected, date)
	}
	return c.ReloadDate(date)
}

func (c *Coordinator[C]) selectionIndex(date dateutil.Date) int {
	for i, d := range c.selected {
		if d.Equal(date) {
			return i
		}
	}
	return -1
}

// WeekdayHeaders returns the labels the view provider supplies, each with
// the column it belongs to.
func (c *Coordinator[C]) WeekdayHeaders() []Header {
	spans := c.engine.WeekdaySpans()
	var headers []Header
	for i, w := range dateutil.AllWeekdays() {
		label, ok := c.provider.WeekdayHeader(w)
		if !ok {
			continue
		}
		h := Header{Weekday: w, Label: label}
		if i < len(spans) {
			h.Span = spans[i]
		}
		headers = append(headers, h)
	}
	return headers
}

// SectionCount returns the number of pages for the host.
func (c *Coordinator[C]) SectionCount() int { return c.source.SectionCount() }

// ItemCount returns the number of cells of a page for the host.
func (c *Coordinator[C]) ItemCount(section int) int { return c.source.ItemCount(section) }

// MonthForSection returns the month shown on a page.
func (c *Coordinator[C]) MonthForSection(section int) dateutil.Month {
	return c.source.MonthForSection(section)
}

// CellContext returns the context of the cell at path.
func (c *Coordinator[C]) CellContext(path adapter.IndexPath) adapter.CellContext {
	ctx := c.source.CellContext(path)
	ctx.Selected = c.IsSelected(ctx.Date)
	return ctx
}

// CellAt renders the cell at path through the view provider.
func (c *Coordinator[C]) CellAt(path adapter.IndexPath) C {
	return c.provider.Cell(c.CellContext(path))
}

// ViewportResized relays a host resize to the layout engine.
func (c *Coordinator[C]) ViewportResized(size layout.Size) {
	old := c.engine.Viewport()
	c.engine.SetViewport(size)
	c.pager.SetPageWidth(size.Width)
	c.engine.PrepareIfNeeded()
	if old.Width != size.Width {
		c.alignOffset(false)
	}
}

// DragBegan relays the start of a drag.
func (c *Coordinator[C]) DragBegan() { c.pager.DragBegan() }

// DragEnded relays the end of a drag with its projected offset and returns
// the offset the host should settle on.
func (c *Coordinator[C]) DragEnded(targetX float64) float64 { return c.pager.DragEnded(targetX) }

// DecelerationEnded relays the end of the settling animation.
func (c *Coordinator[C]) DecelerationEnded() { c.pager.DecelerationEnded() }

// ScrollAnimationEnded snaps the viewport onto the focus page.
func (c *Coordinator[C]) ScrollAnimationEnded() { c.alignOffset(false) }

// Transitioning reports whether a drag transition awaits deceleration.
func (c *Coordinator[C]) Transitioning() bool { return c.pager.State() == adapter.Pending }

func (c *Coordinator[C]) context() calendar.InvalidationContext {
	return calendar.InvalidationContext{DisplayOption: c.option, MonthRange: c.r, FocusMonth: c.focus}
}

func (c *Coordinator[C]) setFocus(m dateutil.Month) {
	c.focus = m
	c.refresh()
}

// refresh hands the current state to the engine and reloads the host when
// the window was rebuilt.
func (c *Coordinator[C]) refresh() {
	followUp := c.engine.InvalidateIfNeeded(c.context())
	if c.host == nil {
		return
	}
	c.engine.PrepareIfNeeded()
	if followUp == layout.Rebuild {
		c.host.ReloadData()
	}
}

func (c *Coordinator[C]) alignOffset(animated bool) {
	if c.host == nil {
		return
	}
	page, ok := c.source.PageIndex(c.focus)
	if !ok {
		return
	}
	c.host.SetContentOffset(float64(page)*c.pager.PageWidth(), animated)
}

func (c *Coordinator[C]) willChange(old, next dateutil.Month) {
	if c.delegate != nil {
		c.delegate.WillChangeMonth(old, next)
	}
}

func (c *Coordinator[C]) didChange(old, next dateutil.Month) {
	if c.delegate != nil {
		c.delegate.DidChangeMonth(old, next)
	}
}

func (c *Coordinator[C]) checkZone(m dateutil.Month) {
	if !m.SameZone(c.focus) {
		panic(fmt.Sprintf("coordinator: month %s uses timezone %s, want %s", m, m.Location(), c.focus.Location()))
	}
}

func (c *Coordinator[C]) checkRange(r calendar.MonthRange) {
	for _, bound := range []*dateutil.Month{r.Lower, r.Upper} {
		if bound != nil {
			c.checkZone(*bound)
		}
	}
}

func (c *Coordinator[C]) checkFocus(m dateutil.Month) {
	c.checkZone(m)
	if !c.r.Contains(m) {
		panic(fmt.Sprintf("coordinator: focus month %s outside range %s", m, c.r))
	}
}

func (c *Coordinator[C]) checkDate(date dateutil.Date) error {
	if !dateutil.SameLocation(date.Location(), c.focus.Location()) {
		return fmt.Errorf("date %s uses timezone %s, want %s: %w",
			date, date.Location(), c.focus.Location(), dateutil.ErrIllegalArgument)
	}
	return nil
}

// transitions applies pager transitions to the coordinator.
type transitions[C any] struct {
	c *Coordinator[C]
}

func (t transitions[C]) BeginTransition(tr adapter.Transition) {
	t.c.willChange(tr.From, tr.TargetMonth)
}

func (t transitions[C]) CommitTransition(tr adapter.Transition) {
	t.c.setFocus(tr.TargetMonth)
}

func (t transitions[C]) EndTransition(tr adapter.Transition) {
	t.c.logger.Debug("Month changed by drag",
		zap.String("from", tr.From.String()),
		zap.String("to", tr.TargetMonth.String()))
	t.c.didChange(tr.From, tr.TargetMonth)
}
