package layout

import (
	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/pkg/dateutil"
	"go.uber.org/zap"
)

// IndexPath addresses a cell: Section is the page inside the materialised
// window, Item the cell inside that page.
type IndexPath struct {
	Section int `yaml:"section"`
	Item    int `yaml:"item"`
}

// Attributes is the computed frame of one cell.
type Attributes struct {
	IndexPath IndexPath `yaml:"index_path"`
	Frame     Rect      `yaml:"frame"`
}

// LayoutChange is published once per layout pass. All three values always
// come from the same pass.
type LayoutChange struct {
	ContentSize   Size
	SectionHeight float64
	WeekdaySpans  []Span
}

// Observer receives layout changes.
type Observer interface {
	LayoutChanged(change LayoutChange)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(change LayoutChange)

// LayoutChanged calls f(change).
func (f ObserverFunc) LayoutChanged(change LayoutChange) { f(change) }

// FollowUp is the work InvalidateIfNeeded decided on.
type FollowUp int

const (
	Ignore FollowUp = iota
	UpdateSectionHeight
	Rebuild
)

func (f FollowUp) String() string {
	switch f {
	case UpdateSectionHeight:
		return "update_section_height"
	case Rebuild:
		return "rebuild"
	default:
		return "ignore"
	}
}

// Engine computes cell frames for the materialised window of month pages,
// laid out as a horizontal filmstrip one viewport wide per page.
type Engine struct {
	params   Params
	viewport Size
	ctx      *calendar.InvalidationContext
	plans    *calendar.PlanCache
	logger   *zap.Logger

	attribs map[dateutil.MonthKey][]Attributes
	first   dateutil.Month
	pages   int
	dirty   bool

	contentSize   Size
	sectionHeight float64
	spans         []Span

	observers []Observer
	published *LayoutChange
}

// NewEngine creates an engine. plans may be shared with the data source;
// nil creates a private cache.
func NewEngine(params Params, plans *calendar.PlanCache, logger *zap.Logger) *Engine {
	if plans == nil {
		plans = calendar.NewPlanCache()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		params:  params,
		plans:   plans,
		logger:  logger,
		attribs: make(map[dateutil.MonthKey][]Attributes),
		dirty:   true,
	}
}

// Subscribe registers an observer for layout changes.
func (e *Engine) Subscribe(o Observer) {
	e.observers = append(e.observers, o)
}

// Params returns the current layout parameters.
func (e *Engine) Params() Params { return e.params }

// SetParams replaces the parameters and invalidates the layout if they changed.
func (e *Engine) SetParams(p Params) {
	if p == e.params {
		return
	}
	e.params = p
	e.Invalidate()
}

// Viewport returns the size the layout was computed for.
func (e *Engine) Viewport() Size { return e.viewport }

// SetViewport records a new viewport size and invalidates the layout when
// ShouldInvalidateForBoundsChange says so.
func (e *Engine) SetViewport(size Size) {
	old := e.viewport
	e.viewport = size
	if e.ShouldInvalidateForBoundsChange(old, size) {
		e.Invalidate()
	}
}

// ShouldInvalidateForBoundsChange reports whether a viewport change needs a
// rebuild. A height-only change under vertical packing keeps every frame.
func (e *Engine) ShouldInvalidateForBoundsChange(old, next Size) bool {
	if e.params.Alignment.Vertical == Packed && old.Width == next.Width && old.Height != next.Height {
		return false
	}
	return true
}

// Invalidate marks the attribute cache stale; the next Prepare rebuilds it.
func (e *Engine) Invalidate() {
	e.dirty = true
}

// NeedsPrepare reports whether the attribute cache is stale.
func (e *Engine) NeedsPrepare() bool {
	return e.dirty && e.ctx != nil
}

// InvalidateIfNeeded adopts ctx and decides how much work it requires.
// Display option or range changes rebuild everything. A focus change
// rebuilds for ranges that are not bounded on both sides, because the
// window moves; within a bounded range it only recomputes the section height.
func (e *Engine) InvalidateIfNeeded(ctx calendar.InvalidationContext) FollowUp {
	followUp := e.followUp(ctx)
	e.ctx = &ctx

	switch followUp {
	case Rebuild:
		e.Invalidate()
	case UpdateSectionHeight:
		e.sectionHeight = e.currentSectionHeight()
		e.publish()
	}

	e.logger.Debug("Layout invalidation",
		zap.String("focus", ctx.FocusMonth.String()),
		zap.String("range", ctx.MonthRange.String()),
		zap.String("follow_up", followUp.String()))
	return followUp
}

func (e *Engine) followUp(ctx calendar.InvalidationContext) FollowUp {
	if e.ctx == nil {
		return Rebuild
	}
	if e.ctx.DisplayOption != ctx.DisplayOption || !e.ctx.MonthRange.Equal(ctx.MonthRange) {
		return Rebuild
	}
	if e.ctx.FocusMonth.Equal(ctx.FocusMonth) {
		return Ignore
	}
	if ctx.MonthRange.IsBounded() {
		return UpdateSectionHeight
	}
	return Rebuild
}

// PrepareIfNeeded rebuilds the cache when it is stale.
func (e *Engine) PrepareIfNeeded() {
	if e.NeedsPrepare() {
		e.Prepare()
	}
}

// Prepare rebuilds the attribute cache for the current window and publishes
// content size, section height and weekday spans together.
func (e *Engine) Prepare() {
	if e.ctx == nil {
		return
	}

	first, last := e.ctx.Window()
	n, err := first.MonthsUntil(last)
	if err != nil {
		panic(err)
	}
	pages := n + 1

	attribs := make(map[dateutil.MonthKey][]Attributes, pages)
	for page := 0; page < pages; page++ {
		month := first.AddMonths(page)
		frames := MakeFrames(e.params, e.weeks(month), e.viewport)
		dx := float64(page) * e.viewport.Width

		list := make([]Attributes, len(frames))
		for i, f := range frames {
			list[i] = Attributes{
				IndexPath: IndexPath{Section: page, Item: i},
				Frame:     f.Offset(dx, 0),
			}
		}
		attribs[month.Key()] = list
	}

	e.attribs = attribs
	e.first = first
	e.pages = pages
	e.dirty = false

	e.sectionHeight = e.currentSectionHeight()
	e.contentSize = Size{Width: float64(pages) * e.viewport.Width, Height: e.contentHeight()}
	e.spans = e.weekdaySpans()

	e.logger.Debug("Layout prepared",
		zap.String("first", first.String()),
		zap.Int("pages", pages),
		zap.Float64("content_width", e.contentSize.Width),
		zap.Float64("content_height", e.contentSize.Height))

	e.publish()
}

func (e *Engine) weeks(month dateutil.Month) int {
	return e.ctx.DisplayOption.NumberOfWeeks(e.plans.Get(month))
}

func (e *Engine) contentHeight() float64 {
	if !e.ctx.MonthRange.IsBounded() {
		return e.sectionHeight
	}
	var height float64
	for _, list := range e.attribs {
		if len(list) == 0 {
			continue
		}
		if h := list[len(list)-1].Frame.MaxY() + e.params.SectionInset.Bottom; h > height {
			height = h
		}
	}
	return height
}

func (e *Engine) currentSectionHeight() float64 {
	if list, ok := e.attribs[e.ctx.FocusMonth.Key()]; ok && len(list) > 0 && !e.dirty {
		return list[len(list)-1].Frame.MaxY() + e.params.SectionInset.Bottom
	}
	return e.SectionHeight(e.ctx.FocusMonth)
}

func (e *Engine) weekdaySpans() []Span {
	list := e.attribs[e.first.Key()]
	if len(list) < 7 {
		return nil
	}
	spans := make([]Span, 7)
	for i := 0; i < 7; i++ {
		spans[i] = NewSpan(list[i].Frame.MinX(), list[i].Frame.MaxX())
	}
	return spans
}

func (e *Engine) publish() {
	change := LayoutChange{
		ContentSize:   e.contentSize,
		SectionHeight: e.sectionHeight,
		WeekdaySpans:  append([]Span(nil), e.spans...),
	}
	if e.published != nil && sameChange(*e.published, change) {
		return
	}
	e.published = &change
	for _, o := range e.observers {
		o.LayoutChanged(change)
	}
}

func sameChange(a, b LayoutChange) bool {
	if a.ContentSize != b.ContentSize || a.SectionHeight != b.SectionHeight || len(a.WeekdaySpans) != len(b.WeekdaySpans) {
		return false
	}
	for i := range a.WeekdaySpans {
		if a.WeekdaySpans[i] != b.WeekdaySpans[i] {
			return false
		}
	}
	return true
}

// SectionHeight returns the height of month's section, insets included.
func (e *Engine) SectionHeight(month dateutil.Month) float64 {
	option := calendar.Dynamic
	if e.ctx != nil {
		option = e.ctx.DisplayOption
	}
	minHeight := MinContentSize(e.params, option.NumberOfWeeks(e.plans.Get(month))).Height

	switch e.params.Alignment.Vertical {
	case Filled, Spread:
		if e.viewport.Height > minHeight {
			return e.viewport.Height
		}
	}
	return minHeight
}

// ContentSize returns the size of the whole filmstrip.
func (e *Engine) ContentSize() Size { return e.contentSize }

// CurrentSectionHeight returns the height of the focus month's section.
func (e *Engine) CurrentSectionHeight() float64 { return e.sectionHeight }

// WeekdaySpans returns the horizontal span of each weekday column of the
// first materialised page.
func (e *Engine) WeekdaySpans() []Span {
	return append([]Span(nil), e.spans...)
}

// Pages returns the number of materialised pages.
func (e *Engine) Pages() int { return e.pages }

// AttributesInRect returns every cell whose frame intersects rect, in page order.
func (e *Engine) AttributesInRect(rect Rect) []Attributes {
	var out []Attributes
	for page := 0; page < e.pages; page++ {
		for _, a := range e.attribs[e.first.AddMonths(page).Key()] {
			if rect.Intersects(a.Frame) {
				out = append(out, a)
			}
		}
	}
	return out
}

// AttributesAt returns the attributes of the cell at ip.
func (e *Engine) AttributesAt(ip IndexPath) (Attributes, bool) {
	if e.pages == 0 || ip.Section < 0 || ip.Section >= e.pages {
		return Attributes{}, false
	}
	list := e.attribs[e.first.AddMonths(ip.Section).Key()]
	if ip.Item < 0 || ip.Item >= len(list) {
		return Attributes{}, false
	}
	return list[ip.Item], true
}

// PageAttributes returns every cell of the page for month, if materialised.
func (e *Engine) PageAttributes(month dateutil.Month) []Attributes {
	return e.attribs[month.Key()]
}
