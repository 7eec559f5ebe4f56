package tui

import (
	"fmt"

	"github.com/username/calendar-pager/internal/adapter"
	"github.com/username/calendar-pager/internal/events"
	"github.com/username/calendar-pager/pkg/dateutil"
)

// cellProvider renders day cells as styled terminal text.
type cellProvider struct {
	theme  Theme
	marks  *events.Index
	today  dateutil.Date
	cursor dateutil.Date
}

func (p *cellProvider) Cell(ctx adapter.CellContext) string {
	_, _, day := ctx.Date.Components()

	marker := " "
	switch {
	case p.marks.Has(ctx.Date, events.KindEvent):
		marker = "•"
	case p.marks.Has(ctx.Date, events.KindShortened):
		marker = "·"
	}
	text := fmt.Sprintf("%2d%s", day, marker)

	if ctx.Position != adapter.Main {
		return p.theme.Outside.Render(text)
	}

	style := p.theme.Day
	switch {
	case p.marks.Has(ctx.Date, events.KindShortened):
		style = p.theme.Short
	case p.isDayOff(ctx.Date):
		style = p.theme.Holiday
	}
	if ctx.Date.Equal(p.today) {
		style = style.Inherit(p.theme.Today)
	}
	if ctx.Selected {
		style = style.Inherit(p.theme.Selected)
	}
	if !p.cursor.IsZero() && ctx.Date.Equal(p.cursor) {
		style = p.theme.Cursor.Inherit(style)
	}
	return style.Render(text)
}

// isDayOff applies the marks first; unmarked weekends are days off.
func (p *cellProvider) isDayOff(date dateutil.Date) bool {
	switch {
	case p.marks.Has(date, events.KindHoliday, events.KindWeekend):
		return true
	case p.marks.Has(date, events.KindWorkday):
		return false
	}
	w := date.Weekday()
	return w == dateutil.Saturday || w == dateutil.Sunday
}

func (p *cellProvider) WeekdayHeader(w dateutil.Weekday) (string, bool) {
	return w.Short()[:2], true
}
