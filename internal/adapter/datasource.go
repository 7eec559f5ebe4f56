package adapter

import (
	"fmt"

	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/pkg/dateutil"
)

// DataSource answers the host's section and item queries for the
// materialised window of the current state.
type DataSource struct {
	state State
	plans *calendar.PlanCache
}

// NewDataSource creates a data source reading from state. plans may be
// shared with the layout engine; nil creates a private cache.
func NewDataSource(state State, plans *calendar.PlanCache) *DataSource {
	if plans == nil {
		plans = calendar.NewPlanCache()
	}
	return &DataSource{state: state, plans: plans}
}

// Window returns the first and last materialised month.
func (s *DataSource) Window() (first, last dateutil.Month) {
	return calendar.ContentWindow(s.state.MonthRange(), s.state.FocusMonth())
}

// SectionCount returns the number of pages.
func (s *DataSource) SectionCount() int {
	return calendar.SectionCount(s.state.MonthRange(), s.state.FocusMonth())
}

// MonthForSection returns the nominal month of a page. It panics for a
// section outside the window.
func (s *DataSource) MonthForSection(section int) dateutil.Month {
	if n := s.SectionCount(); section < 0 || section >= n {
		panic(fmt.Sprintf("adapter: section %d out of range [0, %d)", section, n))
	}
	first, _ := s.Window()
	return first.AddMonths(section)
}

// ItemCount returns the number of cells of a page.
func (s *DataSource) ItemCount(section int) int {
	return s.state.DisplayOption().ItemCount(s.plans.Get(s.MonthForSection(section)))
}

// CellContext resolves the date shown at path and whether it belongs to
// the page's month.
func (s *DataSource) CellContext(path IndexPath) CellContext {
	month := s.MonthForSection(path.Section)
	plan := s.plans.Get(month)
	if n := s.state.DisplayOption().ItemCount(plan); path.Item < 0 || path.Item >= n {
		panic(fmt.Sprintf("adapter: item %d out of range [0, %d) in section %d", path.Item, n, path.Section))
	}

	first, _ := month.DateRange()
	date := first.AddDays(path.Item - plan.LeadingDays)

	position := Main
	switch own := date.Month(); {
	case own.Before(month):
		position = Leading
	case own.After(month):
		position = Trailing
	}
	return CellContext{Date: date, Position: position}
}

// PageIndex returns the section of month inside the window.
func (s *DataSource) PageIndex(month dateutil.Month) (int, bool) {
	first, last := s.Window()
	if !first.SameZone(month) || month.Before(first) || month.After(last) {
		return 0, false
	}
	n, err := first.MonthsUntil(month)
	if err != nil {
		return 0, false
	}
	return n, true
}

// VisibleIndexPath returns the main position of date, if its month is
// materialised.
func (s *DataSource) VisibleIndexPath(date dateutil.Date) (IndexPath, bool) {
	month := date.Month()
	section, ok := s.PageIndex(month)
	if !ok {
		return IndexPath{}, false
	}
	first, _ := month.DateRange()
	day, err := first.DaysUntil(date)
	if err != nil {
		return IndexPath{}, false
	}
	return IndexPath{Section: section, Item: s.plans.Get(month).LeadingDays + day}, true
}

// IndexPaths returns every cell showing date, leading and trailing copies
// on neighbouring pages included.
func (s *DataSource) IndexPaths(date dateutil.Date) []IndexPath {
	first, _ := s.Window()
	if !dateutil.SameLocation(first.Location(), date.Location()) {
		return nil
	}

	var paths []IndexPath
	option := s.state.DisplayOption()
	for section, n := 0, s.SectionCount(); section < n; section++ {
		month := first.AddMonths(section)
		plan := s.plans.Get(month)
		firstDay, _ := month.DateRange()
		day, err := firstDay.DaysUntil(date)
		if err != nil {
			continue
		}
		if item := plan.LeadingDays + day; item >= 0 && item < option.ItemCount(plan) {
			paths = append(paths, IndexPath{Section: section, Item: item})
		}
	}
	return paths
}
