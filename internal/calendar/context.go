package calendar

import "github.com/username/calendar-pager/pkg/dateutil"

// InvalidationContext is the snapshot of coordinator state that decides
// how much of the layout must be rebuilt.
type InvalidationContext struct {
	DisplayOption DisplayOption
	MonthRange    MonthRange
	FocusMonth    dateutil.Month
}

// Equal reports whether both snapshots are identical.
func (c InvalidationContext) Equal(other InvalidationContext) bool {
	return c.DisplayOption == other.DisplayOption &&
		c.MonthRange.Equal(other.MonthRange) &&
		c.FocusMonth.Equal(other.FocusMonth)
}

// Window returns the materialised months for the snapshot.
func (c InvalidationContext) Window() (first, last dateutil.Month) {
	return ContentWindow(c.MonthRange, c.FocusMonth)
}

// SectionCount returns the number of pages for the snapshot.
func (c InvalidationContext) SectionCount() int {
	return SectionCount(c.MonthRange, c.FocusMonth)
}
