package calendar

import (
	"fmt"
	"strings"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// DisplayOption decides how many week rows a month page shows.
type DisplayOption int

const (
	// Dynamic shows exactly the weeks a month needs, 4 to 6 rows.
	Dynamic DisplayOption = iota
	// Fixed always shows 6 rows; days of the next month fill the remainder.
	Fixed
)

// FixedWeeks is the row count of every page under Fixed.
const FixedWeeks = 6

// NumberOfWeeks returns the row count for a month with the given plan.
func (o DisplayOption) NumberOfWeeks(plan LayoutPlan) int {
	if o == Fixed {
		return FixedWeeks
	}
	return plan.NumberOfWeeks
}

// ItemCount returns the number of cells of a page with the given plan.
func (o DisplayOption) ItemCount(plan LayoutPlan) int {
	return o.NumberOfWeeks(plan) * 7
}

func (o DisplayOption) String() string {
	if o == Fixed {
		return "fixed"
	}
	return "dynamic"
}

// ParseDisplayOption parses "dynamic" or "fixed".
func ParseDisplayOption(s string) (DisplayOption, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dynamic", "":
		return Dynamic, nil
	case "fixed":
		return Fixed, nil
	}
	return Dynamic, fmt.Errorf("unknown display option %q: %w", s, dateutil.ErrIllegalArgument)
}

// ContentWindow returns the first and last month materialised for focus in r:
// the whole range when bounded, two pages when focus sits on the sole bound,
// and three pages centred on focus otherwise.
func ContentWindow(r MonthRange, focus dateutil.Month) (first, last dateutil.Month) {
	switch {
	case r.IsBounded():
		return *r.Lower, *r.Upper
	case r.Lower != nil && r.Upper == nil && sameMonth(*r.Lower, focus):
		return *r.Lower, r.Lower.AddMonths(1)
	case r.Lower == nil && r.Upper != nil && sameMonth(*r.Upper, focus):
		return r.Upper.AddMonths(-1), *r.Upper
	default:
		return focus.AddMonths(-1), focus.AddMonths(1)
	}
}

// SectionCount returns the number of pages materialised for focus in r.
func SectionCount(r MonthRange, focus dateutil.Month) int {
	if r.IsBounded() {
		n, err := r.Lower.MonthsUntil(*r.Upper)
		if err != nil {
			panic(err)
		}
		return n + 1
	}
	if bound, ok := r.SoleBound(); ok && sameMonth(bound, focus) {
		return 2
	}
	return 3
}
