package calendar

import (
	"fmt"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// Relation classifies a month against a MonthRange.
type Relation int

const (
	LessThan Relation = iota
	MinBound
	WithinBounds
	MaxBound
	GreaterThan
	// Equal is reported when the range spans a single month and the probe is that month.
	Equal
)

func (r Relation) String() string {
	switch r {
	case LessThan:
		return "lessThan"
	case MinBound:
		return "minBound"
	case WithinBounds:
		return "withinBounds"
	case MaxBound:
		return "maxBound"
	case GreaterThan:
		return "greaterThan"
	case Equal:
		return "equal"
	default:
		return fmt.Sprintf("Relation(%d)", int(r))
	}
}

// Classify returns the relation of month to r. It panics when both bounds
// are present and out of order, and fails with ErrIllegalArgument when
// month and the present bounds do not share one UTC offset.
func Classify(month dateutil.Month, r MonthRange) (Relation, error) {
	if r.IsBounded() && r.Upper.Before(*r.Lower) {
		panic(fmt.Sprintf("calendar: invalid range %s", r))
	}

	for _, bound := range []*dateutil.Month{r.Lower, r.Upper} {
		if bound != nil && !month.SameOffset(*bound) {
			return 0, fmt.Errorf("month %s and bound %s have different UTC offsets: %w", month, bound, dateutil.ErrIllegalArgument)
		}
	}

	lower, upper := r.Lower, r.Upper
	switch {
	case lower != nil && upper != nil && sameMonth(*lower, *upper):
		if month.Before(*lower) {
			return LessThan, nil
		}
		if upper.Before(month) {
			return GreaterThan, nil
		}
		return Equal, nil

	case lower != nil && upper != nil:
		switch {
		case month.Before(*lower):
			return LessThan, nil
		case sameMonth(month, *lower):
			return MinBound, nil
		case sameMonth(month, *upper):
			return MaxBound, nil
		case upper.Before(month):
			return GreaterThan, nil
		}
		return WithinBounds, nil

	case lower != nil:
		if month.Before(*lower) {
			return LessThan, nil
		}
		if sameMonth(month, *lower) {
			return MinBound, nil
		}
		return WithinBounds, nil

	case upper != nil:
		if sameMonth(month, *upper) {
			return MaxBound, nil
		}
		if upper.Before(month) {
			return GreaterThan, nil
		}
		return WithinBounds, nil
	}

	return WithinBounds, nil
}

// sameMonth compares the instant ranges only; the offset check in Classify
// already ensures both months describe the same calendar month.
func sameMonth(a, b dateutil.Month) bool {
	return a.Compare(b) == 0
}
