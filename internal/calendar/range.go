package calendar

import (
	"fmt"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// MonthRange is an inclusive range of navigable months. A nil bound means
// the range is unbounded in that direction.
type MonthRange struct {
	Lower *dateutil.Month
	Upper *dateutil.Month
}

// Unbounded returns a range from the infinite past to the infinite future.
func Unbounded() MonthRange {
	return MonthRange{}
}

// NewMonthRange validates bounds coming from untrusted input. Both bounds,
// when present, must share a timezone and be ordered.
func NewMonthRange(lower, upper *dateutil.Month) (MonthRange, error) {
	r := MonthRange{Lower: lower, Upper: upper}
	if err := r.Validate(); err != nil {
		return MonthRange{}, err
	}
	return r, nil
}

// Between returns the bounded range [lower, upper]. It panics when the
// bounds are invalid; use NewMonthRange for untrusted input.
func Between(lower, upper dateutil.Month) MonthRange {
	r := MonthRange{Lower: &lower, Upper: &upper}
	if err := r.Validate(); err != nil {
		panic(err)
	}
	return r
}

// From returns the range [lower, +inf).
func From(lower dateutil.Month) MonthRange {
	return MonthRange{Lower: &lower}
}

// Until returns the range (-inf, upper].
func Until(upper dateutil.Month) MonthRange {
	return MonthRange{Upper: &upper}
}

// Validate checks the ordering and timezone invariants of the range.
func (r MonthRange) Validate() error {
	if r.Lower == nil || r.Upper == nil {
		return nil
	}
	if !r.Lower.SameZone(*r.Upper) {
		return fmt.Errorf("range bounds %s and %s have different timezones: %w", r.Lower, r.Upper, dateutil.ErrIllegalArgument)
	}
	if r.Upper.Before(*r.Lower) {
		return fmt.Errorf("range lower bound %s is after upper bound %s: %w", r.Lower, r.Upper, dateutil.ErrIllegalArgument)
	}
	return nil
}

// IsBounded reports whether both bounds are present.
func (r MonthRange) IsBounded() bool {
	return r.Lower != nil && r.Upper != nil
}

// IsUnbounded reports whether neither bound is present.
func (r MonthRange) IsUnbounded() bool {
	return r.Lower == nil && r.Upper == nil
}

// SoleBound returns the only present bound of a singly bounded range.
func (r MonthRange) SoleBound() (dateutil.Month, bool) {
	switch {
	case r.Lower != nil && r.Upper == nil:
		return *r.Lower, true
	case r.Lower == nil && r.Upper != nil:
		return *r.Upper, true
	default:
		return dateutil.Month{}, false
	}
}

// Contains reports whether month lies within the range.
func (r MonthRange) Contains(month dateutil.Month) bool {
	if r.Lower != nil && month.Before(*r.Lower) {
		return false
	}
	if r.Upper != nil && r.Upper.Before(month) {
		return false
	}
	return true
}

// Clamp returns month moved to the nearest bound when it lies outside the range.
func (r MonthRange) Clamp(month dateutil.Month) dateutil.Month {
	if r.Lower != nil && month.Before(*r.Lower) {
		return *r.Lower
	}
	if r.Upper != nil && r.Upper.Before(month) {
		return *r.Upper
	}
	return month
}

// Equal reports whether both ranges have equal bounds.
func (r MonthRange) Equal(other MonthRange) bool {
	return boundEqual(r.Lower, other.Lower) && boundEqual(r.Upper, other.Upper)
}

func boundEqual(a, b *dateutil.Month) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

func (r MonthRange) String() string {
	lower, upper := "-inf", "+inf"
	if r.Lower != nil {
		lower = r.Lower.String()
	}
	if r.Upper != nil {
		upper = r.Upper.String()
	}
	return "[" + lower + ", " + upper + "]"
}
