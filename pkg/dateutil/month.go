package dateutil

import (
	"fmt"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month in a timezone: the half-open instant range
// [first of month, first of next month) plus its location. The zero value
// is not valid.
type Month struct {
	start time.Time
	loc   *time.Location
}

// MonthKey is a comparable identity for a Month, suitable as a map key.
type MonthKey struct {
	Year  int
	Month time.Month
	Zone  string
}

// NewMonth returns the month for the given components; month must be 1-12.
func NewMonth(year, month int, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.Local
	}
	t := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month {
		return Month{}, fmt.Errorf("invalid month %04d-%02d: %w", year, month, ErrIllegalArgument)
	}
	return Month{start: t, loc: loc}, nil
}

// MustMonth is like NewMonth but panics on invalid components.
func MustMonth(year, month int, loc *time.Location) Month {
	m, err := NewMonth(year, month, loc)
	if err != nil {
		panic(err)
	}
	return m
}

// MonthOf returns the month containing instant in loc.
func MonthOf(instant time.Time, loc *time.Location) Month {
	if loc == nil {
		loc = time.Local
	}
	return Month{start: StartOfMonth(instant.In(loc)), loc: loc}
}

// ThisMonth returns the current month in loc.
func ThisMonth(loc *time.Location) Month {
	return MonthOf(time.Now(), loc)
}

// ParseMonth parses a month in YYYY-MM form.
func ParseMonth(s string, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(monthLayout, s, loc)
	if err != nil {
		return Month{}, fmt.Errorf("failed to parse month %q: %w", s, ErrIllegalArgument)
	}
	return Month{start: StartOfMonth(t), loc: loc}, nil
}

// Location returns the timezone of the month.
func (m Month) Location() *time.Location { return m.loc }

// Start returns the first instant of the month.
func (m Month) Start() time.Time { return m.start }

// End returns the first instant of the following month.
func (m Month) End() time.Time {
	return time.Date(m.start.Year(), m.start.Month()+1, 1, 0, 0, 0, 0, m.loc)
}

// Year returns the year of the month.
func (m Month) Year() int { return m.start.Year() }

// Number returns the month number, 1-12.
func (m Month) Number() int { return int(m.start.Month()) }

// FirstDay returns the first date of the month.
func (m Month) FirstDay() Date {
	return Date{start: m.start, loc: m.loc}
}

// LastDay returns the last date of the month.
func (m Month) LastDay() Date {
	return m.AddMonths(1).FirstDay().AddDays(-1)
}

// DateRange returns the first day of the month and the first day of the
// following month, the half-open range of dates the month covers.
func (m Month) DateRange() (first, next Date) {
	return m.FirstDay(), m.AddMonths(1).FirstDay()
}

// Contains reports whether instant falls inside the month.
func (m Month) Contains(instant time.Time) bool {
	return !instant.Before(m.start) && instant.Before(m.End())
}

// ContainsDate reports whether date lies in the month and shares its timezone.
func (m Month) ContainsDate(date Date) bool {
	return SameLocation(m.loc, date.loc) && m.Contains(date.start)
}

// AddMonths returns the month n months away; n may be negative.
func (m Month) AddMonths(n int) Month {
	t := time.Date(m.start.Year(), m.start.Month()+time.Month(n), 1, 0, 0, 0, 0, m.loc)
	return Month{start: t, loc: m.loc}
}

// MonthsUntil returns the number of months from m to other. It fails with
// ErrIllegalArgument when the two months have different UTC offsets.
func (m Month) MonthsUntil(other Month) (int, error) {
	if !sameOffset(m.start, m.loc, other.loc) {
		return 0, fmt.Errorf("months %s and %s have different UTC offsets: %w", m, other, ErrIllegalArgument)
	}
	o := other.start.In(m.loc)
	return (o.Year()*12 + int(o.Month())) - (m.start.Year()*12 + int(m.start.Month())), nil
}

// SameOffset reports whether both months have the same UTC offset.
func (m Month) SameOffset(other Month) bool {
	return sameOffset(m.start, m.loc, other.loc)
}

// SameZone reports whether both months use the same timezone.
func (m Month) SameZone(other Month) bool {
	return SameLocation(m.loc, other.loc)
}

// Equal reports whether both months cover the same range in the same timezone.
func (m Month) Equal(other Month) bool {
	if m.loc == nil || other.loc == nil {
		return m.loc == other.loc && m.start.Equal(other.start)
	}
	return m.start.Equal(other.start) && SameLocation(m.loc, other.loc)
}

// Compare orders months by their start instant: -1, 0 or +1.
func (m Month) Compare(other Month) int {
	return m.start.Compare(other.start)
}

// Before reports whether m starts before other.
func (m Month) Before(other Month) bool { return m.start.Before(other.start) }

// After reports whether m starts after other.
func (m Month) After(other Month) bool { return m.start.After(other.start) }

// IsZero reports whether m is the zero Month.
func (m Month) IsZero() bool { return m.loc == nil }

// Key returns a comparable identity of the month.
func (m Month) Key() MonthKey {
	return MonthKey{Year: m.start.Year(), Month: m.start.Month(), Zone: m.loc.String()}
}

func (m Month) String() string {
	if m.loc == nil {
		return "0000-00"
	}
	return m.start.Format(monthLayout)
}
