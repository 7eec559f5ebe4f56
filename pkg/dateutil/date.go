package dateutil

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// dateLayouts are accepted by ParseDate, in order.
var dateLayouts = []string{
	dateLayout,
	"20060102",
}

// Date is a single calendar day in a timezone: the half-open instant range
// [midnight, next midnight) plus its location. The zero value is not valid.
type Date struct {
	start time.Time
	loc   *time.Location
}

// DateKey is a comparable identity for a Date, suitable as a map key.
type DateKey struct {
	Unix int64
	Zone string
}

// NewDate returns the date for the given components. The components must
// name a real day; 2022-09-31 fails with ErrIllegalArgument.
func NewDate(year, month, day int, loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.Local
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return Date{}, fmt.Errorf("invalid date %04d-%02d-%02d: %w", year, month, day, ErrIllegalArgument)
	}
	return Date{start: t, loc: loc}, nil
}

// MustDate is like NewDate but panics on invalid components.
func MustDate(year, month, day int, loc *time.Location) Date {
	d, err := NewDate(year, month, day, loc)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf returns the date containing instant in loc.
func DateOf(instant time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.Local
	}
	return Date{start: StartOfDay(instant.In(loc)), loc: loc}
}

// Today returns the current date in loc.
func Today(loc *time.Location) Date {
	return DateOf(time.Now(), loc)
}

// ParseDate parses a date in YYYY-MM-DD or YYYYMMDD form.
func ParseDate(s string, loc *time.Location) (Date, error) {
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return Date{start: StartOfDay(t), loc: loc}, nil
		}
	}
	return Date{}, fmt.Errorf("failed to parse date %q: %w", s, ErrIllegalArgument)
}

// Location returns the timezone of the date.
func (d Date) Location() *time.Location { return d.loc }

// Start returns the first instant of the day.
func (d Date) Start() time.Time { return d.start }

// End returns the first instant of the following day.
func (d Date) End() time.Time {
	return time.Date(d.start.Year(), d.start.Month(), d.start.Day()+1, 0, 0, 0, 0, d.loc)
}

// Contains reports whether instant falls inside the day.
func (d Date) Contains(instant time.Time) bool {
	return !instant.Before(d.start) && instant.Before(d.End())
}

// Components returns the year, month and day of the date.
func (d Date) Components() (year, month, day int) {
	return d.start.Year(), int(d.start.Month()), d.start.Day()
}

// Weekday returns the day of the week.
func (d Date) Weekday() Weekday {
	return WeekdayOf(d.start.Weekday())
}

// Month returns the month owning the date.
func (d Date) Month() Month {
	return Month{start: StartOfMonth(d.start), loc: d.loc}
}

// AddDays returns the date n days away; n may be negative.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.start.Year(), d.start.Month(), d.start.Day()+n, 0, 0, 0, 0, d.loc)
	return Date{start: t, loc: d.loc}
}

// DaysUntil returns the number of calendar days from d to other. It fails
// with ErrIllegalArgument when the two dates have different UTC offsets.
func (d Date) DaysUntil(other Date) (int, error) {
	if !sameOffset(d.start, d.loc, other.loc) {
		return 0, fmt.Errorf("dates %s and %s have different UTC offsets: %w", d, other, ErrIllegalArgument)
	}
	o := other.start.In(d.loc)
	return int(civilDays(o.Year(), o.Month(), o.Day()) - civilDays(d.start.Year(), d.start.Month(), d.start.Day())), nil
}

// Equal reports whether both dates cover the same range in the same timezone.
func (d Date) Equal(other Date) bool {
	if d.loc == nil || other.loc == nil {
		return d.loc == other.loc && d.start.Equal(other.start)
	}
	return d.start.Equal(other.start) && SameLocation(d.loc, other.loc)
}

// Compare orders dates by their start instant: -1, 0 or +1.
func (d Date) Compare(other Date) int {
	return d.start.Compare(other.start)
}

// Before reports whether d starts before other.
func (d Date) Before(other Date) bool { return d.start.Before(other.start) }

// After reports whether d starts after other.
func (d Date) After(other Date) bool { return d.start.After(other.start) }

// IsZero reports whether d is the zero Date.
func (d Date) IsZero() bool { return d.loc == nil }

// Key returns a comparable identity of the date.
func (d Date) Key() DateKey {
	return DateKey{Unix: d.start.Unix(), Zone: d.loc.String()}
}

func (d Date) String() string {
	if d.loc == nil {
		return "0000-00-00"
	}
	return d.start.Format(dateLayout)
}
