package dateutil

import (
	"errors"
	"time"
)

// ErrIllegalArgument is returned when calendar components, strings or
// timezones passed by a caller cannot be turned into a valid value.
var ErrIllegalArgument = errors.New("illegal argument")

// StartOfDay returns the start of the day (00:00:00) for the given date
func StartOfDay(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
}

// StartOfMonth returns midnight of the first day of the month for the given date
func StartOfMonth(date time.Time) time.Time {
	return time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
}

// IsWeekend returns true if the date is Saturday or Sunday
func IsWeekend(date time.Time) bool {
	weekday := date.Weekday()
	return weekday == time.Saturday || weekday == time.Sunday
}

// SameLocation reports whether two locations are the same timezone by name.
func SameLocation(a, b *time.Location) bool {
	return a.String() == b.String()
}

// sameOffset reports whether two locations have the same UTC offset at the
// reference instant. The same location always matches itself, so values
// on either side of a daylight saving transition stay comparable.
func sameOffset(ref time.Time, a, b *time.Location) bool {
	if SameLocation(a, b) {
		return true
	}
	_, offA := ref.In(a).Zone()
	_, offB := ref.In(b).Zone()
	return offA == offB
}

// civilDays returns the number of days since the Unix epoch for the given
// calendar components, independent of any timezone.
func civilDays(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Unix() / 86400
}
