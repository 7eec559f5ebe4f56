package dateutil

import "time"

// Weekday is a day of the week. The first case is the first day of a
// displayed calendar week, so the value doubles as a column index.
type Weekday int

const (
	Sunday Weekday = iota
	Monday
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
)

var weekdayNames = [...]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// AllWeekdays returns every weekday in column order.
func AllWeekdays() []Weekday {
	return []Weekday{Sunday, Monday, Tuesday, Wednesday, Thursday, Friday, Saturday}
}

// WeekdayOf converts a time.Weekday into a Weekday.
func WeekdayOf(w time.Weekday) Weekday {
	return Weekday(w)
}

// Index returns the column index of the weekday (0-6).
func (w Weekday) Index() int {
	return int(w)
}

func (w Weekday) String() string {
	if w < Sunday || w > Saturday {
		return "Weekday(?)"
	}
	return weekdayNames[w]
}

// Short returns the three-letter abbreviation.
func (w Weekday) Short() string {
	return w.String()[:3]
}
