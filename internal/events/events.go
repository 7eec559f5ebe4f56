// Package events marks calendar days with day types, holidays and
// calendar events loaded from local files.
package events

import (
	"errors"
	"fmt"
	"sort"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// ErrNotFound is returned by a Source that has no data for a month.
var ErrNotFound = errors.New("no marks for month")

// Kind classifies a mark.
type Kind int

const (
	KindEvent Kind = iota + 1
	KindWorkday
	KindWeekend
	KindHoliday
	KindShortened
)

var kindNames = map[Kind]string{
	KindEvent:     "event",
	KindWorkday:   "workday",
	KindWeekend:   "weekend",
	KindHoliday:   "holiday",
	KindShortened: "shortened",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseKind parses the name used in mark files.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown day type %q", s)
}

// Mark annotates one day.
type Mark struct {
	Date dateutil.Date
	Kind Kind
	Note string
}

// Source returns the marks that fall in a month.
type Source interface {
	MarksIn(month dateutil.Month) ([]Mark, error)
}

// Index groups marks by day. An index built by BuildIndex knows which
// months it covers; one built by NewIndex covers every month.
type Index struct {
	byDate      map[dateutil.DateKey][]Mark
	first, last *dateutil.Month
}

// NewIndex builds an index over marks.
func NewIndex(marks []Mark) *Index {
	ix := &Index{byDate: make(map[dateutil.DateKey][]Mark)}
	for _, m := range marks {
		ix.Add(m)
	}
	return ix
}

// BuildIndex collects the marks of every month in [first, last].
func BuildIndex(src Source, first, last dateutil.Month) (*Index, error) {
	ix := NewIndex(nil)
	ix.first, ix.last = &first, &last
	for m := first; !m.After(last); m = m.AddMonths(1) {
		marks, err := src.MarksIn(m)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load marks for %s: %w", m, err)
		}
		for _, mark := range marks {
			ix.Add(mark)
		}
	}
	return ix, nil
}

func (ix *Index) Add(m Mark) {
	key := m.Date.Key()
	ix.byDate[key] = append(ix.byDate[key], m)
}

// Covers reports whether the marks of month were collected. A nil index
// covers nothing.
func (ix *Index) Covers(month dateutil.Month) bool {
	if ix == nil {
		return false
	}
	if ix.first == nil {
		return true
	}
	return !month.Before(*ix.first) && !month.After(*ix.last)
}

// Window returns the covered months, with ok false for an index that
// covers every month.
func (ix *Index) Window() (first, last dateutil.Month, ok bool) {
	if ix == nil || ix.first == nil {
		return dateutil.Month{}, dateutil.Month{}, false
	}
	return *ix.first, *ix.last, true
}

// On returns the marks of date in insertion order.
func (ix *Index) On(date dateutil.Date) []Mark {
	if ix == nil {
		return nil
	}
	return ix.byDate[date.Key()]
}

// Has reports whether date carries a mark of any of kinds, or any mark
// when kinds is empty.
func (ix *Index) Has(date dateutil.Date, kinds ...Kind) bool {
	for _, m := range ix.On(date) {
		if len(kinds) == 0 {
			return true
		}
		for _, k := range kinds {
			if m.Kind == k {
				return true
			}
		}
	}
	return false
}

// Len returns the number of marked days.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byDate)
}

// Dates returns the marked days in ascending order.
func (ix *Index) Dates() []dateutil.Date {
	if ix == nil {
		return nil
	}
	dates := make([]dateutil.Date, 0, len(ix.byDate))
	for _, marks := range ix.byDate {
		dates = append(dates, marks[0].Date)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}
