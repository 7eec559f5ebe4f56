package adapter

import (
	"testing"
	"time"

	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/pkg/dateutil"
)

type fakeState struct {
	focus  dateutil.Month
	r      calendar.MonthRange
	option calendar.DisplayOption
}

func (s *fakeState) FocusMonth() dateutil.Month { return s.focus }
func (s *fakeState) MonthRange() calendar.MonthRange { return s.r }
func (s *fakeState) DisplayOption() calendar.DisplayOption { return s.option }

func month(y, m int) dateutil.Month {
	return dateutil.MustMonth(y, m, time.UTC)
}

func date(y, m, d int) dateutil.Date {
	return dateutil.MustDate(y, m, d, time.UTC)
}

func newSource(focus dateutil.Month, r calendar.MonthRange) (*DataSource, *fakeState) {
	state := &fakeState{focus: focus, r: r}
	return NewDataSource(state, nil), state
}

func TestDataSource_SectionCount(t *testing.T) {
	current := month(2022, 9)

	tests := []struct {
		name  string
		r     calendar.MonthRange
		focus dateutil.Month
		want  int
	}{
		{"single month", calendar.Between(current, current), current, 1},
		{"two months", calendar.Between(current, current.AddMonths(1)), current, 2},
		{"six months", calendar.Between(current, current.AddMonths(5)), current, 6},
		{"two years", calendar.Between(current, current.AddMonths(23)), current, 24},
		{"lower bound at focus", calendar.From(current), current, 2},
		{"lower bound before focus", calendar.From(current), current.AddMonths(1), 3},
		{"lower bound far before focus", calendar.From(current), current.AddMonths(100), 3},
		{"upper bound at focus", calendar.Until(current), current, 2},
		{"upper bound after focus", calendar.Until(current), current.AddMonths(-1), 3},
		{"upper bound far after focus", calendar.Until(current), current.AddMonths(-12), 3},
		{"unbounded", calendar.Unbounded(), current, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newSource(tt.focus, tt.r)
			if got := s.SectionCount(); got != tt.want {
				t.Errorf("SectionCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDataSource_ItemCount(t *testing.T) {
	sep2022 := month(2022, 9)
	feb2015 := month(2015, 2)
	oct2021 := month(2021, 10)

	tests := []struct {
		name   string
		focus  dateutil.Month
		r      calendar.MonthRange
		option calendar.DisplayOption
		want   []int
	}{
		{"five week month", sep2022, calendar.Between(sep2022.AddMonths(-1), sep2022.AddMonths(1)), calendar.Dynamic, []int{35, 35, 42}},
		{"four week month", feb2015, calendar.Between(feb2015.AddMonths(-1), feb2015.AddMonths(1)), calendar.Dynamic, []int{35, 28, 35}},
		{"whole year", sep2022, calendar.Between(month(2022, 1), month(2022, 12)), calendar.Dynamic,
			[]int{42, 35, 35, 35, 35, 35, 42, 35, 35, 42, 35, 35}},
		{"upper bound after focus", sep2022, calendar.Until(sep2022.AddMonths(1)), calendar.Dynamic, []int{35, 35, 42}},
		{"upper bound at focus", sep2022.AddMonths(1), calendar.Until(sep2022.AddMonths(1)), calendar.Dynamic, []int{35, 42}},
		{"upper bound far away", oct2021, calendar.Until(sep2022.AddMonths(1)), calendar.Dynamic, []int{35, 42, 35}},
		{"six week month leading", oct2021.AddMonths(1), calendar.Until(sep2022.AddMonths(1)), calendar.Dynamic, []int{42, 35, 35}},
		{"six week month trailing", oct2021.AddMonths(-1), calendar.Until(sep2022.AddMonths(1)), calendar.Dynamic, []int{35, 35, 42}},
		{"fixed five week month", sep2022, calendar.Between(sep2022.AddMonths(-1), sep2022.AddMonths(1)), calendar.Fixed, []int{42, 42, 42}},
		{"fixed four week month", feb2015, calendar.Between(feb2015.AddMonths(-1), feb2015.AddMonths(1)), calendar.Fixed, []int{42, 42, 42}},
		{"unbounded four week month", feb2015, calendar.Unbounded(), calendar.Dynamic, []int{35, 28, 35}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, state := newSource(tt.focus, tt.r)
			state.option = tt.option

			if n := s.SectionCount(); n != len(tt.want) {
				t.Fatalf("SectionCount() = %d, want %d", n, len(tt.want))
			}
			for section, want := range tt.want {
				if got := s.ItemCount(section); got != want {
					t.Errorf("ItemCount(%d) = %d, want %d", section, got, want)
				}
			}
		})
	}
}

// expectedContexts lists the cells of a month page in date order.
func expectedContexts(y, m, leading, trailing int) []CellContext {
	first, next := month(y, m).DateRange()
	var out []CellContext
	for d := leading; d > 0; d-- {
		out = append(out, CellContext{Date: first.AddDays(-d), Position: Leading})
	}
	for d := first; d.Before(next); d = d.AddDays(1) {
		out = append(out, CellContext{Date: d, Position: Main})
	}
	for d := 0; d < trailing; d++ {
		out = append(out, CellContext{Date: next.AddDays(d), Position: Trailing})
	}
	return out
}

func assertSection(t *testing.T, s *DataSource, section int, want []CellContext) {
	t.Helper()
	if got := s.ItemCount(section); got != len(want) {
		t.Fatalf("ItemCount(%d) = %d, want %d", section, got, len(want))
	}
	for i, w := range want {
		got := s.CellContext(IndexPath{Section: section, Item: i})
		if !got.Date.Equal(w.Date) || got.Position != w.Position {
			t.Errorf("CellContext(%d, %d) = %s %s, want %s %s", section, i, got.Date, got.Position, w.Date, w.Position)
		}
	}
}

func TestDataSource_CellContext(t *testing.T) {
	t.Run("single month range", func(t *testing.T) {
		sep := month(2022, 9)
		s, state := newSource(sep, calendar.Between(sep, sep))
		assertSection(t, s, 0, expectedContexts(2022, 9, 4, 1))

		state.option = calendar.Fixed
		assertSection(t, s, 0, expectedContexts(2022, 9, 4, 8))
	})

	t.Run("unbounded dynamic", func(t *testing.T) {
		s, _ := newSource(month(2015, 2), calendar.Unbounded())
		assertSection(t, s, 0, expectedContexts(2015, 1, 4, 0))
		assertSection(t, s, 1, expectedContexts(2015, 2, 0, 0))
		assertSection(t, s, 2, expectedContexts(2015, 3, 0, 4))
	})

	t.Run("unbounded fixed", func(t *testing.T) {
		s, state := newSource(month(2015, 2), calendar.Unbounded())
		state.option = calendar.Fixed
		assertSection(t, s, 0, expectedContexts(2015, 1, 4, 7))
		assertSection(t, s, 1, expectedContexts(2015, 2, 0, 14))
		assertSection(t, s, 2, expectedContexts(2015, 3, 0, 11))
	})

	t.Run("focus moved", func(t *testing.T) {
		s, state := newSource(month(2015, 2), calendar.Unbounded())
		state.focus = month(2022, 9)
		assertSection(t, s, 0, expectedContexts(2022, 8, 1, 3))
		assertSection(t, s, 1, expectedContexts(2022, 9, 4, 1))
		assertSection(t, s, 2, expectedContexts(2022, 10, 6, 5))
	})
}

func TestDataSource_VisibleIndexPath(t *testing.T) {
	s, _ := newSource(month(2022, 9), calendar.Unbounded())

	tests := []struct {
		name   string
		date   dateutil.Date
		want   IndexPath
		wantOK bool
	}{
		{"first of focus", date(2022, 9, 1), IndexPath{Section: 1, Item: 4}, true},
		{"first of previous", date(2022, 8, 1), IndexPath{Section: 0, Item: 1}, true},
		{"last of next", date(2022, 10, 31), IndexPath{Section: 2, Item: 36}, true},
		{"outside window", date(2022, 11, 1), IndexPath{}, false},
		{"before window", date(2022, 7, 31), IndexPath{}, false},
		{"other timezone", dateutil.MustDate(2022, 9, 1, time.FixedZone("KST", 9*3600)), IndexPath{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := s.VisibleIndexPath(tt.date)
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("VisibleIndexPath(%s) = %v, %v, want %v, %v", tt.date, got, ok, tt.want, tt.wantOK)
			}
			if ok {
				if ctx := s.CellContext(got); !ctx.Date.Equal(tt.date) || ctx.Position != Main {
					t.Errorf("CellContext(%v) = %s %s", got, ctx.Date, ctx.Position)
				}
			}
		})
	}
}

func TestDataSource_IndexPaths(t *testing.T) {
	s, _ := newSource(month(2022, 9), calendar.Unbounded())

	got := s.IndexPaths(date(2022, 10, 1))
	want := []IndexPath{{Section: 1, Item: 34}, {Section: 2, Item: 6}}
	if len(got) != len(want) {
		t.Fatalf("IndexPaths() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IndexPaths()[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	if paths := s.IndexPaths(date(2023, 1, 1)); len(paths) != 0 {
		t.Errorf("IndexPaths(outside) = %v, want none", paths)
	}
}

func TestDataSource_PageIndex(t *testing.T) {
	sep := month(2022, 9)
	s, _ := newSource(sep, calendar.From(sep))

	if page, ok := s.PageIndex(sep); !ok || page != 0 {
		t.Errorf("PageIndex(focus on lower bound) = %d, %v, want 0", page, ok)
	}
	if page, ok := s.PageIndex(sep.AddMonths(1)); !ok || page != 1 {
		t.Errorf("PageIndex(next) = %d, %v, want 1", page, ok)
	}
	if _, ok := s.PageIndex(sep.AddMonths(2)); ok {
		t.Errorf("PageIndex(outside window) should fail")
	}
}

func TestDataSource_MonthForSectionPanics(t *testing.T) {
	s, _ := newSource(month(2022, 9), calendar.Unbounded())
	defer func() {
		if recover() == nil {
			t.Errorf("MonthForSection(3) should panic")
		}
	}()
	s.MonthForSection(3)
}
