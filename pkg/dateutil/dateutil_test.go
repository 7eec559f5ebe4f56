package dateutil

import (
	"testing"
	"time"
)

func TestStartOfDay(t *testing.T) {
	input := time.Date(2025, 1, 15, 14, 30, 45, 123456789, time.UTC)
	expected := time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC)

	result := StartOfDay(input)

	if !result.Equal(expected) {
		t.Errorf("StartOfDay(%v) = %v, want %v", input, result, expected)
	}
}

func TestStartOfMonth(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected time.Time
	}{
		{
			name:     "Mid month",
			input:    time.Date(2022, 10, 17, 9, 15, 0, 0, time.UTC),
			expected: time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "First day stays",
			input:    time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC),
			expected: time.Date(2022, 10, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "Leap day",
			input:    time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC),
			expected: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := StartOfMonth(tt.input)
			if !result.Equal(tt.expected) {
				t.Errorf("StartOfMonth(%v) = %v, want %v", tt.input, result, tt.expected)
			}
		})
	}
}

func TestIsWeekend(t *testing.T) {
	tests := []struct {
		name  string
		input time.Time
		want  bool
	}{
		{"Saturday is weekend", time.Date(2025, 1, 18, 0, 0, 0, 0, time.UTC), true},
		{"Sunday is weekend", time.Date(2025, 1, 19, 0, 0, 0, 0, time.UTC), true},
		{"Monday is not weekend", time.Date(2025, 1, 13, 0, 0, 0, 0, time.UTC), false},
		{"Friday is not weekend", time.Date(2025, 1, 17, 0, 0, 0, 0, time.UTC), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsWeekend(tt.input)

			if result != tt.want {
				t.Errorf("IsWeekend(%v) = %v, want %v",
					tt.input.Format("2006-01-02 Mon"), result, tt.want)
			}
		})
	}
}

func TestWeekday(t *testing.T) {
	all := AllWeekdays()
	if len(all) != 7 {
		t.Fatalf("AllWeekdays() returned %d values, want 7", len(all))
	}
	for i, w := range all {
		if w.Index() != i {
			t.Errorf("AllWeekdays()[%d].Index() = %d", i, w.Index())
		}
		if WeekdayOf(time.Weekday(i)) != w {
			t.Errorf("WeekdayOf(%v) = %v, want %v", time.Weekday(i), WeekdayOf(time.Weekday(i)), w)
		}
	}
	if Sunday.String() != "Sunday" || Saturday.Short() != "Sat" {
		t.Errorf("unexpected names: %s %s", Sunday, Saturday.Short())
	}
}
