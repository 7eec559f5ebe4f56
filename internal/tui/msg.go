package tui

import (
	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/events"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/pkg/dateutil"
)

// ConfigMsg applies a reloaded configuration to a running model.
type ConfigMsg struct {
	Display   calendar.DisplayOption
	Alignment layout.Alignment
}

// NewDayMsg tells the model the date rolled over.
type NewDayMsg struct {
	Today dateutil.Date
}

// MarksMsg replaces the day marks.
type MarksMsg struct {
	Marks *events.Index
}

// MarksChangedMsg tells the model its mark sources changed on disk. The
// model reloads them around the month in focus.
type MarksChangedMsg struct{}

type marksFailedMsg struct {
	focus dateutil.Month
	err   error
}
