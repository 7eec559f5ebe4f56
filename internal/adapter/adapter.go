// Package adapter maps the month window of a calendar onto the flat
// section/item index space of a host rendering surface and runs the drag
// driven page transitions of that surface.
package adapter

import (
	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/pkg/dateutil"
)

// IndexPath addresses a cell on the host surface.
type IndexPath = layout.IndexPath

// Position tells whether a cell belongs to the page's own month.
type Position int

const (
	Leading Position = iota
	Main
	Trailing
)

func (p Position) String() string {
	switch p {
	case Leading:
		return "leading"
	case Trailing:
		return "trailing"
	default:
		return "main"
	}
}

// CellContext is everything a view provider needs to render one cell.
type CellContext struct {
	Date     dateutil.Date
	Position Position
	Selected bool
}

// Surface is the scrolling part of a host: a horizontal viewport over the
// page filmstrip.
type Surface interface {
	Viewport() layout.Size
	ContentOffset() float64
	SetContentOffset(x float64, animated bool)
}

// Host is a rendering surface showing cells of type C.
type Host[C any] interface {
	Surface
	ReloadData()
	ReloadItems(paths []IndexPath)
	VisibleCell(path IndexPath) (C, bool)
}

// State is the calendar state the data source reads on every call. The
// owner of a DataSource implements it and outlives it.
type State interface {
	FocusMonth() dateutil.Month
	MonthRange() calendar.MonthRange
	DisplayOption() calendar.DisplayOption
}
