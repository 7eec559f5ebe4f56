// Package tui hosts the paginated calendar in a terminal. One character
// cell is one layout point; pages slide horizontally when the month
// changes.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/username/calendar-pager/internal/adapter"
	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/coordinator"
	"github.com/username/calendar-pager/internal/events"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/internal/toast"
	"github.com/username/calendar-pager/pkg/dateutil"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	frameRate      = 30
	scrollDuration = 300 * time.Millisecond
)

// Params returns layout parameters in terminal cells: four columns and
// one row per day, one column of inset on each side.
func Params(a layout.Alignment) layout.Params {
	return layout.Params{
		SectionInset: layout.Insets{Left: 1, Right: 1},
		ItemSize:     layout.Size{Width: 4, Height: 1},
		Alignment:    a,
	}
}

// MarksLoader indexes the day marks around a focus month. It runs outside
// the event loop.
type MarksLoader func(focus dateutil.Month) (*events.Index, error)

// Options configure a Model.
type Options struct {
	Focus     dateutil.Month
	Range     calendar.MonthRange
	Display   calendar.DisplayOption
	Alignment layout.Alignment
	Marks     *events.Index
	// LoadMarks, when set, reindexes marks once the focus month or one of
	// its neighbours falls outside the months Marks covers.
	LoadMarks MarksLoader
	Theme     *Theme
	// Now defaults to time.Now.
	Now func() time.Time
}

// Model is a bubbletea model and the host surface of its coordinator.
type Model struct {
	coord  *coordinator.Coordinator[string]
	cells  *cellProvider
	theme  Theme
	keys   keyMap
	help   help.Model
	clock  *loopClock
	scroll toast.Animator
	toasts *toast.Controller[*toastView]
	logger *zap.Logger

	loadMarks    MarksLoader
	loads        []tea.Cmd
	marksLoading bool
	marksStale   bool

	width, height int
	offset        float64
	animGen       int
	cache         map[adapter.IndexPath]string
	overlay       []*toastView
	quitting      bool
}

// New creates a model sized for an 80x24 terminal until the first
// tea.WindowSizeMsg arrives. It panics when the range does not contain
// opts.Focus.
func New(opts Options, logger *zap.Logger) *Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	theme := DefaultTheme()
	if opts.Theme != nil {
		theme = *opts.Theme
	}

	m := &Model{
		theme:     theme,
		keys:      defaultKeyMap(),
		help:      help.New(),
		clock:     newLoopClock(opts.Now),
		logger:    logger,
		loadMarks: opts.LoadMarks,
		width:     defaultWidth,
		height:    defaultHeight,
		cache:     make(map[adapter.IndexPath]string),
	}
	m.help.Width = m.width

	today := dateutil.DateOf(m.clock.Now(), opts.Focus.Location())
	m.cells = &cellProvider{theme: theme, marks: opts.Marks, today: today, cursor: opts.Focus.FirstDay()}
	if opts.Focus.ContainsDate(today) {
		m.cells.cursor = today
	}

	m.scroll = toast.NewFrameAnimator(m.clock, frameRate)
	params := toast.DefaultParams[*toastView]()
	params.Animate = func(_ toast.Canvas[*toastView], v *toastView, p float64) { v.alpha = p }
	m.toasts = toast.NewController[*toastView](m, newToastView, params, m.scroll, m.clock, logger.Named("toast"))

	m.coord = coordinator.New[string](opts.Focus, opts.Range, m.cells, Params(opts.Alignment), logger.Named("coordinator"))
	m.coord.SetDisplayOption(opts.Display)
	m.coord.SetDelegate(coordinator.DelegateFuncs{DidChange: m.monthChanged})
	m.coord.Bind(m)
	m.ensureMarks()
	return m
}

// Coordinator returns the calendar state driven by the model.
func (m *Model) Coordinator() *coordinator.Coordinator[string] { return m.coord }

// Cursor returns the highlighted date.
func (m *Model) Cursor() dateutil.Date { return m.cells.cursor }

// Today returns the date rendered as today.
func (m *Model) Today() dateutil.Date { return m.cells.today }

func (m *Model) Init() tea.Cmd {
	return tea.Batch(append(m.takeLoads(), m.clock.drain())...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Resize(msg.Width, msg.Height)
	case timerFiredMsg:
		m.clock.fire(msg.id)
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case ConfigMsg:
		m.coord.SetDisplayOption(msg.Display)
		m.coord.SetLayoutParams(Params(msg.Alignment))
		m.toasts.Show("Configuration reloaded")
	case NewDayMsg:
		m.SetToday(msg.Today)
	case MarksMsg:
		m.setMarks(msg.Marks)
	case MarksChangedMsg:
		m.requestMarks()
	case marksFailedMsg:
		m.marksLoading = false
		m.logger.Warn("Failed to load marks", zap.String("focus", msg.focus.String()), zap.Error(msg.err))
		m.toasts.Show("Failed to load marks")
		if m.marksStale {
			m.requestMarks()
		}
	}
	return m, tea.Batch(append(m.takeLoads(), cmd, m.clock.drain())...)
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.Resize(m.width, m.height)
	case key.Matches(msg, m.keys.Left):
		m.MoveCursor(-1)
	case key.Matches(msg, m.keys.Right):
		m.MoveCursor(1)
	case key.Matches(msg, m.keys.Up):
		m.MoveCursor(-7)
	case key.Matches(msg, m.keys.Down):
		m.MoveCursor(7)
	case key.Matches(msg, m.keys.PrevPage):
		m.Swipe(-1)
	case key.Matches(msg, m.keys.NextPage):
		m.Swipe(1)
	case key.Matches(msg, m.keys.Today):
		m.GoToday()
	case key.Matches(msg, m.keys.Select):
		m.ToggleSelection()
	case key.Matches(msg, m.keys.Fixed):
		m.ToggleDisplayOption()
	}
	return nil
}

// Resize relays a terminal resize to the layout.
func (m *Model) Resize(width, height int) {
	m.width, m.height = width, height
	m.help.Width = width
	m.coord.ViewportResized(m.Viewport())
}

// MoveCursor moves the cursor by days, scrolling when it leaves the focus
// month. Moves out of the range are ignored.
func (m *Model) MoveCursor(days int) {
	next := m.cells.cursor.AddDays(days)
	if !m.coord.MonthRange().Contains(next.Month()) {
		return
	}
	m.setCursor(next)
	if !m.coord.FocusMonth().ContainsDate(next) {
		m.coord.Scroll(next.Month())
	}
}

// Swipe moves one page back or forward, the way a drag released past the
// middle of the page would.
func (m *Model) Swipe(delta int) {
	m.coord.DragBegan()
	target := m.coord.FocusMonth().AddMonths(delta)
	if !m.coord.MonthRange().Contains(target) {
		m.toasts.Show(fmt.Sprintf("%s is outside the calendar", target))
		return
	}

	width := m.Viewport().Width
	base := float64(m.focusSection()) * width
	x := m.coord.DragEnded(base + float64(delta)*width)
	m.animateTo(x, m.coord.DecelerationEnded)
}

// GoToday moves the cursor to today and scrolls to its month, clamped
// into the range.
func (m *Model) GoToday() {
	today := m.cells.today
	month := m.coord.MonthRange().Clamp(today.Month())
	if month.ContainsDate(today) {
		m.setCursor(today)
	} else {
		m.setCursor(month.FirstDay())
	}
	m.coord.Scroll(month)
}

// ToggleSelection selects or deselects the cursor date.
func (m *Model) ToggleSelection() {
	date := m.cells.cursor
	if err := m.coord.ToggleSelection(date); err != nil {
		m.logger.Warn("Failed to toggle selection", zap.String("date", date.String()), zap.Error(err))
		return
	}
	if m.coord.IsSelected(date) {
		m.toasts.Show(fmt.Sprintf("Selected %s", date))
	} else {
		m.toasts.Show(fmt.Sprintf("Deselected %s", date))
	}
}

// ToggleDisplayOption switches between dynamic and fixed rows.
func (m *Model) ToggleDisplayOption() {
	next := calendar.Fixed
	if m.coord.DisplayOption() == calendar.Fixed {
		next = calendar.Dynamic
	}
	m.coord.SetDisplayOption(next)
	m.toasts.Show(fmt.Sprintf("Showing %s rows", next))
}

// SetToday moves the today highlight.
func (m *Model) SetToday(today dateutil.Date) {
	old := m.cells.today
	if old.Equal(today) {
		return
	}
	m.cells.today = today
	m.reload(old)
	m.reload(today)
	m.toasts.Show(fmt.Sprintf("Today is %s", today))
}

func (m *Model) setCursor(date dateutil.Date) {
	old := m.cells.cursor
	m.cells.cursor = date
	m.reload(old)
	m.reload(date)
}

func (m *Model) reload(date dateutil.Date) {
	if date.IsZero() {
		return
	}
	if err := m.coord.ReloadDate(date); err != nil {
		m.logger.Debug("Failed to reload date", zap.String("date", date.String()), zap.Error(err))
	}
}

// monthChanged keeps the cursor on the same day of the new focus month
// and asks for marks when the month left the indexed window.
func (m *Model) monthChanged(_, next dateutil.Month) {
	m.ensureMarks()
	if next.ContainsDate(m.cells.cursor) {
		return
	}
	_, _, day := m.cells.cursor.Components()
	last := next.LastDay()
	if _, _, n := last.Components(); day > n {
		day = n
	}
	m.setCursor(next.FirstDay().AddDays(day - 1))
}

func (m *Model) setMarks(ix *events.Index) {
	m.cells.marks = ix
	m.coord.Reload()
	m.marksLoading = false
	if m.marksStale {
		m.requestMarks()
		return
	}
	m.ensureMarks()
}

// ensureMarks requests a reload unless the focus month and its neighbours
// are all indexed.
func (m *Model) ensureMarks() {
	if m.loadMarks == nil {
		return
	}
	r := m.coord.MonthRange()
	focus := m.coord.FocusMonth()
	for _, month := range []dateutil.Month{r.Clamp(focus.AddMonths(-1)), focus, r.Clamp(focus.AddMonths(1))} {
		if !m.cells.marks.Covers(month) {
			m.requestMarks()
			return
		}
	}
}

// requestMarks queues a load around the focus month. A request made while
// a load is running is repeated once that load finishes.
func (m *Model) requestMarks() {
	if m.loadMarks == nil {
		return
	}
	if m.marksLoading {
		m.marksStale = true
		return
	}
	m.marksLoading = true
	m.marksStale = false
	load, focus := m.loadMarks, m.coord.FocusMonth()
	m.logger.Debug("Loading marks", zap.String("focus", focus.String()))
	m.loads = append(m.loads, func() tea.Msg {
		ix, err := load(focus)
		if err != nil {
			return marksFailedMsg{focus: focus, err: err}
		}
		return MarksMsg{Marks: ix}
	})
}

func (m *Model) takeLoads() []tea.Cmd {
	loads := m.loads
	m.loads = nil
	return loads
}

func (m *Model) focusSection() int {
	focus := m.coord.FocusMonth()
	for i := 0; i < m.coord.SectionCount(); i++ {
		if m.coord.MonthForSection(i).Equal(focus) {
			return i
		}
	}
	return 0
}

func (m *Model) animateTo(x float64, done func()) {
	m.animGen++
	gen := m.animGen
	from := m.offset
	m.scroll.Run(scrollDuration, false, func(t float64) {
		if gen != m.animGen {
			return
		}
		m.offset = from + (x-from)*toast.EaseInOutCubic.At(t)
	}, func() {
		if gen != m.animGen {
			return
		}
		m.offset = x
		done()
	})
}

// Viewport implements adapter.Surface. Only the grid rows scroll.
func (m *Model) Viewport() layout.Size {
	return layout.Size{Width: float64(m.width), Height: float64(m.gridHeight())}
}

func (m *Model) ContentOffset() float64 { return m.offset }

func (m *Model) SetContentOffset(x float64, animated bool) {
	if !animated {
		m.animGen++
		m.offset = x
		return
	}
	m.animateTo(x, m.coord.ScrollAnimationEnded)
}

func (m *Model) ReloadData() {
	m.cache = make(map[adapter.IndexPath]string)
}

func (m *Model) ReloadItems(paths []adapter.IndexPath) {
	for _, p := range paths {
		delete(m.cache, p)
	}
}

func (m *Model) VisibleCell(path adapter.IndexPath) (string, bool) {
	cell, ok := m.cache[path]
	return cell, ok
}
