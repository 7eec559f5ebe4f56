package main

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/username/calendar-pager/internal/adapter"
	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/config"
	"github.com/username/calendar-pager/internal/events"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/pkg/dateutil"
)

// marksWindow is how many months around the focus month get their marks
// indexed.
const marksWindow = 12

// session is the calendar state a command starts from.
type session struct {
	cfg   *config.Config
	loc   *time.Location
	focus dateutil.Month
	r     calendar.MonthRange

	// remote keeps its year cache across reloads.
	remote *events.RemoteSource
}

// newSession loads the config. month overrides the configured focus when
// set.
func newSession(month string) (*session, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	loc := cfg.Calendar.GetLocation()
	s := &session{
		cfg:   cfg,
		loc:   loc,
		focus: cfg.Calendar.GetFocus(loc),
		r:     cfg.Calendar.GetMonthRange(loc),
	}
	if month != "" {
		m, err := dateutil.ParseMonth(month, loc)
		if err != nil {
			return nil, fmt.Errorf("invalid --month: %w", err)
		}
		if !s.r.Contains(m) {
			return nil, fmt.Errorf("month %s is outside the configured range %s", m, s.r)
		}
		s.focus = m
	}
	return s, nil
}

// files returns the configured event files.
func (s *session) files() []string {
	var files []string
	for _, f := range []string{s.cfg.Events.MarksFile, s.cfg.Events.ICSFile} {
		if f != "" {
			files = append(files, f)
		}
	}
	return files
}

func (s *session) sources() ([]events.Source, error) {
	var sources []events.Source
	if path := s.cfg.Events.MarksFile; path != "" {
		fs := events.NewFileSource(path, s.loc, logger.Named("marks"))
		if err := fs.Load(); err != nil {
			return nil, fmt.Errorf("failed to load marks file: %w", err)
		}
		sources = append(sources, fs)
	}
	if path := s.cfg.Events.ICSFile; path != "" {
		src, err := events.LoadICSFile(path, s.loc, logger.Named("ics"))
		if err != nil {
			return nil, fmt.Errorf("failed to load calendar file: %w", err)
		}
		sources = append(sources, src)
	}
	if ev := s.cfg.Events; ev.RemoteURL != "" {
		if s.remote == nil {
			s.remote = events.NewRemoteSource(ev.RemoteURL, ev.FallbackURL, ev.CacheTTL, s.loc, logger.Named("remote"))
		}
		sources = append(sources, s.remote)
	}
	return sources, nil
}

// loadMarks indexes the marks of every configured source around focus.
// Files are read again on every call.
func (s *session) loadMarks(focus dateutil.Month) (*events.Index, error) {
	sources, err := s.sources()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return events.NewIndex(nil), nil
	}

	first := s.r.Clamp(focus.AddMonths(-marksWindow))
	last := s.r.Clamp(focus.AddMonths(marksWindow))
	idx, err := events.BuildIndex(events.NewComposite(sources, logger.Named("events")), first, last)
	if err != nil {
		return nil, fmt.Errorf("failed to index marks: %w", err)
	}
	logger.Debug("Marks indexed",
		zap.String("from", first.String()),
		zap.String("to", last.String()),
		zap.Int("days", idx.Len()))
	return idx, nil
}

// staticHost is a host surface without a screen, for commands that need
// the geometry and state but draw nothing.
type staticHost struct {
	viewport layout.Size
	offset   float64
}

func (h *staticHost) Viewport() layout.Size { return h.viewport }
func (h *staticHost) ContentOffset() float64 { return h.offset }
func (h *staticHost) SetContentOffset(x float64, _ bool) { h.offset = x }
func (h *staticHost) ReloadData() {}
func (h *staticHost) ReloadItems([]adapter.IndexPath) {}
func (h *staticHost) VisibleCell(adapter.IndexPath) (string, bool) { return "", false }

// dateProvider renders cells as ISO dates.
type dateProvider struct{}

func (dateProvider) Cell(ctx adapter.CellContext) string { return ctx.Date.String() }

func (dateProvider) WeekdayHeader(w dateutil.Weekday) (string, bool) { return w.Short(), true }
