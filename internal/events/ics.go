package events

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/username/calendar-pager/pkg/dateutil"
)

const defaultMaxOccurrences = 5000

// Event is a VEVENT with its recurrence data kept unexpanded.
type Event struct {
	UID      string
	Summary  string
	Location string

	Start  time.Time
	End    time.Time
	AllDay bool

	RRule        string
	ExDates      []time.Time
	RecurrenceID *time.Time
}

// Occurrence is one concrete instance of an Event.
type Occurrence struct {
	UID     string
	Summary string
	Start   time.Time
	End     time.Time
	AllDay  bool
}

// Dates returns every day in loc the occurrence touches.
func (o Occurrence) Dates(loc *time.Location) []dateutil.Date {
	first := dateutil.DateOf(o.Start, loc)
	last := first
	if o.End.After(o.Start) {
		last = dateutil.DateOf(o.End.Add(-time.Nanosecond), loc)
	}
	var dates []dateutil.Date
	for d := first; !d.After(last); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// ParseICS reads the events of an iCalendar stream. All-day dates are
// read as floating dates in loc. Events that fail to parse are logged and
// skipped.
func ParseICS(r io.Reader, loc *time.Location, logger *zap.Logger) ([]Event, error) {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	var events []Event
	for _, ve := range cal.Events() {
		ev, err := parseEvent(ve, loc)
		if err != nil {
			logger.Warn("Skipping event", zap.Error(err))
			continue
		}
		events = append(events, ev)
	}

	logger.Debug("Calendar parsed", zap.Int("events", len(events)))
	return events, nil
}

func parseEvent(ve *ical.VEvent, loc *time.Location) (Event, error) {
	var ev Event

	uid := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uid == nil || uid.Value == "" {
		return ev, errors.New("missing UID")
	}
	ev.UID = uid.Value
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		ev.Summary = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyLocation); p != nil {
		ev.Location = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return ev, errors.New("missing DTSTART")
	}
	ev.AllDay = isDateValue(dtStart)

	if ev.AllDay {
		start, err := time.ParseInLocation("20060102", dtStart.Value, loc)
		if err != nil {
			return ev, fmt.Errorf("failed to parse DTSTART: %w", err)
		}
		ev.Start = start
		ev.End = start.AddDate(0, 0, 1)
		if dtEnd := ve.GetProperty(ical.ComponentPropertyDtEnd); dtEnd != nil {
			if end, err := time.ParseInLocation("20060102", dtEnd.Value, loc); err == nil && end.After(start) {
				ev.End = end
			}
		}
	} else {
		start, err := ve.GetStartAt()
		if err != nil {
			return ev, fmt.Errorf("failed to parse DTSTART: %w", err)
		}
		ev.Start = start
		ev.End = start
		if end, err := ve.GetEndAt(); err == nil && end.After(start) {
			ev.End = end
		}
	}

	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		ev.RRule = p.Value
	}
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part), ev.Start.Location()); err == nil {
				ev.ExDates = append(ev.ExDates, t)
			}
		}
	}
	if p := ve.GetProperty("RECURRENCE-ID"); p != nil {
		if t, err := parseICSTime(p.Value, ev.Start.Location()); err == nil {
			ev.RecurrenceID = &t
		}
	}
	return ev, nil
}

func isDateValue(p *ical.IANAProperty) bool {
	if vs, ok := p.ICalParameters["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

// parseICSTime parses the basic DATE and DATE-TIME forms. Values without a
// trailing Z are read in loc.
func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

// ExpandOptions bounds recurrence expansion to [From, To).
type ExpandOptions struct {
	From        time.Time
	To          time.Time
	MaxPerEvent int
}

// Expand turns events into the occurrences overlapping the window.
// RRULE, EXDATE and RECURRENCE-ID overrides are honoured.
func Expand(events []Event, opts ExpandOptions, logger *zap.Logger) ([]Occurrence, error) {
	if opts.To.Before(opts.From) {
		return nil, errors.New("expand window ends before it starts")
	}
	if opts.MaxPerEvent <= 0 {
		opts.MaxPerEvent = defaultMaxOccurrences
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	overrides := make(map[string][]Event)
	var base []Event
	for _, ev := range events {
		if ev.RecurrenceID != nil {
			overrides[ev.UID] = append(overrides[ev.UID], ev)
			continue
		}
		base = append(base, ev)
	}

	var out []Occurrence
	for _, ev := range base {
		if ev.RRule == "" {
			if overlaps(ev.Start, ev.End, opts.From, opts.To) {
				out = append(out, occurrenceOf(ev))
			}
			continue
		}
		occ, err := expandRecurring(ev, overrides[ev.UID], opts, logger)
		if err != nil {
			logger.Warn("Skipping recurring event", zap.String("uid", ev.UID), zap.String("rrule", ev.RRule), zap.Error(err))
			continue
		}
		out = append(out, occ...)
	}

	// Overrides moved into the window from outside it.
	for _, list := range overrides {
		for _, ov := range list {
			if overlaps(ov.Start, ov.End, opts.From, opts.To) && !containsInstance(out, ov) {
				out = append(out, occurrenceOf(ov))
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func expandRecurring(ev Event, overrides []Event, opts ExpandOptions, logger *zap.Logger) ([]Occurrence, error) {
	rule, err := rrule.StrToRRule(ev.RRule)
	if err != nil {
		return nil, fmt.Errorf("failed to parse RRULE: %w", err)
	}
	rule.DTStart(ev.Start)

	var set rrule.Set
	set.RRule(rule)
	for _, ex := range ev.ExDates {
		set.ExDate(ex.In(ev.Start.Location()))
	}

	duration := ev.End.Sub(ev.Start)
	from := opts.From.Add(-duration).In(ev.Start.Location())
	to := opts.To.In(ev.Start.Location())
	starts := set.Between(from, to, true)
	if len(starts) > opts.MaxPerEvent {
		logger.Warn("Recurring event truncated",
			zap.String("uid", ev.UID),
			zap.Int("occurrences", len(starts)),
			zap.Int("cap", opts.MaxPerEvent))
		starts = starts[:opts.MaxPerEvent]
	}

	var out []Occurrence
	for _, start := range starts {
		inst := ev
		inst.Start = start
		inst.End = start.Add(duration)
		if ev.AllDay {
			inst.End = start.AddDate(0, 0, int(math.Round(duration.Hours()/24)))
		}
		for _, ov := range overrides {
			if ov.RecurrenceID.Equal(start) {
				inst = ov
				break
			}
		}
		if overlaps(inst.Start, inst.End, opts.From, opts.To) {
			out = append(out, occurrenceOf(inst))
		}
	}
	return out, nil
}

func occurrenceOf(ev Event) Occurrence {
	return Occurrence{
		UID:     ev.UID,
		Summary: ev.Summary,
		Start:   ev.Start,
		End:     ev.End,
		AllDay:  ev.AllDay,
	}
}

func containsInstance(list []Occurrence, ev Event) bool {
	for _, o := range list {
		if o.UID == ev.UID && o.Start.Equal(ev.Start) {
			return true
		}
	}
	return false
}

// overlaps treats an empty range as the single instant at its start.
func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	if !aEnd.After(aStart) {
		return !aStart.Before(bStart) && aStart.Before(bEnd)
	}
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// ICSSource marks the days of every event occurrence.
type ICSSource struct {
	events []Event
	loc    *time.Location
	logger *zap.Logger
}

// NewICSSource creates a source over parsed events, marking days in loc.
func NewICSSource(events []Event, loc *time.Location, logger *zap.Logger) *ICSSource {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ICSSource{events: events, loc: loc, logger: logger}
}

// LoadICSFile parses the file at path into an ICSSource.
func LoadICSFile(path string, loc *time.Location, logger *zap.Logger) (*ICSSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open calendar: %w", err)
	}
	defer f.Close()

	events, err := ParseICS(f, loc, logger)
	if err != nil {
		return nil, err
	}
	return NewICSSource(events, loc, logger), nil
}

// Events returns the number of parsed events.
func (s *ICSSource) Events() int { return len(s.events) }

// MarksIn implements Source.
func (s *ICSSource) MarksIn(month dateutil.Month) ([]Mark, error) {
	occ, err := Expand(s.events, ExpandOptions{From: month.Start(), To: month.End()}, s.logger)
	if err != nil {
		return nil, err
	}
	var marks []Mark
	for _, o := range occ {
		for _, d := range o.Dates(s.loc) {
			if month.ContainsDate(d) {
				marks = append(marks, Mark{Date: d, Kind: KindEvent, Note: o.Summary})
			}
		}
	}
	return marks, nil
}
