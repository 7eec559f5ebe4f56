package events

import (
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/username/calendar-pager/pkg/dateutil"
)

const marksFile = `# holidays
2022-09-09 holiday Chuseok
2022-09-10 weekend
2022-09-12 shortened
bad
2022-13-01 holiday
2022-09-15 party
2022-11 mask 001011000021100000110000011000
`

const calendarFile = `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//calendar-pager//test//EN
BEGIN:VEVENT
UID:standup
DTSTAMP:20220801T000000Z
DTSTART:20220905T090000Z
DTEND:20220905T093000Z
RRULE:FREQ=WEEKLY;COUNT=6
EXDATE:20220912T090000Z
SUMMARY:Standup
END:VEVENT
BEGIN:VEVENT
UID:standup
DTSTAMP:20220801T000000Z
RECURRENCE-ID:20220919T090000Z
DTSTART:20220920T090000Z
DTEND:20220920T093000Z
SUMMARY:Standup (moved)
END:VEVENT
BEGIN:VEVENT
UID:trip
DTSTAMP:20220801T000000Z
DTSTART;VALUE=DATE:20220929
DTEND;VALUE=DATE:20221002
SUMMARY:Trip
END:VEVENT
BEGIN:VEVENT
DTSTAMP:20220801T000000Z
DTSTART:20220901T100000Z
SUMMARY:No identity
END:VEVENT
END:VCALENDAR
`

func day(m, d int) dateutil.Date { return dateutil.MustDate(2022, m, d, time.UTC) }

func month(m int) dateutil.Month { return dateutil.MustMonth(2022, m, time.UTC) }

func loadFile(t *testing.T) *FileSource {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	fs := NewFileSource("marks.txt", time.UTC, logger)
	if err := fs.Read(strings.NewReader(marksFile)); err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	return fs
}

func loadCalendar(t *testing.T) *ICSSource {
	t.Helper()
	body := strings.ReplaceAll(calendarFile, "\n", "\r\n")
	events, err := ParseICS(strings.NewReader(body), time.UTC, nil)
	if err != nil {
		t.Fatalf("ParseICS() error = %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("ParseICS() returned %d events, want 3", len(events))
	}
	return NewICSSource(events, time.UTC, nil)
}

func TestFileSource_Read(t *testing.T) {
	fs := loadFile(t)

	if fs.Months() != 2 {
		t.Errorf("Months() = %d, want 2", fs.Months())
	}

	sep, err := fs.MarksIn(month(9))
	if err != nil {
		t.Fatalf("MarksIn(2022-09) error = %v", err)
	}
	want := []Mark{
		{Date: day(9, 9), Kind: KindHoliday, Note: "Chuseok"},
		{Date: day(9, 10), Kind: KindWeekend},
		{Date: day(9, 12), Kind: KindShortened},
	}
	if len(sep) != len(want) {
		t.Fatalf("MarksIn(2022-09) = %v, want %v", sep, want)
	}
	for i := range want {
		if !sep[i].Date.Equal(want[i].Date) || sep[i].Kind != want[i].Kind || sep[i].Note != want[i].Note {
			t.Errorf("mark[%d] = %v %v %q, want %v %v %q", i,
				sep[i].Date, sep[i].Kind, sep[i].Note, want[i].Date, want[i].Kind, want[i].Note)
		}
	}

	_, err = fs.MarksIn(month(10))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("MarksIn(2022-10) error = %v, want ErrNotFound", err)
	}
}

func TestParseMask(t *testing.T) {
	marks, err := ParseMask(month(11), "001011000021100000110000011000")
	if err != nil {
		t.Fatalf("ParseMask() error = %v", err)
	}
	if len(marks) != 30 {
		t.Fatalf("len(marks) = %d, want 30", len(marks))
	}

	tests := []struct {
		day  int
		want Kind
	}{
		{1, KindWorkday},
		{3, KindHoliday},
		{5, KindWeekend},
		{6, KindWeekend},
		{11, KindShortened},
		{30, KindWorkday},
	}
	for _, tt := range tests {
		if got := marks[tt.day-1].Kind; got != tt.want {
			t.Errorf("2022-11-%02d kind = %v, want %v", tt.day, got, tt.want)
		}
	}

	if _, err := ParseMask(month(11), "0010"); err == nil {
		t.Errorf("ParseMask() with a short mask should fail")
	}
	if _, err := ParseMask(month(11), strings.Repeat("3", 30)); err == nil {
		t.Errorf("ParseMask() with an invalid digit should fail")
	}
}

func TestExpand(t *testing.T) {
	src := loadCalendar(t)

	occ, err := Expand(src.events, ExpandOptions{From: month(9).Start(), To: month(9).End()}, nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}

	want := []struct {
		summary string
		start   time.Time
	}{
		{"Standup", time.Date(2022, 9, 5, 9, 0, 0, 0, time.UTC)},
		{"Standup (moved)", time.Date(2022, 9, 20, 9, 0, 0, 0, time.UTC)},
		{"Standup", time.Date(2022, 9, 26, 9, 0, 0, 0, time.UTC)},
		{"Trip", time.Date(2022, 9, 29, 0, 0, 0, 0, time.UTC)},
	}
	if len(occ) != len(want) {
		t.Fatalf("Expand() = %d occurrences, want %d: %v", len(occ), len(want), occ)
	}
	for i, w := range want {
		if occ[i].Summary != w.summary || !occ[i].Start.Equal(w.start) {
			t.Errorf("occurrence[%d] = %q at %v, want %q at %v", i, occ[i].Summary, occ[i].Start, w.summary, w.start)
		}
	}

	trip := occ[3]
	if !trip.AllDay {
		t.Errorf("trip should be all-day")
	}
	if dates := trip.Dates(time.UTC); len(dates) != 3 || !dates[2].Equal(day(10, 1)) {
		t.Errorf("trip dates = %v, want 2022-09-29 to 2022-10-01", dates)
	}

	if _, err := Expand(nil, ExpandOptions{From: month(10).Start(), To: month(9).Start()}, nil); err == nil {
		t.Errorf("Expand() with a reversed window should fail")
	}
}

func TestExpand_Cap(t *testing.T) {
	ev := Event{
		UID:   "daily",
		Start: time.Date(2022, 9, 1, 8, 0, 0, 0, time.UTC),
		End:   time.Date(2022, 9, 1, 9, 0, 0, 0, time.UTC),
		RRule: "FREQ=DAILY",
	}
	occ, err := Expand([]Event{ev}, ExpandOptions{From: month(9).Start(), To: month(9).End(), MaxPerEvent: 10}, nil)
	if err != nil {
		t.Fatalf("Expand() error = %v", err)
	}
	if len(occ) != 10 {
		t.Errorf("Expand() = %d occurrences, want 10", len(occ))
	}
}

func TestICSSource_MarksIn(t *testing.T) {
	src := loadCalendar(t)

	tests := []struct {
		name  string
		month dateutil.Month
		want  []dateutil.Date
	}{
		{"september", month(9), []dateutil.Date{day(9, 5), day(9, 20), day(9, 26), day(9, 29), day(9, 30)}},
		{"october", month(10), []dateutil.Date{day(10, 1), day(10, 3), day(10, 10)}},
		{"december", month(12), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			marks, err := src.MarksIn(tt.month)
			if err != nil {
				t.Fatalf("MarksIn() error = %v", err)
			}
			ix := NewIndex(marks)
			got := ix.Dates()
			if len(got) != len(tt.want) {
				t.Fatalf("marked dates = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if !got[i].Equal(tt.want[i]) {
					t.Errorf("date[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
			for _, m := range marks {
				if m.Kind != KindEvent {
					t.Errorf("mark kind = %v, want event", m.Kind)
				}
			}
		})
	}
}

type failingSource struct{ err error }

func (s failingSource) MarksIn(dateutil.Month) ([]Mark, error) { return nil, s.err }

func TestComposite(t *testing.T) {
	fs := loadFile(t)
	broken := failingSource{err: errors.New("disk on fire")}

	t.Run("skips failing source", func(t *testing.T) {
		c := NewComposite([]Source{broken, fs}, nil)
		marks, err := c.MarksIn(month(9))
		if err != nil {
			t.Fatalf("MarksIn() error = %v", err)
		}
		if len(marks) != 3 {
			t.Errorf("len(marks) = %d, want 3", len(marks))
		}
	})

	t.Run("all failed", func(t *testing.T) {
		c := NewComposite([]Source{broken}, nil)
		_, err := c.MarksIn(month(9))
		if err == nil || errors.Is(err, ErrNotFound) {
			t.Errorf("MarksIn() error = %v, want source failure", err)
		}
	})

	t.Run("nothing found", func(t *testing.T) {
		c := NewComposite([]Source{fs}, nil)
		_, err := c.MarksIn(month(12))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("MarksIn() error = %v, want ErrNotFound", err)
		}
	})
}

func TestBuildIndex(t *testing.T) {
	c := NewComposite([]Source{loadFile(t), loadCalendar(t)}, nil)
	ix, err := BuildIndex(c, month(9), month(11))
	if err != nil {
		t.Fatalf("BuildIndex() error = %v", err)
	}

	if !ix.Has(day(9, 9), KindHoliday) {
		t.Errorf("2022-09-09 should be a holiday")
	}
	if ix.Has(day(9, 9), KindEvent) {
		t.Errorf("2022-09-09 should have no event")
	}
	if !ix.Has(day(9, 29)) {
		t.Errorf("2022-09-29 should be marked")
	}
	if got := ix.On(day(11, 3)); len(got) != 1 || got[0].Kind != KindHoliday {
		t.Errorf("On(2022-11-03) = %v, want one holiday", got)
	}
	if ix.Has(day(12, 1)) {
		t.Errorf("2022-12-01 is outside the index")
	}
	for _, tt := range []struct {
		m    int
		want bool
	}{{8, false}, {9, true}, {11, true}, {12, false}} {
		if got := ix.Covers(month(tt.m)); got != tt.want {
			t.Errorf("Covers(2022-%02d) = %v, want %v", tt.m, got, tt.want)
		}
	}
	if first, last, ok := ix.Window(); !ok || !first.Equal(month(9)) || !last.Equal(month(11)) {
		t.Errorf("Window() = %s, %s, %v", first, last, ok)
	}
	if !NewIndex(nil).Covers(month(1)) {
		t.Errorf("an index of listed marks covers every month")
	}

	var nilIndex *Index
	if nilIndex.Len() != 0 || nilIndex.Has(day(9, 9)) || nilIndex.Covers(month(9)) {
		t.Errorf("nil index should be empty")
	}
}
