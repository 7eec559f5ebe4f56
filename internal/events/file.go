package events

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/username/calendar-pager/pkg/dateutil"
)

// FileSource reads day marks from a text file. Each line is either
//
//	YYYY-MM-DD type [note]
//	YYYY-MM mask digits
//
// where type is workday, weekend, holiday, shortened or event, and a mask
// has one digit per day of the month: 0 working, 1 day off, 2 shortened.
// Blank lines and lines starting with # are skipped.
type FileSource struct {
	filePath string
	loc      *time.Location
	logger   *zap.Logger
	data     map[string][]Mark // key: "YYYY-MM"
}

// NewFileSource creates a FileSource. Call Load before use.
func NewFileSource(filePath string, loc *time.Location, logger *zap.Logger) *FileSource {
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileSource{
		filePath: filePath,
		loc:      loc,
		logger:   logger,
		data:     make(map[string][]Mark),
	}
}

// Load reads the file.
func (fs *FileSource) Load() error {
	file, err := os.Open(fs.filePath)
	if err != nil {
		return fmt.Errorf("failed to open marks file: %w", err)
	}
	defer file.Close()

	if err := fs.Read(file); err != nil {
		return err
	}

	fs.logger.Info("Marks file loaded",
		zap.String("file", fs.filePath),
		zap.Int("months", len(fs.data)))
	return nil
}

// Read parses marks from r, adding to what is already loaded. Malformed
// lines are logged and skipped.
func (fs *FileSource) Read(r io.Reader) error {
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, " ", 3)
		if len(parts) < 2 {
			fs.logger.Warn("Invalid line format", zap.Int("line", lineNo), zap.String("text", line))
			continue
		}

		if parts[1] == "mask" {
			if len(parts) < 3 {
				fs.logger.Warn("Mask line without digits", zap.Int("line", lineNo))
				continue
			}
			fs.readMask(lineNo, parts[0], strings.TrimSpace(parts[2]))
			continue
		}

		date, err := dateutil.ParseDate(parts[0], fs.loc)
		if err != nil {
			fs.logger.Warn("Failed to parse date", zap.Int("line", lineNo), zap.String("date", parts[0]), zap.Error(err))
			continue
		}
		kind, err := ParseKind(parts[1])
		if err != nil {
			fs.logger.Warn("Unknown day type", zap.Int("line", lineNo), zap.String("type", parts[1]))
			continue
		}
		note := ""
		if len(parts) == 3 {
			note = strings.TrimSpace(parts[2])
		}
		fs.add(Mark{Date: date, Kind: kind, Note: note})
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading marks file: %w", err)
	}
	return nil
}

func (fs *FileSource) readMask(lineNo int, monthStr, digits string) {
	month, err := dateutil.ParseMonth(monthStr, fs.loc)
	if err != nil {
		fs.logger.Warn("Failed to parse month", zap.Int("line", lineNo), zap.String("month", monthStr), zap.Error(err))
		return
	}
	marks, err := ParseMask(month, digits)
	if err != nil {
		fs.logger.Warn("Invalid mask", zap.Int("line", lineNo), zap.Error(err))
		return
	}
	for _, m := range marks {
		fs.add(m)
	}
}

// ParseMask decodes a per-day digit string for month. A day off falling on
// a Saturday or Sunday is a weekend, otherwise a holiday.
func ParseMask(month dateutil.Month, digits string) ([]Mark, error) {
	first, next := month.DateRange()
	days, _ := first.DaysUntil(next)
	if len(digits) != days {
		return nil, fmt.Errorf("mask for %s has %d days, want %d", month, len(digits), days)
	}

	marks := make([]Mark, 0, days)
	for i, ch := range digits {
		date := first.AddDays(i)
		var kind Kind
		switch ch {
		case '0':
			kind = KindWorkday
		case '1':
			kind = KindHoliday
			if dateutil.IsWeekend(date.Start()) {
				kind = KindWeekend
			}
		case '2':
			kind = KindShortened
		default:
			return nil, fmt.Errorf("invalid mask digit %q on %s", ch, date)
		}
		marks = append(marks, Mark{Date: date, Kind: kind})
	}
	return marks, nil
}

func (fs *FileSource) add(m Mark) {
	key := monthKey(m.Date.Month())
	fs.data[key] = append(fs.data[key], m)
}

// MarksIn implements Source.
func (fs *FileSource) MarksIn(month dateutil.Month) ([]Mark, error) {
	marks, ok := fs.data[monthKey(month)]
	if !ok {
		return nil, fmt.Errorf("month not found in marks file: %s: %w", month, ErrNotFound)
	}
	return marks, nil
}

// Months returns the number of months with marks.
func (fs *FileSource) Months() int { return len(fs.data) }

func monthKey(m dateutil.Month) string {
	return fmt.Sprintf("%d-%02d", m.Year(), m.Number())
}
