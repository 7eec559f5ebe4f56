package events

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/username/calendar-pager/pkg/dateutil"
)

const (
	defaultHTTPTimeout = 10 * time.Second
	defaultCacheTTL    = 24 * time.Hour
)

// RemoteSource fetches production-calendar marks from an isdayoff.ru style
// API, which answers one mask digit per day of the requested year. When
// the API fails it falls back to an xmlcalendar.ru style yearly JSON
// document. Whole years are fetched and cached.
type RemoteSource struct {
	baseURL     string
	fallbackURL string // "{year}" is replaced
	loc         *time.Location
	httpClient  *http.Client
	logger      *zap.Logger
	now         func() time.Time

	cacheMu  sync.RWMutex
	cacheTTL time.Duration
	cache    map[int]cachedYear
}

type cachedYear struct {
	months    map[int][]Mark // key: month number
	fetchedAt time.Time
}

// fallbackYear is the xmlcalendar.ru JSON structure.
type fallbackYear struct {
	Year   int `json:"year"`
	Months []struct {
		Month int    `json:"month"`
		Days  string `json:"days"` // "1*,2,3+,4": * shortened, + transferred
	} `json:"months"`
}

// NewRemoteSource creates a source querying baseURL. An empty fallbackURL
// disables the fallback; a zero cacheTTL keeps years for a day.
func NewRemoteSource(baseURL, fallbackURL string, cacheTTL time.Duration, loc *time.Location, logger *zap.Logger) *RemoteSource {
	if cacheTTL == 0 {
		cacheTTL = defaultCacheTTL
	}
	if loc == nil {
		loc = time.Local
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteSource{
		baseURL:     strings.TrimRight(baseURL, "/"),
		fallbackURL: fallbackURL,
		loc:         loc,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		logger:      logger,
		now:         time.Now,
		cacheTTL:    cacheTTL,
		cache:       make(map[int]cachedYear),
	}
}

// MarksIn implements Source.
func (s *RemoteSource) MarksIn(month dateutil.Month) ([]Mark, error) {
	months, err := s.year(month.Year())
	if err != nil {
		return nil, err
	}
	marks, ok := months[month.Number()]
	if !ok {
		return nil, fmt.Errorf("no calendar data for %s: %w", month, ErrNotFound)
	}
	return marks, nil
}

func (s *RemoteSource) year(year int) (map[int][]Mark, error) {
	s.cacheMu.RLock()
	cached, ok := s.cache[year]
	s.cacheMu.RUnlock()
	if ok && s.now().Sub(cached.fetchedAt) < s.cacheTTL {
		s.logger.Debug("Using cached year", zap.Int("year", year))
		return cached.months, nil
	}

	months, err := s.fetchYear(year)
	if err != nil {
		if s.fallbackURL == "" {
			return nil, err
		}
		s.logger.Warn("Failed to fetch year from API, trying fallback",
			zap.Int("year", year),
			zap.Error(err))

		var fallbackErr error
		months, fallbackErr = s.fetchFallbackYear(year)
		if fallbackErr != nil {
			return nil, fmt.Errorf("API and fallback both failed: API=%w, Fallback=%v", err, fallbackErr)
		}
	}

	s.cacheMu.Lock()
	s.cache[year] = cachedYear{months: months, fetchedAt: s.now()}
	s.cacheMu.Unlock()
	return months, nil
}

// fetchYear asks the API for the year mask, with pre=1 so shortened days
// are reported, and splits it into months.
func (s *RemoteSource) fetchYear(year int) (map[int][]Mark, error) {
	url := fmt.Sprintf("%s/api/getdata?year=%d&pre=1", s.baseURL, year)
	s.logger.Debug("Fetching year", zap.String("url", url))

	resp, err := s.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch calendar data: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("no calendar data for %d: %w", year, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	digits := strings.TrimSpace(string(body))

	months := make(map[int][]Mark, 12)
	offset := 0
	for n := 1; n <= 12; n++ {
		month, err := dateutil.NewMonth(year, n, s.loc)
		if err != nil {
			return nil, err
		}
		first, next := month.DateRange()
		days, _ := first.DaysUntil(next)
		if offset+days > len(digits) {
			return nil, fmt.Errorf("year mask for %d has %d days, too short for %s", year, len(digits), month)
		}
		marks, err := ParseMask(month, digits[offset:offset+days])
		if err != nil {
			return nil, fmt.Errorf("failed to parse year mask: %w", err)
		}
		months[n] = marks
		offset += days
	}
	if offset != len(digits) {
		return nil, fmt.Errorf("year mask for %d has %d days, want %d", year, len(digits), offset)
	}

	s.logger.Info("Year fetched from API", zap.Int("year", year))
	return months, nil
}

func (s *RemoteSource) fetchFallbackYear(year int) (map[int][]Mark, error) {
	url := strings.ReplaceAll(s.fallbackURL, "{year}", strconv.Itoa(year))
	s.logger.Info("Downloading fallback calendar data", zap.String("url", url), zap.Int("year", year))

	resp, err := s.httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch fallback data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fallback API returned status %d", resp.StatusCode)
	}

	var data fallbackYear
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("failed to parse fallback JSON: %w", err)
	}

	months := make(map[int][]Mark, len(data.Months))
	for _, m := range data.Months {
		month, err := dateutil.NewMonth(year, m.Month, s.loc)
		if err != nil {
			return nil, fmt.Errorf("invalid month %d in fallback data: %w", m.Month, err)
		}
		marks, err := ParseDayList(month, m.Days)
		if err != nil {
			return nil, fmt.Errorf("failed to parse fallback month %s: %w", month, err)
		}
		months[m.Month] = marks
	}
	return months, nil
}

// ClearCache drops every fetched year.
func (s *RemoteSource) ClearCache() {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	s.cache = make(map[int]cachedYear)
	s.logger.Info("Calendar cache cleared")
}

// ParseDayList decodes a comma separated list of the month's days off.
// A "*" suffix marks a shortened working day, "+" a transferred day off.
// Unlisted days are workdays.
func ParseDayList(month dateutil.Month, list string) ([]Mark, error) {
	off := make(map[int]bool)
	shortened := make(map[int]bool)
	for _, part := range strings.Split(list, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		short := strings.HasSuffix(part, "*")
		day, err := strconv.Atoi(strings.TrimRight(part, "*+"))
		if err != nil {
			return nil, fmt.Errorf("invalid day %q: %w", part, dateutil.ErrIllegalArgument)
		}
		if short {
			shortened[day] = true
		} else {
			off[day] = true
		}
	}

	first, next := month.DateRange()
	var marks []Mark
	for date := first; date.Before(next); date = date.AddDays(1) {
		_, _, day := date.Components()
		switch {
		case shortened[day]:
			marks = append(marks, Mark{Date: date, Kind: KindShortened})
		case off[day] && dateutil.IsWeekend(date.Start()):
			marks = append(marks, Mark{Date: date, Kind: KindWeekend})
		case off[day]:
			marks = append(marks, Mark{Date: date, Kind: KindHoliday})
		default:
			marks = append(marks, Mark{Date: date, Kind: KindWorkday})
		}
	}
	return marks, nil
}
