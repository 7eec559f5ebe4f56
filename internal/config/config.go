package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/pkg/dateutil"
)

// EnvPrefix prefixes environment overrides, e.g. CALPAGER_CALENDAR_TIMEZONE.
const EnvPrefix = "CALPAGER"

// Config represents application configuration
type Config struct {
	Calendar CalendarConfig `mapstructure:"calendar"`
	Layout   LayoutConfig   `mapstructure:"layout"`
	Events   EventsConfig   `mapstructure:"events"`
	Daemon   DaemonConfig   `mapstructure:"daemon"`
	Log      LogConfig      `mapstructure:"log"`

	v *viper.Viper
}

// CalendarConfig selects the months the pager shows
type CalendarConfig struct {
	Timezone      string `mapstructure:"timezone"`       // IANA name, empty for local time
	DisplayOption string `mapstructure:"display_option"` // "dynamic" or "fixed"
	Focus         string `mapstructure:"focus"`          // YYYY-MM, empty for the current month
	MinMonth      string `mapstructure:"min_month"`      // YYYY-MM, empty for unbounded
	MaxMonth      string `mapstructure:"max_month"`
}

// InsetConfig is the padding around each month page
type InsetConfig struct {
	Top    float64 `mapstructure:"top"`
	Left   float64 `mapstructure:"left"`
	Bottom float64 `mapstructure:"bottom"`
	Right  float64 `mapstructure:"right"`
}

// LayoutConfig holds the geometry engine parameters
type LayoutConfig struct {
	SectionInset   InsetConfig `mapstructure:"section_inset"`
	ItemWidth      float64     `mapstructure:"item_width"`
	ItemHeight     float64     `mapstructure:"item_height"`
	SpacingWidth   float64     `mapstructure:"spacing_width"`
	SpacingHeight  float64     `mapstructure:"spacing_height"`
	Horizontal     string      `mapstructure:"horizontal"` // packed, filled or spread
	Vertical       string      `mapstructure:"vertical"`
	ViewportWidth  float64     `mapstructure:"viewport_width"`
	ViewportHeight float64     `mapstructure:"viewport_height"`
}

// EventsConfig points at the local day-mark sources
type EventsConfig struct {
	ICSFile     string        `mapstructure:"ics_file"`
	MarksFile   string        `mapstructure:"marks_file"`
	RemoteURL   string        `mapstructure:"remote_url"`   // isdayoff.ru style API, empty to disable
	FallbackURL string        `mapstructure:"fallback_url"` // xmlcalendar.ru style, {year} is replaced
	CacheTTL    time.Duration `mapstructure:"cache_ttl"`
}

// DaemonConfig represents daemon mode configuration
type DaemonConfig struct {
	RefreshTime string `mapstructure:"refresh_time"` // HH:MM in the calendar timezone
	SystemTray  bool   `mapstructure:"system_tray"`  // Windows only
}

// LogConfig represents logging configuration
type LogConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("calendar.timezone", "")
	v.SetDefault("calendar.display_option", "dynamic")
	v.SetDefault("calendar.focus", "")
	v.SetDefault("calendar.min_month", "")
	v.SetDefault("calendar.max_month", "")
	v.SetDefault("layout.section_inset.top", 16)
	v.SetDefault("layout.section_inset.left", 16)
	v.SetDefault("layout.section_inset.bottom", 16)
	v.SetDefault("layout.section_inset.right", 16)
	v.SetDefault("layout.item_width", 51)
	v.SetDefault("layout.item_height", 40)
	v.SetDefault("layout.spacing_width", 0)
	v.SetDefault("layout.spacing_height", 0)
	v.SetDefault("layout.horizontal", "packed")
	v.SetDefault("layout.vertical", "packed")
	v.SetDefault("layout.viewport_width", 390)
	v.SetDefault("layout.viewport_height", 320)
	v.SetDefault("events.ics_file", "")
	v.SetDefault("events.marks_file", "")
	v.SetDefault("events.remote_url", "")
	v.SetDefault("events.fallback_url", "")
	v.SetDefault("events.cache_ttl", "24h")
	v.SetDefault("daemon.refresh_time", "00:00")
	v.SetDefault("daemon.system_tray", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.level", "info")
}

// Load loads configuration from file. With an empty configPath the usual
// locations are searched and a missing file leaves the defaults in place.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.calendar-pager")
		v.AddConfigPath("/etc/calendar-pager")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*Config, error) {
	config := Config{v: v}
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	config.ExpandEnvVars()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}

// File returns the config file in use, or "" when running on defaults.
func (c *Config) File() string {
	if c.v == nil {
		return ""
	}
	return c.v.ConfigFileUsed()
}

// Watch calls onChange with the reloaded configuration whenever the file
// changes. Invalid edits are logged and ignored. onChange runs on the
// watcher goroutine.
func (c *Config) Watch(onChange func(*Config), logger *zap.Logger) error {
	if c.File() == "" {
		return errors.New("no config file to watch")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c.v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := decode(c.v)
		if err != nil {
			logger.Warn("Ignoring config change", zap.String("file", e.Name), zap.Error(err))
			return
		}
		logger.Info("Config reloaded", zap.String("file", e.Name))
		onChange(next)
	})
	c.v.WatchConfig()
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := c.Calendar.location(); err != nil {
		return fmt.Errorf("calendar.timezone: %w", err)
	}
	if _, err := calendar.ParseDisplayOption(c.Calendar.DisplayOption); err != nil {
		return fmt.Errorf("calendar.display_option: %w", err)
	}

	loc := c.Calendar.GetLocation()
	r, err := c.Calendar.monthRange(loc)
	if err != nil {
		return err
	}
	if c.Calendar.Focus != "" {
		focus, err := dateutil.ParseMonth(c.Calendar.Focus, loc)
		if err != nil {
			return fmt.Errorf("calendar.focus: %w", err)
		}
		if !r.Contains(focus) {
			return fmt.Errorf("calendar.focus %s is outside %s", focus, r)
		}
	}

	l := c.Layout
	if l.ItemWidth <= 0 || l.ItemHeight <= 0 {
		return fmt.Errorf("layout.item_width and layout.item_height must be positive")
	}
	if l.SpacingWidth < 0 || l.SpacingHeight < 0 {
		return fmt.Errorf("layout spacing must not be negative")
	}
	in := l.SectionInset
	if in.Top < 0 || in.Left < 0 || in.Bottom < 0 || in.Right < 0 {
		return fmt.Errorf("layout.section_inset must not be negative")
	}
	if _, err := layout.ParseMode(l.Horizontal); err != nil {
		return fmt.Errorf("layout.horizontal: %w", err)
	}
	if _, err := layout.ParseMode(l.Vertical); err != nil {
		return fmt.Errorf("layout.vertical: %w", err)
	}
	if l.ViewportWidth <= 0 || l.ViewportHeight <= 0 {
		return fmt.Errorf("layout viewport must be positive")
	}

	for name, raw := range map[string]string{"events.remote_url": c.Events.RemoteURL, "events.fallback_url": c.Events.FallbackURL} {
		if raw == "" {
			continue
		}
		u, err := url.Parse(strings.ReplaceAll(raw, "{year}", "2000"))
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an http(s) URL, got '%s'", name, raw)
		}
	}
	if c.Events.FallbackURL != "" && c.Events.RemoteURL == "" {
		return fmt.Errorf("events.fallback_url requires events.remote_url")
	}
	if c.Events.CacheTTL < 0 {
		return fmt.Errorf("events.cache_ttl must not be negative")
	}

	if c.Daemon.RefreshTime != "" {
		if _, _, err := parseClock(c.Daemon.RefreshTime); err != nil {
			return fmt.Errorf("daemon.refresh_time: %w", err)
		}
	}

	switch strings.ToLower(c.Log.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be debug, info, warn or error, got '%s'", c.Log.Level)
	}

	return nil
}

func (c *CalendarConfig) location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// GetLocation returns the calendar timezone, falling back to local time
func (c *CalendarConfig) GetLocation() *time.Location {
	loc, err := c.location()
	if err != nil {
		return time.Local
	}
	return loc
}

// GetDisplayOption returns the display option, Dynamic by default
func (c *CalendarConfig) GetDisplayOption() calendar.DisplayOption {
	o, err := calendar.ParseDisplayOption(c.DisplayOption)
	if err != nil {
		return calendar.Dynamic
	}
	return o
}

func (c *CalendarConfig) monthRange(loc *time.Location) (calendar.MonthRange, error) {
	var lower, upper *dateutil.Month
	if c.MinMonth != "" {
		m, err := dateutil.ParseMonth(c.MinMonth, loc)
		if err != nil {
			return calendar.MonthRange{}, fmt.Errorf("calendar.min_month: %w", err)
		}
		lower = &m
	}
	if c.MaxMonth != "" {
		m, err := dateutil.ParseMonth(c.MaxMonth, loc)
		if err != nil {
			return calendar.MonthRange{}, fmt.Errorf("calendar.max_month: %w", err)
		}
		upper = &m
	}
	r, err := calendar.NewMonthRange(lower, upper)
	if err != nil {
		return calendar.MonthRange{}, fmt.Errorf("calendar month range: %w", err)
	}
	return r, nil
}

// GetMonthRange returns the configured range in loc, unbounded on error
func (c *CalendarConfig) GetMonthRange(loc *time.Location) calendar.MonthRange {
	r, err := c.monthRange(loc)
	if err != nil {
		return calendar.Unbounded()
	}
	return r
}

// GetFocus returns the initial focus month in loc: the configured month,
// or the current month clamped into the range.
func (c *CalendarConfig) GetFocus(loc *time.Location) dateutil.Month {
	if c.Focus != "" {
		if m, err := dateutil.ParseMonth(c.Focus, loc); err == nil {
			return m
		}
	}
	return c.GetMonthRange(loc).Clamp(dateutil.ThisMonth(loc))
}

// GetParams returns the layout parameters
func (c *LayoutConfig) GetParams() layout.Params {
	h, err := layout.ParseMode(c.Horizontal)
	if err != nil {
		h = layout.Packed
	}
	v, err := layout.ParseMode(c.Vertical)
	if err != nil {
		v = layout.Packed
	}
	return layout.Params{
		SectionInset: layout.Insets{
			Top:    c.SectionInset.Top,
			Left:   c.SectionInset.Left,
			Bottom: c.SectionInset.Bottom,
			Right:  c.SectionInset.Right,
		},
		ItemSize:  layout.Size{Width: c.ItemWidth, Height: c.ItemHeight},
		Spacing:   layout.Size{Width: c.SpacingWidth, Height: c.SpacingHeight},
		Alignment: layout.Alignment{Horizontal: h, Vertical: v},
	}
}

// GetViewport returns the viewport used by the non-interactive commands
func (c *LayoutConfig) GetViewport() layout.Size {
	return layout.Size{Width: c.ViewportWidth, Height: c.ViewportHeight}
}

// GetRefreshTime returns the daily refresh time. Default: 00:00
func (c *DaemonConfig) GetRefreshTime() (hour, minute int) {
	h, m, err := parseClock(c.RefreshTime)
	if err != nil {
		return 0, 0
	}
	return h, m
}

// GetCronSpec returns the daily refresh as a five-field cron spec
func (c *DaemonConfig) GetCronSpec() string {
	h, m := c.GetRefreshTime()
	return fmt.Sprintf("%d %d * * *", m, h)
}

func parseClock(s string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time out of range: %q", s)
	}
	return hour, minute, nil
}

// GetLevel returns the zap level name, info by default
func (c *LogConfig) GetLevel() string {
	if c.Level == "" {
		return "info"
	}
	return strings.ToLower(c.Level)
}

// ExpandEnvVars expands environment variables in file paths
func (c *Config) ExpandEnvVars() {
	c.Events.ICSFile = os.ExpandEnv(c.Events.ICSFile)
	c.Events.MarksFile = os.ExpandEnv(c.Events.MarksFile)
	c.Log.File = os.ExpandEnv(c.Log.File)
}
