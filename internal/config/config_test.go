package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/pkg/dateutil"
)

const sampleConfig = `calendar:
  timezone: Asia/Seoul
  display_option: fixed
  focus: 2022-09
  min_month: 2022-08
  max_month: 2022-12
layout:
  section_inset:
    top: 8
    left: 16
    bottom: 8
    right: 16
  item_width: 51
  item_height: 40
  spacing_height: 2
  horizontal: filled
  vertical: spread
events:
  ics_file: ${CALPAGER_TEST_DIR}/events.ics
  remote_url: https://isdayoff.ru
  cache_ttl: 6h
daemon:
  refresh_time: "06:30"
log:
  level: debug
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	t.Setenv("CALPAGER_TEST_DIR", "/data")
	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	loc := cfg.Calendar.GetLocation()
	if loc.String() != "Asia/Seoul" {
		t.Errorf("GetLocation() = %v, want Asia/Seoul", loc)
	}
	if cfg.Calendar.GetDisplayOption() != calendar.Fixed {
		t.Errorf("GetDisplayOption() = %v, want fixed", cfg.Calendar.GetDisplayOption())
	}

	r := cfg.Calendar.GetMonthRange(loc)
	want := calendar.Between(dateutil.MustMonth(2022, 8, loc), dateutil.MustMonth(2022, 12, loc))
	if !r.Equal(want) {
		t.Errorf("GetMonthRange() = %v, want %v", r, want)
	}
	if focus := cfg.Calendar.GetFocus(loc); !focus.Equal(dateutil.MustMonth(2022, 9, loc)) {
		t.Errorf("GetFocus() = %v, want 2022-09", focus)
	}

	p := cfg.Layout.GetParams()
	if p.SectionInset != (layout.Insets{Top: 8, Left: 16, Bottom: 8, Right: 16}) {
		t.Errorf("SectionInset = %+v", p.SectionInset)
	}
	if p.Spacing != (layout.Size{Width: 0, Height: 2}) {
		t.Errorf("Spacing = %+v", p.Spacing)
	}
	if p.Alignment != (layout.Alignment{Horizontal: layout.Filled, Vertical: layout.Spread}) {
		t.Errorf("Alignment = %+v", p.Alignment)
	}
	if vp := cfg.Layout.GetViewport(); vp != (layout.Size{Width: 390, Height: 320}) {
		t.Errorf("GetViewport() = %+v, want default 390x320", vp)
	}

	if cfg.Events.ICSFile != "/data/events.ics" {
		t.Errorf("ICSFile = %q, want expanded path", cfg.Events.ICSFile)
	}
	if cfg.Events.RemoteURL != "https://isdayoff.ru" || cfg.Events.CacheTTL != 6*time.Hour {
		t.Errorf("Events = %+v, want remote url and 6h ttl", cfg.Events)
	}
	if h, m := cfg.Daemon.GetRefreshTime(); h != 6 || m != 30 {
		t.Errorf("GetRefreshTime() = %d:%d, want 6:30", h, m)
	}
	if spec := cfg.Daemon.GetCronSpec(); spec != "30 6 * * *" {
		t.Errorf("GetCronSpec() = %q", spec)
	}
	if cfg.Log.GetLevel() != "debug" {
		t.Errorf("GetLevel() = %q, want debug", cfg.Log.GetLevel())
	}
	if cfg.File() == "" {
		t.Errorf("File() is empty for a loaded config")
	}
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("CALPAGER_CALENDAR_TIMEZONE", "Asia/Tokyo")
	t.Setenv("CALPAGER_LAYOUT_HORIZONTAL", "spread")

	cfg, err := Load(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Calendar.Timezone != "Asia/Tokyo" {
		t.Errorf("Timezone = %q, want env override", cfg.Calendar.Timezone)
	}
	if cfg.Layout.GetParams().Alignment.Horizontal != layout.Spread {
		t.Errorf("Horizontal = %v, want spread", cfg.Layout.GetParams().Alignment.Horizontal)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatalf("Load() of a missing explicit file should fail")
	}
	if !strings.Contains(err.Error(), "failed to read config") {
		t.Errorf("error = %v", err)
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Calendar: CalendarConfig{DisplayOption: "dynamic"},
			Layout: LayoutConfig{
				ItemWidth: 51, ItemHeight: 40,
				Horizontal: "packed", Vertical: "packed",
				ViewportWidth: 390, ViewportHeight: 320,
			},
			Daemon: DaemonConfig{RefreshTime: "00:00"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }, "calendar.timezone"},
		{"bad display option", func(c *Config) { c.Calendar.DisplayOption = "weekly" }, "calendar.display_option"},
		{"bad min month", func(c *Config) { c.Calendar.MinMonth = "2022-13" }, "calendar.min_month"},
		{"reversed range", func(c *Config) {
			c.Calendar.MinMonth = "2022-12"
			c.Calendar.MaxMonth = "2022-08"
		}, "month range"},
		{"focus outside range", func(c *Config) {
			c.Calendar.MinMonth = "2022-08"
			c.Calendar.Focus = "2022-01"
		}, "outside"},
		{"zero item", func(c *Config) { c.Layout.ItemWidth = 0 }, "item_width"},
		{"negative spacing", func(c *Config) { c.Layout.SpacingWidth = -1 }, "spacing"},
		{"negative inset", func(c *Config) { c.Layout.SectionInset.Top = -1 }, "section_inset"},
		{"bad mode", func(c *Config) { c.Layout.Vertical = "stretched" }, "layout.vertical"},
		{"bad remote url", func(c *Config) { c.Events.RemoteURL = "isdayoff.ru" }, "events.remote_url"},
		{"fallback without remote", func(c *Config) {
			c.Events.FallbackURL = "https://xmlcalendar.ru/data/ru/{year}/calendar.json"
		}, "requires events.remote_url"},
		{"negative ttl", func(c *Config) { c.Events.CacheTTL = -time.Hour }, "cache_ttl"},
		{"bad refresh time", func(c *Config) { c.Daemon.RefreshTime = "25:00" }, "daemon.refresh_time"},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestGetters_Defaults(t *testing.T) {
	var d DaemonConfig
	if h, m := d.GetRefreshTime(); h != 0 || m != 0 {
		t.Errorf("GetRefreshTime() = %d:%d, want 0:00", h, m)
	}

	cal := CalendarConfig{Timezone: "Nowhere/Invalid", DisplayOption: "weird"}
	if cal.GetLocation() != time.Local {
		t.Errorf("GetLocation() should fall back to local time")
	}
	if cal.GetDisplayOption() != calendar.Dynamic {
		t.Errorf("GetDisplayOption() should fall back to dynamic")
	}

	bounded := CalendarConfig{MinMonth: "2030-01", MaxMonth: "2030-06"}
	focus := bounded.GetFocus(time.UTC)
	if !focus.Equal(dateutil.MustMonth(2030, 1, time.UTC)) {
		t.Errorf("GetFocus() = %v, want the current month clamped to 2030-01", focus)
	}

	var l LogConfig
	if l.GetLevel() != "info" {
		t.Errorf("GetLevel() = %q, want info", l.GetLevel())
	}
}

func TestWatch(t *testing.T) {
	path := writeConfig(t, sampleConfig)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	changed := make(chan *Config, 4)
	if err := cfg.Watch(func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}

	updated := strings.Replace(sampleConfig, "display_option: fixed", "display_option: dynamic", 1)
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		t.Fatalf("failed to rewrite config: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		select {
		case c := <-changed:
			if c.Calendar.GetDisplayOption() == calendar.Dynamic {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestWatch_NoFile(t *testing.T) {
	var cfg Config
	if err := cfg.Watch(func(*Config) {}, nil); err == nil {
		t.Errorf("Watch() without a file should fail")
	}
}
