package daemon

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/pkg/dateutil"
)

// Calendar is the part of the coordinator the daemon drives.
type Calendar interface {
	FocusMonth() dateutil.Month
	MonthRange() calendar.MonthRange
	Scroll(m dateutil.Month)
	ReloadDate(date dateutil.Date) error
}

// Daemon keeps "today" current on a calendar and relays navigation from
// the system tray. Every calendar call happens on the goroutine running Run.
type Daemon struct {
	cal        Calendar
	loc        *time.Location
	spec       string
	systemTray bool
	logger     *zap.Logger
	now        func() time.Time

	ctx     context.Context
	cancel  context.CancelFunc
	actions chan func()
	trayApp *TrayApp

	today    dateutil.Date
	onNewDay []func(old, next dateutil.Date)
}

// NewDaemon creates a daemon refreshing today on the five-field cron spec,
// evaluated in loc.
func NewDaemon(cal Calendar, loc *time.Location, spec string, systemTray bool, logger *zap.Logger) (*Daemon, error) {
	if _, err := cron.ParseStandard(spec); err != nil {
		return nil, fmt.Errorf("failed to parse refresh schedule %q: %w", spec, err)
	}
	if loc == nil {
		loc = cal.FocusMonth().Location()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		cal:        cal,
		loc:        loc,
		spec:       spec,
		systemTray: systemTray,
		logger:     logger,
		now:        time.Now,
		ctx:        ctx,
		cancel:     cancel,
		actions:    make(chan func(), 16),
	}
	d.today = dateutil.DateOf(d.now(), loc)
	return d, nil
}

// OnNewDay adds a hook called on the daemon loop when the date rolls over.
// Register hooks before Run.
func (d *Daemon) OnNewDay(f func(old, next dateutil.Date)) {
	d.onNewDay = append(d.onNewDay, f)
}

// Start runs the daemon until Stop or a termination signal. With the tray
// enabled it blocks in the tray loop instead.
func (d *Daemon) Start() error {
	if d.systemTray {
		d.logger.Info("Initializing system tray")
		trayApp, err := NewTrayApp(d, d.logger)
		if err != nil {
			d.logger.Warn("Failed to initialize system tray", zap.Error(err))
			return d.startConsole()
		}
		d.trayApp = trayApp
		d.trayApp.Run()
		return nil
	}

	d.logger.Info("Running without system tray")
	return d.startConsole()
}

func (d *Daemon) startConsole() error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			d.logger.Info("Received signal, shutting down", zap.String("signal", sig.String()))
			d.Stop()
		case <-d.ctx.Done():
		}
	}()

	return d.Run(d.ctx)
}

// Run executes posted actions and the refresh schedule until ctx is done.
func (d *Daemon) Run(ctx context.Context) error {
	c := cron.New(cron.WithLocation(d.loc))
	if _, err := c.AddFunc(d.spec, func() { d.Post(d.RefreshToday) }); err != nil {
		return fmt.Errorf("failed to schedule refresh: %w", err)
	}
	c.Start()
	defer c.Stop()

	d.logger.Info("Daemon started",
		zap.String("schedule", d.spec),
		zap.String("timezone", d.loc.String()),
		zap.String("today", d.today.String()),
		zap.String("focus", d.cal.FocusMonth().String()))

	// The process may have slept through a scheduled run.
	d.RefreshToday()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info("Daemon stopped")
			if d.trayApp != nil {
				d.trayApp.Stop()
			}
			return nil
		case action := <-d.actions:
			action()
		}
	}
}

// Post queues f for the daemon loop. It returns false once the daemon has
// stopped.
func (d *Daemon) Post(f func()) bool {
	if d.ctx.Err() != nil {
		return false
	}
	select {
	case d.actions <- f:
		return true
	case <-d.ctx.Done():
		return false
	}
}

// Stop stops the daemon
func (d *Daemon) Stop() {
	d.cancel()
}

// Today returns the date the daemon last observed.
func (d *Daemon) Today() dateutil.Date { return d.today }

// RefreshToday re-reads the clock. On a new day it reloads the cells of
// both days and, when the old today's month was in focus, follows today
// into its month.
func (d *Daemon) RefreshToday() {
	next := dateutil.DateOf(d.now(), d.loc)
	if next.Equal(d.today) {
		d.logger.Debug("Today unchanged", zap.String("today", next.String()))
		return
	}

	old := d.today
	d.today = next
	for _, date := range []dateutil.Date{old, next} {
		if err := d.cal.ReloadDate(date); err != nil {
			d.logger.Warn("Failed to reload date", zap.String("date", date.String()), zap.Error(err))
		}
	}

	focus := d.cal.FocusMonth()
	if focus.ContainsDate(old) && !focus.ContainsDate(next) {
		d.cal.Scroll(next.Month())
	}

	d.logger.Info("Date rolled over",
		zap.String("from", old.String()),
		zap.String("to", next.String()),
		zap.String("focus", d.cal.FocusMonth().String()))
	d.notify("New day", next.String())
	for _, f := range d.onNewDay {
		f(old, next)
	}
}

// PreviousMonth scrolls one month back when the range allows it.
func (d *Daemon) PreviousMonth() { d.scrollTo(d.cal.FocusMonth().AddMonths(-1)) }

// NextMonth scrolls one month forward when the range allows it.
func (d *Daemon) NextMonth() { d.scrollTo(d.cal.FocusMonth().AddMonths(1)) }

// GoToday scrolls to the month containing today, clamped into the range.
func (d *Daemon) GoToday() { d.scrollTo(d.cal.MonthRange().Clamp(d.today.Month())) }

func (d *Daemon) scrollTo(m dateutil.Month) {
	if !d.cal.MonthRange().Contains(m) {
		d.logger.Debug("Month outside range", zap.String("month", m.String()))
		return
	}
	d.cal.Scroll(m)
	if d.trayApp != nil {
		d.trayApp.SetTooltip(d.Status())
	}
}

// Status describes the focus month and today.
func (d *Daemon) Status() string {
	return fmt.Sprintf("Showing %s, today is %s (%s)",
		d.cal.FocusMonth(), d.today, d.today.Weekday())
}

func (d *Daemon) notify(title, message string) {
	if d.trayApp != nil {
		d.trayApp.ShowNotification(title, message)
	}
}
