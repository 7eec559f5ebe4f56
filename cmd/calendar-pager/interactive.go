package main

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/username/calendar-pager/internal/config"
	"github.com/username/calendar-pager/internal/coordinator"
	"github.com/username/calendar-pager/internal/daemon"
	"github.com/username/calendar-pager/internal/events"
	"github.com/username/calendar-pager/internal/tui"
	"github.com/username/calendar-pager/pkg/dateutil"
)

func tuiCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the calendar interactively",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(month)
			if err != nil {
				return err
			}
			// Console logs would draw over the screen.
			if s.cfg.Log.File == "" {
				logger = zap.NewNop()
			}

			marks, err := s.loadMarks(s.focus)
			if err != nil {
				return err
			}

			m := tui.New(tui.Options{
				Focus:     s.focus,
				Range:     s.r,
				Display:   s.cfg.Calendar.GetDisplayOption(),
				Alignment: s.cfg.Layout.GetParams().Alignment,
				Marks:     marks,
				LoadMarks: s.loadMarks,
			}, logger.Named("tui"))
			p := tea.NewProgram(m, tea.WithAltScreen())

			if err := s.cfg.Watch(func(c *config.Config) {
				p.Send(tui.ConfigMsg{
					Display:   c.Calendar.GetDisplayOption(),
					Alignment: c.Layout.GetParams().Alignment,
				})
			}, logger.Named("config")); err != nil {
				logger.Debug("Config changes are not watched", zap.Error(err))
			}

			c := cron.New(cron.WithLocation(s.loc))
			if _, err := c.AddFunc(s.cfg.Daemon.GetCronSpec(), func() {
				p.Send(tui.NewDayMsg{Today: dateutil.Today(s.loc)})
			}); err != nil {
				return fmt.Errorf("failed to schedule refresh: %w", err)
			}
			c.Start()
			defer c.Stop()

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()
			if files := s.files(); len(files) > 0 {
				go func() {
					err := events.Watch(ctx, files, 200*time.Millisecond, func() {
						p.Send(tui.MarksChangedMsg{})
					}, logger.Named("watch"))
					if err != nil {
						logger.Warn("Event files are not watched", zap.Error(err))
					}
				}()
			}

			if _, err := p.Run(); err != nil {
				return fmt.Errorf("failed to run interactive view: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to open (YYYY-MM)")

	return cmd
}

func daemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Keep today current and follow it into new months",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession("")
			if err != nil {
				return err
			}

			coord := coordinator.New[string](s.focus, s.r, dateProvider{}, s.cfg.Layout.GetParams(), logger.Named("coordinator"))
			coord.SetDisplayOption(s.cfg.Calendar.GetDisplayOption())
			coord.SetDelegate(coordinator.DelegateFuncs{
				DidChange: func(old, next dateutil.Month) {
					logger.Info("Focus month changed", zap.String("from", old.String()), zap.String("to", next.String()))
				},
			})
			coord.Bind(&staticHost{viewport: s.cfg.Layout.GetViewport()})

			d, err := daemon.NewDaemon(coord, s.loc, s.cfg.Daemon.GetCronSpec(), s.cfg.Daemon.SystemTray, logger.Named("daemon"))
			if err != nil {
				return err
			}
			d.OnNewDay(func(old, next dateutil.Date) {
				logger.Info("Calendar status", zap.String("status", d.Status()))
			})

			if err := s.cfg.Watch(func(c *config.Config) {
				d.Post(func() {
					coord.SetDisplayOption(c.Calendar.GetDisplayOption())
					coord.SetLayoutParams(c.Layout.GetParams())
				})
			}, logger.Named("config")); err != nil {
				logger.Debug("Config changes are not watched", zap.Error(err))
			}

			return d.Start()
		},
	}

	return cmd
}
