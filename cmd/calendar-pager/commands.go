package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/username/calendar-pager/internal/calendar"
	"github.com/username/calendar-pager/internal/coordinator"
	"github.com/username/calendar-pager/internal/layout"
	"github.com/username/calendar-pager/internal/tui"
	"github.com/username/calendar-pager/pkg/dateutil"
)

func showCmd() *cobra.Command {
	var month string
	var fixed bool
	var width, height int

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print one month page the way the interactive view draws it",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(month)
			if err != nil {
				return err
			}
			marks, err := s.loadMarks(s.focus)
			if err != nil {
				return err
			}

			display := s.cfg.Calendar.GetDisplayOption()
			if fixed {
				display = calendar.Fixed
			}
			m := tui.New(tui.Options{
				Focus:     s.focus,
				Range:     s.r,
				Display:   display,
				Alignment: s.cfg.Layout.GetParams().Alignment,
				Marks:     marks,
			}, logger.Named("tui"))
			m.Resize(width, height)

			fmt.Fprintln(cmd.OutOrStdout(), m.Page())
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to show (YYYY-MM)")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "Always show six weeks")
	cmd.Flags().IntVar(&width, "width", 40, "Page width in columns")
	cmd.Flags().IntVar(&height, "height", 12, "Page height in rows, including the help line")

	return cmd
}

type layoutReport struct {
	Month         string          `yaml:"month"`
	Display       string          `yaml:"display"`
	Viewport      layout.Size     `yaml:"viewport"`
	Params        layout.Params   `yaml:"params"`
	ContentSize   layout.Size     `yaml:"content_size"`
	SectionHeight float64         `yaml:"section_height"`
	Offset        float64         `yaml:"offset"`
	Weekdays      []weekdayReport `yaml:"weekdays"`
	Cells         []cellReport    `yaml:"cells"`
}

type weekdayReport struct {
	Label string  `yaml:"label"`
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

type cellReport struct {
	Date     string      `yaml:"date"`
	Position string      `yaml:"position"`
	Frame    layout.Rect `yaml:"frame"`
}

func layoutCmd() *cobra.Command {
	var month, format string
	var fixed bool

	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the computed geometry of a month page",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(month)
			if err != nil {
				return err
			}

			coord := coordinator.New[string](s.focus, s.r, dateProvider{}, s.cfg.Layout.GetParams(), logger.Named("coordinator"))
			if fixed {
				coord.SetDisplayOption(calendar.Fixed)
			} else {
				coord.SetDisplayOption(s.cfg.Calendar.GetDisplayOption())
			}
			host := &staticHost{viewport: s.cfg.Layout.GetViewport()}
			coord.Bind(host)

			report := buildLayoutReport(coord, host)
			out := cmd.OutOrStdout()
			switch format {
			case "yaml":
				enc := yaml.NewEncoder(out)
				enc.SetIndent(2)
				if err := enc.Encode(report); err != nil {
					return fmt.Errorf("failed to encode layout: %w", err)
				}
				return enc.Close()
			case "text":
				writeLayoutText(out, report)
				return nil
			default:
				return fmt.Errorf("unknown format %q, want text or yaml", format)
			}
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to lay out (YYYY-MM)")
	cmd.Flags().StringVar(&format, "format", "text", "Output format: text or yaml")
	cmd.Flags().BoolVar(&fixed, "fixed", false, "Always lay out six weeks")

	return cmd
}

func buildLayoutReport(coord *coordinator.Coordinator[string], host *staticHost) layoutReport {
	engine := coord.Layout()
	report := layoutReport{
		Month:         coord.FocusMonth().String(),
		Display:       coord.DisplayOption().String(),
		Viewport:      engine.Viewport(),
		Params:        engine.Params(),
		ContentSize:   engine.ContentSize(),
		SectionHeight: engine.CurrentSectionHeight(),
		Offset:        host.ContentOffset(),
	}
	for _, h := range coord.WeekdayHeaders() {
		report.Weekdays = append(report.Weekdays, weekdayReport{Label: h.Label, Start: h.Span.Start, End: h.Span.End})
	}
	for _, a := range engine.PageAttributes(coord.FocusMonth()) {
		ctx := coord.CellContext(a.IndexPath)
		report.Cells = append(report.Cells, cellReport{
			Date:     ctx.Date.String(),
			Position: ctx.Position.String(),
			Frame:    a.Frame,
		})
	}
	return report
}

func writeLayoutText(w io.Writer, r layoutReport) {
	fmt.Fprintf(w, "Month:          %s (%s)\n", r.Month, r.Display)
	fmt.Fprintf(w, "Viewport:       %gx%g\n", r.Viewport.Width, r.Viewport.Height)
	fmt.Fprintf(w, "Content size:   %gx%g\n", r.ContentSize.Width, r.ContentSize.Height)
	fmt.Fprintf(w, "Section height: %g\n", r.SectionHeight)
	fmt.Fprintf(w, "Offset:         %g\n", r.Offset)

	labels := make([]string, len(r.Weekdays))
	for i, wd := range r.Weekdays {
		labels[i] = fmt.Sprintf("%s [%g, %g)", wd.Label, wd.Start, wd.End)
	}
	fmt.Fprintf(w, "Weekdays:       %s\n\n", strings.Join(labels, " "))

	for _, c := range r.Cells {
		fmt.Fprintf(w, "%s  %-8s  %s\n", c.Date, c.Position, c.Frame)
	}
}

func planCmd() *cobra.Command {
	var month string
	var count int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the grid plan of one or more months",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession("")
			if err != nil {
				return err
			}
			start := s.focus
			if month != "" {
				if start, err = dateutil.ParseMonth(month, s.loc); err != nil {
					return fmt.Errorf("invalid --month: %w", err)
				}
			}
			if count < 1 {
				return fmt.Errorf("--count must be positive, got %d", count)
			}

			out := cmd.OutOrStdout()
			for i := 0; i < count; i++ {
				m := start.AddMonths(i)
				plan := calendar.NewLayoutPlan(m)
				fmt.Fprintf(out, "%s  %s  dynamic=%d fixed=%d\n", m, plan,
					calendar.Dynamic.ItemCount(plan), calendar.Fixed.ItemCount(plan))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "First month (YYYY-MM), default the focus month")
	cmd.Flags().IntVar(&count, "count", 1, "Number of months")

	return cmd
}

func marksCmd() *cobra.Command {
	var month string

	cmd := &cobra.Command{
		Use:   "marks",
		Short: "List the day marks of a month from the configured event files",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession(month)
			if err != nil {
				return err
			}
			marks, err := s.loadMarks(s.focus)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			n := 0
			for _, date := range marks.Dates() {
				if !s.focus.ContainsDate(date) {
					continue
				}
				for _, mark := range marks.On(date) {
					fmt.Fprintf(out, "%s  %-9s  %s\n", date, mark.Kind, mark.Note)
					n++
				}
			}
			if n == 0 {
				fmt.Fprintf(out, "No marks in %s\n", s.focus)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&month, "month", "", "Month to list (YYYY-MM)")

	return cmd
}
