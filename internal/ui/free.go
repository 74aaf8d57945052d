package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
	"github.com/clinicdesk/clinicweek/internal/scheduler"
	"github.com/clinicdesk/clinicweek/internal/summary"
)

func (a *App) freeCmd() *cobra.Command {
	var (
		date    string
		minimum time.Duration
		noColor bool
	)

	cmd := &cobra.Command{
		Use:   "free",
		Short: "List bookable gaps in a week",
		Long: `List the free slots of the week containing --date between the configured
day start and day end. Active appointments and events that block bookings
are busy; canceled appointments free their time. Past time is skipped.`,
		Example: `  clinicweek free
  clinicweek free --date next-week --min 1h`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if noColor || !isTerminal() {
				DisableColor()
			}

			loc, err := a.config.Location()
			if err != nil {
				return err
			}
			now := a.now().In(loc)
			anchor, err := dateutil.ParseRelativeDate(date, now)
			if err != nil {
				return err
			}

			loader, err := a.loader()
			if err != nil {
				return err
			}
			snap := loader.Load(context.Background(), calendar.NewWeekWindow(anchor))
			// Hidden bookings still occupy time, so lay out unfiltered.
			layout := snap.Layout(now, calendar.DefaultFilter(), a.config.Geometry())

			s := scheduler.New(a.config.Geometry(), minimum)
			week := s.WeekSlots(layout)

			out := cmd.OutOrStdout()
			header := fmt.Sprintf("FREE SLOTS: %s", layout.Window.Label())
			fmt.Fprintf(out, "\n  %s  %s\n", formatHeader(header),
				formatMuted(fmt.Sprintf("(%s or longer)", summary.FormatHours(int(s.Minimum().Minutes())))))
			fmt.Fprintln(out, strings.Repeat("─", ruleWidth))
			if snap.Err != nil {
				fmt.Fprintf(out, "  %s\n", formatError("Some calendar data could not be loaded: "+snap.Err.Error()))
			}

			total := 0
			for i, slots := range week {
				if len(slots) == 0 {
					continue
				}
				fmt.Fprintf(out, "  %s\n", formatHeader(fmt.Sprintf("%s %s",
					calendar.WeekdayShortName(i), layout.Days[i].Date.Format("Jan 2"))))
				for _, sl := range slots {
					fmt.Fprintf(out, "    %s-%s  %s\n",
						sl.Start.Format("15:04"), sl.End.Format("15:04"),
						formatMuted(summary.FormatHours(int(sl.Duration().Minutes()))))
				}
				total += scheduler.FreeMinutes(slots)
			}
			if total == 0 {
				fmt.Fprintln(out, "  No free slots left this week.")
			}

			fmt.Fprintln(out, strings.Repeat("─", ruleWidth))
			fmt.Fprintf(out, "  Free: %s\n\n", formatStats(summary.FormatHours(total)))
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day in the week: YYYY-MM-DD, today, next-week, monday...")
	cmd.Flags().DurationVar(&minimum, "min", scheduler.DefaultMinimum, "Shortest gap to list")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}
