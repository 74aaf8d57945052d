package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
)

func (a *App) eventCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "event",
		Short: "Manage personal calendar events",
		Long: `Create and delete the doctor's personal calendar events. Events use
session.doctor_id from the config.`,
	}
	cmd.AddCommand(a.eventAddCmd())
	cmd.AddCommand(a.eventDeleteCmd())
	return cmd
}

// eventFlags holds the raw flag values of "event add".
type eventFlags struct {
	date     string
	start    string
	end      string
	kind     string
	color    string
	desc     string
	blocks   bool
	repeat   string
	days     string
	until    string
	count    int
	interval int
}

// build converts flags into a validated event request in now's location.
func (f eventFlags) build(title string, now time.Time) (calendar.NewPersonalEvent, error) {
	day, err := dateutil.ParseRelativeDate(f.date, now)
	if err != nil {
		return calendar.NewPersonalEvent{}, err
	}
	start, err := dateutil.ParseClock(f.start)
	if err != nil {
		return calendar.NewPersonalEvent{}, fmt.Errorf("--start: %w", err)
	}
	end, err := dateutil.ParseClock(f.end)
	if err != nil {
		return calendar.NewPersonalEvent{}, fmt.Errorf("--end: %w", err)
	}

	e := calendar.NewPersonalEvent{
		Title:              strings.TrimSpace(title),
		Description:        f.desc,
		EventType:          f.kind,
		Start:              dateutil.At(day, start),
		End:                dateutil.At(day, end),
		BlocksAppointments: f.blocks,
		Color:              f.color,
	}

	if f.repeat != "" {
		rec := &calendar.Recurrence{
			Pattern:  strings.ToLower(f.repeat),
			Interval: f.interval,
			Count:    f.count,
		}
		if f.days != "" {
			for _, name := range strings.Split(f.days, ",") {
				wd, ok := dateutil.ParseWeekday(name)
				if !ok {
					return calendar.NewPersonalEvent{}, fmt.Errorf("--days: unknown weekday %q", name)
				}
				rec.DaysOfWeek = append(rec.DaysOfWeek, isoDay(wd))
			}
		}
		if rec.Pattern == calendar.PatternWeekly && len(rec.DaysOfWeek) == 0 {
			rec.DaysOfWeek = []int{dateutil.ISOWeekday(day)}
		}
		if f.until != "" {
			until, err := dateutil.ParseDate(f.until, now.Location())
			if err != nil {
				return calendar.NewPersonalEvent{}, fmt.Errorf("--until: %w", err)
			}
			rec.EndDate = until
		}
		e.Recurrence = rec
	}

	return e, e.Validate()
}

// isoDay maps a weekday to 1 (Monday) through 7 (Sunday).
func isoDay(wd time.Weekday) int {
	if wd == time.Sunday {
		return 7
	}
	return int(wd)
}

func (a *App) eventAddCmd() *cobra.Command {
	var f eventFlags

	cmd := &cobra.Command{
		Use:   "add [title]",
		Short: "Add a personal event",
		Example: `  clinicweek event add "Lunch" --start 12:00 --end 13:00 --blocks
  clinicweek event add "Rounds" --date monday --start 08:00 --end 09:00 --repeat weekly --days mon,wed,fri --until 2025-06-30`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loc, err := a.config.Location()
			if err != nil {
				return err
			}
			e, err := f.build(args[0], a.now().In(loc))
			if err != nil {
				return err
			}

			loader, err := a.loader()
			if err != nil {
				return err
			}
			created, err := loader.AddEvent(context.Background(), e)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Created event %s: %s %s %s-%s\n",
				created.ID,
				created.Title,
				created.Start.In(loc).Format("2006-01-02"),
				created.Start.In(loc).Format("15:04"),
				created.End.In(loc).Format("15:04"),
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&f.date, "date", "", "Date (YYYY-MM-DD, today, tomorrow, monday...; default: today)")
	cmd.Flags().StringVar(&f.start, "start", "", "Start time (HH:MM, required)")
	cmd.Flags().StringVar(&f.end, "end", "", "End time (HH:MM, required)")
	cmd.Flags().StringVar(&f.kind, "type", "personal", "Event type")
	cmd.Flags().StringVar(&f.color, "color", "", "Display color (#RRGGBB)")
	cmd.Flags().StringVar(&f.desc, "description", "", "Description")
	cmd.Flags().BoolVar(&f.blocks, "blocks", false, "Block appointment bookings during the event")
	cmd.Flags().StringVar(&f.repeat, "repeat", "", "Recurrence: daily, weekly or monthly")
	cmd.Flags().StringVar(&f.days, "days", "", "Weekdays for weekly recurrence (mon,wed,fri)")
	cmd.Flags().StringVar(&f.until, "until", "", "Last date of the recurrence (YYYY-MM-DD)")
	cmd.Flags().IntVar(&f.count, "count", 0, "Number of occurrences")
	cmd.Flags().IntVar(&f.interval, "interval", 1, "Repeat every N days/weeks/months")

	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")

	return cmd
}

func (a *App) eventDeleteCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "delete [event-id]",
		Short: "Delete a personal event",
		Long: `Delete a personal event. With --all, an occurrence of a recurring
event removes the whole series.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			loader, err := a.loader()
			if err != nil {
				return err
			}
			if err := loader.DeleteEvent(context.Background(), args[0], all); err != nil {
				return err
			}

			what := "event"
			if all {
				what = "event series"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s %s\n", what, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Delete every occurrence of a recurring event")
	return cmd
}
