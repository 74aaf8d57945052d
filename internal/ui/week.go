package ui

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
	"github.com/clinicdesk/clinicweek/internal/export"
	"github.com/clinicdesk/clinicweek/internal/llm"
	"github.com/clinicdesk/clinicweek/internal/summary"
)

func (a *App) weekCmd() *cobra.Command {
	var (
		date         string
		hideUpcoming bool
		hidePassed   bool
		hideCanceled bool
		icsPath      string
		brief        bool
		noColor      bool
	)

	cmd := &cobra.Command{
		Use:   "week",
		Short: "Print a week of appointments and events",
		Long: `Print the Monday to Sunday week containing --date (default: today).

Each block shows its status, time range and horizontal column:
[i/n] for overlapping items sharing a column, L½/R½ for canceled
appointments split from the active ones they overlap.`,
		Example: `  clinicweek week
  clinicweek week --date next-week --hide-canceled
  clinicweek week --date 2025-03-10 --ics week.ics
  clinicweek week --brief`,
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

			f := calendar.DefaultFilter()
			f.ShowUpcoming = !hideUpcoming
			f.ShowPassed = !hidePassed
			f.ShowCanceled = !hideCanceled

			loader, err := a.loader()
			if err != nil {
				return err
			}

			opts := summary.BuildWeekSummaryOptions{
				Week:     calendar.NewWeekWindow(anchor),
				Now:      now,
				Filter:   f,
				Geometry: a.config.Geometry(),
			}
			if brief {
				b, err := a.briefer()
				if err != nil {
					return err
				}
				opts.Briefer = b
			}

			ctx := context.Background()
			s, err := summary.BuildWeekSummary(ctx, loader, opts)
			if s == nil {
				return fmt.Errorf("building week summary: %w", err)
			}
			briefErr := err

			out := cmd.OutOrStdout()
			printWeek(out, s, loader.Session().EffectiveRole(), termWidth())

			if s.Briefing != nil {
				printBriefing(out, s.Briefing, ruleWidth)
			} else if briefErr != nil {
				fmt.Fprintf(out, "\n  %s\n", formatError("Briefing unavailable: "+briefErr.Error()))
			}

			if icsPath != "" {
				if err := writeICSFile(icsPath, s.Layout, loader.Session().EffectiveRole()); err != nil {
					return err
				}
				fmt.Fprintf(out, "\n  Exported %d blocks to %s\n", len(s.Layout.Blocks()), icsPath)
			}

			fmt.Fprintln(out)
			return nil
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "Any day in the week: YYYY-MM-DD, today, next-week, last-week, monday...")
	cmd.Flags().BoolVar(&hideUpcoming, "hide-upcoming", false, "Hide upcoming appointments")
	cmd.Flags().BoolVar(&hidePassed, "hide-passed", false, "Hide passed appointments")
	cmd.Flags().BoolVar(&hideCanceled, "hide-canceled", false, "Hide canceled appointments")
	cmd.Flags().StringVar(&icsPath, "ics", "", "Also export the visible blocks to an iCalendar file")
	cmd.Flags().BoolVar(&brief, "brief", false, "Add an LLM briefing of the week")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable color output")
	return cmd
}

// briefer builds an LLM briefer from config.
func (a *App) briefer() (*llm.Briefer, error) {
	client, err := llm.NewClient(a.config.LLM.Provider, a.config.LLM.Model, a.config.LLM.BaseURL, a.config.LLM.APIKey)
	if errors.Is(err, llm.ErrDisabled) {
		return nil, errors.New("--brief needs an llm provider in the config")
	}
	if err != nil {
		return nil, fmt.Errorf("creating LLM client: %w", err)
	}
	return llm.NewBriefer(client), nil
}

func writeICSFile(path string, layout *calendar.WeekLayout, role calendar.Role) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := export.WriteICS(f, layout, export.ICSOptions{Role: role}); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
