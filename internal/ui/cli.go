// Package ui implements the clinicweek command-line interface.
package ui

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicweek/internal/agenda"
	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/config"
	"github.com/clinicdesk/clinicweek/internal/logging"
	"github.com/clinicdesk/clinicweek/internal/tui"
)

var (
	// Version is set at build time
	Version = "dev"
	// Commit is set at build time
	Commit = "none"
)

// App holds the CLI application state.
type App struct {
	config    *config.Config
	source    calendar.Source
	logger    zerolog.Logger
	logCloser io.Closer
	root       *cobra.Command
	debug      bool
	configPath string
	now        func() time.Time
}

// NewApp creates a new CLI application. The calendar source is opened
// lazily by the commands that need it.
func NewApp(cfg *config.Config) *App {
	a := &App{
		config: cfg,
		logger: zerolog.Nop(),
		now:    time.Now,
	}

	a.root = &cobra.Command{
		Use:   "clinicweek",
		Short: "Weekly clinic calendar for the terminal",
		Long: `clinicweek shows a week of clinic appointments and personal calendar
events, laid out the way the clinic's web calendar lays them out.

Run without a command to open the interactive week view.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if a.configPath != "" {
				cfg, err := config.LoadFrom(a.configPath)
				if err != nil {
					return fmt.Errorf("loading config: %w", err)
				}
				a.config = cfg
			}
			return a.setupLogging(cmd == a.root)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			if err := a.ensureSource(); err != nil {
				return err
			}
			loader := agenda.NewLoader(a.source, a.config.CalendarSession(), a.logger)
			return tui.Run(loader, a.config, a.logger)
		},
	}

	a.root.PersistentFlags().BoolVar(&a.debug, "debug", false, "Enable debug logging")
	a.root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ~/.config/clinicweek/config.toml)")

	a.root.AddCommand(a.versionCmd())
	a.root.AddCommand(a.configCmd())
	a.root.AddCommand(a.weekCmd())
	a.root.AddCommand(a.cancelCmd())
	a.root.AddCommand(a.eventCmd())
	a.root.AddCommand(a.freeCmd())
	a.root.AddCommand(a.seedCmd())

	return a
}

// setupLogging builds the logger. The TUI owns the terminal, so it always
// logs to the configured file.
func (a *App) setupLogging(interactive bool) error {
	opts := logging.Options{Level: a.config.Log.Level}
	if a.debug {
		opts.Level = "debug"
	}
	if interactive {
		opts.File = a.config.Log.File
		opts.Quiet = true
	}

	logger, closer, err := logging.New(opts)
	if err != nil {
		return err
	}
	a.logger = logger
	a.logCloser = closer
	return nil
}

func (a *App) versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "clinicweek %s (commit: %s)\n", Version, Commit)
		},
	}
}

// SetArgs overrides the command-line arguments, for tests.
func (a *App) SetArgs(args []string) {
	a.root.SetArgs(args)
}

// SetOutput redirects command output, for tests.
func (a *App) SetOutput(w io.Writer) {
	a.root.SetOut(w)
	a.root.SetErr(w)
}

// Execute runs the CLI application.
func (a *App) Execute() error {
	return a.root.Execute()
}

// Close releases the calendar source and the log file.
func (a *App) Close() error {
	var errs []error
	if a.source != nil {
		errs = append(errs, a.source.Close())
		a.source = nil
	}
	if a.logCloser != nil {
		errs = append(errs, a.logCloser.Close())
	}
	return errors.Join(errs...)
}
