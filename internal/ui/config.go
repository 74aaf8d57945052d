package ui

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clinicdesk/clinicweek/internal/config"
	"github.com/clinicdesk/clinicweek/internal/tui/theme"
)

func (a *App) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or create the configuration file",
		Long: `Show the effective configuration (file, defaults and CLINICWEEK_*
environment overrides merged), or write a config file with default values.

Example:
  clinicweek config show
  clinicweek config init --force`,
	}
	cmd.AddCommand(a.configShowCmd())
	cmd.AddCommand(a.configInitCmd())
	return cmd
}

// configFile returns the path given with --config, or the default path.
func (a *App) configFile() string {
	if a.configPath != "" {
		return a.configPath
	}
	return config.DefaultConfigPath()
}

func (a *App) configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			path := a.configFile()
			if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
				fmt.Fprintf(out, "Config file: %s (not found, using defaults)\n\n", path)
			} else {
				fmt.Fprintf(out, "Config file: %s\n\n", path)
			}
			printConfig(out, a.config)
			return nil
		},
	}
}

func (a *App) configInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with default values",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := a.configFile()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			if err := config.Default().SaveTo(path); err != nil {
				return fmt.Errorf("saving config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")
	return cmd
}

func printConfig(w io.Writer, cfg *config.Config) {
	token := ""
	if cfg.API.Token != "" {
		token = "(set)"
	}
	apiKey := ""
	if cfg.LLM.APIKey != "" {
		apiKey = "(set)"
	}
	tz := cfg.Calendar.Timezone
	if tz == "" {
		tz = "local"
	}

	fmt.Fprintln(w, "[session]")
	fmt.Fprintf(w, "  user_id          = %s\n", cfg.Session.UserID)
	fmt.Fprintf(w, "  user_type        = %s\n", cfg.Session.UserType)
	if cfg.Session.ViewAs != "" {
		fmt.Fprintf(w, "  view_as          = %s\n", cfg.Session.ViewAs)
	}
	fmt.Fprintf(w, "  doctor_id        = %s\n", cfg.Session.DoctorID)
	fmt.Fprintln(w, "\n[calendar]")
	fmt.Fprintf(w, "  day_start        = %s\n", cfg.Calendar.DayStart)
	fmt.Fprintf(w, "  day_end          = %s\n", cfg.Calendar.DayEnd)
	fmt.Fprintf(w, "  pixels_per_hour  = %g\n", cfg.Calendar.PixelsPerHour)
	fmt.Fprintf(w, "  min_block_height = %g\n", cfg.Calendar.MinBlockHeight)
	fmt.Fprintf(w, "  timezone         = %s\n", tz)
	fmt.Fprintln(w, "\n[storage]")
	fmt.Fprintf(w, "  source           = %s\n", cfg.Storage.Source)
	fmt.Fprintf(w, "  db_path          = %s\n", cfg.Storage.DBPath)
	fmt.Fprintln(w, "\n[api]")
	fmt.Fprintf(w, "  base_url         = %s\n", cfg.API.BaseURL)
	fmt.Fprintf(w, "  token            = %s\n", token)
	fmt.Fprintf(w, "  timeout          = %s\n", cfg.API.Timeout)
	fmt.Fprintln(w, "\n[llm]")
	fmt.Fprintf(w, "  provider         = %s\n", cfg.LLM.Provider)
	fmt.Fprintf(w, "  model            = %s\n", cfg.LLM.Model)
	fmt.Fprintf(w, "  base_url         = %s\n", cfg.LLM.BaseURL)
	fmt.Fprintf(w, "  api_key          = %s\n", apiKey)
	fmt.Fprintln(w, "\n[ui]")
	themeName := cfg.UI.Theme
	if !theme.IsAvailable(themeName) {
		themeName += " (unknown, using " + theme.DefaultName + ")"
	}
	fmt.Fprintf(w, "  theme            = %s\n", themeName)
	fmt.Fprintf(w, "  available        = %s\n", strings.Join(theme.Available(), ", "))
	fmt.Fprintln(w, "\n[log]")
	fmt.Fprintf(w, "  level            = %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  file             = %s\n", cfg.Log.File)
}
