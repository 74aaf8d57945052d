// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/dateutil"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "CLINICWEEK_"

// Storage sources.
const (
	SourceAPI   = "api"
	SourceLocal = "local"
)

// Config holds the application configuration.
type Config struct {
	API      APIConfig      `toml:"api"`
	Session  SessionConfig  `toml:"session"`
	Calendar CalendarConfig `toml:"calendar"`
	Storage  StorageConfig  `toml:"storage"`
	LLM      LLMConfig      `toml:"llm"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
}

// APIConfig holds the clinic backend connection.
type APIConfig struct {
	BaseURL string `toml:"base_url"` // e.g., "http://localhost:8080"
	Token   string `toml:"token"`    // bearer token; prefer the env override
	Timeout string `toml:"timeout"`  // Go duration, e.g., "20s"
}

// SessionConfig identifies who is looking at the calendar.
type SessionConfig struct {
	UserID   string `toml:"user_id"`
	UserType string `toml:"user_type"` // "doctor", "patient", "receptionist"
	ViewAs   string `toml:"view_as"`   // optional: "patient"
	DoctorID string `toml:"doctor_id"` // whose personal events are shown
}

// CalendarConfig holds the week grid geometry.
type CalendarConfig struct {
	DayStart       string  `toml:"day_start"` // e.g., "06:00"
	DayEnd         string  `toml:"day_end"`   // e.g., "21:00"
	PixelsPerHour  float64 `toml:"pixels_per_hour"`
	MinBlockHeight float64 `toml:"min_block_height"`
	Timezone       string  `toml:"timezone"` // IANA name; empty means local
}

// StorageConfig selects where calendar data comes from.
type StorageConfig struct {
	Source string `toml:"source"` // "api" or "local"
	DBPath string `toml:"db_path"`
}

// LLMConfig holds LLM provider settings for the weekly briefing.
type LLMConfig struct {
	Provider string `toml:"provider"` // "ollama", "lmstudio", "openai"
	Model    string `toml:"model"`
	BaseURL  string `toml:"base_url"`
	APIKey   string `toml:"api_key"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "clinic", "night"
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"` // used while the TUI owns the terminal
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Timeout: "20s",
		},
		Session: SessionConfig{
			UserType: string(calendar.RoleDoctor),
		},
		Calendar: CalendarConfig{
			DayStart:       dateutil.FormatClock(calendar.DefaultDayStart),
			DayEnd:         dateutil.FormatClock(calendar.DefaultDayEnd),
			PixelsPerHour:  calendar.DefaultPixelsPerHour,
			MinBlockHeight: calendar.DefaultMinHeight,
		},
		Storage: StorageConfig{
			Source: SourceLocal,
			DBPath: defaultDataPath("clinicweek.db"),
		},
		LLM: LLMConfig{
			Provider: "ollama",
			Model:    "llama3.2",
			BaseURL:  "http://localhost:11434",
		},
		UI: UIConfig{
			Theme: "clinic",
		},
		Log: LogConfig{
			Level: "info",
			File:  defaultDataPath("clinicweek.log"),
		},
	}
}

// defaultDataPath returns a path under the user data directory.
func defaultDataPath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return filepath.Join(home, ".local", "share", "clinicweek", name)
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "clinicweek", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand paths
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)
	cfg.Log.File = expandPath(cfg.Log.File)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CLINICWEEK_* environment variables to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	strs := map[string]*string{
		"API_BASE_URL": &cfg.API.BaseURL,
		"API_TOKEN":    &cfg.API.Token,
		"API_TIMEOUT":  &cfg.API.Timeout,
		"USER_ID":      &cfg.Session.UserID,
		"USER_TYPE":    &cfg.Session.UserType,
		"VIEW_AS":      &cfg.Session.ViewAs,
		"DOCTOR_ID":    &cfg.Session.DoctorID,
		"DAY_START":    &cfg.Calendar.DayStart,
		"DAY_END":      &cfg.Calendar.DayEnd,
		"TIMEZONE":     &cfg.Calendar.Timezone,
		"SOURCE":       &cfg.Storage.Source,
		"DB_PATH":      &cfg.Storage.DBPath,
		"LLM_PROVIDER": &cfg.LLM.Provider,
		"LLM_MODEL":    &cfg.LLM.Model,
		"LLM_BASE_URL": &cfg.LLM.BaseURL,
		"LLM_API_KEY":  &cfg.LLM.APIKey,
		"UI_THEME":     &cfg.UI.Theme,
		"LOG_LEVEL":    &cfg.Log.Level,
		"LOG_FILE":     &cfg.Log.File,
	}
	for name, dst := range strs {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			*dst = v
		}
	}

	floats := map[string]*float64{
		"PIXELS_PER_HOUR":  &cfg.Calendar.PixelsPerHour,
		"MIN_BLOCK_HEIGHT": &cfg.Calendar.MinBlockHeight,
	}
	for name, dst := range floats {
		if v := os.Getenv(EnvPrefix + name); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	start, err := dateutil.ParseClock(c.Calendar.DayStart)
	if err != nil {
		return fmt.Errorf("day_start must be in HH:MM format, got %q", c.Calendar.DayStart)
	}
	end, err := dateutil.ParseClock(c.Calendar.DayEnd)
	if err != nil {
		return fmt.Errorf("day_end must be in HH:MM format, got %q", c.Calendar.DayEnd)
	}
	if start >= end {
		return errors.New("day_start must be before day_end")
	}
	if c.Calendar.PixelsPerHour <= 0 {
		return errors.New("pixels_per_hour must be positive")
	}
	if c.Calendar.MinBlockHeight < 0 {
		return errors.New("min_block_height cannot be negative")
	}
	if _, err := c.Location(); err != nil {
		return err
	}

	if c.Session.UserType != "" && !calendar.Role(c.Session.UserType).Valid() {
		return fmt.Errorf("invalid user_type: %s", c.Session.UserType)
	}
	if c.Session.ViewAs != "" && !calendar.Role(c.Session.ViewAs).Valid() {
		return fmt.Errorf("invalid view_as: %s", c.Session.ViewAs)
	}

	switch c.Storage.Source {
	case SourceAPI:
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("base_url must be an http(s) URL, got %q", c.API.BaseURL)
		}
	case SourceLocal:
		if c.Storage.DBPath == "" {
			return errors.New("db_path must be set")
		}
	default:
		return fmt.Errorf("invalid storage source: %q (want %q or %q)", c.Storage.Source, SourceAPI, SourceLocal)
	}

	if _, err := c.Timeout(); err != nil {
		return err
	}
	return nil
}

// CalendarSession returns the calendar session described by the config.
func (c *Config) CalendarSession() calendar.Session {
	return calendar.Session{
		UserID:   c.Session.UserID,
		UserType: calendar.Role(c.Session.UserType),
		ViewAs:   calendar.Role(c.Session.ViewAs),
		DoctorID: c.Session.DoctorID,
	}
}

// Geometry returns the week grid geometry. The config must be valid.
func (c *Config) Geometry() calendar.Geometry {
	start, _ := dateutil.ParseClock(c.Calendar.DayStart)
	end, _ := dateutil.ParseClock(c.Calendar.DayEnd)
	return calendar.Geometry{
		DayStart:      start,
		DayEnd:        end,
		PixelsPerHour: c.Calendar.PixelsPerHour,
		MinHeight:     c.Calendar.MinBlockHeight,
	}
}

// Location returns the configured timezone, or time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Calendar.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Calendar.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Calendar.Timezone, err)
	}
	return loc, nil
}

// Timeout returns the API timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.API.Timeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.API.Timeout)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid api timeout %q", c.API.Timeout)
	}
	return d, nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
