package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clinicdesk/clinicweek/internal/calendar"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Calendar.DayStart != "06:00" {
		t.Errorf("expected day_start 06:00, got %s", cfg.Calendar.DayStart)
	}
	if cfg.Calendar.DayEnd != "21:00" {
		t.Errorf("expected day_end 21:00, got %s", cfg.Calendar.DayEnd)
	}
	if cfg.Calendar.PixelsPerHour != 60 {
		t.Errorf("expected 60 pixels per hour, got %v", cfg.Calendar.PixelsPerHour)
	}
	if cfg.Calendar.MinBlockHeight != 30 {
		t.Errorf("expected min block height 30, got %v", cfg.Calendar.MinBlockHeight)
	}
	if cfg.Storage.Source != SourceLocal {
		t.Errorf("expected local source, got %s", cfg.Storage.Source)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config is invalid: %v", err)
	}
}

func TestLoadFrom_FileNotExists(t *testing.T) {
	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Should return defaults
	if cfg.Calendar.DayStart != "06:00" {
		t.Errorf("expected default day_start, got %s", cfg.Calendar.DayStart)
	}
}

func TestLoadFrom_ValidFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	content := `
[api]
base_url = "https://clinic.example.com"
timeout = "5s"

[session]
user_id = "u-42"
user_type = "doctor"
doctor_id = "d-7"

[calendar]
day_start = "07:00"
day_end = "19:00"
pixels_per_hour = 48.0
min_block_height = 24.0
timezone = "UTC"

[storage]
source = "api"
db_path = "/tmp/test.db"

[llm]
provider = "openai"
model = "gpt-4o-mini"
`
	if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.API.BaseURL != "https://clinic.example.com" {
		t.Errorf("expected base_url, got %s", cfg.API.BaseURL)
	}
	if d, _ := cfg.Timeout(); d != 5*time.Second {
		t.Errorf("expected 5s timeout, got %v", d)
	}
	if cfg.Storage.Source != SourceAPI {
		t.Errorf("expected api source, got %s", cfg.Storage.Source)
	}
	if cfg.LLM.Provider != "openai" {
		t.Errorf("expected provider openai, got %s", cfg.LLM.Provider)
	}

	g := cfg.Geometry()
	if g.DayStart != 7*time.Hour || g.DayEnd != 19*time.Hour || g.PixelsPerHour != 48 || g.MinHeight != 24 {
		t.Errorf("unexpected geometry %+v", g)
	}

	s := cfg.CalendarSession()
	if s.UserID != "u-42" || s.UserType != calendar.RoleDoctor || s.DoctorID != "d-7" {
		t.Errorf("unexpected session %+v", s)
	}

	loc, err := cfg.Location()
	if err != nil || loc != time.UTC {
		t.Errorf("Location() = %v, %v", loc, err)
	}
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	if err := os.WriteFile(configPath, []byte("invalid toml [[["), 0o644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	_, err := LoadFrom(configPath)
	if err == nil {
		t.Error("expected error for invalid TOML")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CLINICWEEK_DAY_START", "08:00")
	t.Setenv("CLINICWEEK_USER_TYPE", "receptionist")
	t.Setenv("CLINICWEEK_API_TOKEN", "tok")
	t.Setenv("CLINICWEEK_PIXELS_PER_HOUR", "90")
	t.Setenv("CLINICWEEK_DB_PATH", "~/clinic.db")

	cfg, err := LoadFrom("/nonexistent/path/config.toml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Calendar.DayStart != "08:00" {
		t.Errorf("expected day_start from env, got %s", cfg.Calendar.DayStart)
	}
	if cfg.Session.UserType != "receptionist" {
		t.Errorf("expected user_type from env, got %s", cfg.Session.UserType)
	}
	if cfg.API.Token != "tok" {
		t.Errorf("expected token from env, got %q", cfg.API.Token)
	}
	if cfg.Calendar.PixelsPerHour != 90 {
		t.Errorf("expected pixels per hour from env, got %v", cfg.Calendar.PixelsPerHour)
	}
	if strings.HasPrefix(cfg.Storage.DBPath, "~") {
		t.Errorf("expected expanded db path, got %s", cfg.Storage.DBPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{"default", func(c *Config) {}, ""},
		{"bad day_start", func(c *Config) { c.Calendar.DayStart = "6am" }, "day_start"},
		{"bad day_end", func(c *Config) { c.Calendar.DayEnd = "25:00" }, "day_end"},
		{"start after end", func(c *Config) { c.Calendar.DayStart = "22:00" }, "before day_end"},
		{"zero scale", func(c *Config) { c.Calendar.PixelsPerHour = 0 }, "pixels_per_hour"},
		{"negative floor", func(c *Config) { c.Calendar.MinBlockHeight = -1 }, "min_block_height"},
		{"bad timezone", func(c *Config) { c.Calendar.Timezone = "Mars/Olympus" }, "timezone"},
		{"bad user type", func(c *Config) { c.Session.UserType = "nurse" }, "user_type"},
		{"bad view as", func(c *Config) { c.Session.ViewAs = "admin" }, "view_as"},
		{"bad source", func(c *Config) { c.Storage.Source = "s3" }, "storage source"},
		{"api without url", func(c *Config) { c.Storage.Source = SourceAPI; c.API.BaseURL = "" }, "base_url"},
		{"local without path", func(c *Config) { c.Storage.DBPath = "" }, "db_path"},
		{"bad timeout", func(c *Config) { c.API.Timeout = "soon" }, "timeout"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.modify(cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("got %v, want error containing %q", err, tc.wantErr)
			}
		})
	}
}

func TestSaveTo(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "subdir", "config.toml")

	cfg := Default()
	cfg.Session.UserID = "u-1"
	cfg.Calendar.DayStart = "07:30"

	if err := cfg.SaveTo(configPath); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	loaded, err := LoadFrom(configPath)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if loaded.Session.UserID != "u-1" || loaded.Calendar.DayStart != "07:30" {
		t.Errorf("round trip mismatch: %+v", loaded)
	}
}
