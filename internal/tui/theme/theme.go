// Package theme provides color themes for the TUI.
package theme

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// DefaultName is the theme used when none is configured.
const DefaultName = "clinic"

// builtin themes, keyed by name.
var builtin = map[string]string{
	"clinic": `
name = "clinic"
bg = "#1e2230"
bg_highlight = "#2a3042"
bg_selection = "#3a4258"
fg = "#e6e9f0"
fg_muted = "#8a91a6"
accent = "#4fb3bf"
active = "#5ec27a"
passed = "#7d8597"
canceled = "#e06c75"
event = "#ffb84d"
blocking = "#d19a66"
today = "#4fb3bf"
`,
	"night": `
name = "night"
bg = "#11111b"
bg_highlight = "#1e1e2e"
bg_selection = "#313244"
fg = "#cdd6f4"
fg_muted = "#6c7086"
accent = "#89b4fa"
active = "#a6e3a1"
passed = "#585b70"
canceled = "#f38ba8"
event = "#f9e2af"
blocking = "#fab387"
today = "#89dceb"
`,
	"daylight": `
name = "daylight"
bg = "#fafafa"
bg_highlight = "#eceff4"
bg_selection = "#d8dee9"
fg = "#2e3440"
fg_muted = "#7b8394"
accent = "#1f7a8c"
active = "#2e8b57"
passed = "#a0a7b4"
canceled = "#c0392b"
event = "#e08e0b"
blocking = "#b8651b"
today = "#1f7a8c"
`,
}

// Theme holds all colors for a TUI theme.
type Theme struct {
	Name        string `toml:"name"`
	Bg          string `toml:"bg"`
	BgHighlight string `toml:"bg_highlight"` // grid stripes
	BgSelection string `toml:"bg_selection"` // focused day
	Fg          string `toml:"fg"`
	FgMuted     string `toml:"fg_muted"`
	Accent      string `toml:"accent"`   // title, borders
	Active      string `toml:"active"`   // upcoming appointments
	Passed      string `toml:"passed"`   // passed appointments
	Canceled    string `toml:"canceled"` // canceled appointments
	Event       string `toml:"event"`    // personal events without their own color
	Blocking    string `toml:"blocking"` // events that block bookings
	Today       string `toml:"today"`    // today's column header
}

// Load loads a theme by name. Unknown names fall back to the default theme.
func Load(name string) (*Theme, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = DefaultName
	}

	data, ok := builtin[name]
	if !ok {
		if name != DefaultName {
			return Load(DefaultName)
		}
		return nil, fmt.Errorf("theme %q not found", name)
	}

	var t Theme
	if err := toml.Unmarshal([]byte(data), &t); err != nil {
		return nil, fmt.Errorf("parsing theme %q: %w", name, err)
	}
	t.applyDefaults()

	return &t, nil
}

func (t *Theme) applyDefaults() {
	t.BgHighlight = coalesce(t.BgHighlight, t.Bg)
	t.BgSelection = coalesce(t.BgSelection, t.BgHighlight)
	t.FgMuted = coalesce(t.FgMuted, t.Fg)
	t.Blocking = coalesce(t.Blocking, t.Event)
	t.Today = coalesce(t.Today, t.Accent)
}

func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Available returns the sorted list of theme names.
func Available() []string {
	names := make([]string, 0, len(builtin))
	for name := range builtin {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsAvailable reports whether a theme name is available.
func IsAvailable(name string) bool {
	_, ok := builtin[strings.ToLower(name)]
	return ok
}
