// Package tui provides the interactive week view.
package tui

import (
	"context"
	"errors"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/clinicdesk/clinicweek/internal/agenda"
	"github.com/clinicdesk/clinicweek/internal/calendar"
	"github.com/clinicdesk/clinicweek/internal/config"
	"github.com/clinicdesk/clinicweek/internal/llm"
	"github.com/clinicdesk/clinicweek/internal/tui/commands"
	"github.com/clinicdesk/clinicweek/internal/tui/theme"
)

// Mode represents the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeDetail
	ModeConfirmCancel
	ModeBriefing
)

// rowMinutes is the time covered by one grid row.
const rowMinutes = 30

const (
	statusTimeout = 4 * time.Second
	clockInterval = time.Minute
)

// Model is the main TUI model.
type Model struct {
	// Dependencies
	loader  *agenda.Loader
	config  *config.Config
	logger  zerolog.Logger
	briefer *llm.Briefer

	styles  *Styles
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	reason  textinput.Model

	role     calendar.Role
	loc      *time.Location
	geometry calendar.Geometry
	filter   calendar.Filter

	// Data of the current window. layout is rebuilt from snapshot whenever
	// the filter or the clock changes.
	window   calendar.WeekWindow
	snapshot *agenda.Snapshot
	layout   *calendar.WeekLayout
	loading  bool
	scrolled bool // initial scroll applied for the current window

	focusDay int
	selected string // item id
	scroll   int
	mode     Mode

	briefing        *llm.Briefing
	briefingLoading bool

	statusMsg string
	statusErr bool
	statusID  int

	width  int
	height int

	now   func() time.Time
	write func(string) error
}

// ModelOption configures optional model behavior.
type ModelOption func(*Model)

// WithClock overrides the clock.
func WithClock(now func() time.Time) ModelOption {
	return func(m *Model) { m.now = now }
}

// WithClipboard overrides the clipboard writer.
func WithClipboard(write func(string) error) ModelOption {
	return func(m *Model) { m.write = write }
}

// WithBriefer sets the briefing generator; nil disables briefings.
func WithBriefer(b *llm.Briefer) ModelOption {
	return func(m *Model) { m.briefer = b }
}

// New creates a new TUI model showing the current week.
func New(loader *agenda.Loader, cfg *config.Config, logger zerolog.Logger, opts ...ModelOption) *Model {
	t, err := theme.Load(cfg.UI.Theme)
	if err != nil {
		logger.Warn().Err(err).Str("theme", cfg.UI.Theme).Msg("falling back to default theme")
		t, _ = theme.Load(theme.DefaultName)
	}
	styles := NewStyles(t)

	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}

	reason := textinput.New()
	reason.Placeholder = "Reason (optional)"
	reason.CharLimit = 200
	reason.Width = 40
	reason.TextStyle = styles.InputTextStyle
	reason.PromptStyle = styles.InputPromptStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.SpinnerStyle

	h := help.New()
	h.Styles = styles.Help

	m := &Model{
		loader:   loader,
		config:   cfg,
		logger:   logger,
		briefer:  newBriefer(cfg, logger),
		styles:   styles,
		keys:     defaultKeyMap(),
		help:     h,
		spinner:  sp,
		reason:   reason,
		role:     loader.Session().EffectiveRole(),
		loc:      loc,
		geometry: cfg.Geometry(),
		filter:   calendar.DefaultFilter(),
		now:      time.Now,
		write:    clipboard.WriteAll,
	}

	for _, opt := range opts {
		opt(m)
	}

	now := m.now().In(loc)
	m.window = calendar.NewWeekWindow(now)
	m.focusDay = m.window.DayIndex(now)
	m.loading = true
	m.relayout()

	return m
}

func newBriefer(cfg *config.Config, logger zerolog.Logger) *llm.Briefer {
	client, err := llm.NewClient(cfg.LLM.Provider, cfg.LLM.Model, cfg.LLM.BaseURL, cfg.LLM.APIKey)
	if err != nil {
		if !errors.Is(err, llm.ErrDisabled) {
			logger.Warn().Err(err).Msg("briefings unavailable")
		}
		return nil
	}
	return llm.NewBriefer(client)
}

// Init starts loading the current week.
func (m Model) Init() tea.Cmd {
	ctx, ticket := m.loader.Begin(context.Background())
	return tea.Batch(
		commands.LoadWeek(ctx, m.loader, ticket, m.window),
		m.spinner.Tick,
		commands.Tick(clockInterval),
	)
}

// Run starts the TUI.
func Run(loader *agenda.Loader, cfg *config.Config, logger zerolog.Logger) error {
	model := New(loader, cfg, logger)
	p := tea.NewProgram(*model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// navigate switches to w and starts loading it. Results of earlier loads
// still in flight are dropped when they arrive.
func (m *Model) navigate(w calendar.WeekWindow) tea.Cmd {
	if !w.Equal(m.window) {
		m.window = w
		m.snapshot = nil
		m.selected = ""
		m.briefing = nil
		m.scrolled = false
	}
	m.loading = true
	m.relayout()

	ctx, ticket := m.loader.Begin(context.Background())
	return commands.LoadWeek(ctx, m.loader, ticket, w)
}

// relayout rebuilds the layout from the current snapshot, filter and clock.
func (m *Model) relayout() {
	now := m.now()
	if m.snapshot == nil {
		m.layout = calendar.BuildLayout(now, m.window, nil, nil, m.filter, m.geometry)
	} else {
		m.layout = m.snapshot.Layout(now, m.filter, m.geometry)
	}
	if m.selected != "" {
		if _, ok := m.layout.Find(m.selected); !ok {
			m.selected = ""
		}
	}
}

// fetchErr returns the error of the current snapshot, if any.
func (m Model) fetchErr() error {
	if m.snapshot == nil {
		return nil
	}
	return m.snapshot.Err
}

// selectedBlock returns the selected block.
func (m Model) selectedBlock() (calendar.Block, bool) {
	if m.selected == "" || m.layout == nil {
		return calendar.Block{}, false
	}
	return m.layout.Find(m.selected)
}

// todayCol returns the day index of today within the window, or -1.
func (m Model) todayCol() int {
	return m.window.DayIndex(m.now())
}
