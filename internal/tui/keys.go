package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the TUI key bindings.
type keyMap struct {
	PrevWeek       key.Binding
	NextWeek       key.Binding
	Today          key.Binding
	PrevDay        key.Binding
	NextDay        key.Binding
	NextBlock      key.Binding
	PrevBlock      key.Binding
	ScrollUp       key.Binding
	ScrollDown     key.Binding
	Detail         key.Binding
	Cancel         key.Binding
	ToggleUpcoming key.Binding
	TogglePassed   key.Binding
	ToggleCanceled key.Binding
	Refresh        key.Binding
	Brief          key.Binding
	Yank           key.Binding
	Help           key.Binding
	Quit           key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		PrevWeek: key.NewBinding(
			key.WithKeys("h", "left"),
			key.WithHelp("h/←", "prev week"),
		),
		NextWeek: key.NewBinding(
			key.WithKeys("l", "right"),
			key.WithHelp("l/→", "next week"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		PrevDay: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "prev day"),
		),
		NextDay: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "next day"),
		),
		NextBlock: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next item"),
		),
		PrevBlock: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("shift+tab", "prev item"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("pgup", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("pgdn", "scroll down"),
		),
		Detail: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "details"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel appt"),
		),
		ToggleUpcoming: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "upcoming"),
		),
		TogglePassed: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "passed"),
		),
		ToggleCanceled: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "canceled"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Brief: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "briefing"),
		),
		Yank: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy day"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevWeek, k.NextWeek, k.Today, k.NextDay, k.ToggleUpcoming, k.TogglePassed, k.ToggleCanceled, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.PrevWeek, k.NextWeek, k.Today, k.Refresh},
		{k.PrevDay, k.NextDay, k.NextBlock, k.PrevBlock, k.ScrollUp, k.ScrollDown},
		{k.Detail, k.Cancel, k.Brief, k.Yank},
		{k.ToggleUpcoming, k.TogglePassed, k.ToggleCanceled, k.Help, k.Quit},
	}
}
