package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines all keyboard bindings for the browser.
type keyMap struct {
	// Global
	Quit       key.Binding
	Help       key.Binding
	CycleTheme key.Binding
	ViewLogs   key.Binding
	Escape     key.Binding

	// Navigation
	Up       key.Binding
	Down     key.Binding
	Top      key.Binding
	Bottom   key.Binding
	PageUp   key.Binding
	PageDown key.Binding

	// Collection edits
	Remove      key.Binding
	MoveUp      key.Binding
	MoveDown    key.Binding
	MoveTop     key.Binding
	MoveBottom  key.Binding
	RefreshItem key.Binding
	Revalidate  key.Binding
	Reset       key.Binding

	// View identity
	CycleSort       key.Binding
	ToggleDirection key.Binding
	CycleType       key.Binding

	// Logs
	ToggleFollow key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() keyMap {
	return keyMap{
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "q"),
			key.WithHelp("q", "Quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "Toggle help"),
		),
		CycleTheme: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "Cycle theme"),
		),
		ViewLogs: key.NewBinding(
			key.WithKeys("l"),
			key.WithHelp("l", "Logs"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "Back to collection"),
		),

		Up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/up", "Move up"),
		),
		Down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/down", "Move down"),
		),
		Top: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "Go to top"),
		),
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "Go to bottom"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("ctrl+u", "Page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("ctrl+d", "Page down"),
		),

		Remove: key.NewBinding(
			key.WithKeys("d", "x"),
			key.WithHelp("d", "Remove from view"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("K", "shift+up"),
			key.WithHelp("K", "Move item up"),
		),
		MoveDown: key.NewBinding(
			key.WithKeys("J", "shift+down"),
			key.WithHelp("J", "Move item down"),
		),
		MoveTop: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "Move item to top"),
		),
		MoveBottom: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "Move item to bottom"),
		),
		RefreshItem: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "Refresh item"),
		),
		Revalidate: key.NewBinding(
			key.WithKeys("R"),
			key.WithHelp("R", "Refresh loaded pages"),
		),
		Reset: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "Reload from first page"),
		),

		CycleSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "Cycle sort"),
		),
		ToggleDirection: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "Toggle direction"),
		),
		CycleType: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "Cycle type filter"),
		),

		ToggleFollow: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("Space", "Toggle follow mode"),
		),
	}
}

// ShortHelp returns key bindings for the short help view.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Help, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Top, k.Bottom, k.PageUp, k.PageDown},
		{k.Remove, k.MoveUp, k.MoveDown, k.MoveTop, k.MoveBottom},
		{k.RefreshItem, k.Revalidate, k.Reset},
		{k.CycleSort, k.ToggleDirection, k.CycleType},
		{k.ViewLogs, k.ToggleFollow, k.Escape},
		{k.CycleTheme, k.Help, k.Quit},
	}
}
