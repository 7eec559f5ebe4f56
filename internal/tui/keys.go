package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left     key.Binding
	Right    key.Binding
	Up       key.Binding
	Down     key.Binding
	PrevPage key.Binding
	NextPage key.Binding
	Today    key.Binding
	Select   key.Binding
	Fixed    key.Binding
	Help     key.Binding
	Quit     key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left: key.NewBinding(
			key.WithKeys("left"),
			key.WithHelp("←", "previous day"),
		),
		Right: key.NewBinding(
			key.WithKeys("right"),
			key.WithHelp("→", "next day"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "previous week"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "next week"),
		),
		PrevPage: key.NewBinding(
			key.WithKeys("h", "pgup"),
			key.WithHelp("h/pgup", "previous month"),
		),
		NextPage: key.NewBinding(
			key.WithKeys("l", "pgdown"),
			key.WithHelp("l/pgdn", "next month"),
		),
		Today: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "today"),
		),
		Select: key.NewBinding(
			key.WithKeys(" ", "space", "enter"),
			key.WithHelp("space", "select"),
		),
		Fixed: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "fixed/dynamic"),
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

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.PrevPage, k.NextPage, k.Today, k.Select, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.Right, k.Up, k.Down},
		{k.PrevPage, k.NextPage, k.Today},
		{k.Select, k.Fixed, k.Help, k.Quit},
	}
}
