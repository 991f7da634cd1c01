package ui

import (
	"strings"

	"github.com/adriangreen/tm-list/internal/config"
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the keybindings for the TUI
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding

	// Row interactions
	Select   key.Binding
	Check    key.Binding
	MoveUp   key.Binding
	Delete   key.Binding
	Edit     key.Binding
	CopyText key.Binding

	// New item field
	FocusInput key.Binding
	Submit     key.Binding
	Append     key.Binding

	// List commands
	ClearCompleted key.Binding
	Refresh        key.Binding

	// Help and quit
	Help   key.Binding
	Quit   key.Binding
	Cancel key.Binding
}

// DefaultKeyMap returns the default keybindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),

		Select: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "select row"),
		),
		Check: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "toggle done"),
		),
		MoveUp: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "move up"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d", "delete"),
			key.WithHelp("d", "delete selected"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e", "enter"),
			key.WithHelp("e/enter", "edit"),
		),
		CopyText: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy text"),
		),

		FocusInput: key.NewBinding(
			key.WithKeys("a", "i"),
			key.WithHelp("a/i", "new item"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "add"),
		),
		Append: key.NewBinding(
			key.WithKeys("alt+enter"),
			key.WithHelp("alt+enter", "append"),
		),

		ClearCompleted: key.NewBinding(
			key.WithKeys("C"),
			key.WithHelp("C", "clear completed"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),

		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "toggle help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q"),
			key.WithHelp("q", "quit"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "stop editing"),
		),
	}
}

// NewKeyMap creates a KeyMap from configuration, falling back to defaults
// for actions that are not configured. A configured value may list several
// keys separated by commas.
func NewKeyMap(cfg *config.Config) KeyMap {
	km := DefaultKeyMap()

	if cfg == nil || len(cfg.KeyBindings) == 0 {
		return km
	}

	bindings := map[string]*key.Binding{
		"up":             &km.Up,
		"down":           &km.Down,
		"select":         &km.Select,
		"check":          &km.Check,
		"moveUp":         &km.MoveUp,
		"delete":         &km.Delete,
		"edit":           &km.Edit,
		"copy":           &km.CopyText,
		"newItem":        &km.FocusInput,
		"append":         &km.Append,
		"clearCompleted": &km.ClearCompleted,
		"refresh":        &km.Refresh,
		"help":           &km.Help,
		"quit":           &km.Quit,
	}

	for action, binding := range bindings {
		raw, ok := cfg.KeyBindings[action]
		if !ok || strings.TrimSpace(raw) == "" {
			continue
		}
		var keys []string
		for _, k := range strings.Split(raw, ",") {
			if k = strings.TrimSpace(k); k != "" {
				keys = append(keys, k)
			}
		}
		*binding = key.NewBinding(
			key.WithKeys(keys...),
			key.WithHelp(strings.Join(keys, "/"), binding.Help().Desc),
		)
	}

	return km
}

// ShortHelp returns a short help text for the status bar
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.FocusInput, k.Select, k.Check, k.Edit, k.MoveUp, k.Help, k.Quit}
}

// FullHelp returns the full help text
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Select, k.Check},
		{k.MoveUp, k.Delete, k.Edit, k.CopyText},
		{k.FocusInput, k.Submit, k.Append, k.Cancel},
		{k.ClearCompleted, k.Refresh, k.Help, k.Quit},
	}
}
