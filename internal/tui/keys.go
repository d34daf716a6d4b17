// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Left      key.Binding
	Right     key.Binding
	Confirm   key.Binding
	Reset     key.Binding
	Algorithm key.Binding
	Up        key.Binding
	Down      key.Binding
	Select    key.Binding
	Back      key.Binding
	Quit      key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Left:      key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/→", "scroll")),
		Right:     key.NewBinding(key.WithKeys("right", "l")),
		Confirm:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "confirm calibration")),
		Reset:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "clear")),
		Algorithm: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "algorithm")),
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "choose")),
		Down:      key.NewBinding(key.WithKeys("down", "j")),
		Select:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		Back:      key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// monitorHelp and selectorHelp adapt the bindings of each screen to
// help.KeyMap.
type monitorHelp keyMap

func (k monitorHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Confirm, k.Reset, k.Algorithm, k.Quit}
}

func (k monitorHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

type selectorHelp keyMap

func (k selectorHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Select, k.Back, k.Quit}
}

func (k selectorHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
