package tui

import (
	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Play    key.Binding
	Stop    key.Binding
	Forward key.Binding
	Back    key.Binding
	Faster  key.Binding
	Slower  key.Binding
	Start   key.Binding
	End     key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Stop, k.Forward, k.Back, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Forward, k.Back},
		{k.Faster, k.Slower, k.Start, k.End},
		{k.Help, k.Quit},
	}
}

func newKeyMap() keyMap {
	return keyMap{
		Play:    key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "play/pause")),
		Stop:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stop")),
		Forward: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→", "step")),
		Back:    key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←", "step back")),
		Faster:  key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "faster")),
		Slower:  key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "slower")),
		Start:   key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "first")),
		End:     key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "last")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
