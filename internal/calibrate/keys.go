package calibrate

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the key bindings for the calibration screen.
type keyMap struct {
	PrevChannel key.Binding
	NextChannel key.Binding
	Up          key.Binding
	Down        key.Binding
	Quit        key.Binding
}

// keys holds the default key bindings used by calibration mode.
var keys = keyMap{
	PrevChannel: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left", "prev gauge")),
	NextChannel: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right", "next gauge")),
	Up:          key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("up", "raise needle")),
	Down:        key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("down", "lower needle")),
	Quit:        key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}
