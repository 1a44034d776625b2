package dashboard

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the dashboard key bindings.
type KeyMap struct {
	Up       key.Binding
	Down     key.Binding
	Left     key.Binding
	Right    key.Binding
	GrowW    key.Binding
	ShrinkW  key.Binding
	GrowH    key.Binding
	ShrinkH  key.Binding
	Next     key.Binding
	Prev     key.Binding
	PageUp   key.Binding
	PageDown key.Binding
	Edit     key.Binding
	Save     key.Binding
	Cancel   key.Binding
	Reset    key.Binding
	Refresh  key.Binding
	Quit     key.Binding
}

var dashKeys = KeyMap{
	Up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
	Down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
	Left:     key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "move left")),
	Right:    key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "move right")),
	GrowW:    key.NewBinding(key.WithKeys("shift+right", "L"), key.WithHelp("⇧→", "wider")),
	ShrinkW:  key.NewBinding(key.WithKeys("shift+left", "H"), key.WithHelp("⇧←", "narrower")),
	GrowH:    key.NewBinding(key.WithKeys("shift+down", "J"), key.WithHelp("⇧↓", "taller")),
	ShrinkH:  key.NewBinding(key.WithKeys("shift+up", "K"), key.WithHelp("⇧↑", "shorter")),
	Next:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next panel")),
	Prev:     key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("⇧tab", "previous panel")),
	PageUp:   key.NewBinding(key.WithKeys("pgup"), key.WithHelp("pgup", "scroll up")),
	PageDown: key.NewBinding(key.WithKeys("pgdown"), key.WithHelp("pgdn", "scroll down")),
	Edit:     key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit layout")),
	Save:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "save")),
	Cancel:   key.NewBinding(key.WithKeys("c", "esc"), key.WithHelp("c/esc", "cancel")),
	Reset:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "reset to default")),
	Refresh:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload settings")),
	Quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}
