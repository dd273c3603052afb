package knot

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	switchFocus    key.Binding
	up             key.Binding
	down           key.Binding
	open           key.Binding
	filter         key.Binding
	newNote        key.Binding
	newCategory    key.Binding
	delete         key.Binding
	zen            key.Binding
	yank           key.Binding
	quit           key.Binding
	submit         key.Binding
	cancel         key.Binding
	confirm        key.Binding
	forceQuitInput key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		switchFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		up: key.NewBinding(
			key.WithKeys("k", "up"),
			key.WithHelp("k/↑", "up"),
		),
		down: key.NewBinding(
			key.WithKeys("j", "down"),
			key.WithHelp("j/↓", "down"),
		),
		open: key.NewBinding(
			key.WithKeys("enter", "e"),
			key.WithHelp("↵/e", "edit"),
		),
		filter: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "filter"),
		),
		newNote: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new note"),
		),
		newCategory: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "new category"),
		),
		delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		zen: key.NewBinding(
			key.WithKeys("z"),
			key.WithHelp("z", "zen"),
		),
		yank: key.NewBinding(
			key.WithKeys("Y"),
			key.WithHelp("Y", "copy path"),
		),
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "submit"),
		),
		cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		confirm: key.NewBinding(
			key.WithKeys("y", "enter"),
			key.WithHelp("y", "confirm"),
		),
		forceQuitInput: key.NewBinding(
			key.WithKeys("ctrl+c"),
		),
	}
}

// normalHelp implements help.KeyMap for Normal and Zen.
type normalHelp keyMap

func (k normalHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.switchFocus, k.down, k.up, k.open, k.filter, k.newNote, k.newCategory, k.delete, k.zen, k.quit}
}

func (k normalHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.yank}}
}

// inputHelp implements help.KeyMap for the text entry modes.
type inputHelp keyMap

func (k inputHelp) ShortHelp() []key.Binding {
	return []key.Binding{k.submit, k.cancel}
}

func (k inputHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
