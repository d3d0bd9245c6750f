package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	up       key.Binding
	down     key.Binding
	left     key.Binding
	right    key.Binding
	selLeft  key.Binding
	selRight key.Binding
	home     key.Binding
	end      key.Binding
	enter    key.Binding
	esc      key.Binding
	quit     key.Binding
	search   key.Binding
	newNote  key.Binding
	delete   key.Binding
	copy     key.Binding
	yes      key.Binding
	no       key.Binding

	save       key.Binding
	backspace  key.Binding
	toggleBox  key.Binding
	addBox     key.Binding
	bold       key.Binding
	italic     key.Binding
	underline  key.Binding
	copyInEdit key.Binding
	forceQuit  key.Binding
}

var keys = keyMap{
	up:       key.NewBinding(key.WithKeys("up", "k")),
	down:     key.NewBinding(key.WithKeys("down", "j")),
	left:     key.NewBinding(key.WithKeys("left")),
	right:    key.NewBinding(key.WithKeys("right")),
	selLeft:  key.NewBinding(key.WithKeys("shift+left")),
	selRight: key.NewBinding(key.WithKeys("shift+right")),
	home:     key.NewBinding(key.WithKeys("home", "ctrl+a")),
	end:      key.NewBinding(key.WithKeys("end", "ctrl+e")),
	enter:    key.NewBinding(key.WithKeys("enter")),
	esc:      key.NewBinding(key.WithKeys("esc")),
	quit:     key.NewBinding(key.WithKeys("q", "ctrl+c")),
	search:   key.NewBinding(key.WithKeys("/")),
	newNote:  key.NewBinding(key.WithKeys("n")),
	delete:   key.NewBinding(key.WithKeys("d")),
	copy:     key.NewBinding(key.WithKeys("c")),
	yes:      key.NewBinding(key.WithKeys("y")),
	no:       key.NewBinding(key.WithKeys("n", "esc")),

	save:       key.NewBinding(key.WithKeys("ctrl+s")),
	backspace:  key.NewBinding(key.WithKeys("backspace")),
	toggleBox:  key.NewBinding(key.WithKeys("ctrl+t")),
	addBox:     key.NewBinding(key.WithKeys("ctrl+n")),
	bold:       key.NewBinding(key.WithKeys("alt+b")),
	italic:     key.NewBinding(key.WithKeys("alt+i")),
	underline:  key.NewBinding(key.WithKeys("alt+u")),
	copyInEdit: key.NewBinding(key.WithKeys("ctrl+y")),
	forceQuit:  key.NewBinding(key.WithKeys("ctrl+c")),
}
