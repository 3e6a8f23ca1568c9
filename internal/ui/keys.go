package ui

import (
	"github.com/charmbracelet/bubbles/key"

	"refdesk/internal/ui/input/types"
)

// Bindings shown in the footer. Input handling lives in the input package;
// these only describe it.
var (
	keyMove    = key.NewBinding(key.WithKeys("up", "down", "j", "k"), key.WithHelp("↑/↓", "move"))
	keyCells   = key.NewBinding(key.WithKeys("left", "right", "h", "l"), key.WithHelp("←/→", "cell"))
	keyEdit    = key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit mode"))
	keyEnter   = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "edit/commit"))
	keyTab     = key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next cell"))
	keyEsc     = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel"))
	keySubmit  = key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "submit"))
	keyNew     = key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new"))
	keyPage    = key.NewBinding(key.WithKeys("[", "]"), key.WithHelp("[/]", "page"))
	keySelect  = key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select"))
	keyApprove = key.NewBinding(key.WithKeys("A"), key.WithHelp("A", "approve"))
	keyRetract = key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "retract"))
	keyView    = key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "payload"))
	keyOpen    = key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open"))
	keyScreens = key.NewBinding(key.WithKeys("1", "2", "3"), key.WithHelp("1-3", "screen"))
	keyQuit    = key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit"))
)

// keyMap describes the keys that matter on the current screen
type keyMap struct {
	screen   types.Screen
	editMode bool
	editing  bool
}

func (k keyMap) ShortHelp() []key.Binding {
	switch k.screen {
	case types.ScreenQueue:
		return []key.Binding{keyMove, keySelect, keyApprove, keyRetract, keyView, keyOpen, keyScreens, keyQuit}
	case types.ScreenJournal:
		return []key.Binding{keyMove, keyView, keyScreens, keyQuit}
	}
	if k.editing {
		return []key.Binding{keyEnter, keyTab, keyEsc}
	}
	if k.editMode {
		return []key.Binding{keyMove, keyCells, keyEnter, keyTab, keySubmit, keyNew, keyEdit, keyQuit}
	}
	return []key.Binding{keyMove, keyCells, keyEdit, keyPage, keyScreens, keyQuit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
