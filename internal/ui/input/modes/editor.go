package modes

import (
	tea "github.com/charmbracelet/bubbletea"

	"refdesk/internal/ui/input/types"
)

// EditorMode routes keys to an open select or date editor
type EditorMode struct {
	mode types.Mode
	name string
}

func NewSelectMode() *EditorMode {
	return &EditorMode{mode: types.ModeSelect, name: "select"}
}

func NewDateMode() *EditorMode {
	return &EditorMode{mode: types.ModeDate, name: "date"}
}

func (m *EditorMode) Name() string {
	return m.name
}

func (m *EditorMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *EditorMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *EditorMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true
	case tea.KeyTab:
		return []types.Action{types.CellKeyAction{Key: "tab"}}, true
	case tea.KeyShiftTab:
		return []types.Action{types.CellKeyAction{Key: "tab", Shift: true}}, true
	case tea.KeyEnter:
		return []types.Action{types.CellKeyAction{Key: "enter"}}, true
	case tea.KeyEsc:
		return []types.Action{types.CellKeyAction{Key: "esc"}}, true
	}
	return []types.Action{types.EditorKeyAction{Msg: msg}}, true
}
