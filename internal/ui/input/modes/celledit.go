package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"refdesk/internal/ui/input/types"
)

// CellEditMode edits a plain cell in the shared text input. Tab, Enter and
// Escape belong to the grid controller, which leaves the mode through the host.
// Exit keeps the typed value; the host reads it when the edit stops.
type CellEditMode struct {
	textField
}

func NewCellEditMode(ti *textinput.Model) *CellEditMode {
	return &CellEditMode{textField{name: "edit", input: ti}}
}

func (m *CellEditMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
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
	return nil, false
}
