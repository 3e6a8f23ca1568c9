package modes

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"refdesk/internal/ui/input/types"
)

// FilterMode narrows the grid or queue as the user types. Enter keeps the
// query, Escape drops it, and the arrow keys leave the prompt with the
// query still applied so the cursor can move over the matches.
type FilterMode struct {
	textField
}

func NewFilterMode(ti *textinput.Model) *FilterMode {
	return &FilterMode{textField{name: "filter", input: ti}}
}

func (m *FilterMode) Exit(ctx types.Context) []types.Action {
	m.textField.Exit(ctx)
	if m.input != nil {
		m.input.Reset()
	}
	return nil
}

func (m *FilterMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true
	case tea.KeyEsc:
		return []types.Action{
			types.CancelTextAction{},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case tea.KeyEnter:
		return []types.Action{
			types.SubmitTextAction{Text: m.value(), Mode: types.ModeFilter},
			types.ChangeModeAction{Mode: types.ModeNormal},
		}, true
	case tea.KeyUp, tea.KeyDown:
		dir := "up"
		if msg.Type == tea.KeyDown {
			dir = "down"
		}
		return []types.Action{
			types.SubmitTextAction{Text: m.value(), Mode: types.ModeFilter},
			types.ChangeModeAction{Mode: types.ModeNormal},
			types.NavigateAction{Direction: dir},
		}, true
	case tea.KeyCtrlU:
		if m.input != nil {
			m.input.SetValue("")
		}
		return []types.Action{types.UpdateTextAction{Text: ""}}, true
	}
	return nil, false
}
