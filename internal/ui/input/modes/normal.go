package modes

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"refdesk/internal/ui/input/types"
)

type NormalMode struct {
	lastKeyWasG bool
	lastGTime   time.Time
}

func NewNormalMode() *NormalMode {
	return &NormalMode{}
}

func (m *NormalMode) Name() string {
	return "normal"
}

func (m *NormalMode) Enter(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) Exit(ctx types.Context) []types.Action {
	return nil
}

func (m *NormalMode) HandleKey(msg tea.KeyMsg, ctx types.Context) ([]types.Action, bool) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return []types.Action{types.QuitAction{Force: true}}, true
	case tea.KeyUp:
		return nav("up"), true
	case tea.KeyDown:
		return nav("down"), true
	case tea.KeyLeft:
		return nav("left"), true
	case tea.KeyRight:
		return nav("right"), true
	case tea.KeyPgUp:
		return nav("pageup"), true
	case tea.KeyPgDown:
		return nav("pagedown"), true
	case tea.KeyHome:
		return nav("home"), true
	case tea.KeyEnd:
		return nav("end"), true
	case tea.KeyTab:
		if ctx.Screen() == types.ScreenGrid {
			return []types.Action{types.CellKeyAction{Key: "tab"}}, true
		}
		return nil, false
	case tea.KeyShiftTab:
		if ctx.Screen() == types.ScreenGrid {
			return []types.Action{types.CellKeyAction{Key: "tab", Shift: true}}, true
		}
		return nil, false
	case tea.KeyEnter:
		switch ctx.Screen() {
		case types.ScreenGrid:
			if ctx.EditMode() {
				return []types.Action{types.CellKeyAction{Key: "enter"}}, true
			}
		case types.ScreenQueue:
			return []types.Action{types.OpenTargetAction{}}, true
		case types.ScreenJournal:
			return []types.Action{types.ShowPayloadAction{}}, true
		}
		return nil, false
	}

	key := msg.String()
	if m.lastKeyWasG && (key != "g" || time.Since(m.lastGTime) >= 500*time.Millisecond) {
		m.lastKeyWasG = false
	}

	// keys shared by every screen
	switch key {
	case "j":
		return nav("down"), true
	case "k":
		return nav("up"), true
	case "g":
		if m.lastKeyWasG {
			m.lastKeyWasG = false
			return nav("home"), true
		}
		m.lastKeyWasG = true
		m.lastGTime = time.Now()
		return nil, true
	case "G":
		return nav("end"), true
	case "[":
		return []types.Action{types.PageAction{Delta: -1}}, true
	case "]":
		return []types.Action{types.PageAction{Delta: 1}}, true
	case "<":
		return []types.Action{types.CycleResourceAction{Delta: -1}}, true
	case ">":
		return []types.Action{types.CycleResourceAction{Delta: 1}}, true
	case "1":
		return []types.Action{types.SwitchScreenAction{Screen: types.ScreenGrid}}, true
	case "2":
		return []types.Action{types.SwitchScreenAction{Screen: types.ScreenQueue}}, true
	case "3":
		return []types.Action{types.SwitchScreenAction{Screen: types.ScreenJournal}}, true
	case "r":
		return []types.Action{types.RefreshAction{}}, true
	case "/":
		return []types.Action{types.ChangeModeAction{Mode: types.ModeFilter}}, true
	case "?":
		return []types.Action{types.ToggleHelpAction{}}, true
	case "q":
		return []types.Action{types.QuitAction{Force: false}}, true
	case "esc":
		if ctx.HasSelection() {
			return []types.Action{types.DeselectAllAction{}}, true
		}
		return []types.Action{types.BackAction{}}, true
	}

	switch ctx.Screen() {
	case types.ScreenGrid:
		return m.gridKey(key, ctx)
	case types.ScreenQueue:
		return m.queueKey(key, ctx)
	case types.ScreenJournal:
		if key == "v" {
			return []types.Action{types.ShowPayloadAction{}}, true
		}
	}
	return nil, false
}

func (m *NormalMode) gridKey(key string, ctx types.Context) ([]types.Action, bool) {
	switch key {
	case "h":
		return nav("left"), true
	case "l":
		return nav("right"), true
	case "e":
		return []types.Action{types.ToggleEditModeAction{}}, true
	case "y":
		return []types.Action{types.YankAction{}}, true
	}
	if !ctx.EditMode() {
		return nil, false
	}
	switch key {
	case "s":
		return []types.Action{types.RequestConfirmAction{
			Prompt: "Submit this row for approval?",
			Action: types.SubmitRowAction{},
		}}, true
	case "n":
		return []types.Action{types.NewRowAction{}}, true
	case "d":
		return []types.Action{types.RequestConfirmAction{
			Prompt: "Request deletion of this row?",
			Action: types.DeleteRowAction{},
		}}, true
	case "u":
		return []types.Action{types.RevertRowAction{}}, true
	}
	return nil, false
}

func (m *NormalMode) queueKey(key string, ctx types.Context) ([]types.Action, bool) {
	switch key {
	case " ":
		return []types.Action{types.SelectAction{}}, true
	case "V":
		return []types.Action{types.SelectAction{Range: true}}, true
	case "a":
		if ctx.HasSelection() {
			return []types.Action{types.DeselectAllAction{}}, true
		}
		return []types.Action{types.SelectAllAction{}}, true
	case "A":
		if !ctx.HasSelection() {
			return nil, true
		}
		return []types.Action{types.RequestConfirmAction{
			Prompt: "Send the selected requests to final approval?",
			Action: types.ApproveAction{},
		}}, true
	case "R":
		if !ctx.HasSelection() {
			return nil, true
		}
		return []types.Action{types.RequestConfirmAction{
			Prompt: "Retract the selected requests?",
			Action: types.RetractAction{},
		}}, true
	case "v":
		return []types.Action{types.ShowPayloadAction{}}, true
	case "o":
		return []types.Action{types.OpenTargetAction{}}, true
	}
	return nil, false
}

func nav(direction string) []types.Action {
	return []types.Action{types.NavigateAction{Direction: direction}}
}
