package types

import tea "github.com/charmbracelet/bubbletea"

// Navigation actions
type NavigateAction struct {
	Direction string // "up", "down", "left", "right", "home", "end", "pageup", "pagedown"
}

func (a NavigateAction) Type() string { return "navigate" }

// CellKeyAction is a Tab, Enter or Escape press on the focused cell
type CellKeyAction struct {
	Key   string // "tab", "enter", "esc"
	Shift bool
}

func (a CellKeyAction) Type() string { return "cell_key" }

// EditorKeyAction is any other key while a select or date editor is open
type EditorKeyAction struct {
	Msg tea.KeyMsg
}

func (a EditorKeyAction) Type() string { return "editor_key" }

type ToggleEditModeAction struct{}

func (a ToggleEditModeAction) Type() string { return "toggle_edit_mode" }

// Selection actions
// SelectAction toggles the request under the cursor. Range selects
// everything between the last toggled request and the cursor.
type SelectAction struct {
	Range bool
}

func (a SelectAction) Type() string { return "select" }

type SelectAllAction struct{}

func (a SelectAllAction) Type() string { return "select_all" }

type DeselectAllAction struct{}

func (a DeselectAllAction) Type() string { return "deselect_all" }

// Mode actions
type ChangeModeAction struct {
	Mode Mode
}

func (a ChangeModeAction) Type() string { return "change_mode" }

// Text input actions
type UpdateTextAction struct {
	Text string
}

func (a UpdateTextAction) Type() string { return "update_text" }

type SubmitTextAction struct {
	Text string
	Mode Mode
}

func (a SubmitTextAction) Type() string { return "submit_text" }

type CancelTextAction struct{}

func (a CancelTextAction) Type() string { return "cancel_text" }

// RequestConfirmAction parks an action until the user answers y/n
type RequestConfirmAction struct {
	Prompt string
	Action Action
}

func (a RequestConfirmAction) Type() string { return "request_confirm" }

type ConfirmAction struct{}

func (a ConfirmAction) Type() string { return "confirm" }

type DismissConfirmAction struct{}

func (a DismissConfirmAction) Type() string { return "dismiss_confirm" }

// Approval actions
type ApproveAction struct{}

func (a ApproveAction) Type() string { return "approve" }

type RetractAction struct{}

func (a RetractAction) Type() string { return "retract" }

type ShowPayloadAction struct{}

func (a ShowPayloadAction) Type() string { return "show_payload" }

// OpenTargetAction jumps from a queue entry to the row it targets
type OpenTargetAction struct{}

func (a OpenTargetAction) Type() string { return "open_target" }

// Row actions
type SubmitRowAction struct{}

func (a SubmitRowAction) Type() string { return "submit_row" }

type NewRowAction struct{}

func (a NewRowAction) Type() string { return "new_row" }

type DeleteRowAction struct{}

func (a DeleteRowAction) Type() string { return "delete_row" }

type RevertRowAction struct{}

func (a RevertRowAction) Type() string { return "revert_row" }

type YankAction struct{}

func (a YankAction) Type() string { return "yank" }

// Screen actions
type RefreshAction struct{}

func (a RefreshAction) Type() string { return "refresh" }

type PageAction struct {
	Delta int
}

func (a PageAction) Type() string { return "page" }

type SwitchScreenAction struct {
	Screen Screen
}

func (a SwitchScreenAction) Type() string { return "switch_screen" }

type CycleResourceAction struct {
	Delta int
}

func (a CycleResourceAction) Type() string { return "cycle_resource" }

// BackAction returns to the screen stored in the session, if any
type BackAction struct{}

func (a BackAction) Type() string { return "back" }

type ToggleHelpAction struct{}

func (a ToggleHelpAction) Type() string { return "toggle_help" }

type QuitAction struct {
	Force bool
}

func (a QuitAction) Type() string { return "quit" }
