package types

import tea "github.com/charmbracelet/bubbletea"

// Mode represents an input mode
type Mode int

const (
	ModeNormal Mode = iota
	// ModeCellEdit is a plain cell being edited in the shared text input
	ModeCellEdit
	// ModeSelect is an open select editor
	ModeSelect
	// ModeDate is an open date picker
	ModeDate
	ModeFilter
	ModeConfirm
)

func (m Mode) String() string {
	switch m {
	case ModeCellEdit:
		return "edit"
	case ModeSelect:
		return "select"
	case ModeDate:
		return "date"
	case ModeFilter:
		return "filter"
	case ModeConfirm:
		return "confirm"
	default:
		return "normal"
	}
}

// Screen identifies what the console shows
type Screen int

const (
	ScreenGrid Screen = iota
	ScreenQueue
	ScreenJournal
)

// Action represents a command the model should execute
type Action interface {
	Type() string
}

// Context provides read-only access to model state needed for input handling
type Context interface {
	Screen() Screen
	EditMode() bool
	HasSelection() bool
	SelectedCount() int
	// PendingConfirm describes the action waiting for y/n, if any
	PendingConfirm() Action
}

// ModeHandler handles input for a specific mode
type ModeHandler interface {
	// HandleKey processes a key message and returns actions and whether to consume the event
	HandleKey(msg tea.KeyMsg, ctx Context) ([]Action, bool)

	// Enter is called when entering this mode
	Enter(ctx Context) []Action

	// Exit is called when leaving this mode
	Exit(ctx Context) []Action

	// Name returns the mode name for display
	Name() string
}
