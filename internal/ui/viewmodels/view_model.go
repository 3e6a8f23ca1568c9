package viewmodels

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"

	"refdesk/internal/ui/input/types"
	"refdesk/internal/ui/state"
	"refdesk/internal/ui/views"
)

// Tabs are the screen names in screen order
var Tabs = []string{"Grid", "Approval Queue", "Journal"}

// ViewModel transforms application state into view-ready data
type ViewModel struct {
	state            *state.AppState
	width            int
	height           int
	inputTransformer *InputTransformer

	resource string
	screen   types.Screen
	editMode bool
	spinner  string
	helpLine string
	confirm  string
	editor   string
	grid     *views.GridView
	selected map[string]bool
	inFlight bool
}

// NewViewModel creates a new view model
func NewViewModel(appState *state.AppState, textInput textinput.Model) *ViewModel {
	return &ViewModel{
		state:            appState,
		inputTransformer: NewInputTransformer(textInput),
	}
}

// SetDimensions sets the current terminal dimensions
func (vm *ViewModel) SetDimensions(width, height int) {
	vm.width = width
	vm.height = height
}

// SetInputMode sets the current input mode
func (vm *ViewModel) SetInputMode(mode types.Mode, label string) {
	vm.inputTransformer.SetMode(mode, label)
}

// UpdateTextInput updates the text input model
func (vm *ViewModel) UpdateTextInput(textInput textinput.Model) {
	vm.inputTransformer.textInput = textInput
}

// SetScreen sets the active screen and resource label
func (vm *ViewModel) SetScreen(screen types.Screen, resource string, editMode bool) {
	vm.screen = screen
	vm.resource = resource
	vm.editMode = editMode
}

// SetChrome sets the spinner frame, the short help line and the confirmation prompt
func (vm *ViewModel) SetChrome(spinner, helpLine, confirm string) {
	vm.spinner = spinner
	vm.helpLine = helpLine
	vm.confirm = confirm
}

// SetGrid sets the grid page to draw, with the open cell editor if any
func (vm *ViewModel) SetGrid(g *views.GridView, editor string) {
	vm.grid = g
	vm.editor = editor
}

// SetQueueSelection sets the checked requests and whether an action is running
func (vm *ViewModel) SetQueueSelection(selected map[string]bool, inFlight bool) {
	vm.selected = selected
	vm.inFlight = inFlight
}

// BuildViewState creates a ViewState for rendering
func (vm *ViewModel) BuildViewState() views.ViewState {
	s := vm.state
	vs := views.ViewState{
		Width:         vm.width,
		Height:        vm.height,
		Resource:      vm.resource,
		Tabs:          Tabs,
		ActiveTab:     int(vm.screen),
		Loading:       s.Loading,
		Spinner:       vm.spinner,
		Pending:       s.Pending,
		EditMode:      vm.editMode && vm.screen == types.ScreenGrid,
		FilterQuery:   s.FilterQuery,
		InputLine:     vm.inputTransformer.GetInputText(),
		Confirm:       vm.confirm,
		StatusMessage: s.StatusMessage,
		StatusKind:    s.StatusKind,
		HelpLine:      vm.helpLine,
		Popup:         s.PopupContent,
		PopupTitle:    s.PopupTitle,
	}

	switch vm.screen {
	case types.ScreenGrid:
		vs.Grid = vm.grid
		vs.Editor = vm.editor
		vs.Empty = "No rows. Press r to reload."
		if s.Meta.TotalPages > 0 {
			vs.PageInfo = fmt.Sprintf("page %d/%d · %d total", s.Page+1, s.Meta.TotalPages, s.Meta.TotalElements)
		}
	case types.ScreenQueue:
		vs.Queue = &views.QueueView{
			Items:    s.Queue,
			Selected: vm.selected,
			Cursor:   s.QueueCursor,
			Offset:   s.QueueOffset,
			Height:   s.ViewportHeight,
			InFlight: vm.inFlight,
		}
		vs.Empty = "No approval requests."
		vs.PageInfo = fmt.Sprintf("%d requests", len(s.Queue))
		if n := len(vm.selected); n > 0 {
			vs.PageInfo += fmt.Sprintf(" · %d selected", n)
		}
	case types.ScreenJournal:
		vs.Journal = &views.JournalView{
			Entries: s.JournalEntries,
			Cursor:  s.JournalCursor,
			Offset:  s.JournalOffset,
			Height:  s.ViewportHeight,
		}
		vs.Empty = "Nothing recorded yet."
	}
	return vs
}
