package viewmodels

import (
	"github.com/charmbracelet/bubbles/textinput"

	"refdesk/internal/ui/input/types"
)

// InputTransformer turns the active input mode into the prompt line under the table
type InputTransformer struct {
	mode      types.Mode
	textInput textinput.Model
	label     string // column being edited
}

func NewInputTransformer(textInput textinput.Model) *InputTransformer {
	return &InputTransformer{mode: types.ModeNormal, textInput: textInput}
}

// SetMode records the mode and the label of the cell it edits, if any
func (it *InputTransformer) SetMode(mode types.Mode, label string) {
	it.mode = mode
	it.label = label
}

// GetInputText is the prompt line. Select and date editors draw their own
// body under the table, so only a heading is returned for them.
func (it *InputTransformer) GetInputText() string {
	switch it.mode {
	case types.ModeFilter:
		return "Filter: " + it.textInput.View()
	case types.ModeCellEdit:
		return it.label + ": " + it.textInput.View()
	case types.ModeSelect:
		return "Choose " + it.label + " (type to filter, Enter to pick, Esc to cancel)"
	case types.ModeDate:
		return it.label + " (Enter for the next step, Esc to cancel)"
	}
	return ""
}
