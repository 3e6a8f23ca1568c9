package modes

import (
	"github.com/charmbracelet/bubbles/textinput"

	"refdesk/internal/ui/input/types"
)

// textField is the part of a mode that drives the shared text input.
// The handler feeds it every key the mode leaves unclaimed.
type textField struct {
	name  string
	input *textinput.Model
}

func (f textField) Name() string {
	return f.name
}

func (f textField) value() string {
	if f.input == nil {
		return ""
	}
	return f.input.Value()
}

func (f textField) Enter(ctx types.Context) []types.Action {
	if f.input != nil {
		f.input.Prompt = ""
		f.input.Focus()
	}
	return nil
}

func (f textField) Exit(ctx types.Context) []types.Action {
	if f.input != nil {
		f.input.Blur()
	}
	return nil
}
