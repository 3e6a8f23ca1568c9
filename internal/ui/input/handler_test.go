package input

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"refdesk/internal/ui/input/types"
)

type fakeContext struct {
	screen   types.Screen
	edit     bool
	selected int
	pending  types.Action
}

func (c fakeContext) Screen() types.Screen         { return c.screen }
func (c fakeContext) EditMode() bool               { return c.edit }
func (c fakeContext) HasSelection() bool           { return c.selected > 0 }
func (c fakeContext) SelectedCount() int           { return c.selected }
func (c fakeContext) PendingConfirm() types.Action { return c.pending }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func TestNormalEnterOnlyReachesGridInEditMode(t *testing.T) {
	h := New()
	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, fakeContext{screen: types.ScreenGrid})
	assert.Empty(t, actions)

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, fakeContext{screen: types.ScreenGrid, edit: true})
	assert.Equal(t, []types.Action{types.CellKeyAction{Key: "enter"}}, actions)
}

func TestTabAndShiftTabOnGrid(t *testing.T) {
	h := New()
	ctx := fakeContext{screen: types.ScreenGrid, edit: true}
	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyTab}, ctx)
	assert.Equal(t, []types.Action{types.CellKeyAction{Key: "tab"}}, actions)
	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyShiftTab}, ctx)
	assert.Equal(t, []types.Action{types.CellKeyAction{Key: "tab", Shift: true}}, actions)
}

func TestDoubleGGoesHome(t *testing.T) {
	h := New()
	ctx := fakeContext{screen: types.ScreenQueue}
	actions, _ := h.HandleKey(runes("g"), ctx)
	assert.Empty(t, actions)
	actions, _ = h.HandleKey(runes("g"), ctx)
	assert.Equal(t, []types.Action{types.NavigateAction{Direction: "home"}}, actions)
}

func TestApproveNeedsSelectionAndConfirmation(t *testing.T) {
	h := New()
	actions, _ := h.HandleKey(runes("A"), fakeContext{screen: types.ScreenQueue})
	assert.Empty(t, actions)

	actions, _ = h.HandleKey(runes("A"), fakeContext{screen: types.ScreenQueue, selected: 2})
	require.Len(t, actions, 1)
	req, ok := actions[0].(types.RequestConfirmAction)
	require.True(t, ok)
	assert.Equal(t, types.ApproveAction{}, req.Action)
}

func TestConfirmModeAnswers(t *testing.T) {
	h := New()
	ctx := fakeContext{pending: types.ApproveAction{}}
	h.ChangeMode(types.ModeConfirm, "", ctx)

	actions, _ := h.HandleKey(runes("x"), ctx)
	assert.Empty(t, actions)
	assert.Equal(t, types.ModeConfirm, h.CurrentMode())

	actions, _ = h.HandleKey(runes("y"), ctx)
	assert.Equal(t, []types.Action{types.ConfirmAction{}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestFilterModeTypesAndSubmits(t *testing.T) {
	h := New()
	ctx := fakeContext{screen: types.ScreenGrid}
	h.HandleKey(runes("/"), ctx)
	require.Equal(t, types.ModeFilter, h.CurrentMode())

	actions, _ := h.HandleKey(runes("a"), ctx)
	assert.Equal(t, []types.Action{types.UpdateTextAction{Text: "a"}}, actions)
	h.HandleKey(runes("b"), ctx)

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEnter}, ctx)
	assert.Equal(t, []types.Action{types.SubmitTextAction{Text: "ab", Mode: types.ModeFilter}}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
	assert.Nil(t, h.TextInput())
}

func TestCellEditKeepsValueForTheHost(t *testing.T) {
	h := New()
	ctx := fakeContext{screen: types.ScreenGrid, edit: true}
	h.ChangeMode(types.ModeCellEdit, "abc", ctx)
	h.HandleKey(runes("d"), ctx)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyTab}, ctx)
	assert.Equal(t, []types.Action{types.CellKeyAction{Key: "tab"}}, actions)
	assert.Equal(t, types.ModeCellEdit, h.CurrentMode())

	h.ChangeMode(types.ModeNormal, "", ctx)
	assert.Equal(t, "abcd", h.Value())
}

func TestEditorModeForwardsOtherKeys(t *testing.T) {
	h := New()
	ctx := fakeContext{screen: types.ScreenGrid, edit: true}
	h.ChangeMode(types.ModeSelect, "", ctx)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyDown}, ctx)
	require.Len(t, actions, 1)
	assert.IsType(t, types.EditorKeyAction{}, actions[0])

	actions, _ = h.HandleKey(tea.KeyMsg{Type: tea.KeyEsc}, ctx)
	assert.Equal(t, []types.Action{types.CellKeyAction{Key: "esc"}}, actions)
}

func TestFilterArrowKeepsQueryAndMoves(t *testing.T) {
	h := New()
	ctx := fakeContext{screen: types.ScreenQueue}
	h.HandleKey(runes("/"), ctx)
	h.HandleKey(runes("k"), ctx)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyDown}, ctx)
	assert.Equal(t, []types.Action{
		types.SubmitTextAction{Text: "k", Mode: types.ModeFilter},
		types.NavigateAction{Direction: "down"},
	}, actions)
	assert.Equal(t, types.ModeNormal, h.CurrentMode())
}

func TestFilterCtrlUClearsInput(t *testing.T) {
	h := New()
	ctx := fakeContext{screen: types.ScreenGrid}
	h.HandleKey(runes("/"), ctx)
	h.HandleKey(runes("abc"), ctx)

	actions, _ := h.HandleKey(tea.KeyMsg{Type: tea.KeyCtrlU}, ctx)
	assert.Equal(t, []types.Action{types.UpdateTextAction{Text: ""}}, actions)
	assert.Equal(t, "", h.Value())
	assert.Equal(t, types.ModeFilter, h.CurrentMode())
}

func TestQueueRangeSelect(t *testing.T) {
	h := New()
	actions, _ := h.HandleKey(runes("V"), fakeContext{screen: types.ScreenQueue})
	assert.Equal(t, []types.Action{types.SelectAction{Range: true}}, actions)

	actions, _ = h.HandleKey(runes("V"), fakeContext{screen: types.ScreenGrid})
	assert.Empty(t, actions)
}
