package ui

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"refdesk/internal/approval"
	"refdesk/internal/domain"
	"refdesk/internal/grid"
	"refdesk/internal/session"
	"refdesk/internal/ui/input/types"
	"refdesk/internal/ui/views"
)

const (
	helpTitle   = "Help"
	draftPrefix = "new-"
	queueReturn = "queue"
)

// processAction executes an action from the input handler
func (m *Model) processAction(action types.Action) tea.Cmd {
	switch a := action.(type) {
	case types.NavigateAction:
		m.navigate(a.Direction)

	case types.CellKeyAction:
		return m.handleCellKey(a)

	case types.EditorKeyAction:
		if m.editor != nil {
			return m.editor.Update(a.Msg)
		}

	case types.ToggleEditModeAction:
		if m.grid == nil || m.editing != nil {
			return nil
		}
		on := !m.grid.EditMode()
		m.grid.SetEditMode(on)
		if on {
			return m.status("Edit mode on", views.StatusInfo)
		}
		return m.status("Edit mode off", views.StatusInfo)

	case types.SelectAction:
		if m.screen == types.ScreenQueue {
			if a.Range {
				m.selection.SelectRange(m.state.QueueCursor)
			} else {
				m.selection.Toggle(m.state.QueueCursor)
			}
		}

	case types.SelectAllAction:
		if m.screen == types.ScreenQueue {
			items := m.visibleQueue()
			ids := make([]string, len(items))
			for i, r := range items {
				ids[i] = string(r.ID)
			}
			m.selection.SelectAll(ids)
		}

	case types.DeselectAllAction:
		m.selection.DeselectAll()

	case types.UpdateTextAction:
		if m.inputHandler.CurrentMode() == types.ModeFilter {
			m.setFilter(a.Text)
		}

	case types.SubmitTextAction:
		if a.Mode == types.ModeFilter {
			m.setFilter(strings.TrimSpace(a.Text))
		}

	case types.CancelTextAction:
		m.setFilter("")

	case types.RequestConfirmAction:
		m.pendingConfirm = a.Action
		m.confirmPrompt = a.Prompt
		m.queueCmd(m.inputHandler.ChangeMode(types.ModeConfirm, "", m))

	case types.ConfirmAction:
		pending := m.pendingConfirm
		m.pendingConfirm, m.confirmPrompt = nil, ""
		if pending != nil {
			return m.processAction(pending)
		}

	case types.DismissConfirmAction:
		m.pendingConfirm, m.confirmPrompt = nil, ""

	case types.ApproveAction:
		return m.decideSelected("approve")

	case types.RetractAction:
		return m.decideSelected("retract")

	case types.ShowPayloadAction:
		return m.showPayload()

	case types.OpenTargetAction:
		return m.openTarget()

	case types.SubmitRowAction:
		return m.submitRow()

	case types.NewRowAction:
		return m.newRow()

	case types.DeleteRowAction:
		return m.deleteRow()

	case types.RevertRowAction:
		return m.revertRow()

	case types.YankAction:
		return m.yank()

	case types.RefreshAction:
		return m.refresh()

	case types.PageAction:
		return m.changePage(a.Delta)

	case types.SwitchScreenAction:
		return m.switchScreen(a.Screen)

	case types.CycleResourceAction:
		return m.cycleResource(a.Delta)

	case types.BackAction:
		return m.back()

	case types.ToggleHelpAction:
		if m.noPager {
			m.state.ShowHelp = true
			m.openPopup(popupHelp, helpTitle, "")
			return nil
		}
		return m.showInPager(helpTitle, m.renderer.HelpContent())

	case types.QuitAction:
		if !a.Force && m.def != nil && m.hasUnsubmitted() {
			return m.processAction(types.RequestConfirmAction{
				Prompt: "Discard unsubmitted changes and quit?",
				Action: types.QuitAction{Force: true},
			})
		}
		return tea.Quit
	}
	return nil
}

func (m *Model) navigate(direction string) {
	switch m.screen {
	case types.ScreenGrid:
		if m.grid == nil {
			return
		}
		switch direction {
		case "left":
			m.state.CursorCol = max(m.state.CursorCol-1, 0)
		case "right":
			m.state.CursorCol = max(min(m.state.CursorCol+1, len(m.grid.Columns())-1), 0)
		default:
			m.navigator.UpdateState(m.state.CursorRow, m.state.ViewportOffset, m.state.ViewportHeight, len(m.visible))
			m.state.CursorRow, m.state.ViewportOffset = m.move(direction)
		}
		m.ensureCursorVisible()
	case types.ScreenQueue:
		m.navigator.UpdateState(m.state.QueueCursor, m.state.QueueOffset, m.state.ViewportHeight, len(m.visibleQueue()))
		m.state.QueueCursor, m.state.QueueOffset = m.move(direction)
	case types.ScreenJournal:
		m.navigator.UpdateState(m.state.JournalCursor, m.state.JournalOffset, m.state.ViewportHeight, len(m.state.JournalEntries))
		m.state.JournalCursor, m.state.JournalOffset = m.move(direction)
	}
}

func (m *Model) move(direction string) (int, int) {
	switch direction {
	case "up":
		return m.navigator.Move(-1)
	case "down":
		return m.navigator.Move(1)
	case "pageup":
		return m.navigator.PageUp()
	case "pagedown":
		return m.navigator.PageDown()
	case "home":
		return m.navigator.Home()
	case "end":
		return m.navigator.End()
	}
	return m.navigator.GetSelectedIndex(), m.navigator.GetViewportOffset()
}

// handleCellKey hands Tab, Enter and Escape to the grid controller. Keys it
// leaves alone go to the open editor, which commits or closes.
func (m *Model) handleCellKey(a types.CellKeyAction) tea.Cmd {
	if m.screen != types.ScreenGrid || m.grid == nil {
		return nil
	}
	var key grid.Key
	switch a.Key {
	case "tab":
		key = grid.KeyTab
	case "enter":
		key = grid.KeyEnter
	case "esc":
		key = grid.KeyEscape
	default:
		return nil
	}

	if !m.grid.EditMode() {
		if key == grid.KeyTab {
			m.stepColumn(a.Shift)
		}
		return nil
	}

	cell, ok := m.cursorCell()
	if m.editing != nil {
		cell, ok = *m.editing, true
	}
	if !ok {
		return nil
	}
	terminal := m.editor == nil || m.editor.Terminal()
	tasks, handled := m.grid.Dispatch(grid.KeyEvent{Cell: cell, Key: key, Shift: a.Shift, Terminal: terminal})
	if handled {
		return m.schedule(tasks)
	}

	switch {
	case m.editor != nil && !a.Shift && (key == grid.KeyEnter || key == grid.KeyTab):
		if key == grid.KeyEnter && !m.editor.Terminal() {
			m.editor.Advance()
			return nil
		}
		return m.commitEditor(cell)
	case m.editing == nil && a.Shift:
		m.stepColumn(true)
	}
	return nil
}

// commitEditor reports the editor's value, or its closing without one
func (m *Model) commitEditor(cell grid.CellRef) tea.Cmd {
	value, err := m.editor.Value()
	switch {
	case errors.Is(err, errNoSelection):
		tasks, _ := m.grid.Dispatch(grid.EditorClosedEvent{Cell: cell})
		return m.schedule(tasks)
	case err != nil:
		// the editor shows the problem and stays open
		return nil
	}
	tasks, _ := m.grid.Dispatch(grid.ValueCommittedEvent{Cell: cell, Value: value})
	return m.schedule(tasks)
}

func (m *Model) stepColumn(back bool) {
	if back {
		m.navigate("left")
	} else {
		m.navigate("right")
	}
}

func (m *Model) setFilter(q string) {
	m.state.FilterQuery = q
	switch m.screen {
	case types.ScreenGrid:
		m.state.CursorRow, m.state.ViewportOffset = 0, 0
		m.refreshVisible()
	case types.ScreenQueue:
		m.state.QueueCursor, m.state.QueueOffset = 0, 0
	}
}

func (m *Model) decideSelected(action string) tea.Cmd {
	if m.queue == nil || m.def == nil {
		return nil
	}
	ids := m.selection.GetSelected()
	if len(ids) == 0 {
		return nil
	}
	if m.queue.InFlight(m.def.Name) {
		return m.status("An approval action is already running", views.StatusWarn)
	}
	return m.decide(action, ids)
}

func (m *Model) currentRequest() (approval.Request, bool) {
	items := m.visibleQueue()
	if m.state.QueueCursor < 0 || m.state.QueueCursor >= len(items) {
		return approval.Request{}, false
	}
	return items[m.state.QueueCursor], true
}

func (m *Model) showPayload() tea.Cmd {
	var title, before, after string
	switch m.screen {
	case types.ScreenQueue:
		req, ok := m.currentRequest()
		if !ok {
			return nil
		}
		title = fmt.Sprintf("%s %s %s", req.Kind, req.TargetType, req.TargetID)
		before, after = req.PayloadBefore, req.PayloadAfter
	case types.ScreenJournal:
		entries := m.state.JournalEntries
		if m.state.JournalCursor < 0 || m.state.JournalCursor >= len(entries) {
			return nil
		}
		e := entries[m.state.JournalCursor]
		title = fmt.Sprintf("%s %s %s", e.Action, e.TargetType, e.TargetID)
		before, after = e.PayloadBefore, e.PayloadAfter
	default:
		return nil
	}

	content := formatPayload(before, after)
	if m.noPager {
		m.openPopup(popupPayload, title, content)
		return nil
	}
	return m.showInPager(title, content)
}

// formatPayload pretty prints the before and after JSON of a change
func formatPayload(before, after string) string {
	var b strings.Builder
	section := func(name, payload string) {
		b.WriteString("── " + name + " ──\n")
		if strings.TrimSpace(payload) == "" || payload == "null" {
			b.WriteString("(none)\n")
			return
		}
		var out bytes.Buffer
		if err := json.Indent(&out, []byte(payload), "", "  "); err != nil {
			b.WriteString(payload)
		} else {
			b.Write(out.Bytes())
		}
		b.WriteString("\n")
	}
	section("Before", before)
	b.WriteString("\n")
	section("After", after)
	return b.String()
}

// openTarget jumps to the grid row a queue entry refers to and remembers the
// queue position so that back returns there
func (m *Model) openTarget() tea.Cmd {
	if m.screen != types.ScreenQueue || m.def == nil {
		return nil
	}
	req, ok := m.currentRequest()
	if !ok {
		return nil
	}
	m.session.Set(m.user, session.ApprovalReturn, queueReturn)
	m.session.Set(m.user, session.ApprovalPageState, strconv.Itoa(m.state.QueueCursor))

	m.screen = types.ScreenGrid
	m.state.FilterQuery = ""
	m.refreshVisible()

	idx := grid.RowIndex(m.visibleRows(), m.def.RowID, req.TargetID.String())
	if idx < 0 {
		return m.status(fmt.Sprintf("%s %s is not on this page", m.def.Label, req.TargetID), views.StatusWarn)
	}
	m.state.CursorRow = idx
	m.ensureCursorVisible()
	return nil
}

func (m *Model) back() tea.Cmd {
	if m.state.FilterQuery != "" {
		m.setFilter("")
		return nil
	}
	if m.screen != types.ScreenGrid {
		return nil
	}
	ret, ok := m.session.Take(m.user, session.ApprovalReturn)
	if !ok || ret != queueReturn {
		return nil
	}
	m.screen = types.ScreenQueue
	if v, ok := m.session.Take(m.user, session.ApprovalPageState); ok {
		if n, err := strconv.Atoi(v); err == nil {
			m.state.QueueCursor = max(min(n, len(m.state.Queue)-1), 0)
		}
	}
	return nil
}

func (m *Model) submitRow() tea.Cmd {
	if m.screen != types.ScreenGrid || m.def == nil {
		return nil
	}
	if m.queue == nil {
		return m.status("Approval queue is not available", views.StatusWarn)
	}
	row, ok := m.cursorRow()
	if !ok {
		return nil
	}
	id := m.def.RowID(row)
	if err := m.def.Validate(row); err != nil {
		return m.status(err.Error(), views.StatusWarn)
	}

	if m.state.Drafts[id] {
		after := row.Clone()
		delete(after, m.def.IDField)
		delete(after, "no")
		return m.submit(approval.KindCreate, id, "", nil, after)
	}
	orig, ok := m.state.Original(id)
	if !ok || !grid.HasChanges(orig, row) {
		return m.status("No changes to submit", views.StatusInfo)
	}
	return m.submit(approval.KindUpdate, id, id, orig, row.Clone())
}

func (m *Model) newRow() tea.Cmd {
	if m.screen != types.ScreenGrid || m.def == nil {
		return nil
	}
	id := draftPrefix + uuid.NewString()
	m.state.FilterQuery = ""
	m.state.AddDraft(id, domain.Row{m.def.IDField: id})
	m.refreshVisible()
	m.state.CursorRow = len(m.visible) - 1
	for i, col := range m.grid.Columns() {
		if col.Editable {
			m.state.CursorCol = i
			break
		}
	}
	m.ensureCursorVisible()
	return m.status("New row added, press s to submit it", views.StatusInfo)
}

func (m *Model) deleteRow() tea.Cmd {
	if m.screen != types.ScreenGrid || m.def == nil {
		return nil
	}
	row, ok := m.cursorRow()
	if !ok {
		return nil
	}
	id := m.def.RowID(row)
	if m.state.Drafts[id] {
		m.removeRow(id)
		return nil
	}
	if m.queue == nil {
		return m.status("Approval queue is not available", views.StatusWarn)
	}
	orig, ok := m.state.Original(id)
	if !ok {
		orig = row
	}
	return m.submit(approval.KindDelete, id, id, orig.Clone(), nil)
}

func (m *Model) revertRow() tea.Cmd {
	if m.screen != types.ScreenGrid || m.def == nil {
		return nil
	}
	row, ok := m.cursorRow()
	if !ok {
		return nil
	}
	id := m.def.RowID(row)
	if m.state.Drafts[id] {
		m.removeRow(id)
		return m.status("Draft removed", views.StatusInfo)
	}
	orig, ok := m.state.Original(id)
	if !ok {
		return nil
	}
	for i, r := range m.state.Rows {
		if m.def.RowID(r) == id {
			m.state.Rows[i] = orig.Clone()
		}
	}
	m.refreshVisible()
	return m.status("Row reverted", views.StatusInfo)
}

func (m *Model) removeRow(id string) {
	for i, r := range m.state.Rows {
		if m.def.RowID(r) == id {
			m.state.RemoveRow(i, id)
			break
		}
	}
	m.refreshVisible()
}

func (m *Model) yank() tea.Cmd {
	row, ok := m.cursorRow()
	cols := m.grid.Columns()
	if !ok || m.state.CursorCol >= len(cols) {
		return nil
	}
	value := displayValue(row, cols[m.state.CursorCol].Field, m.grid.Fields())
	if err := clipboard.WriteAll(value); err != nil {
		return m.status(fmt.Sprintf("Copy failed: %v", err), views.StatusWarn)
	}
	return m.status("Copied "+value, views.StatusOK)
}

func (m *Model) refresh() tea.Cmd {
	switch m.screen {
	case types.ScreenGrid:
		if m.def != nil && m.hasUnsubmitted() {
			return m.status("Submit or revert your changes before reloading", views.StatusWarn)
		}
		return tea.Batch(m.loadRows(), m.loadCategories())
	case types.ScreenQueue:
		return m.loadQueue()
	case types.ScreenJournal:
		return m.loadJournal()
	}
	return nil
}

func (m *Model) changePage(delta int) tea.Cmd {
	if m.screen != types.ScreenGrid || m.def == nil {
		return nil
	}
	last := max(m.state.Meta.TotalPages-1, 0)
	page := max(min(m.state.Page+delta, last), 0)
	if page == m.state.Page {
		return nil
	}
	if m.hasUnsubmitted() {
		return m.status("Submit or revert your changes before changing page", views.StatusWarn)
	}
	m.state.Page = page
	m.state.CursorRow, m.state.ViewportOffset = 0, 0
	return m.loadRows()
}

func (m *Model) switchScreen(screen types.Screen) tea.Cmd {
	if screen == m.screen {
		return nil
	}
	m.screen = screen
	m.state.FilterQuery = ""
	m.refreshVisible()
	switch screen {
	case types.ScreenQueue:
		return m.loadQueue()
	case types.ScreenJournal:
		return m.loadJournal()
	}
	return nil
}

func (m *Model) cycleResource(delta int) tea.Cmd {
	if m.catalog == nil || m.def == nil {
		return nil
	}
	names := m.catalog.Names()
	if len(names) < 2 {
		return nil
	}
	if m.hasUnsubmitted() {
		return m.status("Submit or revert your changes before switching resource", views.StatusWarn)
	}
	idx := 0
	for i, n := range names {
		if n == m.def.Name {
			idx = i
		}
	}
	next := names[(idx+delta+len(names))%len(names)]
	if err := m.useResource(next); err != nil {
		return m.status(err.Error(), views.StatusErr)
	}
	cmds := []tea.Cmd{m.loadRows(), m.loadCategories(), m.loadQueue()}
	if m.screen == types.ScreenJournal {
		cmds = append(cmds, m.loadJournal())
	}
	return tea.Batch(cmds...)
}
