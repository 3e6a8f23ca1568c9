package ui

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"refdesk/internal/domain"
	"refdesk/internal/grid"
	"refdesk/internal/ui/input/types"
	"refdesk/internal/ui/views"
)

// gridHost is the terminal rendering of the grid as the controller sees it.
// Calls happen inside Update; follow-up messages go through m.pending.
type gridHost struct {
	m *Model
}

func (h gridHost) locate(rowID, field string) (int, int, domain.Row, error) {
	m := h.m
	rows := m.visibleRows()
	ri := grid.RowIndex(rows, m.def.RowID, rowID)
	if ri < 0 {
		return 0, 0, nil, fmt.Errorf("row %s: %w", rowID, grid.ErrCellNotMounted)
	}
	for ci, col := range m.grid.Columns() {
		if col.Field == field {
			return ri, ci, rows[ri], nil
		}
	}
	return 0, 0, nil, fmt.Errorf("column %s: %w", field, grid.ErrCellNotMounted)
}

func (h gridHost) StartEditMode(rowID, field string) error {
	m := h.m
	ri, ci, row, err := h.locate(rowID, field)
	if err != nil {
		return err
	}
	col := m.grid.Columns()[ci]
	m.state.CursorRow, m.state.CursorCol = ri, ci

	title := col.Header
	switch col.Kind {
	case grid.KindSelect:
		opts := grid.OptionsFor(col, row, m.grid.Fields())
		m.editor = newSelectEditor(title, opts, row.String(field))
		m.queueCmd(m.inputHandler.ChangeMode(types.ModeSelect, "", m))
	case grid.KindDate:
		m.editor = newDateEditor(title, row.String(field), time.Now)
		m.queueCmd(m.inputHandler.ChangeMode(types.ModeDate, "", m))
	default:
		m.editor = nil
		m.queueCmd(m.inputHandler.ChangeMode(types.ModeCellEdit, row.String(field), m))
	}
	m.editing = &grid.CellRef{RowID: rowID, Field: field}
	return nil
}

func (h gridHost) StopEditMode(rowID, field string, applyModifications bool) error {
	m := h.m
	cell := grid.CellRef{RowID: rowID, Field: field}
	if m.editing == nil || *m.editing != cell {
		return fmt.Errorf("cell %s/%s is not being edited", rowID, field)
	}
	if applyModifications && m.editor == nil {
		if row := m.findRow(rowID); row != nil {
			if v, changed := editedValue(row[field], m.inputHandler.Value()); changed {
				row[field] = v
			}
		}
	}
	m.editor = nil
	m.editing = nil
	m.queueCmd(m.inputHandler.ChangeMode(types.ModeNormal, "", m))
	m.queueCmd(func() tea.Msg { return cellEditStoppedMsg{cell: cell} })
	return nil
}

// editedValue converts typed text back to a cell value. Text that still reads
// as the old value leaves the cell untouched, and numeric cells stay numeric.
func editedValue(old any, text string) (any, bool) {
	if (domain.Row{"v": old}).String("v") == text {
		return old, false
	}
	if _, ok := old.(float64); ok {
		if f, err := strconv.ParseFloat(strings.TrimSpace(text), 64); err == nil {
			return f, true
		}
	}
	return text, true
}

func (h gridHost) SetCellValue(rowID, field string, value any) error {
	row := h.m.findRow(rowID)
	if row == nil {
		return fmt.Errorf("row %s: %w", rowID, grid.ErrCellNotMounted)
	}
	if value == nil {
		delete(row, field)
		return nil
	}
	row[field] = value
	return nil
}

func (h gridHost) SetFocus(rowID, field string) error {
	ri, ci, _, err := h.locate(rowID, field)
	if err != nil {
		return err
	}
	h.m.state.CursorRow, h.m.state.CursorCol = ri, ci
	return nil
}

func (h gridHost) CellElement(rowID, field string) (grid.Element, error) {
	ri, ci, _, err := h.locate(rowID, field)
	if err != nil {
		return nil, err
	}
	return cellElement{m: h.m, row: ri, col: ci}, nil
}

// cellElement scrolls the grid viewport to a cell
type cellElement struct {
	m   *Model
	row int
	col int
}

func (e cellElement) ScrollIntoView(block, inline grid.Align) {
	m := e.m
	height := max(m.state.ViewportHeight, 1)
	switch {
	case block == grid.AlignStart:
		m.state.ViewportOffset = e.row
	case block == grid.AlignCenter:
		m.state.ViewportOffset = max(e.row-height/2, 0)
	case block == grid.AlignEnd || e.row >= m.state.ViewportOffset+height:
		m.state.ViewportOffset = max(e.row-height+1, 0)
	case e.row < m.state.ViewportOffset:
		m.state.ViewportOffset = e.row
	}

	cols := m.grid.Columns()
	if e.col < m.state.ColOffset || inline == grid.AlignStart {
		m.state.ColOffset = e.col
		return
	}
	for e.col > views.LastVisibleColumn(cols, m.state.ColOffset, m.contentWidth()) && m.state.ColOffset < e.col {
		m.state.ColOffset++
	}
}

// schedule turns controller follow-up work into commands. Nothing runs before
// the current message has been handled.
func (m *Model) schedule(tasks []grid.Deferred) tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(tasks))
	for _, t := range tasks {
		run := t.Run
		if t.Delay <= 0 {
			cmds = append(cmds, func() tea.Msg { return deferredMsg{run: run} })
			continue
		}
		cmds = append(cmds, tea.Tick(t.Delay, func(time.Time) tea.Msg { return deferredMsg{run: run} }))
	}
	return tea.Batch(cmds...)
}

func (m *Model) queueCmd(cmd tea.Cmd) {
	if cmd != nil {
		m.pending = append(m.pending, cmd)
	}
}

// drain returns and clears the commands queued by host calls
func (m *Model) drain() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}
