package grid

import (
	"fmt"

	"refdesk/internal/domain"
)

type fakeElement struct {
	host *fakeHost
	cell CellRef
}

func (e fakeElement) ScrollIntoView(block, inline Align) {
	e.host.calls = append(e.host.calls, fmt.Sprintf("scroll %s/%s %d %d", e.cell.RowID, e.cell.Field, block, inline))
}

// fakeHost records every call in order
type fakeHost struct {
	calls     []string
	values    map[CellRef]any
	startErr  error
	stopErr   error
	setErr    error
	focusErr  error
	unmounted map[CellRef]bool
}

func newFakeHost() *fakeHost {
	return &fakeHost{values: map[CellRef]any{}, unmounted: map[CellRef]bool{}}
}

func (h *fakeHost) StartEditMode(rowID, field string) error {
	h.calls = append(h.calls, "start "+rowID+"/"+field)
	return h.startErr
}

func (h *fakeHost) StopEditMode(rowID, field string, apply bool) error {
	h.calls = append(h.calls, fmt.Sprintf("stop %s/%s apply=%v", rowID, field, apply))
	return h.stopErr
}

func (h *fakeHost) SetCellValue(rowID, field string, value any) error {
	h.calls = append(h.calls, fmt.Sprintf("set %s/%s=%v", rowID, field, value))
	if h.setErr != nil {
		return h.setErr
	}
	h.values[CellRef{RowID: rowID, Field: field}] = value
	return nil
}

func (h *fakeHost) SetFocus(rowID, field string) error {
	h.calls = append(h.calls, "focus "+rowID+"/"+field)
	return h.focusErr
}

func (h *fakeHost) CellElement(rowID, field string) (Element, error) {
	cell := CellRef{RowID: rowID, Field: field}
	if h.unmounted[cell] {
		return nil, ErrCellNotMounted
	}
	return fakeElement{host: h, cell: cell}, nil
}

func (h *fakeHost) reset() { h.calls = nil }

// runAll executes deferred work the way a host loop would, including follow-ups
func runAll(tasks []Deferred) {
	for len(tasks) > 0 {
		t := tasks[0]
		tasks = append(tasks[1:], t.Run()...)
	}
}

func rowsOf(ids ...string) []domain.Row {
	rows := make([]domain.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, domain.Row{"id": id})
	}
	return rows
}
