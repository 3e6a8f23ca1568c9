package grid

import "refdesk/internal/domain"

// NextEditable finds the cell Tab should move to: the next editable column in
// the same row, else the first editable column of the next row. Column order
// is authoritative. ok is false when there is nowhere to go.
func NextEditable(currentField string, currentRowIndex int, columns []Column, rows []domain.Row, rowID RowIDFunc) (CellRef, bool) {
	idx := columnIndex(columns, currentField)
	if idx < 0 || currentRowIndex < 0 || currentRowIndex >= len(rows) {
		return CellRef{}, false
	}

	if f, ok := firstEditable(columns, idx+1); ok {
		return CellRef{RowID: rowID(rows[currentRowIndex]), Field: f}, true
	}

	if currentRowIndex+1 < len(rows) {
		if f, ok := firstEditable(columns, 0); ok {
			return CellRef{RowID: rowID(rows[currentRowIndex+1]), Field: f}, true
		}
	}
	return CellRef{}, false
}

// NextEditableInRow is the single-record variant: it never wraps to another row.
func NextEditableInRow(currentField, rowID string, columns []Column) (CellRef, bool) {
	idx := columnIndex(columns, currentField)
	if idx < 0 {
		return CellRef{}, false
	}
	if f, ok := firstEditable(columns, idx+1); ok {
		return CellRef{RowID: rowID, Field: f}, true
	}
	return CellRef{}, false
}

// RowIndex returns the position of the row with the given id, or -1
func RowIndex(rows []domain.Row, rowID RowIDFunc, id string) int {
	for i, r := range rows {
		if rowID(r) == id {
			return i
		}
	}
	return -1
}

func columnIndex(columns []Column, field string) int {
	for i, c := range columns {
		if c.Field == field {
			return i
		}
	}
	return -1
}

func firstEditable(columns []Column, from int) (string, bool) {
	for i := from; i < len(columns); i++ {
		if columns[i].Editable {
			return columns[i].Field, true
		}
	}
	return "", false
}
