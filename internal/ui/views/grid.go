package views

import (
	"strings"

	"github.com/mattn/go-runewidth"

	"refdesk/internal/domain"
	"refdesk/internal/grid"
)

// GridView is one page of an editable grid
type GridView struct {
	Columns []grid.Column
	Rows    []domain.Row
	// Display renders a cell value, e.g. a select label instead of its code
	Display func(row domain.Row, col grid.Column) string
	// Dirty reports an unsubmitted change to a cell
	Dirty func(rowIndex int, field string) bool
	// Draft reports a row that does not exist on the backend yet
	Draft func(rowIndex int) bool

	CursorRow int
	CursorCol int
	Offset    int
	Height    int
	ColOffset int
	Width     int

	EditMode   bool
	Editing    bool
	EditorText string
}

const minCellWidth = 4

// GridRenderer handles rendering of grid pages
type GridRenderer struct {
	styles *Styles
}

// NewGridRenderer creates a new grid renderer
func NewGridRenderer(styles *Styles) *GridRenderer {
	return &GridRenderer{styles: styles}
}

// Render draws the header and the visible rows
func (g *GridRenderer) Render(v GridView) string {
	last := LastVisibleColumn(v.Columns, v.ColOffset, v.Width)

	var header strings.Builder
	header.WriteString("  ")
	for i := v.ColOffset; i <= last && i < len(v.Columns); i++ {
		col := v.Columns[i]
		header.WriteString(g.styles.Header.Render(fit(col.Header, cellWidth(col))))
		header.WriteString(" ")
	}

	rows := make([]string, len(v.Rows))
	for ri, row := range v.Rows {
		rows[ri] = g.renderRow(v, ri, row, last)
	}

	lines := []string{strings.TrimRight(header.String(), " ")}
	lines = append(lines, windowLines(g.styles, rows, v.Offset, v.Height)...)
	return strings.Join(lines, "\n")
}

func (g *GridRenderer) renderRow(v GridView, ri int, row domain.Row, last int) string {
	var b strings.Builder

	marker := "  "
	switch {
	case v.Draft != nil && v.Draft(ri):
		marker = g.styles.StatusSuccess.Render("+ ")
	case v.Dirty != nil && v.rowDirty(ri):
		marker = g.styles.DirtyCell.Render("● ")
	}
	b.WriteString(marker)

	for ci := v.ColOffset; ci <= last && ci < len(v.Columns); ci++ {
		col := v.Columns[ci]
		w := cellWidth(col)
		focused := ri == v.CursorRow && ci == v.CursorCol

		text := row.String(col.Field)
		if v.Display != nil {
			text = v.Display(row, col)
		}

		style := g.styles.Cell
		switch {
		case focused && v.Editing:
			style = g.styles.EditingCell
			if col.Kind == grid.KindPlain {
				text = v.EditorText
			}
		case focused:
			style = g.styles.FocusCell
		case v.Dirty != nil && v.Dirty(ri, col.Field):
			style = g.styles.DirtyCell
		case v.EditMode && !col.Editable:
			style = g.styles.ReadOnlyCell
		}
		b.WriteString(style.Render(fit(text, w)))
		b.WriteString(" ")
	}
	return strings.TrimRight(b.String(), " ")
}

func (v GridView) rowDirty(ri int) bool {
	for _, col := range v.Columns {
		if v.Dirty(ri, col.Field) {
			return true
		}
	}
	return false
}

// LastVisibleColumn returns the index of the last column that fits in width
// when drawing starts at first.
func LastVisibleColumn(cols []grid.Column, first, width int) int {
	if width <= 0 {
		return len(cols) - 1
	}
	used := 2
	last := first
	for i := first; i < len(cols); i++ {
		used += cellWidth(cols[i]) + 1
		if used > width && i > first {
			break
		}
		last = i
	}
	return last
}

func cellWidth(col grid.Column) int {
	return max(col.Width, minCellWidth)
}

// fit truncates or pads s to exactly w display columns
func fit(s string, w int) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if runewidth.StringWidth(s) > w {
		s = runewidth.Truncate(s, w, "…")
	}
	return runewidth.FillRight(s, w)
}
