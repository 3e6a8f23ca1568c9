package grid

import (
	"time"

	"go.uber.org/zap"

	"refdesk/internal/domain"
)

// State of the edit-session machine
type State int

const (
	Viewing State = iota
	Editing
	CommittingAdvance
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case CommittingAdvance:
		return "committing-advance"
	default:
		return "viewing"
	}
}

// Key is a navigation key the controller understands
type Key int

const (
	KeyTab Key = iota
	KeyEnter
	KeyEscape
)

// Event is an input to Controller.Dispatch
type Event interface {
	isEvent()
}

// KeyEvent is a key press on a focused cell. Terminal is set by multi-step
// editors when they are on their last step.
type KeyEvent struct {
	Cell     CellRef
	Key      Key
	Shift    bool
	Terminal bool
}

// EditStoppedEvent is sent by the host once a cell has left edit mode
type EditStoppedEvent struct {
	Cell CellRef
}

// ValueCommittedEvent is sent when a select or date editor commits a value
type ValueCommittedEvent struct {
	Cell  CellRef
	Value any
}

// EditorClosedEvent is sent when a select or date editor closes without a selection
type EditorClosedEvent struct {
	Cell CellRef
}

func (KeyEvent) isEvent()            {}
func (EditStoppedEvent) isEvent()    {}
func (ValueCommittedEvent) isEvent() {}
func (EditorClosedEvent) isEvent()   {}

// Session is the active edit session
type Session struct {
	Cell        CellRef
	Kind        Kind
	Original    any
	TabIntent   bool
	AutoAdvance bool
}

// Options configures a Controller
type Options struct {
	Specs  []ColumnSpec
	Fields FieldConfig
	RowID  RowIDFunc
	// SingleRow keeps Tab inside the current row, for detail forms.
	SingleRow bool
	Settle    time.Duration
	Logger    *zap.Logger
}

// Controller is the edit-session state machine for one grid
type Controller struct {
	host     Host
	focus    *Coordinator
	specs    []ColumnSpec
	fields   FieldConfig
	rowID    RowIDFunc
	single   bool
	editMode bool
	columns  []Column
	rows     []domain.Row
	state    State
	session  *Session
	log      *zap.Logger
}

// NewController creates a controller driving host
func NewController(host Host, opts Options) *Controller {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	rowID := opts.RowID
	if rowID == nil {
		rowID = func(r domain.Row) string { return r.String("id") }
	}
	c := &Controller{
		host:   host,
		focus:  NewCoordinator(host, opts.Settle, log),
		specs:  opts.Specs,
		fields: opts.Fields,
		rowID:  rowID,
		single: opts.SingleRow,
		log:    log,
	}
	c.columns = ProcessColumns(c.specs, false, c.fields)
	return c
}

// SetEditMode toggles grid edit mode and reclassifies columns.
// Leaving edit mode drops any session.
func (c *Controller) SetEditMode(on bool) {
	c.editMode = on
	c.columns = ProcessColumns(c.specs, on, c.fields)
	if !on {
		c.reset()
	}
}

// SetFields replaces the field configuration and reclassifies columns
func (c *Controller) SetFields(cfg FieldConfig) {
	c.fields = cfg
	c.columns = ProcessColumns(c.specs, c.editMode, c.fields)
}

// SetRows replaces the rows used for navigation. A session whose row is
// gone from the new set is dropped.
func (c *Controller) SetRows(rows []domain.Row) {
	c.rows = rows
	if c.session != nil && RowIndex(rows, c.rowID, c.session.Cell.RowID) < 0 {
		c.log.Debug("edited row left the grid, resetting",
			zap.String("row", c.session.Cell.RowID),
			zap.String("field", c.session.Cell.Field))
		c.reset()
	}
}

// Abort drops the session without calling the host. The host has already
// torn down its editor, e.g. because the page was reloaded.
func (c *Controller) Abort() {
	c.reset()
}

func (c *Controller) EditMode() bool      { return c.editMode }
func (c *Controller) Columns() []Column   { return c.columns }
func (c *Controller) Rows() []domain.Row  { return c.rows }
func (c *Controller) State() State        { return c.state }
func (c *Controller) Fields() FieldConfig { return c.fields }
func (c *Controller) RowID() RowIDFunc    { return c.rowID }

// Session returns a copy of the active session
func (c *Controller) Session() (Session, bool) {
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Column returns the processed descriptor of field
func (c *Controller) Column(field string) (Column, bool) {
	for _, col := range c.columns {
		if col.Field == field {
			return col, true
		}
	}
	return Column{}, false
}

// Dispatch feeds one event into the machine. handled reports whether the
// event was consumed; unhandled keys should still reach the cell editor.
// The returned tasks must run after the current event has been processed.
func (c *Controller) Dispatch(ev Event) (tasks []Deferred, handled bool) {
	if !c.editMode {
		return nil, false
	}
	switch e := ev.(type) {
	case KeyEvent:
		return c.onKey(e)
	case EditStoppedEvent:
		return c.onEditStopped(e), true
	case ValueCommittedEvent:
		return c.onValueCommitted(e), true
	case EditorClosedEvent:
		return c.onEditorClosed(e), true
	}
	return nil, false
}

func (c *Controller) onKey(e KeyEvent) ([]Deferred, bool) {
	if e.Key == KeyTab && e.Shift {
		return nil, false
	}
	col, ok := c.Column(e.Cell.Field)
	if !ok {
		return nil, false
	}
	if c.session != nil && c.session.Cell != e.Cell {
		return nil, false
	}

	if c.state == Viewing {
		switch e.Key {
		case KeyEnter:
			return c.startEdit(e.Cell, col), true
		case KeyTab:
			return c.advance(e.Cell), true
		}
		return nil, false
	}

	s := c.session
	switch e.Key {
	case KeyTab:
		if s.Kind == KindPlain {
			if c.state == CommittingAdvance {
				return nil, true
			}
			s.TabIntent = true
			c.state = CommittingAdvance
			if err := c.host.StopEditMode(s.Cell.RowID, s.Cell.Field, true); err != nil {
				c.fail("stop edit on tab", err)
			}
			return nil, true
		}
		// select and date advance once the editor commits its value
		s.TabIntent = true
		s.AutoAdvance = true
		c.state = CommittingAdvance
		return nil, false

	case KeyEnter:
		switch s.Kind {
		case KindPlain:
			cell := s.Cell
			if err := c.host.StopEditMode(cell.RowID, cell.Field, true); err != nil {
				c.fail("stop edit on enter", err)
				return nil, true
			}
			c.reset()
			return c.focus.Focus(cell), true
		case KindSelect:
			s.TabIntent = false
			s.AutoAdvance = false
			c.state = Editing
			return nil, false
		case KindDate:
			if e.Terminal {
				s.TabIntent = false
				s.AutoAdvance = false
				c.state = Editing
			}
			return nil, false
		}

	case KeyEscape:
		return c.cancel(true), true
	}
	return nil, false
}

func (c *Controller) startEdit(cell CellRef, col Column) []Deferred {
	if !col.Editable {
		return nil
	}
	if err := c.host.StartEditMode(cell.RowID, cell.Field); err != nil {
		c.log.Debug("start edit failed", zap.String("row", cell.RowID), zap.String("field", cell.Field), zap.Error(err))
		return nil
	}
	var original any
	if idx := RowIndex(c.rows, c.rowID, cell.RowID); idx >= 0 {
		original = c.rows[idx][cell.Field]
	}
	c.session = &Session{Cell: cell, Kind: col.Kind, Original: original}
	c.state = Editing
	return nil
}

func (c *Controller) onEditStopped(e EditStoppedEvent) []Deferred {
	s := c.session
	if s == nil || s.Cell != e.Cell {
		return nil
	}
	if s.Kind != KindPlain {
		// a select or date editor that stops before committing is a cancel
		return c.cancel(false)
	}
	advance := c.state == CommittingAdvance && s.TabIntent
	c.reset()
	if advance {
		return c.advance(e.Cell)
	}
	return nil
}

func (c *Controller) onValueCommitted(e ValueCommittedEvent) []Deferred {
	s := c.session
	if s == nil || s.Cell != e.Cell {
		return nil
	}
	cell := s.Cell
	if err := c.host.SetCellValue(cell.RowID, cell.Field, e.Value); err != nil {
		c.fail("set committed value", err)
		return nil
	}
	for _, dep := range Dependents(c.fields, cell.Field) {
		if err := c.host.SetCellValue(cell.RowID, dep, nil); err != nil {
			c.log.Debug("clear dependent field failed", zap.String("field", dep), zap.Error(err))
		}
	}
	if err := c.host.StopEditMode(cell.RowID, cell.Field, true); err != nil {
		c.fail("stop edit after commit", err)
		return nil
	}

	advance := s.TabIntent && s.AutoAdvance
	c.reset()
	if advance {
		return c.advance(cell)
	}
	return c.focus.Focus(cell)
}

func (c *Controller) onEditorClosed(e EditorClosedEvent) []Deferred {
	s := c.session
	if s == nil || s.Cell != e.Cell {
		return nil
	}
	return c.cancel(true)
}

// cancel discards the edit, restores the pre-edit value and clears any tab intent.
func (c *Controller) cancel(stop bool) []Deferred {
	s := c.session
	cell := s.Cell
	s.TabIntent = false
	s.AutoAdvance = false

	if stop {
		if err := c.host.StopEditMode(cell.RowID, cell.Field, false); err != nil {
			c.fail("stop edit on cancel", err)
			return nil
		}
	}
	if s.Kind != KindPlain {
		if err := c.host.SetCellValue(cell.RowID, cell.Field, s.Original); err != nil {
			c.fail("restore value", err)
			return nil
		}
	}
	c.reset()
	return c.focus.Focus(cell)
}

// advance focuses the next editable cell, or the current one when there is none.
func (c *Controller) advance(from CellRef) []Deferred {
	target, ok := c.next(from)
	if !ok {
		return c.focus.Focus(from)
	}
	return c.focus.Focus(target)
}

func (c *Controller) next(from CellRef) (CellRef, bool) {
	if c.single {
		return NextEditableInRow(from.Field, from.RowID, c.columns)
	}
	idx := RowIndex(c.rows, c.rowID, from.RowID)
	return NextEditable(from.Field, idx, c.columns, c.rows, c.rowID)
}

func (c *Controller) fail(op string, err error) {
	if c.session != nil {
		c.log.Debug("grid host call failed, resetting",
			zap.String("op", op),
			zap.String("row", c.session.Cell.RowID),
			zap.String("field", c.session.Cell.Field),
			zap.Error(err))
	}
	c.reset()
}

func (c *Controller) reset() {
	c.session = nil
	c.state = Viewing
}
