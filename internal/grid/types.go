// Package grid implements keyboard cell navigation for editable grids.
//
// A Controller owns a single edit session for one grid. The rendering
// surface implements Host and feeds key presses and editor callbacks into
// Controller.Dispatch; the controller decides what happens next and returns
// focus work as Deferred tasks for the host to run after the current event.
package grid

import (
	"errors"
	"time"

	"refdesk/internal/domain"
)

// Kind is the editor kind of a column
type Kind int

const (
	KindPlain Kind = iota
	KindSelect
	KindDate
)

func (k Kind) String() string {
	switch k {
	case KindSelect:
		return "select"
	case KindDate:
		return "date"
	default:
		return "plain"
	}
}

// ColumnTypeSingleSelect marks a column spec as a select column
const ColumnTypeSingleSelect = "singleSelect"

// Option is a select choice
type Option struct {
	Label string `yaml:"label" json:"label"`
	Value string `yaml:"value" json:"value"`
}

// OptionResolver returns the options valid for one row
type OptionResolver func(row domain.Row) []Option

// ColumnSpec is the static declaration of a column
type ColumnSpec struct {
	Field  string
	Header string
	Width  int
	Type   string
}

// Column is a processed column descriptor
type Column struct {
	Field    string
	Header   string
	Width    int
	Editable bool
	Kind     Kind
	Options  []Option
}

// FieldConfig tells the classifier how to treat each field
type FieldConfig struct {
	ReadOnly      []string
	SelectFields  map[string][]Option
	DateFields    []string
	DynamicSelect map[string]OptionResolver
	// Dependencies maps a select field to the fields whose values determine its options.
	Dependencies map[string][]string
}

// CellRef identifies a cell
type CellRef struct {
	RowID string
	Field string
}

// RowIDFunc extracts the identifier of a row
type RowIDFunc func(domain.Row) string

// Align is a scroll alignment
type Align int

const (
	AlignNearest Align = iota
	AlignStart
	AlignCenter
	AlignEnd
)

// Element is a rendered cell
type Element interface {
	ScrollIntoView(block, inline Align)
}

// Host is the rendering surface a Controller drives. Every call may fail.
type Host interface {
	StartEditMode(rowID, field string) error
	StopEditMode(rowID, field string, applyModifications bool) error
	SetCellValue(rowID, field string, value any) error
	SetFocus(rowID, field string) error
	CellElement(rowID, field string) (Element, error)
}

// ErrCellNotMounted is returned by hosts when a cell has no rendered element
var ErrCellNotMounted = errors.New("cell not mounted")

// Deferred is focus work scheduled by the host after the current dispatch.
// Run may return follow-up work.
type Deferred struct {
	Delay time.Duration
	Run   func() []Deferred
}
