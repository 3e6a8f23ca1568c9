package ui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"refdesk/internal/grid"
	"refdesk/internal/validate"
)

// cellEditor is an open select list or date picker
type cellEditor interface {
	Update(msg tea.KeyMsg) tea.Cmd
	View() string
	// Value is the value to commit. errNoSelection means the editor closes
	// without a value; other errors keep it open.
	Value() (any, error)
	// Terminal reports whether the editor is on its last step
	Terminal() bool
	// Advance moves to the next step; false when already on the last one
	Advance() bool
}

const maxSelectRows = 8

var errNoSelection = errors.New("no option selected")

var (
	editorTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("99"))
	editorCursor = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Background(lipgloss.Color("238")).Bold(true)
	editorDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	editorErr    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// selectEditor is a filterable option list
type selectEditor struct {
	title   string
	options []grid.Option
	labels  []string
	input   textinput.Model
	matches []int
	cursor  int
}

func newSelectEditor(title string, options []grid.Option, current string) *selectEditor {
	ti := textinput.New()
	ti.Prompt = "› "
	ti.Placeholder = "type to filter"
	ti.Focus()

	e := &selectEditor{title: title, options: options, input: ti}
	e.labels = make([]string, len(options))
	for i, o := range options {
		e.labels[i] = o.Label
	}
	e.refilter()
	for i, idx := range e.matches {
		if options[idx].Value == current {
			e.cursor = i
		}
	}
	return e
}

func (e *selectEditor) refilter() {
	q := strings.TrimSpace(e.input.Value())
	e.matches = e.matches[:0]
	if q == "" {
		for i := range e.options {
			e.matches = append(e.matches, i)
		}
	} else {
		for _, m := range fuzzy.Find(q, e.labels) {
			e.matches = append(e.matches, m.Index)
		}
	}
	e.cursor = max(0, min(e.cursor, len(e.matches)-1))
}

func (e *selectEditor) Update(msg tea.KeyMsg) tea.Cmd {
	switch msg.Type {
	case tea.KeyUp, tea.KeyCtrlP:
		if e.cursor > 0 {
			e.cursor--
		}
		return nil
	case tea.KeyDown, tea.KeyCtrlN:
		if e.cursor < len(e.matches)-1 {
			e.cursor++
		}
		return nil
	}
	var cmd tea.Cmd
	e.input, cmd = e.input.Update(msg)
	e.refilter()
	return cmd
}

func (e *selectEditor) Value() (any, error) {
	if len(e.matches) == 0 {
		return nil, errNoSelection
	}
	return e.options[e.matches[e.cursor]].Value, nil
}

func (e *selectEditor) Terminal() bool { return true }
func (e *selectEditor) Advance() bool  { return false }

func (e *selectEditor) View() string {
	var b strings.Builder
	b.WriteString(editorTitle.Render(e.title))
	b.WriteString("\n")
	b.WriteString(e.input.View())
	b.WriteString("\n")

	if len(e.matches) == 0 {
		b.WriteString(editorDim.Render("no options"))
		return b.String()
	}
	start := max(0, min(e.cursor-maxSelectRows/2, len(e.matches)-maxSelectRows))
	end := min(start+maxSelectRows, len(e.matches))
	for i := start; i < end; i++ {
		label := e.options[e.matches[i]].Label
		if i == e.cursor {
			b.WriteString(editorCursor.Render("› " + label))
		} else {
			b.WriteString("  " + label)
		}
		if i < end-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// dateEditor picks a date, then a time
type dateEditor struct {
	title string
	step  int
	date  textinput.Model
	clock textinput.Model
	err   string
}

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

func newDateEditor(title, current string, now func() time.Time) *dateEditor {
	d := textinput.New()
	d.Prompt = "date › "
	d.Placeholder = dateLayout
	d.CharLimit = len(dateLayout)

	c := textinput.New()
	c.Prompt = "time › "
	c.Placeholder = clockLayout
	c.CharLimit = len(clockLayout)

	if t, ok := validate.ParseDate(current); ok {
		d.SetValue(t.Format(dateLayout))
		c.SetValue(t.Format(clockLayout))
	} else {
		d.SetValue(now().Format(dateLayout))
		c.SetValue("00:00")
	}
	d.CursorEnd()
	c.CursorEnd()
	d.Focus()

	return &dateEditor{title: title, date: d, clock: c}
}

func (e *dateEditor) Update(msg tea.KeyMsg) tea.Cmd {
	e.err = ""
	var cmd tea.Cmd
	if e.step == 0 {
		e.date, cmd = e.date.Update(msg)
	} else {
		if msg.Type == tea.KeyBackspace && e.clock.Value() == "" {
			e.step = 0
			e.clock.Blur()
			e.date.Focus()
			return nil
		}
		e.clock, cmd = e.clock.Update(msg)
	}
	return cmd
}

func (e *dateEditor) parse() (time.Time, error) {
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(e.date.Value()), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like %s", dateLayout)
	}
	clock := strings.TrimSpace(e.clock.Value())
	if clock == "" {
		clock = "00:00"
	}
	hm, err := time.Parse(clockLayout, clock)
	if err != nil {
		return time.Time{}, fmt.Errorf("time must look like %s", clockLayout)
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hm.Hour(), hm.Minute(), 0, 0, time.Local), nil
}

func (e *dateEditor) Value() (any, error) {
	t, err := e.parse()
	if err != nil {
		e.err = err.Error()
		return nil, err
	}
	return validate.FormatDate(t), nil
}

func (e *dateEditor) Terminal() bool { return e.step == 1 }

func (e *dateEditor) Advance() bool {
	if e.step == 1 {
		return false
	}
	if _, err := time.ParseInLocation(dateLayout, strings.TrimSpace(e.date.Value()), time.Local); err != nil {
		e.err = fmt.Sprintf("date must look like %s", dateLayout)
		return true
	}
	e.step = 1
	e.date.Blur()
	e.clock.Focus()
	return true
}

func (e *dateEditor) View() string {
	var b strings.Builder
	b.WriteString(editorTitle.Render(e.title))
	b.WriteString("\n")
	b.WriteString(e.date.View())
	b.WriteString("\n")
	if e.step == 1 {
		b.WriteString(e.clock.View())
	} else {
		b.WriteString(editorDim.Render("enter: pick time  tab: keep " + e.clock.Value()))
	}
	if e.err != "" {
		b.WriteString("\n")
		b.WriteString(editorErr.Render(e.err))
	}
	return b.String()
}
