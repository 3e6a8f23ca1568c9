package ui

import (
	"refdesk/internal/approval"
	"refdesk/internal/domain"
	"refdesk/internal/eventbus"
	"refdesk/internal/grid"
	"refdesk/internal/journal"
)

// EventMsg wraps a domain event for the UI
type EventMsg struct {
	Event eventbus.DomainEvent
}

// deferredMsg runs grid focus work after the dispatch that scheduled it
type deferredMsg struct {
	run func() []grid.Deferred
}

// cellEditStoppedMsg reports that a cell left edit mode
type cellEditStoppedMsg struct {
	cell grid.CellRef
}

// rowsLoadedMsg contains one page of the current resource
type rowsLoadedMsg struct {
	resource string
	page     domain.Page[domain.Row]
	err      error
}

// categoriesLoadedMsg reports that dynamic select options were refreshed
type categoriesLoadedMsg struct {
	resource string
	err      error
}

// queueLoadedMsg contains the approval queue of a resource
type queueLoadedMsg struct {
	resource string
	items    []approval.Request
	err      error
}

// journalLoadedMsg contains recent journal entries
type journalLoadedMsg struct {
	entries []journal.Entry
	err     error
}

// decisionDoneMsg is the outcome of a bulk approve or retract
type decisionDoneMsg struct {
	resource string
	action   string
	ids      []string
	err      error
}

// submittedMsg is the outcome of a change request for one row
type submittedMsg struct {
	resource string
	kind     approval.Kind
	rowID    string
	request  *approval.Request
	err      error
}

// clearStatusMsg clears the status line if it still shows message seq
type clearStatusMsg struct {
	seq int
}

// pagerMsg contains the result of showing content in the pager
type pagerMsg struct {
	title   string
	content string
	err     error
}

// pauseRenderingMsg signals to pause Bubble Tea rendering
type pauseRenderingMsg struct{}

// resumeRenderingMsg signals to resume Bubble Tea rendering
type resumeRenderingMsg struct{}
