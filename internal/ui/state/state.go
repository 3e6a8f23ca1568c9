package state

import (
	"refdesk/internal/approval"
	"refdesk/internal/domain"
	"refdesk/internal/journal"
	"refdesk/internal/ui/views"
)

// AppState contains all the application state
type AppState struct {
	// Grid data for the current resource and page
	Resource  string
	Rows      []domain.Row          // working copies, edited in place
	Originals map[string]domain.Row // row id -> row as loaded
	Drafts    map[string]bool       // row ids created locally and not submitted
	Meta      domain.PageMeta
	Page      int

	// Cursor state
	CursorRow      int
	CursorCol      int
	ColOffset      int
	ViewportOffset int
	ViewportHeight int

	// Approval queue
	Queue          []approval.Request
	QueueCursor    int
	QueueOffset    int
	JournalEntries []journal.Entry
	JournalCursor  int
	JournalOffset  int

	// UI state
	Loading          bool
	Pending          int
	ShowHelp         bool
	HelpScrollOffset int
	PopupTitle       string
	PopupContent     string
	StatusMessage    string
	StatusKind       views.StatusKind
	statusSeq        int

	FilterQuery string
}

// NewAppState creates a new application state
func NewAppState() *AppState {
	return &AppState{
		Originals:      make(map[string]domain.Row),
		Drafts:         make(map[string]bool),
		ViewportHeight: 20,
	}
}

// SetRows replaces the grid page. Originals are snapshotted for change detection.
func (s *AppState) SetRows(rows []domain.Row, rowID func(domain.Row) string) {
	s.Rows = rows
	s.Originals = make(map[string]domain.Row, len(rows))
	s.Drafts = make(map[string]bool)
	for _, r := range rows {
		s.Originals[rowID(r)] = r.Clone()
	}
	s.CursorRow = clamp(s.CursorRow, 0, len(rows)-1)
}

// AddDraft appends a locally created row
func (s *AppState) AddDraft(id string, row domain.Row) {
	s.Rows = append(s.Rows, row)
	s.Drafts[id] = true
	s.CursorRow = len(s.Rows) - 1
}

// RemoveRow drops the row at index i
func (s *AppState) RemoveRow(i int, id string) {
	if i < 0 || i >= len(s.Rows) {
		return
	}
	s.Rows = append(s.Rows[:i], s.Rows[i+1:]...)
	delete(s.Drafts, id)
	s.CursorRow = clamp(s.CursorRow, 0, len(s.Rows)-1)
}

// Original returns the loaded copy of a row
func (s *AppState) Original(id string) (domain.Row, bool) {
	r, ok := s.Originals[id]
	return r, ok
}

// SetQueue replaces the approval queue
func (s *AppState) SetQueue(items []approval.Request) {
	s.Queue = items
	s.QueueCursor = clamp(s.QueueCursor, 0, len(items)-1)
}

// SetJournal replaces the journal entries
func (s *AppState) SetJournal(entries []journal.Entry) {
	s.JournalEntries = entries
	s.JournalCursor = clamp(s.JournalCursor, 0, len(entries)-1)
}

// SetStatus shows a status message and returns its sequence number, so that
// a delayed clear only removes the message it was scheduled for.
func (s *AppState) SetStatus(msg string, kind views.StatusKind) int {
	s.statusSeq++
	s.StatusMessage = msg
	s.StatusKind = kind
	return s.statusSeq
}

// ClearStatus clears the status message if it is still message seq
func (s *AppState) ClearStatus(seq int) {
	if seq == s.statusSeq {
		s.StatusMessage = ""
	}
}

// ShowPopup opens the popup with content
func (s *AppState) ShowPopup(title, content string) {
	s.PopupTitle = title
	s.PopupContent = content
}

// ClosePopup closes any popup
func (s *AppState) ClosePopup() {
	s.PopupTitle = ""
	s.PopupContent = ""
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	return max(lo, min(v, hi))
}
