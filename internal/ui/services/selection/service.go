// Package selection tracks which approval requests are checked in the queue.
package selection

import (
	"maps"
	"slices"
)

// Service keeps the checked request ids. Ids survive cursor movement and
// filtering; Retain prunes them when the queue reloads.
type Service struct {
	checked map[string]bool
	anchor  int              // list index of the last toggle, -1 when none
	idAt    func(int) string // request id at a list index
}

// NewService creates an empty selection
func NewService() *Service {
	return &Service{checked: map[string]bool{}, anchor: -1}
}

// SetQueryFunction sets the function that maps a list index to a request id
func (s *Service) SetQueryFunction(fn func(int) string) {
	s.idAt = fn
}

func (s *Service) id(index int) string {
	if s.idAt == nil {
		return ""
	}
	return s.idAt(index)
}

// Toggle flips the request at index and makes it the range anchor
func (s *Service) Toggle(index int) {
	id := s.id(index)
	if id == "" {
		return
	}
	if s.checked[id] {
		delete(s.checked, id)
	} else {
		s.checked[id] = true
	}
	s.anchor = index
}

// SelectRange checks every request between the anchor and toIndex
func (s *Service) SelectRange(toIndex int) {
	if s.anchor < 0 {
		s.Toggle(toIndex)
		return
	}
	lo, hi := min(s.anchor, toIndex), max(s.anchor, toIndex)
	for i := lo; i <= hi; i++ {
		if id := s.id(i); id != "" {
			s.checked[id] = true
		}
	}
	s.anchor = toIndex
}

// SelectAll checks exactly ids
func (s *Service) SelectAll(ids []string) {
	clear(s.checked)
	for _, id := range ids {
		s.checked[id] = true
	}
}

// DeselectAll clears the selection and the anchor
func (s *Service) DeselectAll() {
	clear(s.checked)
	s.anchor = -1
}

func (s *Service) IsSelected(id string) bool {
	return s.checked[id]
}

// GetSelected returns the checked ids in sorted order
func (s *Service) GetSelected() []string {
	return slices.Sorted(maps.Keys(s.checked))
}

// Snapshot returns a copy for rendering
func (s *Service) Snapshot() map[string]bool {
	return maps.Clone(s.checked)
}

func (s *Service) GetCount() int {
	return len(s.checked)
}

func (s *Service) HasSelection() bool {
	return len(s.checked) > 0
}

// Retain drops ids that are no longer in the queue
func (s *Service) Retain(ids []string) {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}
	maps.DeleteFunc(s.checked, func(id string, _ bool) bool { return !keep[id] })
	if len(s.checked) == 0 {
		s.anchor = -1
	}
}
