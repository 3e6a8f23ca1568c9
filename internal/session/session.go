// Package session holds transient per-user state that lives as long as the process.
package session

import "sync"

// Well known keys
const (
	// ApprovalReturn is where to go back to after leaving the approval queue
	ApprovalReturn = "approval_return"
	// ApprovalPageState is the queue position to restore after a detail view
	ApprovalPageState = "approval_page_state"
	// NoticeIPChanged is shown once when the backend reports a new client address
	NoticeIPChanged = "ip_changed"
)

// Store is a process-scoped key value store partitioned by user
type Store struct {
	mu      sync.Mutex
	values  map[string]map[string]string
	notices map[string]map[string]bool
}

// New creates an empty store
func New() *Store {
	return &Store{
		values:  make(map[string]map[string]string),
		notices: make(map[string]map[string]bool),
	}
}

// Set stores value under key for user
func (s *Store) Set(user, key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.values[user]
	if !ok {
		m = make(map[string]string)
		s.values[user] = m
	}
	m[key] = value
}

// Get returns the value of key for user
func (s *Store) Get(user, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[user][key]
	return v, ok
}

// Take returns and removes the value of key for user
func (s *Store) Take(user, key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[user][key]
	if ok {
		delete(s.values[user], key)
	}
	return v, ok
}

// Once reports true the first time it is called for user and key
func (s *Store) Once(user, key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.notices[user]
	if !ok {
		m = make(map[string]bool)
		s.notices[user] = m
	}
	if m[key] {
		return false
	}
	m[key] = true
	return true
}

// Clear forgets everything stored for user, as on logout
func (s *Store) Clear(user string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, user)
	delete(s.notices, user)
}
