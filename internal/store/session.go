package store

import "sync"

// MemorySessionStore holds per-session key/value data in process memory.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]map[string]string
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]map[string]string)}
}

// Scope returns a view of the store limited to one session.
func (s *MemorySessionStore) Scope(sessionID string) *ScopedSessionStore {
	return &ScopedSessionStore{parent: s, id: sessionID}
}

// Drop forgets everything stored for a session.
func (s *MemorySessionStore) Drop(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
}

func (s *MemorySessionStore) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.sessions)
}

type ScopedSessionStore struct {
	parent *MemorySessionStore
	id     string
}

func (s *ScopedSessionStore) Get(key string) (string, bool) {
	s.parent.mu.RLock()
	defer s.parent.mu.RUnlock()

	v, ok := s.parent.sessions[s.id][key]
	return v, ok
}

func (s *ScopedSessionStore) Set(key, value string) {
	s.parent.mu.Lock()
	defer s.parent.mu.Unlock()

	values, ok := s.parent.sessions[s.id]
	if !ok {
		values = make(map[string]string)
		s.parent.sessions[s.id] = values
	}
	values[key] = value
}

// Clear removes every key of this session.
func (s *ScopedSessionStore) Clear() {
	s.parent.Drop(s.id)
}
