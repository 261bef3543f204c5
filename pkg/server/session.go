package server

import "sync"

// Session tracks the protocol state of one connection. It is created when
// the connection begins and discarded when it ends; the initialized flag
// moves one way only.
type Session struct {
	mu          sync.RWMutex
	initialized bool
}

// NewSession returns a fresh, uninitialized session.
func NewSession() *Session {
	return &Session{}
}

// Initialized reports whether initialize has completed on this session.
func (s *Session) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// MarkInitialized records the one-time initialize transition.
func (s *Session) MarkInitialized() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.initialized = true
}
