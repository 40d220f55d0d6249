// Package server owns the controller's TCP surface: the listening socket,
// the single active emulator session, and the idempotent shutdown path.
package server

import "sync"

// Registry tracks the state shared across the acceptor and sessions: the
// current-session reference and the running flag. The system supports one
// logical session at a time, matching a single emulator instance; a new
// connection simply replaces any stale reference.
type Registry struct {
	mu      sync.Mutex
	current *Session
	running bool
}

// NewRegistry creates a registry in the running state.
func NewRegistry() *Registry {
	return &Registry{running: true}
}

// Running reports whether the controller is still accepting work.
func (r *Registry) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// Stop flips the running flag. Sessions and the acceptor observe it at the
// top of their loops.
func (r *Registry) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = false
}

// SetCurrent registers s as the sole current session, replacing any previous
// reference.
func (r *Registry) SetCurrent(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = s
}

// ClearCurrent deregisters s if it is still the current session. A session
// that was already replaced leaves the newer registration alone.
func (r *Registry) ClearCurrent(s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.current == s {
		r.current = nil
	}
}

// Current returns the active session, or nil.
func (r *Registry) Current() *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}
