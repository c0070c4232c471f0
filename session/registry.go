package session

import (
	"sync"

	"slidesync/core"
)

// Session is the in-memory binding of one live connection to a room.
// The role here is a cache for logging and quick checks; the document's
// user roster stays authoritative.
type Session struct {
	PresentationID string
	Role           core.Role
}

// Registry maps connection ids to their room binding. It is process-local
// and intentionally not persisted: live connections do not survive a
// restart, so neither should their bindings.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]Session)}
}

// Bind records that a connection joined a presentation with the given role.
// A connection belongs to at most one room; rebinding replaces the old entry.
func (r *Registry) Bind(connID, presentationID string, role core.Role) {
	r.mu.Lock()
	r.sessions[connID] = Session{PresentationID: presentationID, Role: role}
	r.mu.Unlock()
}

// Lookup resolves the room an event belongs to for events that carry no
// explicit presentation id.
func (r *Registry) Lookup(connID string) (Session, bool) {
	r.mu.RLock()
	s, ok := r.sessions[connID]
	r.mu.RUnlock()
	return s, ok
}

// SetRole updates the cached role after a role assignment. No-op when the
// connection is not bound.
func (r *Registry) SetRole(connID string, role core.Role) {
	r.mu.Lock()
	if s, ok := r.sessions[connID]; ok {
		s.Role = role
		r.sessions[connID] = s
	}
	r.mu.Unlock()
}

// Unbind removes a connection's binding on disconnect.
func (r *Registry) Unbind(connID string) {
	r.mu.Lock()
	delete(r.sessions, connID)
	r.mu.Unlock()
}

// Len returns the number of live bindings.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
