package memory

import (
	"context"
	"sync"

	"slidesync/core"

	"github.com/sirupsen/logrus"
)

// memStore keeps presentations in a process-local map. It is the default
// backend and the one the tests run against.
type memStore struct {
	mu            sync.RWMutex
	presentations map[string]*core.Presentation
}

// NewStore creates a new in-memory store.
func NewStore() *memStore {
	return &memStore{presentations: make(map[string]*core.Presentation)}
}

// Get retrieves a presentation by id. The returned document is a deep copy;
// mutating it does not touch the stored one until Put.
func (s *memStore) Get(ctx context.Context, id string) (*core.Presentation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presentations[id]
	if !ok {
		logrus.WithField("presentation_id", id).Debug("Presentation not found")
		return nil, core.ErrNotFound
	}
	return p.Clone(), nil
}

// Put stores a deep copy of the presentation under its id.
func (s *memStore) Put(ctx context.Context, p *core.Presentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.presentations[p.ID] = p.Clone()
	logrus.WithFields(logrus.Fields{
		"presentation_id": p.ID,
		"slide_count":     len(p.Slides),
		"user_count":      len(p.Users),
	}).Debug("Presentation saved")
	return nil
}
