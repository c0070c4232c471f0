package filesystem

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"

	"slidesync/core"

	"github.com/sirupsen/logrus"
)

// database is the on-disk layout: a single JSON object keyed by
// presentation id. An empty store serializes as {"presentations": {}}.
type database struct {
	Presentations map[string]*core.Presentation `json:"presentations"`
}

// fsStore persists all presentations in one JSON file, rewritten on every
// Put. Suited to small deployments; the per-room serialization upstream
// keeps concurrent rewrites of the same document from interleaving.
type fsStore struct {
	mu       sync.Mutex
	filePath string
}

// NewStore creates a filesystem-based store backed by the given JSON file.
// The file is created with the empty layout if it does not exist.
func NewStore(filePath string) *fsStore {
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("failed to create storage directory: %v", err)
		}
	}
	s := &fsStore{filePath: filePath}
	if _, err := os.Stat(filePath); os.IsNotExist(err) {
		if err := s.write(&database{Presentations: map[string]*core.Presentation{}}); err != nil {
			log.Fatalf("failed to initialize storage file: %v", err)
		}
	}
	return s
}

func (s *fsStore) read() (*database, error) {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &database{Presentations: map[string]*core.Presentation{}}, nil
		}
		return nil, err
	}

	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, err
	}
	if db.Presentations == nil {
		db.Presentations = map[string]*core.Presentation{}
	}
	return &db, nil
}

// write replaces the file atomically via a temp file and rename, so a
// crash mid-write never leaves a truncated database behind.
func (s *fsStore) write(db *database) error {
	data, err := json.Marshal(db)
	if err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

func (s *fsStore) Get(ctx context.Context, id string) (*core.Presentation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"presentation_id": id, "file_path": s.filePath})

	db, err := s.read()
	if err != nil {
		log.WithError(err).Error("Failed to read storage file")
		return nil, err
	}

	p, ok := db.Presentations[id]
	if !ok {
		log.Debug("Presentation not found")
		return nil, core.ErrNotFound
	}
	return p.Clone(), nil
}

func (s *fsStore) Put(ctx context.Context, p *core.Presentation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := logrus.WithFields(logrus.Fields{"presentation_id": p.ID, "file_path": s.filePath})

	db, err := s.read()
	if err != nil {
		log.WithError(err).Error("Failed to read storage file")
		return err
	}

	db.Presentations[p.ID] = p.Clone()
	if err := s.write(db); err != nil {
		log.WithError(err).Error("Failed to write storage file")
		return err
	}

	log.Debug("Presentation saved")
	return nil
}
