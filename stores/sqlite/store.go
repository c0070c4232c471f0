package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"slidesync/core"

	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	db *sql.DB
}

// NewStore creates a new SQLite-based store.
func NewStore(dataSourceName string) *sqliteStore {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		log.Fatalf("failed to open sqlite database: %v", err)
	}

	tableStmt := `
	CREATE TABLE IF NOT EXISTS presentations (
		id TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	);`
	if _, err = db.Exec(tableStmt); err != nil {
		log.Fatalf("failed to create presentations table: %v", err)
	}

	return &sqliteStore{db}
}

func (s *sqliteStore) Get(ctx context.Context, id string) (*core.Presentation, error) {
	log := logrus.WithField("presentation_id", id)

	var data []byte
	err := s.db.QueryRowContext(ctx, "SELECT data FROM presentations WHERE id = ?", id).Scan(&data)
	if err != nil {
		if err == sql.ErrNoRows {
			log.Debug("Presentation not found")
			return nil, core.ErrNotFound
		}
		log.WithError(err).Error("Failed to retrieve presentation")
		return nil, err
	}

	var p core.Presentation
	if err := json.Unmarshal(data, &p); err != nil {
		log.WithError(err).Error("Failed to unmarshal presentation data")
		return nil, err
	}
	if p.Users == nil {
		p.Users = make(map[string]core.UserInfo)
	}
	if p.Slides == nil {
		p.Slides = []core.Slide{}
	}
	return &p, nil
}

func (s *sqliteStore) Put(ctx context.Context, p *core.Presentation) error {
	log := logrus.WithField("presentation_id", p.ID)

	data, err := json.Marshal(p)
	if err != nil {
		log.WithError(err).Error("Failed to marshal presentation")
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO presentations (id, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		p.ID, data, time.Now())
	if err != nil {
		log.WithError(err).Error("Failed to save presentation")
		return err
	}

	log.WithField("data_length", len(data)).Debug("Presentation saved")
	return nil
}
