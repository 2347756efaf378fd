package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rcliao/focus-agent/internal/model"
)

// Load returns the stored preferences. Missing or corrupt documents yield an
// empty, non-nil map.
func (s *SQLiteStore) Load(ctx context.Context) model.Preferences {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT doc FROM preferences WHERE id = 1`).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Preferences{}
	}
	if err != nil {
		s.log.Warn().Err(err).Msg("read preferences; treating as empty")
		return model.Preferences{}
	}

	var prefs model.Preferences
	if err := json.Unmarshal([]byte(doc), &prefs); err != nil || prefs == nil {
		s.log.Warn().Err(err).Msg("corrupt preference document; treating as empty")
		return model.Preferences{}
	}
	return prefs
}

// Save replaces the preference document with prefs.
func (s *SQLiteStore) Save(ctx context.Context, prefs model.Preferences) error {
	if prefs == nil {
		prefs = model.Preferences{}
	}
	doc, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO preferences (id, doc, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		string(doc), formatTime(s.now()))
	if err != nil {
		return fmt.Errorf("%w: save preferences: %w", ErrStorage, err)
	}
	return nil
}
