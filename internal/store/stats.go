package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string      `json:"db_path"`
	DBSizeBytes     int64       `json:"db_size_bytes"`
	FeedbackEntries int         `json:"feedback_entries"`
	Artifacts       int         `json:"artifacts"`
	Chunks          int         `json:"chunks"`
	HasPreferences  bool        `json:"has_preferences"`
	Types           []TypeStats `json:"types"`
}

// TypeStats holds per-type artifact counts.
type TypeStats struct {
	Type   string `json:"type"`
	Count  int    `json:"count"`
	Latest string `json:"latest"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Types: []TypeStats{}}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM feedback_log`).Scan(&st.FeedbackEntries)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifacts`).Scan(&st.Artifacts)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM artifact_chunks`).Scan(&st.Chunks)
	var prefs int
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM preferences`).Scan(&prefs)
	st.HasPreferences = prefs > 0

	rows, err := s.db.QueryContext(ctx, `
		SELECT type, COUNT(*) AS cnt, MAX(timestamp)
		FROM artifacts GROUP BY type ORDER BY cnt DESC, type`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ts TypeStats
		rows.Scan(&ts.Type, &ts.Count, &ts.Latest)
		st.Types = append(st.Types, ts)
	}

	return st, rows.Err()
}
