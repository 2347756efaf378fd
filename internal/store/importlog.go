package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// LegacyEntry is one record of a JSON feedback log.
type LegacyEntry struct {
	Date     string `json:"date"`
	Feedback string `json:"feedback"`
}

// ImportResult counts what ImportFeedback did.
type ImportResult struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

var legacyLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// parseLegacyDate accepts RFC 3339 and zone-less ISO 8601 dates; the latter
// are read in local time.
func parseLegacyDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("missing date")
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, nil
	}
	for _, layout := range legacyLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ImportFeedback appends entries to the event log with their original dates,
// in order, in one transaction. Entries without a usable date or text are
// skipped.
func (s *SQLiteStore) ImportFeedback(ctx context.Context, entries []LegacyEntry) (*ImportResult, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer tx.Rollback()

	res := &ImportResult{}
	for i, e := range entries {
		t, err := parseLegacyDate(e.Date)
		if err != nil || strings.TrimSpace(e.Feedback) == "" {
			s.log.Warn().Err(err).Int("index", i).Msg("skipping legacy feedback entry")
			res.Skipped++
			continue
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO feedback_log (id, date, feedback) VALUES (?, ?, ?)`,
			s.newID(t), formatTime(t), e.Feedback)
		if err != nil {
			return nil, fmt.Errorf("%w: import feedback: %w", ErrStorage, err)
		}
		res.Imported++
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}
	return res, nil
}
