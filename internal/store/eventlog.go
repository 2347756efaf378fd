package store

import (
	"context"
	"fmt"

	"github.com/rcliao/focus-agent/internal/model"
)

// Append records feedback in the event log, dated now.
func (s *SQLiteStore) Append(ctx context.Context, feedback string) (*model.FeedbackEntry, error) {
	now := s.now()
	e := &model.FeedbackEntry{ID: s.newID(now), Date: now, Feedback: feedback}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO feedback_log (id, date, feedback) VALUES (?, ?, ?)`,
		e.ID, formatTime(e.Date), e.Feedback)
	if err != nil {
		return nil, fmt.Errorf("%w: append feedback: %w", ErrStorage, err)
	}
	return e, nil
}

// Recent returns feedback dated within the last windowDays, oldest first.
// Rows whose date cannot be parsed are skipped.
func (s *SQLiteStore) Recent(ctx context.Context, windowDays int) []model.FeedbackEntry {
	cutoff := s.cutoff(windowDays)

	rows, err := s.db.QueryContext(ctx, `SELECT id, date, feedback FROM feedback_log ORDER BY rowid`)
	if err != nil {
		s.log.Warn().Err(err).Msg("read feedback log; treating as empty")
		return []model.FeedbackEntry{}
	}
	defer rows.Close()

	entries := []model.FeedbackEntry{}
	for rows.Next() {
		var e model.FeedbackEntry
		var date string
		if err := rows.Scan(&e.ID, &date, &e.Feedback); err != nil {
			s.log.Warn().Err(err).Msg("scan feedback row")
			continue
		}
		t, err := parseTime(date)
		if err != nil {
			s.log.Warn().Str("id", e.ID).Str("date", date).Msg("skipping feedback with malformed date")
			continue
		}
		if t.Before(cutoff) {
			continue
		}
		e.Date = t
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		s.log.Warn().Err(err).Msg("read feedback log; treating as empty")
		return []model.FeedbackEntry{}
	}
	return entries
}
