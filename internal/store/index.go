package store

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rcliao/focus-agent/internal/chunker"
	"github.com/rcliao/focus-agent/internal/embedding"
	"github.com/rcliao/focus-agent/internal/model"
)

const (
	defaultK             = 5
	defaultSnapshotLimit = 100
)

// Index embeds p.Content and stores it with its metadata. Embedding and
// storage failures are returned, never swallowed.
func (s *SQLiteStore) Index(ctx context.Context, p IndexParams) (*model.Artifact, error) {
	if s.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if !model.ValidTypes[p.Type] {
		return nil, fmt.Errorf("invalid artifact type %q", p.Type)
	}
	if p.Timestamp.IsZero() {
		return nil, errors.New("artifact timestamp is required")
	}
	content := strings.TrimSpace(p.Content)
	if content == "" {
		return nil, errors.New("artifact content is empty")
	}

	vec, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return nil, fmt.Errorf("embed artifact: %w", err)
	}

	a := &model.Artifact{
		ID:        s.newID(p.Timestamp),
		Type:      p.Type,
		Content:   content,
		Timestamp: p.Timestamp,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %w", ErrStorage, err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO artifacts (id, type, content, timestamp, embedding, dims) VALUES (?, ?, ?, ?, ?, ?)`,
		a.ID, string(a.Type), a.Content, formatTime(a.Timestamp), embedding.Encode(vec), len(vec))
	if err != nil {
		return nil, fmt.Errorf("%w: insert artifact: %w", ErrStorage, err)
	}

	for i, c := range chunker.Chunk(content, chunker.DefaultOptions()) {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO artifact_chunks (id, artifact_id, seq, text, start_line, end_line) VALUES (?, ?, ?, ?, ?, ?)`,
			s.newID(p.Timestamp), a.ID, i, c.Text, c.StartLine, c.EndLine)
		if err != nil {
			return nil, fmt.Errorf("%w: insert chunk: %w", ErrStorage, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: commit: %w", ErrStorage, err)
	}

	s.log.Debug().Str("id", a.ID).Str("type", string(a.Type)).Int("dims", len(vec)).Msg("artifact indexed")
	return a, nil
}

// Query returns the K artifacts most similar to p.Text, most similar first.
// Equal scores are ordered newest first.
func (s *SQLiteStore) Query(ctx context.Context, p QueryParams) ([]model.Artifact, error) {
	if s.embedder == nil {
		return nil, ErrNoEmbedder
	}
	k := p.K
	if k <= 0 {
		k = defaultK
	}

	qvec, err := s.embedder.Embed(ctx, p.Text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	query := `SELECT id, type, content, timestamp, embedding FROM artifacts`
	var args []interface{}
	if p.Type != "" {
		query += ` WHERE type = ?`
		args = append(args, string(p.Type))
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.Artifact
	for rows.Next() {
		var a model.Artifact
		var typ, ts string
		var blob []byte
		if err := rows.Scan(&a.ID, &typ, &a.Content, &ts, &blob); err != nil {
			return nil, err
		}
		vec := embedding.Decode(blob)
		if len(vec) != len(qvec) {
			continue
		}
		t, err := parseTime(ts)
		if err != nil {
			s.log.Warn().Str("id", a.ID).Str("timestamp", ts).Msg("skipping artifact with malformed timestamp")
			continue
		}
		a.Type = model.ArtifactType(typ)
		a.Timestamp = t
		a.Score = embedding.CosineSimilarity(qvec, vec)
		results = append(results, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if !results[i].Timestamp.Equal(results[j].Timestamp) {
			return results[i].Timestamp.After(results[j].Timestamp)
		}
		return results[i].ID > results[j].ID
	})
	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// QueryByRecency runs Query and keeps only artifacts from the last
// windowDays. The top K are selected before filtering, so the result is
// not a complete listing of the window.
func (s *SQLiteStore) QueryByRecency(ctx context.Context, p QueryParams, windowDays int) ([]model.Artifact, error) {
	results, err := s.Query(ctx, p)
	if err != nil {
		return nil, err
	}
	cutoff := s.cutoff(windowDays)
	kept := results[:0]
	for _, a := range results {
		if !a.Timestamp.Before(cutoff) {
			kept = append(kept, a)
		}
	}
	return kept, nil
}

// Range returns every artifact with from <= timestamp <= to, oldest first.
func (s *SQLiteStore) Range(ctx context.Context, from, to time.Time) ([]model.Artifact, error) {
	return s.listArtifacts(ctx,
		`SELECT id, type, content, timestamp FROM artifacts
		 WHERE timestamp >= ? AND timestamp <= ?
		 ORDER BY timestamp, rowid`,
		formatTime(from), formatTime(to))
}

// Snapshot lists artifacts newest first, capped by p.Limit.
func (s *SQLiteStore) Snapshot(ctx context.Context, p SnapshotParams) ([]model.Artifact, error) {
	limit := p.Limit
	switch {
	case limit == 0:
		limit = defaultSnapshotLimit
	case limit < 0:
		limit = -1 // SQLite: no limit
	}
	if p.Type != "" {
		return s.listArtifacts(ctx,
			`SELECT id, type, content, timestamp FROM artifacts WHERE type = ?
			 ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
			string(p.Type), limit)
	}
	return s.listArtifacts(ctx,
		`SELECT id, type, content, timestamp FROM artifacts
		 ORDER BY timestamp DESC, rowid DESC LIMIT ?`,
		limit)
}

func (s *SQLiteStore) listArtifacts(ctx context.Context, query string, args ...interface{}) ([]model.Artifact, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	artifacts := []model.Artifact{}
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			s.log.Warn().Err(err).Msg("skipping unreadable artifact")
			continue
		}
		artifacts = append(artifacts, a)
	}
	return artifacts, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanArtifact(row scanner) (model.Artifact, error) {
	var a model.Artifact
	var typ, ts string
	if err := row.Scan(&a.ID, &typ, &a.Content, &ts); err != nil {
		return a, err
	}
	t, err := parseTime(ts)
	if err != nil {
		return a, fmt.Errorf("artifact %s: malformed timestamp %q", a.ID, ts)
	}
	a.Type = model.ArtifactType(typ)
	a.Timestamp = t
	return a, nil
}
