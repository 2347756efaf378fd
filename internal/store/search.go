package store

import (
	"context"
	"strings"

	"github.com/rcliao/focus-agent/internal/model"
)

// SearchParams holds parameters for keyword search.
type SearchParams struct {
	Query string
	Type  model.ArtifactType
	Limit int
}

// SearchResult wraps an artifact with the chunk that matched.
type SearchResult struct {
	model.Artifact
	MatchChunk *model.Chunk `json:"match_chunk,omitempty"`
}

// Search finds artifacts whose chunks contain every word of the query,
// best match first.
func (s *SQLiteStore) Search(ctx context.Context, p SearchParams) ([]SearchResult, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	match := ftsQuery(p.Query)
	if match == "" {
		return []SearchResult{}, nil
	}

	query := `
		SELECT a.id, a.type, a.content, a.timestamp,
		       c.id, c.seq, c.text, c.start_line, c.end_line
		FROM chunks_fts f
		JOIN artifact_chunks c ON c.rowid = f.rowid
		JOIN artifacts a ON a.id = c.artifact_id
		WHERE chunks_fts MATCH ?`
	args := []interface{}{match}
	if p.Type != "" {
		query += ` AND a.type = ?`
		args = append(args, string(p.Type))
	}
	query += ` ORDER BY f.rank`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []SearchResult{}
	seen := map[string]bool{}
	for rows.Next() {
		var a model.Artifact
		var typ, ts string
		var c model.Chunk
		if err := rows.Scan(&a.ID, &typ, &a.Content, &ts, &c.ID, &c.Seq, &c.Text, &c.StartLine, &c.EndLine); err != nil {
			return nil, err
		}
		if seen[a.ID] {
			continue
		}
		seen[a.ID] = true
		t, err := parseTime(ts)
		if err != nil {
			continue
		}
		a.Type = model.ArtifactType(typ)
		a.Timestamp = t
		c.ArtifactID = a.ID
		results = append(results, SearchResult{Artifact: a, MatchChunk: &c})
		if len(results) == limit {
			break
		}
	}
	return results, rows.Err()
}

// ftsQuery quotes each word so user input cannot inject FTS5 syntax.
func ftsQuery(q string) string {
	var terms []string
	for _, w := range strings.Fields(q) {
		terms = append(terms, `"`+strings.ReplaceAll(w, `"`, `""`)+`"`)
	}
	return strings.Join(terms, " ")
}
