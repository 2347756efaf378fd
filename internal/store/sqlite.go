package store

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/rcliao/focus-agent/internal/embedding"
)

// timeLayout is fixed-width so stored timestamps compare lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db       *sql.DB
	embedder embedding.Embedder
	now      func() time.Time
	log      zerolog.Logger

	mu      sync.Mutex
	entropy *rand.Rand
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithEmbedder sets the embedder used by the artifact index.
func WithEmbedder(e embedding.Embedder) Option {
	return func(s *SQLiteStore) { s.embedder = e }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *SQLiteStore) { s.log = l.With().Str("component", "store").Logger() }
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string, opts ...Option) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{
		db:      db,
		now:     time.Now,
		log:     zerolog.Nop(),
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	s.log.Debug().Str("path", dbPath).Msg("store opened")

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS feedback_log (
		id        TEXT PRIMARY KEY,
		date      TEXT NOT NULL,
		feedback  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS preferences (
		id          INTEGER PRIMARY KEY CHECK (id = 1),
		doc         TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS artifacts (
		id          TEXT PRIMARY KEY,
		type        TEXT NOT NULL,
		content     TEXT NOT NULL,
		timestamp   TEXT NOT NULL,
		embedding   BLOB NOT NULL,
		dims        INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_artifacts_timestamp ON artifacts(timestamp DESC);
	CREATE INDEX IF NOT EXISTS idx_artifacts_type ON artifacts(type, timestamp DESC);

	CREATE TABLE IF NOT EXISTS artifact_chunks (
		id           TEXT PRIMARY KEY,
		artifact_id  TEXT NOT NULL REFERENCES artifacts(id),
		seq          INTEGER NOT NULL,
		text         TEXT NOT NULL,
		start_line   INTEGER,
		end_line     INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_artifact ON artifact_chunks(artifact_id);

	CREATE VIRTUAL TABLE IF NOT EXISTS chunks_fts USING fts5(
		text,
		content=artifact_chunks,
		content_rowid=rowid
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return err
	}

	// Artifacts are immutable, so only inserts need syncing into FTS.
	_, err := s.db.Exec(`CREATE TRIGGER IF NOT EXISTS artifact_chunks_ai AFTER INSERT ON artifact_chunks BEGIN
		INSERT INTO chunks_fts(rowid, text) VALUES (new.rowid, new.text);
	END`)
	return err
}

// Close closes the store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

// cutoff returns now minus windowDays.
func (s *SQLiteStore) cutoff(windowDays int) time.Time {
	return s.now().Add(-time.Duration(windowDays) * 24 * time.Hour)
}
