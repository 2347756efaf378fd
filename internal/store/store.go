// Package store provides the planner's persistent state on SQLite: the
// feedback event log, the preference document, and the artifact index.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/rcliao/focus-agent/internal/model"
)

var (
	// ErrStorage wraps failed writes. Writes are never partially applied.
	ErrStorage = errors.New("storage write failed")

	// ErrNoEmbedder is returned by index operations on a store opened without an embedder.
	ErrNoEmbedder = errors.New("no embedder configured")
)

// IndexParams holds parameters for indexing an artifact.
type IndexParams struct {
	Content   string
	Type      model.ArtifactType
	Timestamp time.Time
}

// QueryParams holds parameters for a similarity query.
type QueryParams struct {
	Text string
	K    int
	Type model.ArtifactType // optional filter
}

// SnapshotParams holds parameters for listing artifacts newest first.
type SnapshotParams struct {
	Type model.ArtifactType
	// Limit caps the listing: 0 means the default of 100, negative means
	// no cap.
	Limit int
}

// EventLog is the append-only feedback log.
type EventLog interface {
	// Append records feedback with the current time.
	Append(ctx context.Context, feedback string) (*model.FeedbackEntry, error)

	// Recent returns entries dated within the last windowDays, in insertion
	// order. Unreadable data yields an empty result, never an error.
	Recent(ctx context.Context, windowDays int) []model.FeedbackEntry
}

// PreferenceStore holds the single latest preference snapshot.
type PreferenceStore interface {
	// Load returns the stored preferences, or an empty map if none exist
	// or the stored document is corrupt.
	Load(ctx context.Context) model.Preferences

	// Save replaces the stored preferences in their entirety.
	Save(ctx context.Context, prefs model.Preferences) error
}

// ArtifactIndex stores artifacts with embeddings for similarity search.
type ArtifactIndex interface {
	Index(ctx context.Context, p IndexParams) (*model.Artifact, error)
	Query(ctx context.Context, p QueryParams) ([]model.Artifact, error)
	QueryByRecency(ctx context.Context, p QueryParams, windowDays int) ([]model.Artifact, error)
	Range(ctx context.Context, from, to time.Time) ([]model.Artifact, error)
	Snapshot(ctx context.Context, p SnapshotParams) ([]model.Artifact, error)
}

// Store is everything the planner persists.
type Store interface {
	EventLog
	PreferenceStore
	ArtifactIndex

	// Close closes the store.
	Close() error
}

var _ Store = (*SQLiteStore)(nil)
