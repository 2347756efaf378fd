// Package planner implements the planning, feedback, and weekly review
// workflows over the store and the model gateway.
package planner

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/rcliao/focus-agent/internal/export"
	"github.com/rcliao/focus-agent/internal/llm"
	"github.com/rcliao/focus-agent/internal/model"
	"github.com/rcliao/focus-agent/internal/store"
)

// ErrEmptyInput is returned when tasks or feedback text is blank.
var ErrEmptyInput = errors.New("input is empty")

// Gateway completes prompt templates.
type Gateway interface {
	Complete(ctx context.Context, t *llm.Template, bindings map[string]string) (string, error)
}

// Config tunes the workflows. Zero values take defaults.
type Config struct {
	HistoryK         int    // similarity results used as history
	HistoryBudget    int    // token budget for the history binding
	RecentDays       int    // event log window appended to plan history
	ReviewCandidates int    // similarity candidates for the weekly review
	ReviewWindowDays int    // weekly review window
	ReviewExact      bool   // enumerate the window instead of similarity-then-filter
	Parallel         bool   // run summary and insight completions concurrently
	ExportDir        string // where Export writes files
}

func (c Config) withDefaults() Config {
	if c.HistoryK <= 0 {
		c.HistoryK = 5
	}
	if c.HistoryBudget <= 0 {
		c.HistoryBudget = 2000
	}
	if c.RecentDays <= 0 {
		c.RecentDays = 3
	}
	if c.ReviewCandidates <= 0 {
		c.ReviewCandidates = 50
	}
	if c.ReviewWindowDays <= 0 {
		c.ReviewWindowDays = 7
	}
	if c.ExportDir == "" {
		c.ExportDir = "."
	}
	return c
}

// Service runs the workflows. It is safe for sequential use by one caller.
type Service struct {
	store   store.Store
	gateway Gateway
	prompts *llm.PromptSet
	cfg     Config
	now     func() time.Time
	log     zerolog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) { s.log = l.With().Str("component", "planner").Logger() }
}

// New returns a Service.
func New(st store.Store, gw Gateway, prompts *llm.PromptSet, cfg Config, opts ...Option) *Service {
	s := &Service{
		store:   st,
		gateway: gw,
		prompts: prompts,
		cfg:     cfg.withDefaults(),
		now:     time.Now,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the artifacts most similar to text, packed into the
// history budget.
func (s *Service) History(ctx context.Context, text string) (*store.HistoryResult, error) {
	arts, err := s.store.Query(ctx, store.QueryParams{Text: text, K: s.cfg.HistoryK})
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	return store.PackHistory(arts, s.cfg.HistoryBudget), nil
}

func (s *Service) history(ctx context.Context, text string) (string, error) {
	h, err := s.History(ctx, text)
	if err != nil {
		return "", err
	}
	return h.Render(), nil
}

func (s *Service) index(ctx context.Context, typ model.ArtifactType, content string) error {
	if _, err := s.store.Index(ctx, store.IndexParams{Content: content, Type: typ, Timestamp: s.now()}); err != nil {
		return fmt.Errorf("index %s: %w", typ, err)
	}
	return nil
}

// LoadPreferences returns the current preferences, empty if none are saved.
func (s *Service) LoadPreferences(ctx context.Context) model.Preferences {
	return s.store.Load(ctx)
}

// NeedsOnboarding reports whether no preferences have been saved yet.
func (s *Service) NeedsOnboarding(ctx context.Context) bool {
	return len(s.store.Load(ctx)) == 0
}

// SavePreferences replaces the stored preferences and records the snapshot
// in the index. The store write happens first and is authoritative.
func (s *Service) SavePreferences(ctx context.Context, prefs model.Preferences) error {
	if err := s.store.Save(ctx, prefs); err != nil {
		return err
	}
	return s.indexPreferences(ctx, prefs)
}

func (s *Service) indexPreferences(ctx context.Context, prefs model.Preferences) error {
	doc, err := prefs.JSON()
	if err != nil {
		return err
	}
	return s.index(ctx, model.TypePreferences, doc)
}

// RecentFeedback returns event log entries from the last days days.
func (s *Service) RecentFeedback(ctx context.Context, days int) []model.FeedbackEntry {
	return s.store.Recent(ctx, days)
}

// RecordFeedback appends raw feedback text to the event log.
func (s *Service) RecordFeedback(ctx context.Context, text string) (*model.FeedbackEntry, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	return s.store.Append(ctx, text)
}

// MemorySnapshot returns the content of every indexed artifact, newest first.
func (s *Service) MemorySnapshot(ctx context.Context) ([]string, error) {
	arts, err := s.Artifacts(ctx, store.SnapshotParams{Limit: -1})
	if err != nil {
		return nil, err
	}
	out := make([]string, len(arts))
	for i, a := range arts {
		out[i] = a.Content
	}
	return out, nil
}

// Artifacts lists indexed artifacts, newest first.
func (s *Service) Artifacts(ctx context.Context, p store.SnapshotParams) ([]model.Artifact, error) {
	return s.store.Snapshot(ctx, p)
}

// Recall returns the k artifacts most similar to text, optionally limited to
// one type and to the last days days.
func (s *Service) Recall(ctx context.Context, text string, k int, typ model.ArtifactType, days int) ([]model.Artifact, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	p := store.QueryParams{Text: text, K: k, Type: typ}
	if days > 0 {
		return s.store.QueryByRecency(ctx, p, days)
	}
	return s.store.Query(ctx, p)
}

// Export writes content as a PDF named filename under the export directory
// and returns its path.
func (s *Service) Export(title, content, filename string) (string, error) {
	name := filepath.Base(filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "plan-" + s.now().Format("2006-01-02") + ".pdf"
	}
	if filepath.Ext(name) != ".pdf" {
		name += ".pdf"
	}
	path := filepath.Join(s.cfg.ExportDir, name)
	if err := export.WritePDF(path, title, content); err != nil {
		return "", err
	}
	s.log.Info().Str("path", path).Msg("exported")
	return path, nil
}
