package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/rcliao/focus-agent/internal/model"
)

func TestIndexAndQuery(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	s.Index(ctx, IndexParams{Content: "Finish quarterly report draft", Type: model.TypePlan, Timestamp: clock.Now()})
	s.Index(ctx, IndexParams{Content: "Gym session and groceries", Type: model.TypeFeedback, Timestamp: clock.Now()})
	s.Index(ctx, IndexParams{Content: "Report review with manager", Type: model.TypeInsight, Timestamp: clock.Now()})

	results, err := s.Query(ctx, QueryParams{Text: "quarterly report", K: 2})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Content != "Finish quarterly report draft" {
		t.Errorf("expected best match first, got %q", results[0].Content)
	}
	if results[0].Score < results[1].Score {
		t.Errorf("expected descending scores, got %f then %f", results[0].Score, results[1].Score)
	}
}

func TestQuery_TiesPreferRecent(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	older, _ := s.Index(ctx, IndexParams{Content: "same text", Type: model.TypePlan, Timestamp: clock.Now()})
	newer, _ := s.Index(ctx, IndexParams{Content: "same text", Type: model.TypePlan, Timestamp: clock.Now().Add(time.Hour)})

	results, err := s.Query(ctx, QueryParams{Text: "same text", K: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != newer.ID || results[1].ID != older.ID {
		t.Errorf("expected newest first on tie, got %s then %s", results[0].ID, results[1].ID)
	}
}

func TestQuery_EmptyIndex(t *testing.T) {
	s, _ := newTestStore(t)
	results, err := s.Query(context.Background(), QueryParams{Text: "anything"})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("expected no results, got %d", len(results))
	}
}

func TestQuery_TypeFilter(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	s.Index(ctx, IndexParams{Content: "report plan", Type: model.TypePlan, Timestamp: clock.Now()})
	s.Index(ctx, IndexParams{Content: "report feedback", Type: model.TypeFeedback, Timestamp: clock.Now()})

	results, _ := s.Query(ctx, QueryParams{Text: "report", Type: model.TypeFeedback})
	if len(results) != 1 || results[0].Type != model.TypeFeedback {
		t.Errorf("expected only feedback artifacts, got %+v", results)
	}
}

func TestQueryByRecency(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	s.Index(ctx, IndexParams{Content: "plan feedback old", Type: model.TypePlan, Timestamp: clock.Now().Add(-10 * 24 * time.Hour)})
	s.Index(ctx, IndexParams{Content: "plan feedback new", Type: model.TypePlan, Timestamp: clock.Now().Add(-24 * time.Hour)})

	results, err := s.QueryByRecency(ctx, QueryParams{Text: "plan feedback insight", K: 10}, 7)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 1 || results[0].Content != "plan feedback new" {
		t.Errorf("expected only the artifact inside the window, got %+v", results)
	}
}

func TestRange(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)
	now := clock.Now()

	s.Index(ctx, IndexParams{Content: "eight days ago", Type: model.TypePlan, Timestamp: now.Add(-8 * 24 * time.Hour)})
	s.Index(ctx, IndexParams{Content: "two days ago", Type: model.TypeInsight, Timestamp: now.Add(-2 * 24 * time.Hour)})
	s.Index(ctx, IndexParams{Content: "today", Type: model.TypeFeedback, Timestamp: now})

	got, err := s.Range(ctx, now.Add(-7*24*time.Hour), now)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 artifacts in range, got %d", len(got))
	}
	if got[0].Content != "two days ago" || got[1].Content != "today" {
		t.Errorf("expected chronological order, got %q then %q", got[0].Content, got[1].Content)
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	for i, c := range []string{"first", "second", "third"} {
		s.Index(ctx, IndexParams{Content: c, Type: model.TypePlan, Timestamp: clock.Now().Add(time.Duration(i) * time.Minute)})
	}
	s.Index(ctx, IndexParams{Content: "a review", Type: model.TypeWeeklyReview, Timestamp: clock.Now()})

	all, _ := s.Snapshot(ctx, SnapshotParams{})
	if len(all) != 4 {
		t.Fatalf("expected 4, got %d", len(all))
	}
	if all[0].Content != "third" {
		t.Errorf("expected newest first, got %q", all[0].Content)
	}

	plans, _ := s.Snapshot(ctx, SnapshotParams{Type: model.TypePlan, Limit: 2})
	if len(plans) != 2 || plans[1].Content != "second" {
		t.Errorf("expected two newest plans, got %+v", plans)
	}
}

func TestSnapshot_Limits(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	for i := 0; i < defaultSnapshotLimit+5; i++ {
		if _, err := s.Index(ctx, IndexParams{Content: fmt.Sprintf("plan %d", i), Type: model.TypePlan, Timestamp: clock.Now().Add(time.Duration(i) * time.Second)}); err != nil {
			t.Fatalf("index: %v", err)
		}
	}

	capped, err := s.Snapshot(ctx, SnapshotParams{})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(capped) != defaultSnapshotLimit {
		t.Errorf("expected default cap %d, got %d", defaultSnapshotLimit, len(capped))
	}

	all, err := s.Snapshot(ctx, SnapshotParams{Limit: -1})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(all) != defaultSnapshotLimit+5 {
		t.Errorf("expected all %d artifacts, got %d", defaultSnapshotLimit+5, len(all))
	}
}

func TestIndex_Validation(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)

	if _, err := s.Index(ctx, IndexParams{Content: "x", Type: "bogus", Timestamp: clock.Now()}); err == nil {
		t.Error("expected error for invalid type")
	}
	if _, err := s.Index(ctx, IndexParams{Content: "x", Type: model.TypePlan}); err == nil {
		t.Error("expected error for missing timestamp")
	}
	if _, err := s.Index(ctx, IndexParams{Content: "  ", Type: model.TypePlan, Timestamp: clock.Now()}); err == nil {
		t.Error("expected error for empty content")
	}
}

func TestIndex_NoEmbedder(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	_, err = s.Index(context.Background(), IndexParams{Content: "x", Type: model.TypePlan, Timestamp: time.Now()})
	if !errors.Is(err, ErrNoEmbedder) {
		t.Errorf("expected ErrNoEmbedder, got %v", err)
	}
}

func TestIndex_StorageFailurePropagates(t *testing.T) {
	ctx := context.Background()
	s, clock := newTestStore(t)
	s.Close()

	_, err := s.Index(ctx, IndexParams{Content: "plan", Type: model.TypePlan, Timestamp: clock.Now()})
	if !errors.Is(err, ErrStorage) {
		t.Errorf("expected ErrStorage, got %v", err)
	}
}
