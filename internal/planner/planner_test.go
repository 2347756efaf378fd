package planner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rcliao/focus-agent/internal/embedding"
	"github.com/rcliao/focus-agent/internal/llm"
	"github.com/rcliao/focus-agent/internal/model"
	"github.com/rcliao/focus-agent/internal/store"
)

type gatewayCall struct {
	Template string
	Bindings map[string]string
}

// fakeGateway answers each template with a scripted response and records
// every call. Prompts are rendered so missing bindings fail like they would
// against a real model.
type fakeGateway struct {
	mu        sync.Mutex
	responses map[string]string
	errs      map[string]error
	calls     []gatewayCall
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{responses: map[string]string{}, errs: map[string]error{}}
}

func (f *fakeGateway) Complete(_ context.Context, t *llm.Template, bindings map[string]string) (string, error) {
	if _, err := t.Render(bindings); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, gatewayCall{Template: t.Name, Bindings: bindings})
	if err := f.errs[t.Name]; err != nil {
		return "", err
	}
	if out, ok := f.responses[t.Name]; ok {
		return out, nil
	}
	return "ok from " + t.Name, nil
}

func (f *fakeGateway) callsFor(name string) []gatewayCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []gatewayCall
	for _, c := range f.calls {
		if c.Template == name {
			out = append(out, c)
		}
	}
	return out
}

type fixture struct {
	svc   *Service
	store *store.SQLiteStore
	gw    *fakeGateway
	now   time.Time
}

func newFixture(t *testing.T, cfg Config) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "focus.db"),
		store.WithEmbedder(embedding.NewHashEmbedder(128)),
		store.WithClock(clock))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	prompts, err := llm.LoadPrompts("")
	require.NoError(t, err)

	gw := newFakeGateway()
	svc := New(st, gw, prompts, cfg, WithClock(clock))
	return &fixture{svc: svc, store: st, gw: gw, now: now}
}

func (f *fixture) artifacts(t *testing.T, typ model.ArtifactType) []model.Artifact {
	t.Helper()
	arts, err := f.store.Snapshot(context.Background(), store.SnapshotParams{Type: typ})
	require.NoError(t, err)
	return arts
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}.withDefaults()
	assert.Equal(t, 5, cfg.HistoryK)
	assert.Equal(t, 2000, cfg.HistoryBudget)
	assert.Equal(t, 3, cfg.RecentDays)
	assert.Equal(t, 50, cfg.ReviewCandidates)
	assert.Equal(t, 7, cfg.ReviewWindowDays)
}

func TestPreferencesAndOnboarding(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	assert.True(t, f.svc.NeedsOnboarding(ctx))
	assert.Empty(t, f.svc.LoadPreferences(ctx))

	prefs := model.Preferences{"wake_time": "07:00", "lunch_time": "12:30"}
	require.NoError(t, f.svc.SavePreferences(ctx, prefs))

	assert.False(t, f.svc.NeedsOnboarding(ctx))
	first := f.svc.LoadPreferences(ctx)
	assert.Equal(t, prefs, first)
	assert.Equal(t, first, f.svc.LoadPreferences(ctx))

	snaps := f.artifacts(t, model.TypePreferences)
	require.Len(t, snaps, 1)
	assert.JSONEq(t, `{"wake_time":"07:00","lunch_time":"12:30"}`, snaps[0].Content)
}

func TestRecordAndRecentFeedback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	_, err := f.svc.RecordFeedback(ctx, "  ")
	assert.ErrorIs(t, err, ErrEmptyInput)

	_, err = f.svc.RecordFeedback(ctx, "Finished report")
	require.NoError(t, err)
	_, err = f.svc.RecordFeedback(ctx, "Called client")
	require.NoError(t, err)

	recent := f.svc.RecentFeedback(ctx, 3)
	require.Len(t, recent, 2)
	assert.Equal(t, "Finished report", recent[0].Feedback)
	assert.Equal(t, "Called client", recent[1].Feedback)
}

func TestMemorySnapshotAndRecall(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	f.store.Index(ctx, store.IndexParams{Content: "write quarterly report", Type: model.TypePlan, Timestamp: f.now.Add(-time.Hour)})
	f.store.Index(ctx, store.IndexParams{Content: "gym after work", Type: model.TypeInsight, Timestamp: f.now})

	snap, err := f.svc.MemorySnapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"gym after work", "write quarterly report"}, snap)

	hits, err := f.svc.Recall(ctx, "quarterly report", 1, "", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "write quarterly report", hits[0].Content)

	_, err = f.svc.Recall(ctx, "", 1, "", 0)
	assert.ErrorIs(t, err, ErrEmptyInput)
}

func TestMemorySnapshot_Uncapped(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{})

	for i := 0; i < 120; i++ {
		_, err := f.store.Index(ctx, store.IndexParams{Content: fmt.Sprintf("note %d", i), Type: model.TypeInsight, Timestamp: f.now.Add(time.Duration(i) * time.Second)})
		require.NoError(t, err)
	}

	snap, err := f.svc.MemorySnapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snap, 120)
	assert.Equal(t, "note 119", snap[0])
}

func TestExport(t *testing.T) {
	dir := t.TempDir()
	f := newFixture(t, Config{ExportDir: dir})

	path, err := f.svc.Export("Today's Plan", "**9:00 am Write report**", "today")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "today.pdf"), path)
	_, err = os.Stat(path)
	assert.NoError(t, err)

	path, err = f.svc.Export("Plan", "x", "")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "plan-2026-03-10.pdf"), path)

	path, err = f.svc.Export("Plan", "x", "../../escape.pdf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "escape.pdf"), path)
}

func TestHistory(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, Config{HistoryK: 1})

	f.store.Index(ctx, store.IndexParams{Content: "call client before lunch", Type: model.TypeInsight, Timestamp: f.now})
	f.store.Index(ctx, store.IndexParams{Content: "gym at six", Type: model.TypePlan, Timestamp: f.now})

	h, err := f.svc.History(ctx, "call client")
	require.NoError(t, err)
	require.Len(t, h.Artifacts, 1)
	assert.Equal(t, "call client before lunch", h.Artifacts[0].Content)
	assert.Equal(t, 2000, h.Budget)
}
