package store

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/rcliao/focus-agent/internal/model"
)

func artifact(typ model.ArtifactType, content string) model.Artifact {
	return model.Artifact{Type: typ, Content: content, Timestamp: time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC)}
}

func TestPackHistory_FitsAll(t *testing.T) {
	arts := []model.Artifact{
		artifact(model.TypePlan, "plan a"),
		artifact(model.TypeFeedback, "feedback b"),
	}
	res := PackHistory(arts, 100)
	if len(res.Artifacts) != 2 || res.Excerpted {
		t.Errorf("expected both artifacts unexcerpted, got %+v", res)
	}
	if res.Budget != 100 {
		t.Errorf("expected budget 100, got %d", res.Budget)
	}
}

func TestPackHistory_Excerpts(t *testing.T) {
	arts := []model.Artifact{
		artifact(model.TypePlan, strings.Repeat("a", 150)),
		artifact(model.TypePlan, strings.Repeat("b", 500)),
		artifact(model.TypePlan, "never reached"),
	}
	// 100 tokens = 400 chars; 250 remain after the first artifact.
	res := PackHistory(arts, 100)
	if len(res.Artifacts) != 2 {
		t.Fatalf("expected 2 artifacts, got %d", len(res.Artifacts))
	}
	if !res.Excerpted {
		t.Error("expected excerpted flag")
	}
	if got := res.Artifacts[1].Content; got != strings.Repeat("b", 250)+"..." {
		t.Errorf("unexpected excerpt length %d", len(got))
	}
	if arts[1].Content != strings.Repeat("b", 500) {
		t.Error("expected input artifacts to be left untouched")
	}
}

func TestPackHistory_ExcerptKeepsRunesWhole(t *testing.T) {
	arts := []model.Artifact{
		artifact(model.TypePlan, strings.Repeat("a", 7899)),
		artifact(model.TypeFeedback, strings.Repeat("é", 200)),
	}
	// 2000 tokens = 8000 chars; 101 bytes remain, which splits an "é".
	res := PackHistory(arts, 2000)
	if len(res.Artifacts) != 2 || !res.Excerpted {
		t.Fatalf("expected an excerpted second artifact, got %d (excerpted=%v)", len(res.Artifacts), res.Excerpted)
	}
	got := res.Artifacts[1].Content
	if !utf8.ValidString(got) {
		t.Error("expected excerpt to be valid UTF-8")
	}
	if got != strings.Repeat("é", 50)+"..." {
		t.Errorf("unexpected excerpt %q", got)
	}
}

func TestPackHistory_SkipsTinyRemainder(t *testing.T) {
	arts := []model.Artifact{
		artifact(model.TypePlan, strings.Repeat("a", 350)),
		artifact(model.TypePlan, strings.Repeat("b", 500)),
	}
	res := PackHistory(arts, 100)
	if len(res.Artifacts) != 1 || res.Excerpted {
		t.Errorf("expected only the first artifact, got %d (excerpted=%v)", len(res.Artifacts), res.Excerpted)
	}
}

func TestPackHistory_DefaultBudget(t *testing.T) {
	if res := PackHistory(nil, 0); res.Budget != 2000 {
		t.Errorf("expected default budget 2000, got %d", res.Budget)
	}
}

func TestHistoryRender(t *testing.T) {
	res := PackHistory([]model.Artifact{
		artifact(model.TypePlan, "Write report"),
		artifact(model.TypeInsight, "Mornings work best"),
	}, 100)

	want := "[plan 2026-03-09] Write report\n[insight 2026-03-09] Mornings work best"
	if got := res.Render(); got != want {
		t.Errorf("render:\n got %q\nwant %q", got, want)
	}
	if got := (&HistoryResult{}).Render(); got != "" {
		t.Errorf("expected empty render, got %q", got)
	}
}
