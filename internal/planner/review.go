package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rcliao/focus-agent/internal/model"
	"github.com/rcliao/focus-agent/internal/store"
)

// reviewProbe is the fixed query used to gather the week's candidates.
const reviewProbe = "plan feedback insight"

// GenerateReview summarizes the last week of indexed artifacts, records the
// review, and returns it. By default the week is approximated by a
// similarity query filtered to the window, which may miss artifacts; with
// Config.ReviewExact every artifact in the window is used.
func (s *Service) GenerateReview(ctx context.Context) (string, error) {
	arts, err := s.weekArtifacts(ctx)
	if err != nil {
		return "", err
	}

	contents := make([]string, len(arts))
	for i, a := range arts {
		contents[i] = a.Content
	}
	weekData := strings.Join(contents, "\n")

	review, err := s.gateway.Complete(ctx, s.prompts.WeeklyReview, map[string]string{"week_data": weekData})
	if err != nil {
		return "", fmt.Errorf("review: %w", err)
	}
	if err := s.index(ctx, model.TypeWeeklyReview, review); err != nil {
		return "", err
	}
	s.log.Info().Int("artifacts", len(arts)).Bool("exact", s.cfg.ReviewExact).Msg("weekly review generated")
	return review, nil
}

func (s *Service) weekArtifacts(ctx context.Context) ([]model.Artifact, error) {
	if s.cfg.ReviewExact {
		now := s.now()
		arts, err := s.store.Range(ctx, now.Add(-time.Duration(s.cfg.ReviewWindowDays)*24*time.Hour), now)
		if err != nil {
			return nil, fmt.Errorf("list week: %w", err)
		}
		return arts, nil
	}
	arts, err := s.store.QueryByRecency(ctx,
		store.QueryParams{Text: reviewProbe, K: s.cfg.ReviewCandidates}, s.cfg.ReviewWindowDays)
	if err != nil {
		return nil, fmt.Errorf("query week: %w", err)
	}
	return arts, nil
}
