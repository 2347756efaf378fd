package planner

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/rcliao/focus-agent/internal/model"
)

// timeMarker matches a clock time with am/pm ("3pm", "10:30 AM", "9 a.m."),
// a standalone AM or PM, or a dotted a.m./p.m. A lowercase "am" on its own
// is the English verb and does not count.
var timeMarker = regexp.MustCompile(`(?i:\b\d{1,2}(?:[:.]\d{2})?\s*[ap]\.?m\b)|\b(?:AM|PM)\b|(?i:\b[ap]\.m\.)`)

// Plan asks the model for a schedule of tasks, records the raw output, and
// returns it formatted with FormatSchedule.
func (s *Service) Plan(ctx context.Context, tasks string) (string, error) {
	if strings.TrimSpace(tasks) == "" {
		return "", ErrEmptyInput
	}

	history, err := s.history(ctx, tasks)
	if err != nil {
		return "", err
	}
	if recent := s.store.Recent(ctx, s.cfg.RecentDays); len(recent) > 0 {
		history = appendRecentFeedback(history, recent)
	}

	prefs := s.store.Load(ctx)
	raw, err := s.gateway.Complete(ctx, s.prompts.Planner, map[string]string{
		"tasks":       tasks,
		"history":     history,
		"preferences": prefs.String(),
	})
	if err != nil {
		return "", fmt.Errorf("plan: %w", err)
	}

	if err := s.index(ctx, model.TypePlan, raw); err != nil {
		return "", err
	}
	s.log.Info().Int("history_len", len(history)).Int("prefs", len(prefs)).Msg("plan generated")
	return FormatSchedule(raw), nil
}

func appendRecentFeedback(history string, recent []model.FeedbackEntry) string {
	var b strings.Builder
	b.WriteString(history)
	if history != "" {
		b.WriteString("\n\n")
	}
	b.WriteString("Recent feedback:")
	for _, e := range recent {
		fmt.Fprintf(&b, "\n- %s: %s", e.Date.Local().Format("2006-01-02"), e.Feedback)
	}
	return b.String()
}

// FormatSchedule trims raw and each of its lines, wraps lines that carry a
// time-of-day marker in ** emphasis, and joins every line with a blank line.
func FormatSchedule(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if timeMarker.MatchString(line) {
			line = "**" + line + "**"
		}
		out = append(out, line)
	}
	return strings.Join(out, "\n\n")
}
