package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/rcliao/focus-agent/internal/model"
)

// FeedbackStored is the confirmation returned by SubmitFeedback.
const FeedbackStored = "Feedback stored successfully."

// FeedbackResult reports what SubmitFeedback produced.
type FeedbackResult struct {
	Message     string           `json:"message"`
	Summary     string           `json:"summary"`
	Insight     string           `json:"insight"`
	Preferences PreferenceUpdate `json:"preferences"`
}

// PreferenceUpdate is the outcome of parsing a preference-updater response.
// When Applied is false, Reason says why and Prefs is nil.
type PreferenceUpdate struct {
	Prefs   model.Preferences `json:"prefs,omitempty"`
	Applied bool              `json:"applied"`
	Reason  string            `json:"reason,omitempty"`
}

// SubmitFeedback summarizes tasksDone, derives an insight, and updates the
// stored preferences from the model's answer. An unparseable preference
// answer leaves the preferences untouched and is reported in the result,
// not as an error. The caller appends tasksDone to the event log.
func (s *Service) SubmitFeedback(ctx context.Context, tasksDone string) (*FeedbackResult, error) {
	if strings.TrimSpace(tasksDone) == "" {
		return nil, ErrEmptyInput
	}

	history, err := s.history(ctx, tasksDone)
	if err != nil {
		return nil, err
	}

	res := &FeedbackResult{Message: FeedbackStored}
	summarize := func(ctx context.Context) (err error) {
		res.Summary, err = s.gateway.Complete(ctx, s.prompts.FeedbackSummary, map[string]string{
			"feedback": tasksDone,
			"tasks":    history,
		})
		return err
	}
	derive := func(ctx context.Context) (err error) {
		res.Insight, err = s.gateway.Complete(ctx, s.prompts.FineTune, map[string]string{
			"history": history,
			"tasks":   tasksDone,
		})
		return err
	}

	if s.cfg.Parallel {
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error { return summarize(gctx) })
		g.Go(func() error { return derive(gctx) })
		err = g.Wait()
	} else if err = summarize(ctx); err == nil {
		err = derive(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}

	if err := s.index(ctx, model.TypeFeedback, res.Summary); err != nil {
		return nil, err
	}
	if err := s.index(ctx, model.TypeInsight, res.Insight); err != nil {
		return nil, err
	}

	current := s.store.Load(ctx)
	raw, err := s.gateway.Complete(ctx, s.prompts.PreferenceUpdate, map[string]string{
		"history":     history,
		"feedback":    tasksDone,
		"preferences": current.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("feedback: %w", err)
	}

	res.Preferences = ParsePreferences(raw)
	if !res.Preferences.Applied {
		s.log.Warn().Str("reason", res.Preferences.Reason).Str("raw", truncate(raw, 200)).Msg("preference update skipped")
		return res, nil
	}
	if err := s.SavePreferences(ctx, res.Preferences.Prefs); err != nil {
		return nil, err
	}
	s.log.Info().Strs("keys", res.Preferences.Prefs.Keys()).Msg("preferences updated")
	return res, nil
}

// ParsePreferences reads a model response as a flat JSON object of
// preferences. Code fences around the object are ignored. Numbers and
// booleans are kept as their JSON text; string arrays are joined with "; ".
// Nested objects, other arrays, and empty objects are rejected.
func ParsePreferences(raw string) PreferenceUpdate {
	text := stripFences(raw)
	if text == "" {
		return PreferenceUpdate{Reason: "empty response"}
	}

	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return PreferenceUpdate{Reason: "not a JSON object: " + err.Error()}
	}
	if _, err := dec.Token(); err != io.EOF {
		return PreferenceUpdate{Reason: "trailing data after JSON object"}
	}
	if len(doc) == 0 {
		return PreferenceUpdate{Reason: "empty preference object"}
	}

	keys := make([]string, 0, len(doc))
	for k := range doc {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	prefs := model.Preferences{}
	for _, k := range keys {
		switch v := doc[k].(type) {
		case string:
			prefs[k] = v
		case json.Number:
			prefs[k] = v.String()
		case bool:
			prefs[k] = fmt.Sprint(v)
		case nil:
			// null drops the key
		case []any:
			parts := make([]string, 0, len(v))
			for _, item := range v {
				str, ok := item.(string)
				if !ok {
					return PreferenceUpdate{Reason: fmt.Sprintf("key %q: list items must be strings", k)}
				}
				parts = append(parts, str)
			}
			prefs[k] = strings.Join(parts, "; ")
		default:
			return PreferenceUpdate{Reason: fmt.Sprintf("key %q: nested values are not supported", k)}
		}
	}
	if len(prefs) == 0 {
		return PreferenceUpdate{Reason: "empty preference object"}
	}
	return PreferenceUpdate{Prefs: prefs, Applied: true}
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:] // drop the language tag line
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
