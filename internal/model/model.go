// Package model defines the core planner data types.
package model

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ArtifactType tags a stored artifact.
type ArtifactType string

const (
	TypePlan         ArtifactType = "plan"
	TypeFeedback     ArtifactType = "feedback"
	TypeInsight      ArtifactType = "insight"
	TypePreferences  ArtifactType = "preferences"
	TypeWeeklyReview ArtifactType = "weekly_review"
)

// ValidTypes are the allowed artifact types.
var ValidTypes = map[ArtifactType]bool{
	TypePlan:         true,
	TypeFeedback:     true,
	TypeInsight:      true,
	TypePreferences:  true,
	TypeWeeklyReview: true,
}

// ParseArtifactType validates s as an artifact type.
func ParseArtifactType(s string) (ArtifactType, error) {
	t := ArtifactType(strings.TrimSpace(s))
	if !ValidTypes[t] {
		return "", fmt.Errorf("invalid artifact type %q (valid: plan, feedback, insight, preferences, weekly_review)", s)
	}
	return t, nil
}

// FeedbackEntry is one dated record in the feedback event log.
type FeedbackEntry struct {
	ID       string    `json:"id"`
	Date     time.Time `json:"date"`
	Feedback string    `json:"feedback"`
}

// Well-known preference keys.
const (
	PrefWakeTime   = "wake_time"
	PrefLunchTime  = "lunch_time"
	PrefDinnerTime = "dinner_time"
	PrefAvoid      = "avoid"
)

// Preferences is the latest snapshot of scheduling preferences.
type Preferences map[string]string

// Clone returns a copy of p. A nil receiver yields an empty map.
func (p Preferences) Clone() Preferences {
	out := make(Preferences, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Keys returns the preference keys in sorted order.
func (p Preferences) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// String renders p as "key: value" lines in key order.
func (p Preferences) String() string {
	var b strings.Builder
	for _, k := range p.Keys() {
		fmt.Fprintf(&b, "%s: %s\n", k, p[k])
	}
	return strings.TrimRight(b.String(), "\n")
}

// JSON encodes p as a JSON object with sorted keys.
func (p Preferences) JSON() (string, error) {
	if p == nil {
		p = Preferences{}
	}
	b, err := json.Marshal(map[string]string(p))
	if err != nil {
		return "", fmt.Errorf("encode preferences: %w", err)
	}
	return string(b), nil
}

// Artifact is a text blob stored for semantic retrieval.
type Artifact struct {
	ID        string       `json:"id"`
	Type      ArtifactType `json:"type"`
	Content   string       `json:"content"`
	Timestamp time.Time    `json:"timestamp"`
	Score     float64      `json:"score,omitempty"`
}

// Chunk is a keyword-indexed slice of an artifact's content.
type Chunk struct {
	ID         string `json:"id"`
	ArtifactID string `json:"artifact_id"`
	Seq        int    `json:"seq"`
	Text       string `json:"text"`
	StartLine  int    `json:"start_line,omitempty"`
	EndLine    int    `json:"end_line,omitempty"`
}
