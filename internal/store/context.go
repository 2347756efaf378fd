package store

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rcliao/focus-agent/internal/model"
)

// HistoryResult is the set of artifacts packed into a prompt budget.
type HistoryResult struct {
	Budget    int              `json:"budget"`
	Used      int              `json:"used"`
	Artifacts []model.Artifact `json:"artifacts"`
	Excerpted bool             `json:"excerpted,omitempty"`
}

// PackHistory greedily packs artifacts, in the given order, into a token
// budget (rough: 4 chars per token). The first artifact that does not fit is
// excerpted, on a rune boundary, if at least 100 chars remain; packing stops
// there.
func PackHistory(artifacts []model.Artifact, budget int) *HistoryResult {
	if budget <= 0 {
		budget = 2000
	}
	charBudget := budget * 4

	result := &HistoryResult{Budget: budget, Artifacts: []model.Artifact{}}
	used := 0
	for _, a := range artifacts {
		n := len(a.Content)
		if used+n <= charBudget {
			result.Artifacts = append(result.Artifacts, a)
			used += n
			continue
		}
		if remaining := charBudget - used; remaining >= 100 {
			cut := remaining
			for cut > 0 && !utf8.RuneStart(a.Content[cut]) {
				cut--
			}
			a.Content = a.Content[:cut] + "..."
			result.Artifacts = append(result.Artifacts, a)
			result.Excerpted = true
			used += remaining
		}
		break
	}
	result.Used = used / 4
	return result
}

// Render formats the packed artifacts as "[type date] content" lines.
func (h *HistoryResult) Render() string {
	if len(h.Artifacts) == 0 {
		return ""
	}
	var b strings.Builder
	for _, a := range h.Artifacts {
		fmt.Fprintf(&b, "[%s %s] %s\n", a.Type, a.Timestamp.Format("2006-01-02"), a.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
