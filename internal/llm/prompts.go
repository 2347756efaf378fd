package llm

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Template names.
const (
	PromptPlanner          = "planner"
	PromptFeedbackSummary  = "feedback_summary"
	PromptFineTune         = "fine_tune"
	PromptPreferenceUpdate = "preference_update"
	PromptWeeklyReview     = "weekly_review"
)

// Template is a named prompt with placeholders.
type Template struct {
	Name string
	Text string
	tmpl *template.Template
}

// NewTemplate parses text as a prompt template.
func NewTemplate(name, text string) (*Template, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", name, err)
	}
	return &Template{Name: name, Text: text, tmpl: tmpl}, nil
}

// Render substitutes bindings into the template. Every placeholder must be bound.
func (t *Template) Render(bindings map[string]string) (string, error) {
	var b strings.Builder
	if err := t.tmpl.Execute(&b, bindings); err != nil {
		return "", fmt.Errorf("render prompt %s: %w", t.Name, err)
	}
	return b.String(), nil
}

// PromptSet holds the five workflow prompts.
type PromptSet struct {
	Planner          *Template
	FeedbackSummary  *Template
	FineTune         *Template
	PreferenceUpdate *Template
	WeeklyReview     *Template
}

// LoadPrompts returns the built-in prompts, with any templates in
// overridePath (a YAML file keyed by template name) replacing them.
func LoadPrompts(overridePath string) (*PromptSet, error) {
	texts := map[string]string{}
	if err := yaml.Unmarshal(defaultPrompts, &texts); err != nil {
		return nil, fmt.Errorf("parse built-in prompts: %w", err)
	}

	if overridePath != "" {
		data, err := os.ReadFile(overridePath)
		if err != nil {
			return nil, fmt.Errorf("read prompts file: %w", err)
		}
		overrides := map[string]string{}
		if err := yaml.Unmarshal(data, &overrides); err != nil {
			return nil, fmt.Errorf("parse prompts file %s: %w", overridePath, err)
		}
		for name, text := range overrides {
			if _, ok := texts[name]; !ok {
				return nil, fmt.Errorf("prompts file %s: unknown template %q", overridePath, name)
			}
			texts[name] = text
		}
	}

	ps := &PromptSet{}
	for name, dst := range map[string]**Template{
		PromptPlanner:          &ps.Planner,
		PromptFeedbackSummary:  &ps.FeedbackSummary,
		PromptFineTune:         &ps.FineTune,
		PromptPreferenceUpdate: &ps.PreferenceUpdate,
		PromptWeeklyReview:     &ps.WeeklyReview,
	} {
		t, err := NewTemplate(name, texts[name])
		if err != nil {
			return nil, err
		}
		*dst = t
	}
	return ps, nil
}
