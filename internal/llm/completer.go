// Package llm is the single point of contact with the language model: prompt
// templates, provider clients, and the Gateway that binds them.
package llm

import (
	"context"
	"fmt"
)

// Completer sends a fully rendered prompt to a model and returns its text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Name() string
}

// Config selects and configures a Completer.
type Config struct {
	Provider    string // "ollama" (default) or "openai"
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float32 // 0 uses the provider default
}

// NewCompleter returns the Completer for cfg.Provider.
func NewCompleter(cfg Config) (Completer, error) {
	switch cfg.Provider {
	case "", "ollama":
		return NewOllamaCompleter(cfg.BaseURL, cfg.Model, cfg.Temperature), nil
	case "openai":
		return NewOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
