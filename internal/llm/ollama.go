package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
)

// OllamaCompleter generates text with a local Ollama instance.
type OllamaCompleter struct {
	baseURL     string
	model       string
	temperature float32
	client      *http.Client
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaCompleter returns a completer for Ollama's /api/generate. An empty
// baseURL falls back to $OLLAMA_HOST, then http://localhost:11434; an empty
// model defaults to mistral.
func NewOllamaCompleter(baseURL, model string, temperature float32) *OllamaCompleter {
	if baseURL == "" {
		baseURL = os.Getenv("OLLAMA_HOST")
	}
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "mistral"
	}
	// No client timeout: the gateway bounds each call through ctx.
	return &OllamaCompleter{baseURL: baseURL, model: model, temperature: temperature, client: &http.Client{}}
}

func (c *OllamaCompleter) Name() string { return "ollama/" + c.model }

func (c *OllamaCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	r := generateRequest{Model: c.model, Prompt: prompt}
	if c.temperature > 0 {
		r.Options = map[string]any{"temperature": c.temperature}
	}
	body, err := json.Marshal(r)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama returned status %d: %s", resp.StatusCode, string(b))
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode ollama response: %w", err)
	}
	return out.Response, nil
}
