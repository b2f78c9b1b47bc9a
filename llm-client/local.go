package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
)

const (
	defaultOllamaURL   = "http://localhost:11434"
	defaultOllamaModel = "codellama:instruct"
)

// OllamaGenerator is the local fallback generator: it asks a local Ollama
// instance for an answer and, when that fails for any reason, degrades to a
// templated string. It never returns an error; every failure path produces
// some usable text.
type OllamaGenerator struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaGenerator creates a local generator. Empty arguments select the
// standard local Ollama address and model.
func NewOllamaGenerator(baseURL, model string) *OllamaGenerator {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaGenerator{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		httpClient: &http.Client{},
	}
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// Generate produces a best-effort local answer for the given role.
func (g *OllamaGenerator) Generate(ctx context.Context, prompt, role string) string {
	text, err := g.generate(ctx, prompt)
	if err != nil {
		log.Printf("[LocalFallback] Ollama generation failed, using rule-based fallback: %v", err)
		return RuleBasedFallback(role)
	}
	return text
}

func (g *OllamaGenerator) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(ollamaRequest{
		Model:  g.model,
		Prompt: prompt,
		Stream: false,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	var parsed ollamaResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", err
	}
	if parsed.Response == "" {
		return "", fmt.Errorf("empty response from ollama")
	}
	return parsed.Response, nil
}

// RuleBasedFallback is the last rung of the fallback ladder: a canned answer
// acknowledging that full analysis is unavailable.
func RuleBasedFallback(role string) string {
	if role == "" {
		role = "assistant"
	}
	return fmt.Sprintf("As a %s, I recommend proceeding with caution as full AI analysis is currently unavailable.", role)
}
