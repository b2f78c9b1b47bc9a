package llmclient

import (
	"context"
)

// LLMClient defines the interface for all hosted LLM providers.
type LLMClient interface {
	// Call performs a non-streaming LLM call
	Call(ctx context.Context, systemPrompt, userMessage, apiKey string) (string, error)

	// SetModel sets the model to use (optional, some clients may not support this)
	SetModel(model string)
}

// Provider represents the LLM provider type
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderCohere    Provider = "cohere"
)
