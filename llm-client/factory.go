package llmclient

import (
	"fmt"
)

// NewLLMClient creates a new LLM client based on the provider string
func NewLLMClient(provider string) (LLMClient, error) {
	switch Provider(provider) {
	case ProviderOpenAI, "":
		return NewOpenAIClient(), nil
	case ProviderAnthropic:
		return NewAnthropicClient(), nil
	case ProviderGoogle:
		return NewGoogleClient(), nil
	case ProviderCohere:
		return NewCohereClient(), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s. Supported providers: openai, anthropic, google, cohere", provider)
	}
}

// NewLLMClientWithModel creates a new LLM client with a specific model
func NewLLMClientWithModel(provider, model string) (LLMClient, error) {
	client, err := NewLLMClient(provider)
	if err != nil {
		return nil, err
	}
	if model != "" {
		client.SetModel(model)
	}
	return client, nil
}
