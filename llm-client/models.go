package llmclient

// Default model per provider, used when an agent endpoint names a provider
// without a model. Only models known to work reliably.
var defaultModels = map[Provider]string{
	ProviderOpenAI:    "gpt-4o",
	ProviderAnthropic: "claude-sonnet-4-5-20250929", // actual API model ID
	ProviderGoogle:    "gemini-2.5-flash",
	ProviderCohere:    "command-a-03-2025",
}

// DefaultModel returns the default model for a provider, or "" when the
// provider is unknown.
func DefaultModel(provider Provider) string {
	return defaultModels[provider]
}
