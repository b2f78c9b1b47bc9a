package llmclient

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Router resolves an agent endpoint to the right transport. Two endpoint
// forms are understood:
//
//	https://host/path       — generic JSON agent endpoint (EndpointClient)
//	provider://model        — hosted LLM provider, e.g. "anthropic://claude-haiku-4-5"
//	                          or "openai://" for the provider's default model;
//	                          the agent credential is the provider API key
//
// The dispatcher treats both identically: one bounded call, one text answer.
type Router struct {
	endpoint *EndpointClient
}

// NewRouter creates an endpoint router.
func NewRouter() *Router {
	return &Router{
		endpoint: NewEndpointClient(),
	}
}

// Call dispatches the prompt to whichever transport the endpoint names.
func (r *Router) Call(ctx context.Context, endpoint, credential, prompt string, taskContext map[string]any) (string, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint %q: %w", endpoint, err)
	}

	switch u.Scheme {
	case "http", "https":
		return r.endpoint.Call(ctx, endpoint, credential, prompt, taskContext)
	case "":
		return "", fmt.Errorf("endpoint %q has no scheme", endpoint)
	default:
		model := u.Host
		if model == "" {
			model = DefaultModel(Provider(u.Scheme))
		}
		client, err := NewLLMClientWithModel(u.Scheme, model)
		if err != nil {
			return "", err
		}
		return client.Call(ctx, systemPromptFrom(taskContext), prompt, credential)
	}
}

// systemPromptFrom derives the provider system prompt from the task context.
// A "system_prompt" entry wins; any other entries are appended as background
// so provider-backed agents see the same context a JSON endpoint would.
func systemPromptFrom(taskContext map[string]any) string {
	prompt := "You are one agent on a multi-agent panel. Answer the task directly and concisely."
	if v, ok := taskContext["system_prompt"].(string); ok && v != "" {
		prompt = v
	}

	keys := make([]string, 0, len(taskContext))
	for key := range taskContext {
		if key != "system_prompt" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var extra []string
	for _, key := range keys {
		extra = append(extra, fmt.Sprintf("%s: %v", key, taskContext[key]))
	}
	if len(extra) > 0 {
		prompt += "\n\nContext:\n" + strings.Join(extra, "\n")
	}
	return prompt
}
