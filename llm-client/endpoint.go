package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// EndpointClient calls a plain HTTP agent endpoint: a JSON POST carrying the
// prompt and task context, answered with a JSON body holding the generated
// text under "response" or "text".
type EndpointClient struct {
	httpClient *http.Client
}

// NewEndpointClient creates a client for generic HTTP agent endpoints.
// Timeouts come from the request context, not the transport.
func NewEndpointClient() *EndpointClient {
	return &EndpointClient{
		httpClient: &http.Client{},
	}
}

// endpointRequest is the wire format posted to an agent endpoint.
type endpointRequest struct {
	Prompt  string         `json:"prompt"`
	Context map[string]any `json:"context"`
}

// endpointResponse covers the accepted reply shapes.
type endpointResponse struct {
	Response string `json:"response"`
	Text     string `json:"text"`
}

// Call posts the prompt to the endpoint and extracts the generated text.
func (c *EndpointClient) Call(ctx context.Context, endpoint, credential, prompt string, taskContext map[string]any) (string, error) {
	if taskContext == nil {
		taskContext = map[string]any{}
	}
	body, err := json.Marshal(endpointRequest{
		Prompt:  prompt,
		Context: taskContext,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("endpoint returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var parsed endpointResponse
	if err := json.Unmarshal(raw, &parsed); err == nil {
		if parsed.Response != "" {
			return parsed.Response, nil
		}
		if parsed.Text != "" {
			return parsed.Text, nil
		}
	}

	// Tolerate endpoints that answer with a bare string body.
	if text := strings.TrimSpace(string(raw)); text != "" {
		return text, nil
	}
	return "", fmt.Errorf("empty response from endpoint")
}
