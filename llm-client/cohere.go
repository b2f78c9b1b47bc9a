package llmclient

import (
	"context"
	"fmt"

	coheregov2 "github.com/cohere-ai/cohere-go/v2"
	"github.com/cohere-ai/cohere-go/v2/client"
	cohereoption "github.com/cohere-ai/cohere-go/v2/option"
)

// CohereClient implements LLMClient for Cohere
type CohereClient struct {
	model string
}

// NewCohereClient creates a new Cohere client
func NewCohereClient() *CohereClient {
	return &CohereClient{
		model: "command-a-03-2025", // default
	}
}

// SetModel sets the model to use
func (c *CohereClient) SetModel(model string) {
	c.model = model
}

// Call performs a non-streaming Cohere API call
func (c *CohereClient) Call(ctx context.Context, systemPrompt, userMessage, apiKey string) (string, error) {
	cohereClient := client.NewClient(
		cohereoption.WithToken(apiKey),
	)

	// Combine system prompt and user message
	fullPrompt := systemPrompt + "\n\n" + userMessage

	resp, err := cohereClient.Chat(ctx, &coheregov2.ChatRequest{
		Message: fullPrompt,
		Model:   coheregov2.String(c.model),
	})
	if err != nil {
		return "", err
	}

	if resp.Text != "" {
		return resp.Text, nil
	}

	return "", fmt.Errorf("no response from Cohere")
}
