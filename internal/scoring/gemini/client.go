// Package gemini implements scoring.Completer with langchaingo's Google AI model.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"ngmi-backend/internal/scoring"
)

const defaultModel = "gemini-2.5-flash"

// Client wraps a langchaingo model.
type Client struct {
	model       llms.Model
	temperature float64
}

// NewClient builds a Gemini-backed completer.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = defaultModel
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(strings.TrimSpace(model)),
	)
	if err != nil {
		return nil, fmt.Errorf("init gemini: %w", err)
	}
	return NewWithModel(llm), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(m llms.Model) *Client {
	return &Client{model: m, temperature: 0.6}
}

// Complete sends the prompt as a single human message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(c.temperature),
		llms.WithJSONMode(),
	)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return out, nil
}

var _ scoring.Completer = (*Client)(nil)
