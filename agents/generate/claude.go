/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package generate

import (
	"context"
	"fmt"

	"chainguard.dev/devtools/metrics"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/chainguard-dev/clog"
)

// Claude implements Generator against the Anthropic Messages API.
type Claude struct {
	client      anthropic.Client
	modelName   string
	temperature float64
}

// NewClaude creates a Claude generator with minimal required configuration.
func NewClaude(client anthropic.Client, opts ...Option) (*Claude, error) {
	c := &Claude{
		client:      client,
		modelName:   "claude-sonnet-4-5-20250929",
		temperature: 0.1, // Default temperature for consistency
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}
	return c, nil
}

// Generate sends one user-turn prompt and returns the text of the response.
// No conversation state is retained between calls.
func (c *Claude) Generate(ctx context.Context, req Request) (string, error) {
	log := clog.FromContext(ctx)

	if err := req.validate(); err != nil {
		return "", fmt.Errorf("invalid generation request: %w", err)
	}

	log.With("prompt_length", len(req.Prompt)).
		With("max_tokens", req.MaxTokens).
		Info("Invoking model")
	metrics.ModelInvocations.WithLabelValues(c.modelName).Inc()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.modelName),
		MaxTokens: req.MaxTokens,
		Messages: []anthropic.MessageParam{{
			Role: anthropic.MessageParamRoleUser,
			Content: []anthropic.ContentBlockParamUnion{
				anthropic.NewTextBlock(req.Prompt),
			},
		}},
	}
	params.Temperature = anthropic.Float(c.temperature)

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		metrics.ModelFailures.WithLabelValues(c.modelName).Inc()
		return "", &InvocationError{Model: c.modelName, Err: err}
	}

	var text string
	for _, content := range message.Content {
		if content.Type == "text" {
			text += content.Text
		}
	}
	if text == "" {
		metrics.ModelFailures.WithLabelValues(c.modelName).Inc()
		return "", &InvocationError{Model: c.modelName, Err: fmt.Errorf("no text content in response")}
	}

	log.With("response_length", len(text)).Info("Model invocation complete")
	return text, nil
}
