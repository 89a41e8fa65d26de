/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package generate

import (
	"context"
	"fmt"
)

// MaxPromptLen is the longest prompt the adapter will send, in bytes. Callers
// gathering repository content must truncate or chunk before constructing a
// Request; the adapter rejects oversized prompts instead of trimming them.
const MaxPromptLen = 180_000

// MaxOutputTokens is the hard ceiling on any single response budget.
const MaxOutputTokens = 32_000

// Request is one bounded prompt for the reasoning service.
type Request struct {
	Prompt    string
	MaxTokens int64
}

// Generator sends a bounded prompt to the reasoning service and returns the
// raw response text. Implementations must be safe for concurrent use; every
// event-handling task shares one Generator.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// InvocationError reports a provider-side rejection: rate limit, content
// policy, network failure, or an empty completion. It is never retried by the
// adapter.
type InvocationError struct {
	Model string
	Err   error
}

func (e *InvocationError) Error() string {
	return fmt.Sprintf("model %s invocation failed: %v", e.Model, e.Err)
}

func (e *InvocationError) Unwrap() error { return e.Err }

// validate rejects requests the provider would reject anyway, before any
// network traffic happens.
func (r Request) validate() error {
	if r.Prompt == "" {
		return fmt.Errorf("empty prompt")
	}
	if len(r.Prompt) > MaxPromptLen {
		return fmt.Errorf("prompt length %d exceeds maximum of %d", len(r.Prompt), MaxPromptLen)
	}
	if r.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive, got %d", r.MaxTokens)
	}
	if r.MaxTokens > MaxOutputTokens {
		return fmt.Errorf("max tokens %d exceeds maximum of %d", r.MaxTokens, MaxOutputTokens)
	}
	return nil
}
