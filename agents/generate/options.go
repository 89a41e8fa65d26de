/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package generate

import (
	"fmt"
	"strings"
)

// Option is a functional option for configuring the Claude generator.
type Option func(*Claude) error

// WithModel allows overriding the model name.
func WithModel(model string) Option {
	return func(c *Claude) error {
		if !strings.HasPrefix(model, "claude-") {
			return fmt.Errorf("model %q does not appear to be a Claude model (expected claude-* format)", model)
		}
		c.modelName = model
		return nil
	}
}

// WithTemperature sets the sampling temperature. Claude models accept values
// from 0.0 to 1.0; lower values produce more deterministic output.
func WithTemperature(temp float64) Option {
	return func(c *Claude) error {
		if temp < 0.0 || temp > 1.0 {
			return fmt.Errorf("temperature must be between 0.0 and 1.0, got %f", temp)
		}
		c.temperature = temp
		return nil
	}
}
