/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ViolationError reports model output that does not satisfy the expected
// result shape. It is terminal for the unit of work that produced it: callers
// skip the unit, they never guess.
type ViolationError struct {
	Shape  string
	Reason string
	Err    error
}

func (e *ViolationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("response is not a valid %s: %s: %v", e.Shape, e.Reason, e.Err)
	}
	return fmt.Sprintf("response is not a valid %s: %s", e.Shape, e.Reason)
}

func (e *ViolationError) Unwrap() error { return e.Err }

// Decode extracts the JSON document from raw model output and unmarshals it
// into T, then validates T's required fields. Markdown code fences and
// surrounding prose are tolerated; a missing field, a wrong type, or text with
// no JSON document at all is a *ViolationError.
func Decode[T Validator](raw string) (T, error) {
	var result T
	shape := fmt.Sprintf("%T", result)

	doc := extractJSON(raw)
	if doc == "" {
		return result, &ViolationError{Shape: shape, Reason: "no JSON document found"}
	}

	dec := json.NewDecoder(strings.NewReader(doc))
	if err := dec.Decode(&result); err != nil {
		return result, &ViolationError{Shape: shape, Reason: "malformed JSON", Err: err}
	}
	// A second document after the first means the model kept talking in a way
	// the fence scan did not catch; treat it the same as trailing prose.
	if dec.More() {
		return result, &ViolationError{Shape: shape, Reason: "trailing content after JSON document"}
	}

	if err := result.Validate(); err != nil {
		return result, &ViolationError{Shape: shape, Reason: "shape validation failed", Err: err}
	}
	return result, nil
}

// extractJSON returns the JSON document embedded in model output. It prefers
// the first fenced ```json block, falls back to a generic fence, and on
// unfenced input skips leading prose up to the first opening brace. Everything
// from that brace onward is returned unchanged, so the decoder's
// trailing-content check applies to unfenced and fenced input alike.
func extractJSON(raw string) string {
	if block, ok := fencedBlock(raw, "```json"); ok {
		return block
	}
	if block, ok := fencedBlock(raw, "```"); ok {
		return strings.TrimSpace(block)
	}

	trimmed := strings.TrimSpace(raw)
	if start := strings.IndexByte(trimmed, '{'); start >= 0 {
		return trimmed[start:]
	}
	return ""
}

// fencedBlock returns the content between the first `open` marker on its own
// line and the next closing ``` line.
func fencedBlock(raw, open string) (string, bool) {
	lines := strings.Split(raw, "\n")
	var b strings.Builder
	inBlock := false
	for _, line := range lines {
		switch {
		case !inBlock && strings.TrimSpace(line) == open:
			inBlock = true
		case inBlock && strings.TrimSpace(line) == "```":
			return b.String(), true
		case inBlock:
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			b.WriteString(line)
		}
	}
	if inBlock {
		// Unterminated fence: return what we collected and let the JSON
		// decoder report the damage.
		return b.String(), true
	}
	return "", false
}

// CodeBlock returns opaque code or markdown output with any single wrapping
// fence removed. Empty output is an error: a workflow that writes files must
// never write nothing.
func CodeBlock(raw string) (string, error) {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") && strings.HasSuffix(text, "```") && len(text) > 6 {
		text = strings.TrimSuffix(text, "```")
		if idx := strings.IndexByte(text, '\n'); idx >= 0 {
			// Drop the opening fence line, including any language tag.
			text = text[idx+1:]
		} else {
			text = strings.TrimPrefix(text, "```")
		}
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return "", errors.New("model returned empty content")
	}
	return text, nil
}
