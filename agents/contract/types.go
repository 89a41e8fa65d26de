/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"errors"
	"fmt"
)

// Validator is implemented by every workflow result shape. Validate reports
// the first missing or out-of-range required field.
type Validator interface {
	Validate() error
}

// ReviewComment is a single line-anchored review remark.
type ReviewComment struct {
	Path string `json:"path"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// ReviewResult is the model's assessment of one changed file in a pull request.
type ReviewResult struct {
	Summary  string          `json:"summary"`
	Comments []ReviewComment `json:"comments"`
}

func (r ReviewResult) Validate() error {
	if r.Summary == "" {
		return errors.New("missing summary")
	}
	for i, c := range r.Comments {
		switch {
		case c.Path == "":
			return fmt.Errorf("comment %d: missing path", i)
		case c.Line <= 0:
			return fmt.Errorf("comment %d: line must be positive, got %d", i, c.Line)
		case c.Body == "":
			return fmt.Errorf("comment %d: missing body", i)
		}
	}
	return nil
}

// Priorities accepted in a TriageResult.
var triagePriorities = map[string]bool{
	"critical": true,
	"high":     true,
	"medium":   true,
	"low":      true,
}

// TriageResult is the model's classification of a newly opened issue.
type TriageResult struct {
	Labels       []string `json:"labels"`
	Priority     string   `json:"priority"`
	Complexity   int      `json:"complexity"`
	AssigneeType string   `json:"assignee_type"`
	Comment      string   `json:"comment"`
}

func (t TriageResult) Validate() error {
	if len(t.Labels) == 0 {
		return errors.New("missing labels")
	}
	for i, l := range t.Labels {
		if l == "" {
			return fmt.Errorf("label %d is empty", i)
		}
	}
	if !triagePriorities[t.Priority] {
		return fmt.Errorf("priority %q is not one of critical/high/medium/low", t.Priority)
	}
	if t.Complexity < 1 || t.Complexity > 10 {
		return fmt.Errorf("complexity must be 1-10, got %d", t.Complexity)
	}
	if t.Comment == "" {
		return errors.New("missing comment")
	}
	// AssigneeType is advisory and may be empty.
	return nil
}

// ConflictResolution is the model's suggested merge of a conflicted file.
type ConflictResolution struct {
	ResolvedCode string `json:"resolved_code"`
	Reasoning    string `json:"reasoning"`
}

func (c ConflictResolution) Validate() error {
	if c.ResolvedCode == "" {
		return errors.New("missing resolved_code")
	}
	if c.Reasoning == "" {
		return errors.New("missing reasoning")
	}
	return nil
}
