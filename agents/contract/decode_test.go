/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package contract

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeReviewResult(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    ReviewResult
		wantErr bool
	}{{
		name:  "plain json",
		input: `{"summary": "looks fine", "comments": []}`,
		want:  ReviewResult{Summary: "looks fine", Comments: []ReviewComment{}},
	}, {
		name: "fenced json block",
		input: "Here is my review:\n```json\n" +
			`{"summary": "one issue", "comments": [{"path": "main.go", "line": 12, "body": "unchecked error"}]}` +
			"\n```\nLet me know if you need more detail.",
		want: ReviewResult{
			Summary:  "one issue",
			Comments: []ReviewComment{{Path: "main.go", Line: 12, Body: "unchecked error"}},
		},
	}, {
		name: "generic fence",
		input: "```\n" +
			`{"summary": "ok", "comments": []}` +
			"\n```",
		want: ReviewResult{Summary: "ok", Comments: []ReviewComment{}},
	}, {
		name:  "leading prose without fence",
		input: `Sure! {"summary": "ok", "comments": []}`,
		want:  ReviewResult{Summary: "ok", Comments: []ReviewComment{}},
	}, {
		name:    "trailing prose without fence",
		input:   `{"summary": "ok", "comments": []} Hope that helps!`,
		wantErr: true,
	}, {
		name:    "prose on both sides without fence",
		input:   `Sure! {"summary": "ok", "comments": []} Hope that helps!`,
		wantErr: true,
	}, {
		name:    "missing summary",
		input:   `{"comments": [{"path": "a.go", "line": 1, "body": "x"}]}`,
		wantErr: true,
	}, {
		name:    "comment missing path",
		input:   `{"summary": "s", "comments": [{"line": 1, "body": "x"}]}`,
		wantErr: true,
	}, {
		name:    "comment with non-positive line",
		input:   `{"summary": "s", "comments": [{"path": "a.go", "line": 0, "body": "x"}]}`,
		wantErr: true,
	}, {
		name:    "wrong type for line",
		input:   `{"summary": "s", "comments": [{"path": "a.go", "line": "twelve", "body": "x"}]}`,
		wantErr: true,
	}, {
		name:    "truncated json",
		input:   `{"summary": "s", "comments": [{"path": "a.go"`,
		wantErr: true,
	}, {
		name:    "pure prose",
		input:   "I could not produce a review for this file.",
		wantErr: true,
	}, {
		name:    "empty fenced block",
		input:   "```json\n```",
		wantErr: true,
	}, {
		name:    "empty input",
		input:   "",
		wantErr: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[ReviewResult](tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode() = %+v, want error", got)
				}
				var ve *ViolationError
				if !errors.As(err, &ve) {
					t.Fatalf("Decode() error = %v, want *ViolationError", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeTriageResult(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TriageResult
		wantErr bool
	}{{
		name: "complete result",
		input: `{"labels": ["bug"], "priority": "medium", "complexity": 5,` +
			` "assignee_type": "backend", "comment": "Null check missing."}`,
		want: TriageResult{
			Labels:       []string{"bug"},
			Priority:     "medium",
			Complexity:   5,
			AssigneeType: "backend",
			Comment:      "Null check missing.",
		},
	}, {
		name: "empty assignee type is allowed",
		input: `{"labels": ["question"], "priority": "low", "complexity": 1,` +
			` "assignee_type": "", "comment": "Needs clarification."}`,
		want: TriageResult{
			Labels:     []string{"question"},
			Priority:   "low",
			Complexity: 1,
			Comment:    "Needs clarification.",
		},
	}, {
		name:    "unknown priority",
		input:   `{"labels": ["bug"], "priority": "urgent", "complexity": 5, "comment": "c"}`,
		wantErr: true,
	}, {
		name:    "complexity out of range",
		input:   `{"labels": ["bug"], "priority": "high", "complexity": 11, "comment": "c"}`,
		wantErr: true,
	}, {
		name:    "no labels",
		input:   `{"labels": [], "priority": "high", "complexity": 3, "comment": "c"}`,
		wantErr: true,
	}, {
		name:    "missing comment",
		input:   `{"labels": ["bug"], "priority": "high", "complexity": 3}`,
		wantErr: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode[TriageResult](tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Decode() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeConflictResolution(t *testing.T) {
	got, err := Decode[ConflictResolution]("```json\n" +
		`{"resolved_code": "package main", "reasoning": "kept both changes"}` +
		"\n```")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	want := ConflictResolution{ResolvedCode: "package main", Reasoning: "kept both changes"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Decode() mismatch (-want +got):\n%s", diff)
	}

	if _, err := Decode[ConflictResolution](`{"resolved_code": "x"}`); err == nil {
		t.Error("Decode() with missing reasoning: want error")
	}
	if _, err := Decode[ConflictResolution](`{"reasoning": "y"}`); err == nil {
		t.Error("Decode() with missing resolved_code: want error")
	}
}

func TestCodeBlock(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{{
		name:  "bare code",
		input: "package main\n\nfunc main() {}",
		want:  "package main\n\nfunc main() {}",
	}, {
		name:  "fenced with language tag",
		input: "```go\npackage main\n```",
		want:  "package main",
	}, {
		name:  "fenced without language tag",
		input: "```\nconst x = 1\n```",
		want:  "const x = 1",
	}, {
		name:  "surrounding whitespace",
		input: "\n\n  # Title\n\nBody text.\n\n",
		want:  "# Title\n\nBody text.",
	}, {
		name:    "empty",
		input:   "",
		wantErr: true,
	}, {
		name:    "fence around nothing",
		input:   "```go\n```",
		wantErr: true,
	}}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CodeBlock(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("CodeBlock() = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CodeBlock() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CodeBlock() = %q, want %q", got, tt.want)
			}
		})
	}
}
