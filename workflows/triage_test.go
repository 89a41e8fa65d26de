/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"chainguard.dev/devtools/agents/generate"
)

const triageResponse = `{
	"labels": ["bug"],
	"priority": "medium",
	"complexity": 3,
	"assignee_type": "backend-dev",
	"comment": "Likely a missing nil check in the input handler."
}`

func TestTriageSkipsUnmappedAssignee(t *testing.T) {
	mux := http.NewServeMux()
	labelCalls, commentCalls := 0, 0
	mux.HandleFunc("POST /repos/octo/demo/issues/5/labels", func(w http.ResponseWriter, r *http.Request) {
		labelCalls++
		assertBody(t, r, `"bug"`)
		fmt.Fprint(w, `[{"name": "bug"}]`)
	})
	mux.HandleFunc("POST /repos/octo/demo/issues/5/assignees", func(w http.ResponseWriter, _ *http.Request) {
		t.Error("assignment attempted with no login mapped")
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("POST /repos/octo/demo/issues/5/comments", func(w http.ResponseWriter, r *http.Request) {
		commentCalls++
		assertBody(t, r, "missing nil check")
		fmt.Fprint(w, `{"id": 1}`)
	})

	gen := &fakeGenerator{fn: func(req generate.Request) (string, error) {
		assertPromptContains(t, req, "NPE on null input")
		return triageResponse, nil
	}}

	e := New(fixedClients{newFakeGitHub(t, mux)}, gen)
	err := e.Triage(context.Background(), Issue{
		Repo:   testRepo,
		Number: 5,
		Title:  "NPE on null input",
		Body:   "Crashes when the payload field is null.",
	})
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if labelCalls != 1 || commentCalls != 1 {
		t.Errorf("got %d label calls and %d comment calls, want 1 and 1", labelCalls, commentCalls)
	}
}

func TestTriageAssignsMappedLogin(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/demo/issues/5/labels", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"name": "bug"}]`)
	})
	assigned := 0
	mux.HandleFunc("POST /repos/octo/demo/issues/5/assignees", func(w http.ResponseWriter, r *http.Request) {
		assigned++
		assertBody(t, r, `"alice"`)
		fmt.Fprint(w, `{}`)
	})
	mux.HandleFunc("POST /repos/octo/demo/issues/5/comments", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"id": 1}`)
	})

	gen := &fakeGenerator{fn: func(generate.Request) (string, error) {
		return triageResponse, nil
	}}

	e := New(fixedClients{newFakeGitHub(t, mux)}, gen,
		WithAssigneeLogins(map[string]string{"backend-dev": "alice"}))
	err := e.Triage(context.Background(), Issue{Repo: testRepo, Number: 5, Title: "NPE on null input"})
	if err != nil {
		t.Fatalf("Triage() error = %v", err)
	}
	if assigned != 1 {
		t.Errorf("got %d assignment calls, want 1", assigned)
	}
}

func TestTriageLabelFailureDoesNotBlockComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /repos/octo/demo/issues/5/labels", func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	})
	commented := 0
	mux.HandleFunc("POST /repos/octo/demo/issues/5/comments", func(w http.ResponseWriter, _ *http.Request) {
		commented++
		fmt.Fprint(w, `{"id": 1}`)
	})

	gen := &fakeGenerator{fn: func(generate.Request) (string, error) {
		return `{"labels": ["bug"], "priority": "low", "complexity": 1, "comment": "noted"}`, nil
	}}

	e := New(fixedClients{newFakeGitHub(t, mux)}, gen)
	err := e.Triage(context.Background(), Issue{Repo: testRepo, Number: 5, Title: "broken"})
	if err == nil {
		t.Fatal("Triage() = nil, want the label failure reported")
	}
	if commented != 1 {
		t.Errorf("got %d comment calls, want 1 (mutations are independent)", commented)
	}
}

func TestTriageMalformedResponse(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(_ http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected API call: %s %s", r.Method, r.URL.Path)
	})

	gen := &fakeGenerator{fn: func(generate.Request) (string, error) {
		return `{"labels": ["bug"], "priority": "urgent", "complexity": 3, "comment": "x"}`, nil
	}}

	e := New(fixedClients{newFakeGitHub(t, mux)}, gen)
	err := e.Triage(context.Background(), Issue{Repo: testRepo, Number: 5, Title: "broken"})
	if err == nil {
		t.Fatal("Triage() = nil, want shape violation for unknown priority")
	}
}
