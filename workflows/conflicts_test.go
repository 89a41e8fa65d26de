/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"

	"chainguard.dev/devtools/agents/generate"
)

func conflictPR(state string) string {
	return fmt.Sprintf(`{
		"number": 3,
		"mergeable_state": %q,
		"head": {"ref": "feature"},
		"base": {"ref": "main"}
	}`, state)
}

func TestResolveConflictsCleanPR(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/demo/pulls/3", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, conflictPR("clean"))
	})
	mux.HandleFunc("POST /repos/octo/demo/issues/3/comments", func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("comment posted on a clean PR")
	})

	gen := &fakeGenerator{fn: func(generate.Request) (string, error) {
		return "", fmt.Errorf("generator must not run")
	}}

	e := New(fixedClients{newFakeGitHub(t, mux)}, gen)
	if err := e.ResolveConflicts(context.Background(), PullRequest{Repo: testRepo, Number: 3}); err != nil {
		t.Fatalf("ResolveConflicts() error = %v", err)
	}
	if gen.calls != 0 {
		t.Errorf("generator called %d times, want 0", gen.calls)
	}
}

func TestResolveConflictsPostsOneAggregatedComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/demo/pulls/3", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, conflictPR("dirty"))
	})
	mux.HandleFunc("GET /repos/octo/demo/pulls/3/files", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[
			{"filename": "a.go", "status": "modified"},
			{"filename": "new.go", "status": "added"},
			{"filename": "c.go", "status": "modified"}
		]`)
	})
	for _, p := range []string{"a.go", "c.go"} {
		mux.HandleFunc("GET /repos/octo/demo/contents/"+p, func(w http.ResponseWriter, r *http.Request) {
			content := "base of " + p
			if r.URL.Query().Get("ref") == "feature" {
				content = "head of " + p
			}
			fmt.Fprint(w, contentsJSON(p, content, "sha-"+p))
		})
	}
	var comments []string
	mux.HandleFunc("POST /repos/octo/demo/issues/3/comments", func(w http.ResponseWriter, r *http.Request) {
		b, err := io.ReadAll(r.Body)
		if err != nil {
			t.Fatal(err)
		}
		comments = append(comments, string(b))
		fmt.Fprint(w, `{"id": 1}`)
	})

	gen := &fakeGenerator{fn: func(req generate.Request) (string, error) {
		if strings.Contains(req.Prompt, "head of c.go") {
			// c.go draws prose, which fails the shape and excludes the file.
			return "These changes look hard to merge.", nil
		}
		return `{"resolved_code": "merged a.go", "reasoning": "kept both changes"}`, nil
	}}

	e := New(fixedClients{newFakeGitHub(t, mux)}, gen)
	if err := e.ResolveConflicts(context.Background(), PullRequest{Repo: testRepo, Number: 3}); err != nil {
		t.Fatalf("ResolveConflicts() error = %v", err)
	}

	if len(comments) != 1 {
		t.Fatalf("got %d comments, want exactly 1", len(comments))
	}
	for _, frag := range []string{"AI Conflict Resolution", "### a.go", "merged a.go", "kept both changes"} {
		if !strings.Contains(comments[0], frag) {
			t.Errorf("comment missing %q:\n%s", frag, comments[0])
		}
	}
	if strings.Contains(comments[0], "c.go") {
		t.Errorf("comment includes the excluded file:\n%s", comments[0])
	}
	// Only the two modified files reach the model.
	if gen.calls != 2 {
		t.Errorf("generator called %d times, want 2", gen.calls)
	}
}

func TestResolveConflictsNothingResolvedNoComment(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/demo/pulls/3", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, conflictPR("dirty"))
	})
	mux.HandleFunc("GET /repos/octo/demo/pulls/3/files", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `[{"filename": "a.go", "status": "modified"}]`)
	})
	mux.HandleFunc("GET /repos/octo/demo/contents/a.go", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, contentsJSON("a.go", "content", "sha-a"))
	})
	mux.HandleFunc("POST /repos/octo/demo/issues/3/comments", func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("comment posted with zero resolutions")
	})

	gen := &fakeGenerator{fn: func(generate.Request) (string, error) {
		return "", fmt.Errorf("model unavailable")
	}}

	e := New(fixedClients{newFakeGitHub(t, mux)}, gen)
	if err := e.ResolveConflicts(context.Background(), PullRequest{Repo: testRepo, Number: 3}); err != nil {
		t.Fatalf("ResolveConflicts() error = %v", err)
	}
}
