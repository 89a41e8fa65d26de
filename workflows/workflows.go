/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"
	"fmt"
	"unicode/utf8"

	"chainguard.dev/devtools/agents/generate"
	"github.com/google/go-github/v84/github"
)

// Output-token budgets per workflow. Migration's budget applies per file.
const (
	reviewMaxTokens    = 4000
	docsMaxTokens      = 8000
	triageMaxTokens    = 2000
	migrationMaxTokens = 8000
	conflictMaxTokens  = 8000
)

// docsMaxFiles caps how many source files the documentation workflow reads,
// keeping the prompt inside the adapter's bound.
const docsMaxFiles = 20

// fileParallelism bounds concurrent per-file model invocations within one
// workflow execution.
const fileParallelism = 4

// RepoRef identifies the repository an event belongs to. It is derived once
// per event and passed by value to every downstream call.
type RepoRef struct {
	Owner          string
	Name           string
	InstallationID int64
}

func (r RepoRef) String() string {
	return r.Owner + "/" + r.Name
}

// PullRequest identifies the pull request an event targets.
type PullRequest struct {
	Repo   RepoRef
	Number int
}

// Push describes a push event.
type Push struct {
	Repo          RepoRef
	Ref           string
	DefaultBranch string
}

// Issue describes a newly opened issue.
type Issue struct {
	Repo   RepoRef
	Number int
	Title  string
	Body   string
}

// MigrationRequest describes one framework-migration run.
type MigrationRequest struct {
	Repo          RepoRef
	FromFramework string
	ToFramework   string
}

// MigrationReport summarizes a completed migration run.
type MigrationReport struct {
	PullRequestURL string
	FilesMigrated  int
	FailedFiles    []string
}

// HostAPIError reports a mutation call the source-control host rejected.
type HostAPIError struct {
	Call string
	Err  error
}

func (e *HostAPIError) Error() string {
	return fmt.Sprintf("%s: %v", e.Call, e.Err)
}

func (e *HostAPIError) Unwrap() error { return e.Err }

// ClientSource mints a GitHub client scoped to one installation for the
// duration of one event.
type ClientSource interface {
	Client(ctx context.Context, installationID int64) (*github.Client, error)
}

// Engine executes workflows. All fields are set at construction and never
// mutated afterward, so one Engine serves every concurrent event task.
type Engine struct {
	clients   ClientSource
	generator generate.Generator

	// assigneeLogins maps the model's suggested assignee type (backend,
	// frontend, devops, ...) to a real login. Types with no mapping are
	// skipped, not errors.
	assigneeLogins map[string]string

	// defaultBranch is the fallback branch name when an event does not
	// carry the repository's default branch.
	defaultBranch string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithAssigneeLogins sets the assignee-type to login mapping used by triage.
func WithAssigneeLogins(m map[string]string) EngineOption {
	return func(e *Engine) {
		e.assigneeLogins = m
	}
}

// WithDefaultBranch overrides the fallback default branch name.
func WithDefaultBranch(branch string) EngineOption {
	return func(e *Engine) {
		e.defaultBranch = branch
	}
}

// New creates a workflow Engine.
func New(clients ClientSource, generator generate.Generator, opts ...EngineOption) *Engine {
	e := &Engine{
		clients:       clients,
		generator:     generator,
		defaultBranch: "main",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// listChangedFiles returns every file of a pull request, in the host's order.
func listChangedFiles(ctx context.Context, gh *github.Client, pr PullRequest) ([]*github.CommitFile, error) {
	opts := &github.ListOptions{PerPage: 100}
	var all []*github.CommitFile
	for {
		files, resp, err := gh.PullRequests.ListFiles(ctx, pr.Repo.Owner, pr.Repo.Name, pr.Number, opts)
		if err != nil {
			return nil, fmt.Errorf("listing changed files for %s#%d: %w", pr.Repo, pr.Number, err)
		}
		all = append(all, files...)
		if resp.NextPage == 0 {
			return all, nil
		}
		opts.Page = resp.NextPage
	}
}

// fileContent fetches one file's decoded content at the given ref
// (empty ref means the repository's default branch).
func fileContent(ctx context.Context, gh *github.Client, repo RepoRef, path, ref string) (string, error) {
	var opts *github.RepositoryContentGetOptions
	if ref != "" {
		opts = &github.RepositoryContentGetOptions{Ref: ref}
	}
	fc, _, _, err := gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, path, opts)
	if err != nil {
		return "", fmt.Errorf("fetching %s@%s: %w", path, ref, err)
	}
	if fc == nil {
		return "", fmt.Errorf("%s is a directory, not a file", path)
	}
	content, err := fc.GetContent()
	if err != nil {
		return "", fmt.Errorf("decoding %s@%s: %w", path, ref, err)
	}
	return content, nil
}

// truncate caps s at n bytes, cutting only at a rune boundary so the prompt
// never carries an invalid UTF-8 tail. Prompts assembled from repository
// content must stay within the adapter's bound; the tail is the least
// informative part of a patch or file, so it is the part that goes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
