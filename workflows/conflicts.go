/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/devtools/agents/contract"
	"chainguard.dev/devtools/agents/generate"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/sync/errgroup"
)

// fileResolution pairs a conflicted file with the model's suggested merge.
type fileResolution struct {
	path       string
	resolution contract.ConflictResolution
}

// ResolveConflicts advises on merge conflicts when a pull request is
// synchronized. It only runs when the host's own merge simulation reports the
// PR dirty; this system never computes merges itself, and it never commits a
// resolution - the suggestions land in a single aggregated comment and the
// human merge decision stays authoritative.
func (e *Engine) ResolveConflicts(ctx context.Context, pr PullRequest) error {
	log := clog.FromContext(ctx)

	gh, err := e.clients.Client(ctx, pr.Repo.InstallationID)
	if err != nil {
		return err
	}

	full, _, err := gh.PullRequests.Get(ctx, pr.Repo.Owner, pr.Repo.Name, pr.Number)
	if err != nil {
		return fmt.Errorf("fetching %s#%d: %w", pr.Repo, pr.Number, err)
	}
	if full.GetMergeableState() != "dirty" {
		log.With("mergeable_state", full.GetMergeableState()).
			Debug("No conflicts to resolve")
		return nil
	}

	files, err := listChangedFiles(ctx, gh, pr)
	if err != nil {
		return err
	}

	resolutions := e.resolveFiles(ctx, gh, pr.Repo, files, full.GetHead().GetRef(), full.GetBase().GetRef())
	if len(resolutions) == 0 {
		log.Info("No conflicts could be resolved")
		return nil
	}

	body := conflictCommentBody(resolutions)
	if _, _, err := gh.Issues.CreateComment(ctx, pr.Repo.Owner, pr.Repo.Name, pr.Number, &github.IssueComment{
		Body: github.Ptr(body),
	}); err != nil {
		return &HostAPIError{Call: "create conflict comment", Err: err}
	}

	log.With("resolved", len(resolutions)).Info("Posted conflict resolution suggestions")
	return nil
}

// resolveFiles asks the model to merge each modified file, with bounded
// parallelism. A failed file is excluded and logged; the returned slice
// preserves the host's file order.
func (e *Engine) resolveFiles(ctx context.Context, gh *github.Client, repo RepoRef, files []*github.CommitFile, headRef, baseRef string) []fileResolution {
	log := clog.FromContext(ctx)

	results := make([]*fileResolution, len(files))
	var g errgroup.Group
	g.SetLimit(fileParallelism)

	for i, file := range files {
		if file.GetStatus() != "modified" {
			continue
		}
		g.Go(func() error {
			res, err := e.resolveFile(ctx, gh, repo, file.GetFilename(), headRef, baseRef)
			if err != nil {
				log.With("file", file.GetFilename()).
					With("error", err).
					Error("Excluding file from conflict resolution")
				return nil
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	var resolutions []fileResolution
	for _, r := range results {
		if r != nil {
			resolutions = append(resolutions, *r)
		}
	}
	return resolutions
}

func (e *Engine) resolveFile(ctx context.Context, gh *github.Client, repo RepoRef, path, headRef, baseRef string) (*fileResolution, error) {
	headContent, err := fileContent(ctx, gh, repo, path, headRef)
	if err != nil {
		return nil, err
	}
	baseContent, err := fileContent(ctx, gh, repo, path, baseRef)
	if err != nil {
		return nil, err
	}

	raw, err := e.generator.Generate(ctx, generate.Request{
		Prompt:    conflictPrompt(baseContent, headContent),
		MaxTokens: conflictMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	resolution, err := contract.Decode[contract.ConflictResolution](raw)
	if err != nil {
		return nil, err
	}
	return &fileResolution{path: path, resolution: resolution}, nil
}

// conflictCommentBody renders the single aggregated advisory comment.
func conflictCommentBody(resolutions []fileResolution) string {
	var b strings.Builder
	b.WriteString("## AI Conflict Resolution\n\n")
	b.WriteString("I've analyzed the merge conflicts and here are my suggestions:\n")
	for _, r := range resolutions {
		fmt.Fprintf(&b, "\n### %s\n```\n%s\n```\n**Reasoning:** %s\n",
			r.path, r.resolution.ResolvedCode, r.resolution.Reasoning)
	}
	return b.String()
}
