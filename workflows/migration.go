/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"
	"fmt"
	"strings"
	"time"

	"chainguard.dev/devtools/agents/contract"
	"chainguard.dev/devtools/agents/generate"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
	"golang.org/x/sync/errgroup"
)

// migrationEdit is one file's rewritten content, plus the blob SHA of the
// version it replaces so the commit is a conditional update.
type migrationEdit struct {
	path    string
	blobSHA string
	content string
}

// Migrate rewrites every candidate source file from one framework to another
// on a fresh branch and opens a pull request with the result.
//
// Ordering: all model invocations complete before the branch is created, all
// commit attempts complete before the pull request is opened. Per-file
// invocation failures exclude that file from the plan; per-file commit
// failures leave the branch and its earlier commits in place for inspection.
// Both kinds of failure are reported in the returned report, not hidden.
func (e *Engine) Migrate(ctx context.Context, req MigrationRequest) (*MigrationReport, error) {
	log := clog.FromContext(ctx)
	log.With("from", req.FromFramework).
		With("to", req.ToFramework).
		Info("Starting migration")

	gh, err := e.clients.Client(ctx, req.Repo.InstallationID)
	if err != nil {
		return nil, err
	}

	candidates, err := e.migrationCandidates(ctx, gh, req)
	if err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no %s files found to migrate in %s",
			migrationExtension(req.FromFramework), req.Repo)
	}

	edits, failed := e.migrateFiles(ctx, gh, req, candidates)
	if len(edits) == 0 {
		return nil, fmt.Errorf("all %d candidate files failed to migrate", len(candidates))
	}

	branch := fmt.Sprintf("migrate-%s-to-%s-%d", req.FromFramework, req.ToFramework, time.Now().UnixNano())
	if err := e.createBranch(ctx, gh, req.Repo, branch); err != nil {
		return nil, err
	}

	// Commits are serialized; the host gives no ordering guarantee for
	// concurrent commits to one branch.
	committed := 0
	for _, edit := range edits {
		opts := &github.RepositoryContentFileOptions{
			Message: github.Ptr(fmt.Sprintf("Migrate %s to %s", edit.path, req.ToFramework)),
			Content: []byte(edit.content),
			SHA:     github.Ptr(edit.blobSHA),
			Branch:  github.Ptr(branch),
		}
		if _, _, err := gh.Repositories.UpdateFile(ctx, req.Repo.Owner, req.Repo.Name, edit.path, opts); err != nil {
			log.With("file", edit.path).
				With("error", err).
				Error("Commit failed, leaving branch for inspection")
			failed = append(failed, edit.path)
			continue
		}
		committed++
	}
	if committed == 0 {
		return nil, &HostAPIError{
			Call: "commit migrated files",
			Err:  fmt.Errorf("no file could be committed to %s", branch),
		}
	}

	pr, _, err := gh.PullRequests.Create(ctx, req.Repo.Owner, req.Repo.Name, &github.NewPullRequest{
		Title: github.Ptr(fmt.Sprintf("Migrate from %s to %s", req.FromFramework, req.ToFramework)),
		Head:  github.Ptr(branch),
		Base:  github.Ptr(e.defaultBranch),
		Body: github.Ptr(fmt.Sprintf("Automated migration generated by the code migrator.\n\n%d files migrated.",
			committed)),
	})
	if err != nil {
		return nil, &HostAPIError{Call: "create pull request", Err: err}
	}

	log.With("pr", pr.GetHTMLURL()).
		With("migrated", committed).
		With("failed", len(failed)).
		Info("Migration complete")

	return &MigrationReport{
		PullRequestURL: pr.GetHTMLURL(),
		FilesMigrated:  committed,
		FailedFiles:    failed,
	}, nil
}

// migrationCandidates lists the blobs whose extension matches the source
// framework.
func (e *Engine) migrationCandidates(ctx context.Context, gh *github.Client, req MigrationRequest) ([]*github.TreeEntry, error) {
	tree, _, err := gh.Git.GetTree(ctx, req.Repo.Owner, req.Repo.Name, "HEAD", true)
	if err != nil {
		return nil, fmt.Errorf("fetching tree for %s: %w", req.Repo, err)
	}
	ext := migrationExtension(req.FromFramework)
	var candidates []*github.TreeEntry
	for _, entry := range tree.Entries {
		if entry.GetType() == "blob" && strings.HasSuffix(entry.GetPath(), ext) {
			candidates = append(candidates, entry)
		}
	}
	return candidates, nil
}

// migrateFiles runs one model invocation per candidate with bounded
// parallelism. Failures are isolated per file: the slot stays nil and the
// path is recorded, siblings keep running. The returned edits preserve tree
// order.
func (e *Engine) migrateFiles(ctx context.Context, gh *github.Client, req MigrationRequest, candidates []*github.TreeEntry) ([]migrationEdit, []string) {
	log := clog.FromContext(ctx)

	results := make([]*migrationEdit, len(candidates))
	var g errgroup.Group
	g.SetLimit(fileParallelism)

	for i, entry := range candidates {
		g.Go(func() error {
			edit, err := e.migrateFile(ctx, gh, req, entry)
			if err != nil {
				log.With("file", entry.GetPath()).
					With("error", err).
					Error("Excluding file from migration")
				return nil
			}
			results[i] = edit
			return nil
		})
	}
	// Goroutines never return errors; Wait is only a barrier.
	_ = g.Wait()

	var edits []migrationEdit
	var failed []string
	for i, r := range results {
		if r == nil {
			failed = append(failed, candidates[i].GetPath())
			continue
		}
		edits = append(edits, *r)
	}
	return edits, failed
}

func (e *Engine) migrateFile(ctx context.Context, gh *github.Client, req MigrationRequest, entry *github.TreeEntry) (*migrationEdit, error) {
	content, err := fileContent(ctx, gh, req.Repo, entry.GetPath(), "")
	if err != nil {
		return nil, err
	}

	raw, err := e.generator.Generate(ctx, generate.Request{
		Prompt:    migratePrompt(req.FromFramework, req.ToFramework, content),
		MaxTokens: migrationMaxTokens,
	})
	if err != nil {
		return nil, err
	}

	migrated, err := contract.CodeBlock(raw)
	if err != nil {
		return nil, err
	}
	return &migrationEdit{
		path:    entry.GetPath(),
		blobSHA: entry.GetSHA(),
		content: migrated,
	}, nil
}

// createBranch creates the migration branch off the default branch head.
func (e *Engine) createBranch(ctx context.Context, gh *github.Client, repo RepoRef, branch string) error {
	base, _, err := gh.Git.GetRef(ctx, repo.Owner, repo.Name, "heads/"+e.defaultBranch)
	if err != nil {
		return &HostAPIError{Call: "resolve default branch", Err: err}
	}
	_, _, err = gh.Git.CreateRef(ctx, repo.Owner, repo.Name, github.CreateRef{
		Ref: "refs/heads/" + branch,
		SHA: base.GetObject().GetSHA(),
	})
	if err != nil {
		return &HostAPIError{Call: "create branch", Err: err}
	}
	return nil
}
