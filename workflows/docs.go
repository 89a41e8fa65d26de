/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"chainguard.dev/devtools/agents/contract"
	"chainguard.dev/devtools/agents/generate"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

const readmePath = "README.md"

// Document regenerates the repository README after a push to the default
// branch. Pushes to any other ref are ignored. The model output is accepted
// as opaque markdown; the only validation is non-emptiness.
func (e *Engine) Document(ctx context.Context, push Push) error {
	log := clog.FromContext(ctx)

	branch := push.DefaultBranch
	if branch == "" {
		branch = e.defaultBranch
	}
	if push.Ref != "refs/heads/"+branch {
		log.With("ref", push.Ref).Debug("Ignoring push to non-default branch")
		return nil
	}

	gh, err := e.clients.Client(ctx, push.Repo.InstallationID)
	if err != nil {
		return err
	}

	code, fileCount, err := e.gatherSource(ctx, gh, push.Repo)
	if err != nil {
		return err
	}
	if fileCount == 0 {
		log.Info("No source files to document")
		return nil
	}

	raw, err := e.generator.Generate(ctx, generate.Request{
		Prompt:    docsPrompt(code),
		MaxTokens: docsMaxTokens,
	})
	if err != nil {
		return err
	}
	docs, err := contract.CodeBlock(raw)
	if err != nil {
		return err
	}

	if err := e.writeReadme(ctx, gh, push.Repo, docs); err != nil {
		return err
	}

	log.With("files", fileCount).Info("Documentation updated")
	return nil
}

// gatherSource concatenates up to docsMaxFiles source files with path markers.
// A file that fails to read is skipped; the count of files actually read is
// returned.
func (e *Engine) gatherSource(ctx context.Context, gh *github.Client, repo RepoRef) (string, int, error) {
	log := clog.FromContext(ctx)

	tree, _, err := gh.Git.GetTree(ctx, repo.Owner, repo.Name, "HEAD", true)
	if err != nil {
		return "", 0, fmt.Errorf("fetching tree for %s: %w", repo, err)
	}

	var b strings.Builder
	count := 0
	for _, entry := range tree.Entries {
		if count >= docsMaxFiles {
			break
		}
		if entry.GetType() != "blob" || !isSourceFile(entry.GetPath()) {
			continue
		}
		content, err := fileContent(ctx, gh, repo, entry.GetPath(), "")
		if err != nil {
			log.With("file", entry.GetPath()).
				With("error", err).
				Warn("Skipping unreadable source file")
			continue
		}
		fmt.Fprintf(&b, "\n\n// %s\n%s", entry.GetPath(), content)
		count++
	}
	return b.String(), count, nil
}

// writeReadme updates the README in place when it exists, keyed to its
// current blob SHA so a concurrent edit fails the write instead of being
// clobbered, and creates it otherwise.
func (e *Engine) writeReadme(ctx context.Context, gh *github.Client, repo RepoRef, docs string) error {
	fc, _, resp, err := gh.Repositories.GetContents(ctx, repo.Owner, repo.Name, readmePath, nil)
	switch {
	case err == nil && fc != nil:
		_, _, err := gh.Repositories.UpdateFile(ctx, repo.Owner, repo.Name, readmePath, &github.RepositoryContentFileOptions{
			Message: github.Ptr("Update generated documentation"),
			Content: []byte(docs),
			SHA:     github.Ptr(fc.GetSHA()),
		})
		if err != nil {
			return &HostAPIError{Call: "update README", Err: err}
		}
		return nil
	case resp != nil && resp.StatusCode == http.StatusNotFound:
		_, _, err := gh.Repositories.CreateFile(ctx, repo.Owner, repo.Name, readmePath, &github.RepositoryContentFileOptions{
			Message: github.Ptr("Add generated documentation"),
			Content: []byte(docs),
		})
		if err != nil {
			return &HostAPIError{Call: "create README", Err: err}
		}
		return nil
	default:
		if err == nil {
			err = fmt.Errorf("%s is not a file", readmePath)
		}
		return &HostAPIError{Call: "fetch README", Err: err}
	}
}
