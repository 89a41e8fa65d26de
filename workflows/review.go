/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"

	"chainguard.dev/devtools/agents/contract"
	"chainguard.dev/devtools/agents/generate"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// Review analyzes each changed file of a newly opened pull request and
// submits one review per file that drew comments. Files are independent: a
// failed invocation, a malformed response, or a rejected review submission
// skips that file and the loop continues.
func (e *Engine) Review(ctx context.Context, pr PullRequest) error {
	log := clog.FromContext(ctx)

	gh, err := e.clients.Client(ctx, pr.Repo.InstallationID)
	if err != nil {
		return err
	}

	files, err := listChangedFiles(ctx, gh, pr)
	if err != nil {
		return err
	}

	for _, file := range files {
		if file.GetPatch() == "" {
			continue
		}
		if err := e.reviewFile(ctx, gh, pr, file); err != nil {
			log.With("file", file.GetFilename()).
				With("error", err).
				Error("Skipping file in review")
		}
	}

	log.With("files", len(files)).Info("Code review completed")
	return nil
}

func (e *Engine) reviewFile(ctx context.Context, gh *github.Client, pr PullRequest, file *github.CommitFile) error {
	raw, err := e.generator.Generate(ctx, generate.Request{
		Prompt:    reviewPrompt(file.GetFilename(), file.GetPatch()),
		MaxTokens: reviewMaxTokens,
	})
	if err != nil {
		return err
	}

	review, err := contract.Decode[contract.ReviewResult](raw)
	if err != nil {
		return err
	}
	if len(review.Comments) == 0 {
		return nil
	}

	comments := make([]*github.DraftReviewComment, 0, len(review.Comments))
	for _, c := range review.Comments {
		comments = append(comments, &github.DraftReviewComment{
			Path: github.Ptr(c.Path),
			Line: github.Ptr(c.Line),
			Side: github.Ptr("RIGHT"),
			Body: github.Ptr(c.Body),
		})
	}

	_, _, err = gh.PullRequests.CreateReview(ctx, pr.Repo.Owner, pr.Repo.Name, pr.Number, &github.PullRequestReviewRequest{
		Event:    github.Ptr("COMMENT"),
		Body:     github.Ptr(review.Summary),
		Comments: comments,
	})
	if err != nil {
		return &HostAPIError{Call: "create review", Err: err}
	}
	return nil
}
