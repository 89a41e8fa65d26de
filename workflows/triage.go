/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package workflows

import (
	"context"
	"errors"

	"chainguard.dev/devtools/agents/contract"
	"chainguard.dev/devtools/agents/generate"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// Triage classifies a newly opened issue and applies three independent
// mutations: labels, an optional assignee, and an analysis comment. A failure
// in any one mutation never blocks the other two; the errors are joined and
// reported together.
func (e *Engine) Triage(ctx context.Context, issue Issue) error {
	log := clog.FromContext(ctx)

	gh, err := e.clients.Client(ctx, issue.Repo.InstallationID)
	if err != nil {
		return err
	}

	raw, err := e.generator.Generate(ctx, generate.Request{
		Prompt:    triagePrompt(issue.Title, issue.Body),
		MaxTokens: triageMaxTokens,
	})
	if err != nil {
		return err
	}
	triage, err := contract.Decode[contract.TriageResult](raw)
	if err != nil {
		return err
	}

	var errs []error

	if _, _, err := gh.Issues.AddLabelsToIssue(ctx, issue.Repo.Owner, issue.Repo.Name, issue.Number, triage.Labels); err != nil {
		errs = append(errs, &HostAPIError{Call: "add labels", Err: err})
	}

	if login, ok := e.assigneeLogins[triage.AssigneeType]; ok {
		if _, _, err := gh.Issues.AddAssignees(ctx, issue.Repo.Owner, issue.Repo.Name, issue.Number, []string{login}); err != nil {
			errs = append(errs, &HostAPIError{Call: "add assignee", Err: err})
		}
	} else if triage.AssigneeType != "" {
		log.With("assignee_type", triage.AssigneeType).
			Info("No login mapped for assignee type, skipping assignment")
	}

	if _, _, err := gh.Issues.CreateComment(ctx, issue.Repo.Owner, issue.Repo.Name, issue.Number, &github.IssueComment{
		Body: github.Ptr(triage.Comment),
	}); err != nil {
		errs = append(errs, &HostAPIError{Call: "create comment", Err: err})
	}

	if len(errs) == 0 {
		log.With("labels", len(triage.Labels)).
			With("priority", triage.Priority).
			Info("Issue triaged")
	}
	return errors.Join(errs...)
}
