/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package webhook

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"chainguard.dev/devtools/metrics"
	"chainguard.dev/devtools/workflows"
	"github.com/chainguard-dev/clog"
	"github.com/google/go-github/v84/github"
)

// Dispatcher is the workflow surface the router drives. *workflows.Engine
// implements it.
type Dispatcher interface {
	Review(ctx context.Context, pr workflows.PullRequest) error
	ResolveConflicts(ctx context.Context, pr workflows.PullRequest) error
	Document(ctx context.Context, push workflows.Push) error
	Triage(ctx context.Context, issue workflows.Issue) error
}

// Router is the HTTP handler for GitHub webhook deliveries. Each matched
// event runs as its own goroutine; the delivery response never waits for the
// workflow.
type Router struct {
	secret     []byte
	dispatcher Dispatcher

	inflight sync.WaitGroup
}

func NewRouter(secret []byte, d Dispatcher) *Router {
	return &Router{secret: secret, dispatcher: d}
}

func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	log := clog.FromContext(r.Context())

	payload, err := github.ValidatePayload(r, rt.secret)
	if err != nil {
		// The payload is untrusted at this point, so it stays out of the log.
		metrics.DeliveriesRejected.Inc()
		log.With("error", err).Error("Dropping delivery with bad signature")
		http.Error(w, "signature verification failed", http.StatusInternalServerError)
		return
	}

	eventType := github.WebHookType(r)
	metrics.DeliveriesReceived.WithLabelValues(eventType).Inc()

	event, err := github.ParseWebHook(eventType, payload)
	if err != nil {
		log.With("event", eventType).With("error", err).Error("Failed to parse delivery")
		http.Error(w, "unparseable payload", http.StatusBadRequest)
		return
	}

	// Workflows outlive the delivery response, so they run on a context
	// detached from the request's cancellation.
	ctx := clog.WithLogger(context.WithoutCancel(r.Context()), log.With(
		"event", eventType,
		"delivery", github.DeliveryID(r)))

	switch e := event.(type) {
	case *github.PullRequestEvent:
		pr := workflows.PullRequest{
			Repo:   repoRef(e.GetRepo(), e.GetInstallation()),
			Number: e.GetNumber(),
		}
		switch e.GetAction() {
		case "opened":
			rt.dispatch(ctx, "review", func(ctx context.Context) error {
				return rt.dispatcher.Review(ctx, pr)
			})
		case "synchronize":
			rt.dispatch(ctx, "conflicts", func(ctx context.Context) error {
				return rt.dispatcher.ResolveConflicts(ctx, pr)
			})
		}

	case *github.PushEvent:
		push := workflows.Push{
			Repo:          pushRepoRef(e),
			Ref:           e.GetRef(),
			DefaultBranch: e.GetRepo().GetDefaultBranch(),
		}
		rt.dispatch(ctx, "documentation", func(ctx context.Context) error {
			return rt.dispatcher.Document(ctx, push)
		})

	case *github.IssuesEvent:
		if e.GetAction() == "opened" {
			issue := workflows.Issue{
				Repo:   repoRef(e.GetRepo(), e.GetInstallation()),
				Number: e.GetIssue().GetNumber(),
				Title:  e.GetIssue().GetTitle(),
				Body:   e.GetIssue().GetBody(),
			}
			rt.dispatch(ctx, "triage", func(ctx context.Context) error {
				return rt.dispatcher.Triage(ctx, issue)
			})
		}

	default:
		log.With("event", eventType).Debug("Ignoring unhandled event kind")
	}

	fmt.Fprint(w, "OK")
}

// dispatch starts one workflow goroutine. Workflow errors terminate the
// event, not the process: they are counted and logged here and propagate no
// further.
func (rt *Router) dispatch(ctx context.Context, workflow string, run func(context.Context) error) {
	metrics.WorkflowsDispatched.WithLabelValues(workflow).Inc()
	rt.inflight.Add(1)
	go func() {
		defer rt.inflight.Done()
		if err := run(ctx); err != nil {
			metrics.WorkflowFailures.WithLabelValues(workflow).Inc()
			clog.FromContext(ctx).With("workflow", workflow).With("error", err).Error("Workflow failed")
		}
	}()
}

// Drain blocks until every dispatched workflow has finished. The server calls
// this during shutdown.
func (rt *Router) Drain() {
	rt.inflight.Wait()
}

func repoRef(repo *github.Repository, inst *github.Installation) workflows.RepoRef {
	return workflows.RepoRef{
		Owner:          repo.GetOwner().GetLogin(),
		Name:           repo.GetName(),
		InstallationID: inst.GetID(),
	}
}

// pushRepoRef handles the push event's divergent repository shape.
func pushRepoRef(e *github.PushEvent) workflows.RepoRef {
	return workflows.RepoRef{
		Owner:          e.GetRepo().GetOwner().GetLogin(),
		Name:           e.GetRepo().GetName(),
		InstallationID: e.GetInstallation().GetID(),
	}
}
