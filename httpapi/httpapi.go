/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package httpapi assembles the service's HTTP surface: webhook endpoints,
// the migration API, and the health check.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chainguard.dev/devtools/workflows"
	"github.com/chainguard-dev/clog"
)

// Migrator runs a framework migration. *workflows.Engine implements it.
type Migrator interface {
	Migrate(ctx context.Context, req workflows.MigrationRequest) (*workflows.MigrationReport, error)
}

// New builds the service mux. The GitHub and Stripe handlers own their own
// signature verification; this layer only routes.
func New(githubHandler, stripeHandler http.Handler, migrator Migrator) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", handleHealth)
	mux.Handle("POST /webhooks/github", githubHandler)
	mux.Handle("POST /webhooks/stripe", stripeHandler)
	mux.Handle("POST /api/migrate", &migrateHandler{migrator: migrator})
	return mux
}

// tools enumerates the service's workflows for the health payload.
var tools = []string{
	"code-review",
	"documentation-generator",
	"issue-triage",
	"code-migration",
	"conflict-resolution",
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"tools":     tools,
	})
}

type migrateRequest struct {
	RepoURL        string `json:"repo_url"`
	FromFramework  string `json:"from_framework"`
	ToFramework    string `json:"to_framework"`
	InstallationID int64  `json:"installation_id"`
}

type migrateResponse struct {
	Success       bool     `json:"success"`
	PullRequest   string   `json:"pr_url"`
	FilesMigrated int      `json:"files_migrated"`
	FailedFiles   []string `json:"failed_files,omitempty"`
}

type migrateHandler struct {
	migrator Migrator
}

func (h *migrateHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req migrateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	owner, name, err := splitRepoURL(req.RepoURL)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if req.FromFramework == "" || req.ToFramework == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "from_framework and to_framework are required"})
		return
	}

	report, err := h.migrator.Migrate(ctx, workflows.MigrationRequest{
		Repo: workflows.RepoRef{
			Owner:          owner,
			Name:           name,
			InstallationID: req.InstallationID,
		},
		FromFramework: req.FromFramework,
		ToFramework:   req.ToFramework,
	})
	if err != nil {
		clog.FromContext(ctx).With("repo", owner+"/"+name).With("error", err).Error("Migration failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, migrateResponse{
		Success:       true,
		PullRequest:   report.PullRequestURL,
		FilesMigrated: report.FilesMigrated,
		FailedFiles:   report.FailedFiles,
	})
}

// splitRepoURL takes the owner and repository from the last two path segments,
// so both full URLs and bare "owner/repo" values work.
func splitRepoURL(repoURL string) (owner, name string, err error) {
	trimmed := strings.TrimSuffix(strings.TrimSuffix(strings.TrimSpace(repoURL), "/"), ".git")
	parts := strings.Split(trimmed, "/")
	if len(parts) < 2 {
		return "", "", fmt.Errorf("repo_url %q does not name owner/repo", repoURL)
	}
	owner, name = parts[len(parts)-2], parts[len(parts)-1]
	if owner == "" || name == "" {
		return "", "", fmt.Errorf("repo_url %q does not name owner/repo", repoURL)
	}
	return owner, name, nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
