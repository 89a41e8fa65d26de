/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package main runs the developer-tools service: a GitHub App that reviews,
// documents, triages, and migrates code in the repositories it is installed
// on, plus the Stripe billing hook and the migration API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"chainguard.dev/devtools/agents/generate"
	"chainguard.dev/devtools/billing"
	"chainguard.dev/devtools/githubapp"
	"chainguard.dev/devtools/httpapi"
	"chainguard.dev/devtools/webhook"
	"chainguard.dev/devtools/workflows"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/chainguard-dev/clog"
	_ "github.com/chainguard-dev/clog/gcp/init"
	"github.com/chainguard-dev/terraform-infra-common/pkg/httpmetrics"
	"github.com/chainguard-dev/terraform-infra-common/pkg/profiler"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sethvargo/go-envconfig"
)

type config struct {
	Port        int `env:"PORT,default=8080"`
	MetricsPort int `env:"METRICS_PORT,default=2112"`

	// GitHub App identity
	GitHubAppID         int64  `env:"GITHUB_APP_ID,required"`
	GitHubPrivateKey    string `env:"GITHUB_PRIVATE_KEY,required"`
	GitHubWebhookSecret string `env:"GITHUB_WEBHOOK_SECRET,required"`

	StripeWebhookSecret string `env:"STRIPE_WEBHOOK_SECRET,required"`

	// Model configuration
	AnthropicAPIKey string  `env:"ANTHROPIC_API_KEY,required"`
	ClaudeModel     string  `env:"CLAUDE_MODEL,default=claude-sonnet-4-5-20250929"`
	Temperature     float64 `env:"MODEL_TEMPERATURE,default=0.1"`

	// Triage assignment, e.g. "backend-dev:alice,frontend-dev:bob".
	AssigneeLogins map[string]string `env:"ASSIGNEE_LOGINS"`
	DefaultBranch  string            `env:"DEFAULT_BRANCH,default=main"`
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	go httpmetrics.ScrapeDiskUsage(ctx)
	profiler.SetupProfiler()

	var cfg config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		clog.FatalContextf(ctx, "processing config: %v", err)
	}

	broker, err := githubapp.NewBroker(cfg.GitHubAppID, []byte(cfg.GitHubPrivateKey))
	if err != nil {
		clog.FatalContextf(ctx, "creating credential broker: %v", err)
	}

	generator, err := generate.NewClaude(
		anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey)),
		generate.WithModel(cfg.ClaudeModel),
		generate.WithTemperature(cfg.Temperature),
	)
	if err != nil {
		clog.FatalContextf(ctx, "creating generator: %v", err)
	}

	engine := workflows.New(broker, generator,
		workflows.WithAssigneeLogins(cfg.AssigneeLogins),
		workflows.WithDefaultBranch(cfg.DefaultBranch))

	router := webhook.NewRouter([]byte(cfg.GitHubWebhookSecret), engine)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           httpapi.New(router, billing.NewHandler(cfg.StripeWebhookSecret, nil), engine),
		ReadHeaderTimeout: 10 * time.Second,
	}

	metricsSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler:           promhttp.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			clog.FatalContextf(ctx, "metrics server failed: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		clog.InfoContext(ctx, "Shutting down")

		shutdownCtx, done := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer done()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			clog.ErrorContextf(ctx, "shutting down server: %v", err)
		}
		// In-flight workflows finish on their own detached contexts.
		router.Drain()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}()

	clog.InfoContextf(ctx, "Starting developer-tools service on port %d (model %s)", cfg.Port, cfg.ClaudeModel)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		clog.FatalContextf(ctx, "server failed: %v", err)
	}
	router.Drain()
}
