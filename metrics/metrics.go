/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package metrics defines the process-wide Prometheus counters for the
// developer-tools service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DeliveriesReceived counts webhook deliveries accepted by the router,
	// keyed by the host's event name.
	DeliveriesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtools_webhook_deliveries_total",
			Help: "Total number of webhook deliveries that passed signature verification",
		},
		[]string{"event"},
	)

	// DeliveriesRejected counts deliveries dropped for a bad or missing signature.
	DeliveriesRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "devtools_webhook_rejected_total",
			Help: "Total number of webhook deliveries dropped for failing signature verification",
		},
	)

	// WorkflowsDispatched counts workflow executions started, keyed by workflow name.
	WorkflowsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtools_workflows_dispatched_total",
			Help: "Total number of workflow executions started",
		},
		[]string{"workflow"},
	)

	// WorkflowFailures counts workflow executions that ended in an error,
	// keyed by workflow name.
	WorkflowFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtools_workflow_failures_total",
			Help: "Total number of workflow executions that ended in an error",
		},
		[]string{"workflow"},
	)

	// ModelInvocations counts calls to the reasoning service, keyed by model name.
	ModelInvocations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtools_model_invocations_total",
			Help: "Total number of model invocations",
		},
		[]string{"model"},
	)

	// ModelFailures counts model invocations rejected by the provider.
	ModelFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "devtools_model_failures_total",
			Help: "Total number of model invocations that failed",
		},
		[]string{"model"},
	)
)
