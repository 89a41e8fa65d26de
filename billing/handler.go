/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/chainguard-dev/clog"
	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// maxBodyBytes caps Stripe delivery payloads, per Stripe's own guidance.
const maxBodyBytes = 65536

// FeatureToggler flips paid-feature access for a customer.
type FeatureToggler interface {
	Enable(ctx context.Context, customerID string) error
	Disable(ctx context.Context, customerID string) error
}

// LogToggler records the access transition and does nothing else. It is the
// default until a real entitlement store exists.
type LogToggler struct{}

func (LogToggler) Enable(ctx context.Context, customerID string) error {
	clog.FromContext(ctx).With("customer", customerID).Info("Enabling premium features")
	return nil
}

func (LogToggler) Disable(ctx context.Context, customerID string) error {
	clog.FromContext(ctx).With("customer", customerID).Info("Disabling premium features")
	return nil
}

// Handler is the HTTP handler for Stripe webhook deliveries.
type Handler struct {
	secret  string
	toggler FeatureToggler
}

func NewHandler(secret string, t FeatureToggler) *Handler {
	if t == nil {
		t = LogToggler{}
	}
	return &Handler{secret: secret, toggler: t}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := clog.FromContext(ctx)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read payload", http.StatusServiceUnavailable)
		return
	}

	// Stripe pins deliveries to the account's API version, not the SDK's;
	// the signature check is what matters here.
	event, err := webhook.ConstructEventWithOptions(body, r.Header.Get("Stripe-Signature"), h.secret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		log.With("error", err).Error("Dropping payment event with bad signature")
		http.Error(w, "signature verification failed", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			http.Error(w, "unparseable checkout session", http.StatusBadRequest)
			return
		}
		if session.Customer == nil {
			http.Error(w, "checkout session has no customer", http.StatusBadRequest)
			return
		}
		if err := h.toggler.Enable(ctx, session.Customer.ID); err != nil {
			log.With("customer", session.Customer.ID).With("error", err).Error("Failed to enable features")
			http.Error(w, "feature toggle failed", http.StatusInternalServerError)
			return
		}

	case stripe.EventTypeCustomerSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
			http.Error(w, "unparseable subscription", http.StatusBadRequest)
			return
		}
		if sub.Customer == nil {
			http.Error(w, "subscription has no customer", http.StatusBadRequest)
			return
		}
		if err := h.toggler.Disable(ctx, sub.Customer.ID); err != nil {
			log.With("customer", sub.Customer.ID).With("error", err).Error("Failed to disable features")
			http.Error(w, "feature toggle failed", http.StatusInternalServerError)
			return
		}

	default:
		log.With("type", event.Type).Debug("Ignoring payment event")
	}

	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"received": true}`)
}
