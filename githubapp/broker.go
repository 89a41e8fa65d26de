/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package githubapp

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bradleyfalzon/ghinstallation/v2"
	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	"github.com/google/go-github/v84/github"
	"github.com/gregjones/httpcache"
	"golang.org/x/oauth2"
)

// Token is a short-lived installation-scoped access token. It is owned by one
// event-handling task and must not outlive it.
type Token struct {
	Value     string
	ExpiresAt time.Time
}

// CredentialError reports a failed token exchange: a bad or rotated private
// key, or a revoked installation. The whole event aborts when it occurs.
type CredentialError struct {
	InstallationID int64
	Err            error
}

func (e *CredentialError) Error() string {
	return fmt.Sprintf("installation %d: token exchange failed: %v", e.InstallationID, e.Err)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// Broker mints installation tokens and per-event GitHub clients.
type Broker struct {
	apps *github.Client

	// apiURL overrides the GitHub API endpoint; tests point it at an
	// httptest server. Empty in production.
	apiURL string
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithBaseURL overrides the GitHub API base URL for both the app client and
// the installation clients the broker hands out.
func WithBaseURL(raw string) BrokerOption {
	return func(b *Broker) {
		b.apiURL = raw
	}
}

// NewBroker creates a Broker for the given GitHub App identity. The private
// key is the PEM-encoded RS256 key issued when the app was registered.
func NewBroker(appID int64, privateKeyPEM []byte, opts ...BrokerOption) (*Broker, error) {
	b := &Broker{}
	for _, opt := range opts {
		opt(b)
	}

	atr, err := ghinstallation.NewAppsTransport(http.DefaultTransport, appID, privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("parsing app private key: %w", err)
	}
	if b.apiURL != "" {
		atr.BaseURL = strings.TrimSuffix(b.apiURL, "/")
	}

	apps := github.NewClient(&http.Client{Transport: atr})
	if b.apiURL != "" {
		if err := setBaseURL(apps, b.apiURL); err != nil {
			return nil, err
		}
	}
	b.apps = apps
	return b, nil
}

// Token exchanges the app identity for a fresh installation token. There is
// no cache: callers get a new token per event.
func (b *Broker) Token(ctx context.Context, installationID int64) (Token, error) {
	tok, _, err := b.apps.Apps.CreateInstallationToken(ctx, installationID, nil)
	if err != nil {
		return Token{}, &CredentialError{InstallationID: installationID, Err: err}
	}
	return Token{
		Value:     tok.GetToken(),
		ExpiresAt: tok.GetExpiresAt().Time,
	}, nil
}

// Client returns a GitHub client scoped to one installation for the duration
// of one event. The transport stack, outermost first:
//
//  1. oauth2 (installation token auth)
//  2. go-github-ratelimit (sleeps through secondary rate limits)
//  3. httpcache (ETag conditional-request caching)
func (b *Broker) Client(ctx context.Context, installationID int64) (*github.Client, error) {
	tok, err := b.Token(ctx, installationID)
	if err != nil {
		return nil, err
	}

	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimited := github_ratelimit.NewClient(cacheTransport)

	ctx = context.WithValue(ctx, oauth2.HTTPClient, rateLimited)
	src := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: tok.Value,
		Expiry:      tok.ExpiresAt,
	})

	gh := github.NewClient(oauth2.NewClient(ctx, src))
	if b.apiURL != "" {
		if err := setBaseURL(gh, b.apiURL); err != nil {
			return nil, err
		}
	}
	return gh, nil
}

// setBaseURL points a go-github client at a non-default API endpoint.
// go-github requires the base URL to end in a slash.
func setBaseURL(c *github.Client, raw string) error {
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("parsing base URL: %w", err)
	}
	c.BaseURL = u
	return nil
}
