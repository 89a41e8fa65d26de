/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package githubapp exchanges the long-lived GitHub App identity for short-lived
installation-scoped credentials.

The Broker signs an RS256 app assertion (via ghinstallation's AppsTransport)
and trades it for an installation access token. Tokens are never cached: every
event-handling task calls the Broker once, uses the resulting client for the
lifetime of that event, and discards it. The extra round trip per event buys
the guarantee that no task ever runs with an expired or over-scoped token.
*/
package githubapp
