/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package billing receives Stripe webhook events and flips feature access for
// the affected customer. Only completed checkouts and deleted subscriptions
// carry meaning here; every other event is acknowledged and dropped.
package billing
