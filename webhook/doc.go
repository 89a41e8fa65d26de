/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package webhook receives GitHub App event deliveries, verifies their
// signatures, and dispatches matched events to the workflow engine. The
// router itself never talks to GitHub or the model; it only classifies and
// hands off.
package webhook
