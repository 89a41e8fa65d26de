/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package workflows implements the five event-driven capabilities of the
developer-tools app: code review, documentation generation, issue triage,
code migration, and merge-conflict resolution.

Every workflow follows the same shape: mint a fresh installation client,
gather the context the event calls for, invoke the model with a bounded
prompt, decode the response through the contract package, and apply the
resulting mutations to the repository. Gathering and deciding always complete
before the first mutation, so partial failure is confined to the apply phase.

Per-file units of work fail independently: one file's bad model output or
rejected API call is logged and skipped, never allowed to cancel its siblings.
Mutations with ordering constraints (a branch before its commits, commits
before the pull request, one aggregated conflict comment) are serialized.
*/
package workflows
