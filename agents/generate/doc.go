/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package generate is the single request/response seam to the reasoning service.

A workflow builds a bounded Request (prompt plus an output-token budget),
calls Generate, and gets raw text back. The adapter enforces the budgets and
surfaces provider rejections as *InvocationError; it never retries, truncates,
or interprets the response. Deciding whether a failed invocation skips one
unit of work or aborts the whole event belongs to the calling workflow.
*/
package generate
