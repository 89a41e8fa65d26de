/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package contract decodes raw model output into the typed result each workflow
expects.

Models return free text. Each workflow prompt instructs the model to answer
with a JSON document of a known shape, but in practice the document arrives
wrapped in markdown fences, preceded by prose, or malformed. This package is
the single seam where that text is turned into a typed value: Decode strips
any markdown fencing, strictly unmarshals the JSON, and validates the required
fields of the target shape. Anything short of a fully valid document is a
*ViolationError - downstream mutations (labels, reviews, file writes) must
never act on a partially understood response, so there is no best-effort mode.
*/
package contract
