// Package quota tracks per-agent daily health so agents that are likely
// rate-limited can be excluded from dispatch.
//
// Three consecutive failures, or any failure whose error text matches the
// quota vocabulary, put an agent in EXHAUSTED with a 30-minute cooldown.
// A single success resets it to AVAILABLE. Records are keyed to the
// current calendar date and discarded wholesale on day rollover.
package quota
