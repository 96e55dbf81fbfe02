// Package agent defines the reviewer-agent contract and its
// implementations.
//
// An Agent produces a structured opinion (Severity plus Findings) given a
// prompt and review context. Review never returns an error: timeouts,
// transport failures, and malformed responses are all encoded as a failed
// or heuristically-classified Outcome so orchestration logic can stay
// agent-agnostic.
//
// ParseResponse implements the two-tier parsing contract shared by every
// agent: a fenced JSON block is parsed for severity and issues; when that
// fails, a keyword classifier over the raw text picks a severity and the
// full response is wrapped as a single finding.
package agent
