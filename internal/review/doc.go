// Package review is the consensus engine: it turns one triggering event
// into a single continuation decision.
//
// The orchestrator extracts and masks context, checks the override and
// debounce gates, dispatches concurrently to every eligible agent with a
// per-call timeout, and resolves the surviving severities through a
// configurable conflict policy (conservative, majority vote, or weighted
// vote). HIGH or CRITICAL results block the caller until the per-stage
// retry budget is spent, after which the engine proceeds with a warning.
// With no successful outcomes the engine fails open: blocking a workflow
// is costlier than missing one review cycle.
package review
