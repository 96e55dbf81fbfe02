// Quorum is a multi-agent review consensus engine for editor hook events.
//
// It reads hook events on stdin, fans the captured context out to a set of
// reviewer agents in parallel, resolves their conflicting severities through
// a configurable policy, optionally runs a multi-round debate when the agents
// disagree, and writes a single continuation decision to stdout.
//
// Usage:
//
//	quorum review --stage code        # review a code edit event from stdin
//	quorum completion                 # review a just-completed task list
//	quorum override <session> --count 2   # skip the next two reviews
//	quorum quota status               # per-agent quota health for today
//	quorum session cleanup <session>  # drop all stored state for a session
//
// Hook-invoked commands always exit 0 so a broken review never breaks the
// caller's workflow.
package main
