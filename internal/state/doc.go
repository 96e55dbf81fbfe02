// Package state persists per-session counters that throttle how often
// review and debate are triggered.
//
// Each (session, namespace) pair maps to one JSON record and an advisory
// lock file of the same key; the lock is held only across a single
// read-modify-write. Namespaces are independent: retry counts per stage,
// debounce timestamps per stage, the one-shot override token, and the
// todo-completion snapshot with its review counter. Corrupt records are
// treated as absent.
package state
