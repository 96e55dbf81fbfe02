// Package config loads the quorum configuration.
//
// Effective settings are built from built-in defaults, an optional JSON
// config file under the user config directory, and QUORUM_* environment
// variables, in that order. A malformed config file never fails the hook:
// Load falls back to the built-in defaults.
package config
