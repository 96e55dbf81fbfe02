// Package cli wires together the Cobra command tree for the quorum binary.
//
// It defines the root command and all subcommands (review, completion,
// override, quota, session, version), binds flags, loads configuration,
// and constructs the orchestrators. The hook-invoked commands (review,
// completion) speak the stdin/stdout JSON protocol and always exit 0;
// maintenance commands report real failures through the exit code.
package cli
