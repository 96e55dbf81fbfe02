// Package redact masks sensitive data in review context before it is sent
// to any reviewer agent.
//
// Two layers run over code and diff content: regex heuristics covering
// common secret shapes (API keys, JWTs, private keys, AWS keys, bearer
// tokens, provider-specific tokens), and configurable keyword patterns
// that mask key=value and JSON-style assignments such as password=... or
// "api_key": "...".
package redact
