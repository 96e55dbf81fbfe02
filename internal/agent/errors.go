package agent

import "errors"

// rateLimitError marks a backend refusal that indicates quota or rate
// exhaustion. Its message deliberately contains "rate limited" so the
// quota monitor's keyword classifier recognizes it without type
// knowledge.
type rateLimitError struct {
	detail string
}

func (e *rateLimitError) Error() string {
	if e.detail == "" {
		return "rate limited"
	}
	return "rate limited: " + e.detail
}

// authError marks an authentication/authorization failure. Never retried.
type authError struct {
	message string
}

func (e *authError) Error() string {
	return "authentication error: " + e.message
}

// IsRateLimit reports whether err is a rate-limit error.
func IsRateLimit(err error) bool {
	var rl *rateLimitError
	return errors.As(err, &rl)
}

// IsAuthError reports whether err is an authentication error.
func IsAuthError(err error) bool {
	var ae *authError
	return errors.As(err, &ae)
}
