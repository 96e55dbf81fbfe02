package agent

import (
	"fmt"
	"time"
)

// Options carries the per-agent settings the registry needs.
type Options struct {
	Timeout     time.Duration
	GeminiModel string
}

// New creates an agent by id.
func New(id string, opts Options) (Agent, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = 60 * time.Second
	}
	switch id {
	case "gemini":
		return NewGemini(opts.GeminiModel, opts.Timeout), nil
	case "copilot":
		return NewCopilot(opts.Timeout), nil
	case "claude_self":
		return NewSelfReview(), nil
	default:
		return nil, fmt.Errorf("unknown agent: %s", id)
	}
}
