package agent

import "context"

// Finding is one concrete issue reported by a reviewer. Immutable once
// produced.
type Finding struct {
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Location    string   `json:"location,omitempty"`
	Suggestion  string   `json:"suggestion,omitempty"`
}

// Outcome is one agent's result for a single review call. Every failure
// mode is encoded as Success=false with an error string; Review never
// returns a Go error.
type Outcome struct {
	AgentID    string    `json:"agent"`
	Severity   Severity  `json:"severity"`
	Findings   []Finding `json:"findings"`
	RawText    string    `json:"-"`
	Success    bool      `json:"success"`
	Err        string    `json:"error,omitempty"`
	DurationMS int64     `json:"duration_ms"`
	SelfReview bool      `json:"is_self_review"`
}

// Failed constructs a failed Outcome for the given agent.
func Failed(agentID, errText string) Outcome {
	return Outcome{
		AgentID:  agentID,
		Severity: SeverityOK,
		Success:  false,
		Err:      errText,
	}
}

// Todo is one item from the host's todo list payload.
type Todo struct {
	Content string `json:"content"`
	Status  string `json:"status"`
}

// Completed reports whether the item is in the completed state.
func (t Todo) Completed() bool { return t.Status == "completed" }

// Context is the dynamic review context extracted from a triggering event.
// Code and Diff have already been through sensitive-data masking by the
// time an agent sees them.
type Context struct {
	SessionID   string
	ToolName    string
	WorkDir     string
	FilePath    string
	Diff        string
	Code        string
	Todos       []Todo
	UserRequest string
}

// Agent is a reviewer capable of producing a severity + findings opinion
// given a prompt and context.
type Agent interface {
	// ID returns the stable identifier used for config weights, quota
	// tracking, and audit records.
	ID() string

	// Available reports whether the agent can be queried at all. It must
	// be cheap and synchronous: static checks like "has an API key" or
	// "binary on PATH", never a network call.
	Available() bool

	// Review produces an opinion. It must never return an error or panic;
	// timeouts, transport failures, and parse failures are all encoded in
	// the Outcome.
	Review(ctx context.Context, prompt string, rc Context) Outcome
}
