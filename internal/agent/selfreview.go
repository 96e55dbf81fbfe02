package agent

import (
	"context"
	"fmt"
	"strings"
)

// SelfReview produces an instruction message asking the host session to
// review its own work via an independent sub-agent. It performs no real
// review: the outcome is always severity OK with SelfReview set, and its
// raw text is the message to relay. Always available, costs no quota.
type SelfReview struct{}

// NewSelfReview creates the self-review agent.
func NewSelfReview() *SelfReview { return &SelfReview{} }

func (s *SelfReview) ID() string { return "claude_self" }

func (s *SelfReview) Available() bool { return true }

func (s *SelfReview) Review(_ context.Context, _ string, rc Context) Outcome {
	return Outcome{
		AgentID:    s.ID(),
		Severity:   SeverityOK,
		RawText:    s.buildMessage(rc),
		Success:    true,
		SelfReview: true,
	}
}

func (s *SelfReview) buildMessage(rc Context) string {
	var b strings.Builder
	b.WriteString("All tasks are complete. Before finishing, run an independent review:\n")
	b.WriteString("1. Use the code-reviewer sub-agent to verify the completed work.\n")
	b.WriteString("2. Confirm every part of the original request was implemented.\n")
	b.WriteString("3. Flag anything that was added but never requested.\n")

	if rc.UserRequest != "" {
		fmt.Fprintf(&b, "\nOriginal request:\n%s\n", rc.UserRequest)
	}
	if len(rc.Todos) > 0 {
		fmt.Fprintf(&b, "\nCompleted tasks:\n%s\n", FormatTodos(rc.Todos))
	}
	return b.String()
}
