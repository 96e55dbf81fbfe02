package review

import (
	"fmt"
	"strings"

	"github.com/dshills/quorum/internal/agent"
)

// BuildSystemMessage summarizes per-agent findings and suggestions for
// the host. Transport error strings never appear here; failed outcomes
// are simply omitted.
func BuildSystemMessage(stage string, outcomes []agent.Outcome, final agent.Severity) string {
	if final == agent.SeverityOK {
		return fmt.Sprintf("[self-review:%s] review passed", stage)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "[self-review:%s] %s level issues found:", stage, final)

	for _, out := range outcomes {
		if !out.Success || len(out.Findings) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n\n### %s feedback:", out.AgentID)
		for _, f := range out.Findings {
			fmt.Fprintf(&b, "\n- [%s] %s", f.Severity, f.Description)
			if f.Location != "" {
				fmt.Fprintf(&b, " (%s)", f.Location)
			}
			if f.Suggestion != "" {
				fmt.Fprintf(&b, "\n  Suggestion: %s", f.Suggestion)
			}
		}
	}

	if final.Rank() >= agent.SeverityHigh.Rank() {
		b.WriteString("\n\nPlease fix the issues above.")
	}
	return b.String()
}
