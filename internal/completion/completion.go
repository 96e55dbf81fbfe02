// Package completion runs the review that fires when a session's todo
// list transitions to fully completed: an optional self-review plus
// external agent reviews over the finished task list, with debate on
// disagreement. Only a CRITICAL result blocks; everything else warns.
package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/quorum/internal/agent"
	"github.com/dshills/quorum/internal/audit"
	"github.com/dshills/quorum/internal/config"
	"github.com/dshills/quorum/internal/debate"
	"github.com/dshills/quorum/internal/hook"
	"github.com/dshills/quorum/internal/quota"
	"github.com/dshills/quorum/internal/review"
	"github.com/dshills/quorum/internal/state"
)

// Orchestrator coordinates the todo-completion review.
type Orchestrator struct {
	cfg      config.Config
	self     agent.Agent
	external []agent.Agent
	store    *state.Store
	monitor  *quota.Monitor
	auditor  *audit.Logger
	debater  *debate.Orchestrator
	detector *state.Detector
}

// New creates a completion Orchestrator. The external agents should be
// the full configured set; quota filtering happens per call.
func New(cfg config.Config, external []agent.Agent, store *state.Store, monitor *quota.Monitor, auditor *audit.Logger, debater *debate.Orchestrator) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		self:     agent.NewSelfReview(),
		external: external,
		store:    store,
		monitor:  monitor,
		auditor:  auditor,
		debater:  debater,
		detector: state.NewDetector(store),
	}
}

// Run checks whether the todo list just completed and, if so, runs the
// completion review. It never blocks unless the final severity is
// CRITICAL.
func (o *Orchestrator) Run(ctx context.Context, in hook.Input) hook.Output {
	sessionID := in.SessionID
	if sessionID == "" {
		sessionID = "unknown"
	}
	todos := in.ToolInput.Todos

	todoState, err := o.detector.DetectCompletion(sessionID, todos)
	if err != nil || !todoState.JustCompleted {
		return hook.Continue("")
	}

	maxReviews := o.cfg.Completion.MaxReviews
	reviewCount, err := o.store.CompletionReviewCount(sessionID)
	if err == nil && reviewCount >= maxReviews {
		_ = o.auditor.Log("max_reviews_reached", sessionID, map[string]any{
			"review_count": reviewCount,
		})
		return hook.Continue(fmt.Sprintf("[completion-review] max review count (%d) reached, proceeding", maxReviews))
	}
	_, _ = o.store.IncrementCompletionReviewCount(sessionID)

	rc := agent.Context{
		SessionID:   sessionID,
		WorkDir:     in.WorkDir,
		Todos:       todos,
		UserRequest: in.UserRequest,
	}

	outcomes := o.runReviews(ctx, rc)

	var debateRound *debate.Round
	var debateReason string
	if o.debater != nil {
		if needed, reason := o.debater.ShouldDebate(outcomes); needed {
			prompt := review.LoadPrompt(o.cfg.PromptDir, "completion")
			eligible := review.Eligible(o.external, o.monitor)
			round := o.debater.Run(ctx, eligible, externalOnly(outcomes), prompt, rc)
			review.RecordQuota(o.monitor, round.Results)
			outcomes = append(selfOnly(outcomes), round.Results...)
			debateRound = &round
			debateReason = reason
		}
	}

	fields := map[string]any{
		"review_count": reviewCount + 1,
		"todo_count":   len(todos),
		"llm_results":  externalOnly(outcomes),
		"quota_status": o.monitor.Summary(),
	}
	if debateRound != nil {
		fields["debate"] = map[string]any{
			"triggered":         true,
			"reason":            debateReason,
			"rounds":            debateRound.Num,
			"consensus_reached": debateRound.ConsensusReached,
			"final_severity":    debateRound.FinalSeverity.String(),
		}
	}
	_ = o.auditor.Log("completion_review", sessionID, fields)

	return buildOutput(outcomes, debateRound)
}

// runReviews gathers the self-review message and the external opinions.
func (o *Orchestrator) runReviews(ctx context.Context, rc agent.Context) []agent.Outcome {
	var outcomes []agent.Outcome

	if o.cfg.Completion.IncludeSelfReview {
		outcomes = append(outcomes, o.self.Review(ctx, "", rc))
	}

	if !o.cfg.Completion.IncludeExternalReview {
		return outcomes
	}

	eligible := review.Eligible(o.external, o.monitor)
	if len(eligible) == 0 {
		return outcomes
	}

	prompt := review.LoadPrompt(o.cfg.PromptDir, "completion")
	external := review.Dispatch(ctx, eligible, prompt, rc, o.cfg.ParallelExecution, o.cfg.Timeout())
	review.RecordQuota(o.monitor, external)
	return append(outcomes, external...)
}

// buildOutput assembles the host message. Self-review messages pass
// through verbatim; external findings are summarized; only CRITICAL
// blocks.
func buildOutput(outcomes []agent.Outcome, debateRound *debate.Round) hook.Output {
	var messages []string

	for _, out := range outcomes {
		if out.SelfReview {
			messages = append(messages, out.RawText)
		}
	}

	final := agent.SeverityOK
	if debateRound != nil {
		final = debateRound.FinalSeverity
		messages = append(messages, debate.FormatResult(*debateRound))
	} else {
		external := externalOnly(outcomes)
		for _, out := range external {
			final = agent.MaxSeverity(final, out.Severity)
		}
		if final != agent.SeverityOK {
			messages = append(messages, fmt.Sprintf("\n### External review result (%s):", final))
			for _, out := range external {
				if len(out.Findings) == 0 {
					continue
				}
				messages = append(messages, fmt.Sprintf("\n**%s**:", out.AgentID))
				for _, f := range out.Findings {
					line := fmt.Sprintf("- [%s] %s", f.Severity, f.Description)
					if f.Suggestion != "" {
						line += fmt.Sprintf("\n  Suggestion: %s", f.Suggestion)
					}
					messages = append(messages, line)
				}
			}
		}
	}

	message := strings.Join(messages, "\n")
	if final == agent.SeverityCritical {
		message += "\n\nCRITICAL issue found: task blocked. Resolve the issues above and try again."
		return hook.Block(message)
	}
	return hook.Continue(message)
}

func externalOnly(outcomes []agent.Outcome) []agent.Outcome {
	external := make([]agent.Outcome, 0, len(outcomes))
	for _, out := range outcomes {
		if !out.SelfReview && out.Success {
			external = append(external, out)
		}
	}
	return external
}

func selfOnly(outcomes []agent.Outcome) []agent.Outcome {
	var self []agent.Outcome
	for _, out := range outcomes {
		if out.SelfReview {
			self = append(self, out)
		}
	}
	return self
}
