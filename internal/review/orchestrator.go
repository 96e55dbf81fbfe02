package review

import (
	"context"
	"fmt"
	"os"

	"github.com/dshills/quorum/internal/agent"
	"github.com/dshills/quorum/internal/audit"
	"github.com/dshills/quorum/internal/config"
	"github.com/dshills/quorum/internal/debate"
	"github.com/dshills/quorum/internal/hook"
	"github.com/dshills/quorum/internal/quota"
	"github.com/dshills/quorum/internal/redact"
	"github.com/dshills/quorum/internal/state"
)

// skipEnvVar short-circuits review for the current event when set to "1",
// without consuming a stored override token.
const skipEnvVar = "QUORUM_SKIP_REVIEW"

// Orchestrator coordinates one review cycle: gates, concurrent dispatch,
// conflict resolution, optional debate, and the continuation decision.
// All collaborators are injected; there is no hidden global state.
type Orchestrator struct {
	cfg     config.Config
	agents  []agent.Agent
	store   *state.Store
	monitor *quota.Monitor
	auditor *audit.Logger
	debater *debate.Orchestrator
	masker  *redact.Masker
}

// New creates an Orchestrator.
func New(cfg config.Config, agents []agent.Agent, store *state.Store, monitor *quota.Monitor, auditor *audit.Logger, debater *debate.Orchestrator) *Orchestrator {
	var masker *redact.Masker
	if cfg.Security.MaskSensitiveData {
		masker = redact.NewMasker(cfg.Security.SensitivePatterns)
	}
	return &Orchestrator{
		cfg:     cfg,
		agents:  agents,
		store:   store,
		monitor: monitor,
		auditor: auditor,
		debater: debater,
		masker:  masker,
	}
}

// Run executes the full orchestration for one triggering event and
// returns the continuation decision. It never returns an error: every
// internal failure degrades to a fail-open decision.
func (o *Orchestrator) Run(ctx context.Context, stage string, in hook.Input) hook.Output {
	rc := ExtractContext(in, o.masker)
	sessionID := rc.SessionID

	if o.checkOverride(sessionID) {
		_ = o.auditor.Log("override", sessionID, map[string]any{"stage": stage})
		return hook.Continue(fmt.Sprintf("[self-review:%s] skipped by override", stage))
	}

	if o.checkDebounce(sessionID, stage) {
		// Debounced calls are suppressed silently.
		return hook.Continue("")
	}
	_ = o.store.UpdateLastCallTime(sessionID, stage)

	prompt := LoadPrompt(o.cfg.PromptDir, stage)
	eligible := o.EligibleAgents()
	outcomes := Dispatch(ctx, eligible, prompt, rc, o.cfg.ParallelExecution, o.cfg.Timeout())
	o.RecordQuota(outcomes)

	final := Resolve(ParsePolicy(o.cfg.Conflict.Policy), o.cfg.Conflict.Weights, outcomes)

	var debateInfo map[string]any
	message := BuildSystemMessage(stage, outcomes, final)

	if o.debater != nil {
		if needed, reason := o.debater.ShouldDebate(outcomes); needed {
			round := o.debater.Run(ctx, eligible, outcomes, prompt, rc)
			o.RecordQuota(round.Results)
			final = round.FinalSeverity
			outcomes = round.Results
			message = BuildSystemMessage(stage, outcomes, final) + "\n" + debate.FormatResult(round)
			debateInfo = map[string]any{
				"triggered":         true,
				"reason":            reason,
				"rounds":            round.Num,
				"consensus_reached": round.ConsensusReached,
				"final_severity":    round.FinalSeverity.String(),
			}
		}
	}

	shouldContinue := true
	if final.Rank() >= agent.SeverityHigh.Rank() {
		maxRetries := o.cfg.MaxRetriesFor(stage)
		retryCount, err := o.store.RetryCount(sessionID, stage)
		if err == nil && retryCount < maxRetries {
			_, _ = o.store.IncrementRetry(sessionID, stage)
			shouldContinue = false
			message += fmt.Sprintf("\n\n(Retry %d/%d)", retryCount+1, maxRetries)
		} else {
			message += fmt.Sprintf("\n\nMax retry count (%d) reached. Proceeding with warning.", maxRetries)
		}
	}

	fields := map[string]any{
		"stage":             stage,
		"llm_results":       outcomes,
		"final_severity":    final.String(),
		"continue_decision": shouldContinue,
	}
	if debateInfo != nil {
		fields["debate"] = debateInfo
	}
	_ = o.auditor.Log("review", sessionID, fields)

	if !shouldContinue {
		return hook.Block(message)
	}
	return hook.Continue(message)
}

// EligibleAgents returns the orchestrator's agents that are both
// statically available and not excluded by the quota monitor.
func (o *Orchestrator) EligibleAgents() []agent.Agent {
	return Eligible(o.agents, o.monitor)
}

// RecordQuota feeds dispatch outcomes into the quota monitor.
func (o *Orchestrator) RecordQuota(outcomes []agent.Outcome) {
	RecordQuota(o.monitor, outcomes)
}

// Eligible filters agents to those that are statically available and not
// excluded by the quota monitor.
func Eligible(agents []agent.Agent, monitor *quota.Monitor) []agent.Agent {
	eligible := make([]agent.Agent, 0, len(agents))
	for _, a := range agents {
		if a.Available() && monitor.IsAvailable(a.ID()) {
			eligible = append(eligible, a)
		}
	}
	return eligible
}

// RecordQuota feeds dispatch outcomes into the quota monitor. Self-review
// outcomes are free and not tracked.
func RecordQuota(monitor *quota.Monitor, outcomes []agent.Outcome) {
	for _, out := range outcomes {
		if out.SelfReview {
			continue
		}
		if out.Success {
			monitor.RecordSuccess(out.AgentID)
		} else {
			monitor.RecordFailure(out.AgentID, out.Err)
		}
	}
}

func (o *Orchestrator) checkOverride(sessionID string) bool {
	if !o.cfg.Override.Enabled {
		return false
	}
	if os.Getenv(skipEnvVar) == "1" {
		return true
	}
	consumed, err := o.store.CheckAndConsumeOverride(sessionID)
	return err == nil && consumed
}

func (o *Orchestrator) checkDebounce(sessionID, stage string) bool {
	d := o.cfg.Debounce
	if !d.Enabled || !d.AppliesTo(stage) {
		return false
	}
	should, err := o.store.ShouldDebounce(sessionID, stage, d.Window())
	return err == nil && should
}
