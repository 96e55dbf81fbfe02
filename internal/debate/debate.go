package debate

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/dshills/quorum/internal/agent"
	"github.com/dshills/quorum/internal/config"
)

// Round is the result of one debate iteration. The last Round produced is
// authoritative.
type Round struct {
	Num              int
	Results          []agent.Outcome
	ConsensusReached bool
	FinalSeverity    agent.Severity
}

// Orchestrator runs the multi-round debate protocol: each round, every
// agent sees the other agents' opinions and re-evaluates. Rounds are
// strictly sequential; agents within a round run concurrently.
type Orchestrator struct {
	cfg     config.DebateConfig
	weights map[string]float64
	timeout time.Duration
}

// New creates a debate orchestrator from the effective config.
func New(cfg config.Config) *Orchestrator {
	return &Orchestrator{
		cfg:     cfg.Debate,
		weights: cfg.Conflict.Weights,
		timeout: cfg.Timeout(),
	}
}

// ShouldDebate decides whether debate is warranted: any successful
// outcome at HIGH or above, or at least two successful outcomes whose
// severity ranks are two or more levels apart. Self-review outcomes do
// not participate. The returned string names the trigger for the audit
// log.
func (o *Orchestrator) ShouldDebate(outcomes []agent.Outcome) (bool, string) {
	if !o.cfg.Enabled {
		return false, "debate disabled"
	}

	successful := successfulExternal(outcomes)
	if len(successful) == 0 {
		return false, "not enough results"
	}

	if o.cfg.TriggerOnHighSeverity {
		for _, out := range successful {
			if out.Severity.Rank() >= agent.SeverityHigh.Rank() {
				return true, "high severity found"
			}
		}
	}

	if o.cfg.TriggerOnDisagreement && len(successful) >= 2 {
		lo, hi := severitySpread(successful)
		if hi-lo >= 2 {
			return true, "significant disagreement"
		}
	}

	return false, "no debate needed"
}

// Run executes debate rounds 2..max_rounds+1 (round 1 being the initial
// independent review). After each round it checks consensus; with none
// after the final round it falls back to a weighted vote.
func (o *Orchestrator) Run(ctx context.Context, agents []agent.Agent, initial []agent.Outcome, basePrompt string, rc agent.Context) Round {
	current := initial
	lastRound := 1

	for roundNum := 2; roundNum <= o.cfg.MaxRounds+1; roundNum++ {
		next := o.runRound(ctx, agents, current, basePrompt, rc, roundNum)
		if len(next) == 0 {
			break
		}
		current = next
		lastRound = roundNum

		if severity, ok := checkConsensus(current); ok {
			return Round{
				Num:              roundNum,
				Results:          current,
				ConsensusReached: true,
				FinalSeverity:    severity,
			}
		}
	}

	return Round{
		Num:              lastRound,
		Results:          current,
		ConsensusReached: false,
		FinalSeverity:    o.weightedVote(current),
	}
}

// runRound re-invokes every agent with a prompt embedding the other
// agents' opinions from the previous round.
func (o *Orchestrator) runRound(ctx context.Context, agents []agent.Agent, previous []agent.Outcome, basePrompt string, rc agent.Context, roundNum int) []agent.Outcome {
	type call struct {
		a      agent.Agent
		prompt string
	}

	calls := make([]call, 0, len(agents))
	for _, a := range agents {
		others := make([]agent.Outcome, 0, len(previous))
		for _, out := range previous {
			if out.AgentID != a.ID() {
				others = append(others, out)
			}
		}
		if len(others) == 0 {
			continue
		}
		calls = append(calls, call{a: a, prompt: buildPrompt(basePrompt, others, roundNum)})
	}
	if len(calls) == 0 {
		return nil
	}

	results := make(chan agent.Outcome, len(calls))
	var wg sync.WaitGroup
	for _, c := range calls {
		wg.Add(1)
		go func(c call) {
			defer wg.Done()
			callCtx, cancel := context.WithTimeout(ctx, o.timeout)
			defer cancel()
			results <- c.a.Review(callCtx, c.prompt, rc)
		}(c)
	}
	wg.Wait()
	close(results)

	outcomes := make([]agent.Outcome, 0, len(calls))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

// checkConsensus: all successful severities identical, or a rank spread
// of at most one level (taking the higher severity), is consensus.
func checkConsensus(outcomes []agent.Outcome) (agent.Severity, bool) {
	successful := successfulExternal(outcomes)
	if len(successful) == 0 {
		return agent.SeverityOK, false
	}

	lo, hi := severitySpread(successful)
	if hi-lo <= 1 {
		return agent.SeverityFromRank(hi), true
	}
	return agent.SeverityOK, false
}

// weightedVote averages weight x severity-rank across successful
// outcomes and rounds half away from zero to the nearest rank. Zero total
// weight yields MEDIUM: this path only runs when a debate was already
// warranted, so "no data" still gets a cautious middle-ground decision.
func (o *Orchestrator) weightedVote(outcomes []agent.Outcome) agent.Severity {
	var totalWeight, weightedScore float64
	for _, out := range successfulExternal(outcomes) {
		weight, ok := o.weights[out.AgentID]
		if !ok {
			weight = 1.0
		}
		weightedScore += weight * float64(out.Severity.Rank())
		totalWeight += weight
	}

	if totalWeight == 0 {
		return agent.SeverityMedium
	}
	return agent.SeverityFromRank(int(math.Round(weightedScore / totalWeight)))
}

// FormatResult renders a debate round summary for the host message.
func FormatResult(r Round) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n### Debate result (round %d)\n", r.Num)
	if r.ConsensusReached {
		b.WriteString("Consensus reached: yes\n")
	} else {
		b.WriteString("Consensus reached: no (weighted vote)\n")
	}
	fmt.Fprintf(&b, "Final severity: %s\n", r.FinalSeverity)

	for _, out := range r.Results {
		if !out.Success {
			continue
		}
		fmt.Fprintf(&b, "\n%s: %s", out.AgentID, out.Severity)
		limit := len(out.Findings)
		if limit > 3 {
			limit = 3
		}
		for _, f := range out.Findings[:limit] {
			fmt.Fprintf(&b, "\n  - %s", f.Description)
		}
	}
	return b.String()
}

func successfulExternal(outcomes []agent.Outcome) []agent.Outcome {
	successful := make([]agent.Outcome, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Success && !out.SelfReview {
			successful = append(successful, out)
		}
	}
	return successful
}

// severitySpread returns the lowest and highest severity rank present.
func severitySpread(outcomes []agent.Outcome) (lo, hi int) {
	lo = agent.SeverityCritical.Rank()
	hi = agent.SeverityOK.Rank()
	for _, out := range outcomes {
		rank := out.Severity.Rank()
		if rank < lo {
			lo = rank
		}
		if rank > hi {
			hi = rank
		}
	}
	return lo, hi
}

func buildPrompt(basePrompt string, others []agent.Outcome, roundNum int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "## Code Review Debate - Round %d\n\n", roundNum)
	b.WriteString("Review the other reviewers' opinions and make your final judgment.\n\n")
	b.WriteString("### Other Reviewers' Opinions:\n")

	for _, out := range others {
		fmt.Fprintf(&b, "**%s** (Severity: %s):\n", out.AgentID, out.Severity)
		if len(out.Findings) == 0 {
			b.WriteString("  (No issues)\n")
		}
		for _, f := range out.Findings {
			fmt.Fprintf(&b, "  - [%s] %s\n", f.Severity, f.Description)
			if f.Suggestion != "" {
				fmt.Fprintf(&b, "    Suggestion: %s\n", f.Suggestion)
			}
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "### Original Review Request:\n%s\n\n", basePrompt)
	b.WriteString("### Instructions:\n")
	b.WriteString("1. Carefully review the other reviewers' opinions.\n")
	b.WriteString("2. If you agree, explain why; if you disagree, provide evidence.\n")
	b.WriteString("3. Determine the final severity and issue list.\n")
	b.WriteString("4. Add any new issues you discover.\n")
	return b.String()
}
