package debate

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/quorum/internal/agent"
	"github.com/dshills/quorum/internal/config"
)

// scriptedAgent returns a fixed sequence of severities, one per call,
// repeating the last entry when the script runs out.
type scriptedAgent struct {
	id     string
	script []agent.Severity
	calls  int
}

func (s *scriptedAgent) ID() string      { return s.id }
func (s *scriptedAgent) Available() bool { return true }

func (s *scriptedAgent) Review(_ context.Context, _ string, _ agent.Context) agent.Outcome {
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	return agent.Outcome{AgentID: s.id, Severity: s.script[idx], Success: true}
}

func success(id string, severity agent.Severity) agent.Outcome {
	return agent.Outcome{AgentID: id, Severity: severity, Success: true}
}

func debateConfig() config.Config {
	cfg := config.Default()
	cfg.Debate.Enabled = true
	cfg.Debate.MaxRounds = 2
	cfg.Debate.TriggerOnDisagreement = true
	cfg.Debate.TriggerOnHighSeverity = true
	return cfg
}

func TestShouldDebate(t *testing.T) {
	tests := []struct {
		name     string
		outcomes []agent.Outcome
		want     bool
		reason   string
	}{
		{
			name:     "agreement",
			outcomes: []agent.Outcome{success("a", agent.SeverityOK), success("b", agent.SeverityOK)},
			want:     false,
			reason:   "no debate needed",
		},
		{
			name:     "high severity",
			outcomes: []agent.Outcome{success("a", agent.SeverityOK), success("b", agent.SeverityHigh)},
			want:     true,
			reason:   "high severity found",
		},
		{
			name:     "adjacent severities",
			outcomes: []agent.Outcome{success("a", agent.SeverityLow), success("b", agent.SeverityMedium)},
			want:     false,
			reason:   "no debate needed",
		},
		{
			name:     "wide disagreement",
			outcomes: []agent.Outcome{success("a", agent.SeverityOK), success("b", agent.SeverityMedium)},
			want:     true,
			reason:   "significant disagreement",
		},
		{
			name:     "critical outlier",
			outcomes: []agent.Outcome{success("a", agent.SeverityOK), success("b", agent.SeverityCritical)},
			want:     true,
			reason:   "high severity found",
		},
		{
			name:     "no successful outcomes",
			outcomes: []agent.Outcome{{AgentID: "a", Success: false, Err: "boom"}},
			want:     false,
			reason:   "not enough results",
		},
		{
			name: "self review excluded",
			outcomes: []agent.Outcome{
				{AgentID: "claude_self", Severity: agent.SeverityOK, Success: true, SelfReview: true},
				success("b", agent.SeverityMedium),
			},
			want:   false,
			reason: "no debate needed",
		},
	}

	o := New(debateConfig())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, reason := o.ShouldDebate(tt.outcomes)
			if got != tt.want || reason != tt.reason {
				t.Errorf("ShouldDebate = %v %q, want %v %q", got, reason, tt.want, tt.reason)
			}
		})
	}
}

func TestShouldDebate_Disabled(t *testing.T) {
	cfg := debateConfig()
	cfg.Debate.Enabled = false
	o := New(cfg)

	got, reason := o.ShouldDebate([]agent.Outcome{success("a", agent.SeverityCritical)})
	if got || reason != "debate disabled" {
		t.Errorf("ShouldDebate = %v %q", got, reason)
	}
}

func TestRun_ConsensusInFirstDebateRound(t *testing.T) {
	a := &scriptedAgent{id: "a", script: []agent.Severity{agent.SeverityMedium}}
	b := &scriptedAgent{id: "b", script: []agent.Severity{agent.SeverityMedium}}
	initial := []agent.Outcome{
		success("a", agent.SeverityOK),
		success("b", agent.SeverityCritical),
	}

	o := New(debateConfig())
	round := o.Run(context.Background(), []agent.Agent{a, b}, initial, "review this", agent.Context{})

	if !round.ConsensusReached {
		t.Fatal("expected consensus")
	}
	if round.Num != 2 {
		t.Errorf("round = %d, want 2", round.Num)
	}
	if round.FinalSeverity != agent.SeverityMedium {
		t.Errorf("final = %v, want MEDIUM", round.FinalSeverity)
	}
	if a.calls != 1 || b.calls != 1 {
		t.Errorf("calls = %d/%d, want 1/1", a.calls, b.calls)
	}
}

func TestRun_AdjacentSeveritiesTakeHigher(t *testing.T) {
	a := &scriptedAgent{id: "a", script: []agent.Severity{agent.SeverityLow}}
	b := &scriptedAgent{id: "b", script: []agent.Severity{agent.SeverityMedium}}
	initial := []agent.Outcome{
		success("a", agent.SeverityOK),
		success("b", agent.SeverityHigh),
	}

	o := New(debateConfig())
	round := o.Run(context.Background(), []agent.Agent{a, b}, initial, "review this", agent.Context{})

	if !round.ConsensusReached {
		t.Fatal("a one-level spread is consensus")
	}
	if round.FinalSeverity != agent.SeverityMedium {
		t.Errorf("final = %v, want MEDIUM (higher of the pair)", round.FinalSeverity)
	}
}

func TestRun_NoConsensusFallsBackToWeightedVote(t *testing.T) {
	// The agents never budge: OK vs CRITICAL through every round.
	a := &scriptedAgent{id: "a", script: []agent.Severity{agent.SeverityOK}}
	b := &scriptedAgent{id: "b", script: []agent.Severity{agent.SeverityCritical}}
	initial := []agent.Outcome{
		success("a", agent.SeverityOK),
		success("b", agent.SeverityCritical),
	}

	o := New(debateConfig())
	round := o.Run(context.Background(), []agent.Agent{a, b}, initial, "review this", agent.Context{})

	if round.ConsensusReached {
		t.Fatal("expected no consensus")
	}
	if round.Num != 3 {
		t.Errorf("round = %d, want 3 (max_rounds=2 means rounds 2 and 3)", round.Num)
	}
	// Average rank (0+4)/2 = 2.
	if round.FinalSeverity != agent.SeverityMedium {
		t.Errorf("final = %v, want MEDIUM", round.FinalSeverity)
	}
	if a.calls != 2 || b.calls != 2 {
		t.Errorf("calls = %d/%d, want 2/2", a.calls, b.calls)
	}
}

func TestRun_SingleAgentKeepsInitial(t *testing.T) {
	a := &scriptedAgent{id: "a", script: []agent.Severity{agent.SeverityOK}}
	initial := []agent.Outcome{success("a", agent.SeverityHigh)}

	o := New(debateConfig())
	round := o.Run(context.Background(), []agent.Agent{a}, initial, "review this", agent.Context{})

	if round.Num != 1 {
		t.Errorf("round = %d, want 1 (nobody to debate with)", round.Num)
	}
	if a.calls != 0 {
		t.Errorf("calls = %d, want 0", a.calls)
	}
	if round.FinalSeverity != agent.SeverityHigh {
		t.Errorf("final = %v, want HIGH", round.FinalSeverity)
	}
}

func TestWeightedVote_ZeroWeightDefaultsMedium(t *testing.T) {
	cfg := debateConfig()
	cfg.Conflict.Weights = map[string]float64{"a": 0, "b": 0}
	o := New(cfg)

	got := o.weightedVote([]agent.Outcome{
		success("a", agent.SeverityOK),
		success("b", agent.SeverityCritical),
	})
	if got != agent.SeverityMedium {
		t.Errorf("weightedVote = %v, want MEDIUM", got)
	}
}

func TestWeightedVote_Weighted(t *testing.T) {
	cfg := debateConfig()
	cfg.Conflict.Weights = map[string]float64{"a": 3, "b": 1}
	o := New(cfg)

	// (3*0 + 1*4) / 4 = 1 -> LOW.
	got := o.weightedVote([]agent.Outcome{
		success("a", agent.SeverityOK),
		success("b", agent.SeverityCritical),
	})
	if got != agent.SeverityLow {
		t.Errorf("weightedVote = %v, want LOW", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	others := []agent.Outcome{
		{
			AgentID:  "gemini",
			Severity: agent.SeverityHigh,
			Success:  true,
			Findings: []agent.Finding{{Description: "missing lock", Severity: agent.SeverityHigh, Suggestion: "guard with mutex"}},
		},
	}
	prompt := buildPrompt("original request", others, 2)

	for _, want := range []string{
		"## Code Review Debate - Round 2",
		"**gemini** (Severity: HIGH):",
		"- [HIGH] missing lock",
		"Suggestion: guard with mutex",
		"### Original Review Request:\noriginal request",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestFormatResult(t *testing.T) {
	round := Round{
		Num:              2,
		ConsensusReached: true,
		FinalSeverity:    agent.SeverityMedium,
		Results: []agent.Outcome{
			{
				AgentID:  "gemini",
				Severity: agent.SeverityMedium,
				Success:  true,
				Findings: []agent.Finding{
					{Description: "one"}, {Description: "two"},
					{Description: "three"}, {Description: "four"},
				},
			},
			{AgentID: "copilot", Success: false, Err: "timeout"},
		},
	}

	got := FormatResult(round)
	for _, want := range []string{
		"Debate result (round 2)",
		"Consensus reached: yes",
		"Final severity: MEDIUM",
		"gemini: MEDIUM",
		"- three",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("result missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "four") {
		t.Error("findings should be capped at three per agent")
	}
	if strings.Contains(got, "copilot") {
		t.Error("failed outcomes should be omitted")
	}
}
