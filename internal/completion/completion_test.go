package completion

import (
	"context"
	"strings"
	"testing"

	"github.com/dshills/quorum/internal/agent"
	"github.com/dshills/quorum/internal/audit"
	"github.com/dshills/quorum/internal/config"
	"github.com/dshills/quorum/internal/debate"
	"github.com/dshills/quorum/internal/hook"
	"github.com/dshills/quorum/internal/quota"
	"github.com/dshills/quorum/internal/state"
)

type fakeAgent struct {
	id       string
	severity agent.Severity
	findings []agent.Finding
	calls    int
}

func (f *fakeAgent) ID() string      { return f.id }
func (f *fakeAgent) Available() bool { return true }

func (f *fakeAgent) Review(_ context.Context, _ string, _ agent.Context) agent.Outcome {
	f.calls++
	return agent.Outcome{
		AgentID:  f.id,
		Severity: f.severity,
		Findings: f.findings,
		Success:  true,
	}
}

type testHarness struct {
	store *state.Store
	orch  *Orchestrator
}

func newTestHarness(t *testing.T, cfg config.Config, external []agent.Agent) *testHarness {
	t.Helper()
	cfg.StateDir = t.TempDir()
	cfg.LogDir = t.TempDir()
	cfg.PromptDir = t.TempDir()

	store, err := state.NewStore(cfg.StateDir)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	monitor, err := quota.NewMonitor(cfg.StateDir)
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}

	return &testHarness{
		store: store,
		orch:  New(cfg, external, store, monitor, audit.New(cfg.LogDir), debate.New(cfg)),
	}
}

func completedInput(sessionID string) hook.Input {
	return hook.Input{
		SessionID:   sessionID,
		ToolName:    "TodoWrite",
		UserRequest: "add a cache layer",
		ToolInput: hook.ToolInput{
			Todos: []agent.Todo{
				{Content: "implement cache", Status: "completed"},
				{Content: "write tests", Status: "completed"},
			},
		},
	}
}

func TestRun_NotYetCompleted(t *testing.T) {
	ext := &fakeAgent{id: "gemini", severity: agent.SeverityOK}
	h := newTestHarness(t, config.Default(), []agent.Agent{ext})

	in := completedInput("s1")
	in.ToolInput.Todos[1].Status = "in_progress"

	out := h.orch.Run(context.Background(), in)
	if !out.Continue || out.SystemMessage != "" {
		t.Errorf("output = %+v, want silent continue", out)
	}
	if ext.calls != 0 {
		t.Errorf("external agent called %d times before completion", ext.calls)
	}
}

func TestRun_JustCompletedIncludesSelfReview(t *testing.T) {
	ext := &fakeAgent{id: "gemini", severity: agent.SeverityOK}
	h := newTestHarness(t, config.Default(), []agent.Agent{ext})

	out := h.orch.Run(context.Background(), completedInput("s1"))
	if !out.Continue {
		t.Fatal("OK review should continue")
	}
	for _, want := range []string{
		"independent review",
		"Original request:\nadd a cache layer",
		"[x] implement cache",
	} {
		if !strings.Contains(out.SystemMessage, want) {
			t.Errorf("message missing %q:\n%s", want, out.SystemMessage)
		}
	}
	if ext.calls != 1 {
		t.Errorf("external calls = %d, want 1", ext.calls)
	}

	if count, _ := h.store.CompletionReviewCount("s1"); count != 1 {
		t.Errorf("review count = %d, want 1", count)
	}
}

func TestRun_FiresOncePerCompletion(t *testing.T) {
	ext := &fakeAgent{id: "gemini", severity: agent.SeverityOK}
	h := newTestHarness(t, config.Default(), []agent.Agent{ext})

	h.orch.Run(context.Background(), completedInput("s1"))
	out := h.orch.Run(context.Background(), completedInput("s1"))
	if !out.Continue || out.SystemMessage != "" {
		t.Errorf("repeat completion = %+v, want silent continue", out)
	}
	if ext.calls != 1 {
		t.Errorf("external calls = %d, want 1", ext.calls)
	}
}

func TestRun_CriticalBlocks(t *testing.T) {
	ext := &fakeAgent{
		id:       "gemini",
		severity: agent.SeverityCritical,
		findings: []agent.Finding{{Description: "secrets committed", Severity: agent.SeverityCritical}},
	}
	h := newTestHarness(t, config.Default(), []agent.Agent{ext})

	out := h.orch.Run(context.Background(), completedInput("s1"))
	if out.Continue {
		t.Fatal("CRITICAL completion review should block")
	}
	for _, want := range []string{
		"External review result (CRITICAL)",
		"secrets committed",
		"CRITICAL issue found",
	} {
		if !strings.Contains(out.SystemMessage, want) {
			t.Errorf("message missing %q:\n%s", want, out.SystemMessage)
		}
	}
}

func TestRun_HighWarnsButContinues(t *testing.T) {
	ext := &fakeAgent{
		id:       "gemini",
		severity: agent.SeverityHigh,
		findings: []agent.Finding{{Description: "missing error handling", Severity: agent.SeverityHigh}},
	}
	h := newTestHarness(t, config.Default(), []agent.Agent{ext})

	out := h.orch.Run(context.Background(), completedInput("s1"))
	if !out.Continue {
		t.Fatal("only CRITICAL blocks the completion review")
	}
	if !strings.Contains(out.SystemMessage, "External review result (HIGH)") {
		t.Errorf("message = %q", out.SystemMessage)
	}
}

func TestRun_MaxReviewsReached(t *testing.T) {
	ext := &fakeAgent{id: "gemini", severity: agent.SeverityCritical}
	h := newTestHarness(t, config.Default(), []agent.Agent{ext})

	for i := 0; i < 3; i++ {
		if _, err := h.store.IncrementCompletionReviewCount("s1"); err != nil {
			t.Fatalf("IncrementCompletionReviewCount: %v", err)
		}
	}

	out := h.orch.Run(context.Background(), completedInput("s1"))
	if !out.Continue {
		t.Fatal("max reviews reached should proceed")
	}
	if !strings.Contains(out.SystemMessage, "max review count (3) reached") {
		t.Errorf("message = %q", out.SystemMessage)
	}
	if ext.calls != 0 {
		t.Errorf("external calls = %d, want 0", ext.calls)
	}
}

func TestRun_ExternalReviewDisabled(t *testing.T) {
	ext := &fakeAgent{id: "gemini", severity: agent.SeverityCritical}
	cfg := config.Default()
	cfg.Completion.IncludeExternalReview = false
	h := newTestHarness(t, cfg, []agent.Agent{ext})

	out := h.orch.Run(context.Background(), completedInput("s1"))
	if !out.Continue {
		t.Fatal("self-review alone never blocks")
	}
	if ext.calls != 0 {
		t.Errorf("external calls = %d, want 0", ext.calls)
	}
}
