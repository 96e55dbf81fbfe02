package review

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dshills/quorum/internal/agent"
)

// Dispatch fans a review out to the given agents and collects outcomes in
// completion order. Every call carries its own timeout; a timed-out or
// failed call becomes a failed Outcome without touching sibling calls.
// With parallel false (or a single agent) the calls run sequentially.
func Dispatch(ctx context.Context, agents []agent.Agent, prompt string, rc agent.Context, parallel bool, timeout time.Duration) []agent.Outcome {
	if len(agents) == 0 {
		return nil
	}

	if !parallel || len(agents) == 1 {
		outcomes := make([]agent.Outcome, 0, len(agents))
		for _, a := range agents {
			outcomes = append(outcomes, callOne(ctx, a, prompt, rc, timeout))
		}
		return outcomes
	}

	results := make(chan agent.Outcome, len(agents))
	var wg sync.WaitGroup
	for _, a := range agents {
		wg.Add(1)
		go func(a agent.Agent) {
			defer wg.Done()
			results <- callOne(ctx, a, prompt, rc, timeout)
		}(a)
	}
	wg.Wait()
	close(results)

	outcomes := make([]agent.Outcome, 0, len(agents))
	for out := range results {
		outcomes = append(outcomes, out)
	}
	return outcomes
}

func callOne(ctx context.Context, a agent.Agent, prompt string, rc agent.Context, timeout time.Duration) (out agent.Outcome) {
	// The agent contract forbids panics, but a panicking agent must not
	// take the whole hook down with it.
	defer func() {
		if r := recover(); r != nil {
			out = agent.Failed(a.ID(), fmt.Sprintf("agent panicked: %v", r))
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return a.Review(callCtx, prompt, rc)
}
