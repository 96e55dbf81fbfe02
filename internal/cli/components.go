package cli

import (
	"fmt"
	"os"

	"github.com/dshills/quorum/internal/agent"
	"github.com/dshills/quorum/internal/audit"
	"github.com/dshills/quorum/internal/config"
	"github.com/dshills/quorum/internal/debate"
	"github.com/dshills/quorum/internal/quota"
	"github.com/dshills/quorum/internal/state"
)

// components holds the shared collaborators every command wires together.
type components struct {
	cfg     config.Config
	store   *state.Store
	monitor *quota.Monitor
	auditor *audit.Logger
	agents  []agent.Agent
	debater *debate.Orchestrator
}

// buildComponents loads configuration and constructs the collaborator
// graph. Unknown adapter names are skipped with a warning rather than
// failing the whole command.
func buildComponents() (*components, error) {
	cfg := config.Load()

	store, err := state.NewStore(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("state store: %w", err)
	}

	monitor, err := quota.NewMonitor(cfg.StateDir)
	if err != nil {
		return nil, fmt.Errorf("quota monitor: %w", err)
	}

	agents := make([]agent.Agent, 0, len(cfg.EnabledAdapters))
	for _, id := range cfg.EnabledAdapters {
		a, err := agent.New(id, agent.Options{
			Timeout:     cfg.Timeout(),
			GeminiModel: cfg.Gemini.Model,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: skipping adapter %q: %v\n", id, err)
			continue
		}
		agents = append(agents, a)
	}

	return &components{
		cfg:     cfg,
		store:   store,
		monitor: monitor,
		auditor: audit.New(cfg.LogDir),
		agents:  agents,
		debater: debate.New(cfg),
	}, nil
}
