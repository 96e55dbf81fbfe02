package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if len(cfg.EnabledAdapters) != 2 || cfg.EnabledAdapters[0] != "gemini" || cfg.EnabledAdapters[1] != "copilot" {
		t.Errorf("enabled adapters = %v", cfg.EnabledAdapters)
	}
	if !cfg.ParallelExecution {
		t.Error("parallel execution should default on")
	}
	if cfg.Timeout() != 60*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if !cfg.Debounce.Enabled || cfg.Debounce.Window() != 3*time.Second {
		t.Errorf("debounce = %+v", cfg.Debounce)
	}
	if cfg.Rework.MaxRetries != 3 {
		t.Errorf("max retries = %d", cfg.Rework.MaxRetries)
	}
	if cfg.Conflict.Policy != "conservative" {
		t.Errorf("policy = %q", cfg.Conflict.Policy)
	}
	if cfg.Debate.Enabled {
		t.Error("debate should default off")
	}
	if cfg.Debate.MaxRounds != 2 {
		t.Errorf("max rounds = %d", cfg.Debate.MaxRounds)
	}
	if cfg.Completion.MaxReviews != 3 {
		t.Errorf("max reviews = %d", cfg.Completion.MaxReviews)
	}
	if !cfg.Security.MaskSensitiveData {
		t.Error("masking should default on")
	}
	if cfg.StateDir == "" || cfg.LogDir == "" || cfg.PromptDir == "" {
		t.Errorf("path defaults missing: %+v", cfg)
	}
}

func TestMaxRetriesFor(t *testing.T) {
	cfg := Default()
	cfg.Rework.MaxRetries = 3
	cfg.StageSettings = map[string]StageConfig{
		"final": {MaxRetries: 5},
		"plan":  {},
	}

	if got := cfg.MaxRetriesFor("final"); got != 5 {
		t.Errorf("final = %d, want 5", got)
	}
	// A zero per-stage value means "use the global limit".
	if got := cfg.MaxRetriesFor("plan"); got != 3 {
		t.Errorf("plan = %d, want 3", got)
	}
	if got := cfg.MaxRetriesFor("code"); got != 3 {
		t.Errorf("code = %d, want 3", got)
	}
}

func TestDebounceAppliesTo(t *testing.T) {
	d := DebounceConfig{Stages: []string{"code", "test"}}
	if !d.AppliesTo("code") || d.AppliesTo("plan") {
		t.Errorf("AppliesTo misbehaving for %+v", d)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "quorum")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	body := `{
		"enabled_adapters": ["gemini"],
		"timeout_seconds": 30,
		"conflict_resolution": {"policy": "majority_vote"},
		"debate": {"enabled": true, "max_rounds": 3}
	}`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(body), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Load()
	if len(cfg.EnabledAdapters) != 1 || cfg.EnabledAdapters[0] != "gemini" {
		t.Errorf("adapters = %v", cfg.EnabledAdapters)
	}
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Timeout())
	}
	if cfg.Conflict.Policy != "majority_vote" {
		t.Errorf("policy = %q", cfg.Conflict.Policy)
	}
	if !cfg.Debate.Enabled || cfg.Debate.MaxRounds != 3 {
		t.Errorf("debate = %+v", cfg.Debate)
	}
	// Untouched settings keep their defaults.
	if cfg.Rework.MaxRetries != 3 {
		t.Errorf("max retries = %d", cfg.Rework.MaxRetries)
	}
}

func TestLoad_MalformedFileFallsBack(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	cfgDir := filepath.Join(dir, "quorum")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte("{broken"), 0o644); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg := Load()
	if len(cfg.EnabledAdapters) != 2 {
		t.Errorf("adapters = %v, want defaults", cfg.EnabledAdapters)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := Load()
	if cfg.Conflict.Policy != "conservative" {
		t.Errorf("policy = %q, want conservative", cfg.Conflict.Policy)
	}
}

func TestConfigDir_XDG(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")

	dir, err := ConfigDir()
	if err != nil {
		t.Fatalf("ConfigDir: %v", err)
	}
	if dir != filepath.Join("/custom/config", "quorum") {
		t.Errorf("dir = %q", dir)
	}
}
