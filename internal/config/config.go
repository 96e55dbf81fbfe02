package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

// Config is the complete quorum configuration.
type Config struct {
	EnabledAdapters   []string               `mapstructure:"enabled_adapters"`
	ParallelExecution bool                   `mapstructure:"parallel_execution"`
	TimeoutSeconds    int                    `mapstructure:"timeout_seconds"`
	Debounce          DebounceConfig         `mapstructure:"debounce"`
	Override          OverrideConfig         `mapstructure:"override"`
	Rework            ReworkConfig           `mapstructure:"rework_settings"`
	StageSettings     map[string]StageConfig `mapstructure:"stage_settings"`
	Conflict          ConflictConfig         `mapstructure:"conflict_resolution"`
	Debate            DebateConfig           `mapstructure:"debate"`
	Completion        CompletionConfig       `mapstructure:"completion_review"`
	Gemini            GeminiConfig           `mapstructure:"gemini"`
	Security          SecurityConfig         `mapstructure:"security"`
	StateDir          string                 `mapstructure:"state_dir"`
	LogDir            string                 `mapstructure:"log_dir"`
	PromptDir         string                 `mapstructure:"prompt_dir"`
}

// DebounceConfig suppresses repeated triggers for the same session/stage
// within a time window.
type DebounceConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Seconds int      `mapstructure:"seconds"`
	Stages  []string `mapstructure:"stages"`
}

// Window returns the debounce window as a duration.
func (d DebounceConfig) Window() time.Duration {
	return time.Duration(d.Seconds) * time.Second
}

// AppliesTo reports whether the stage participates in debouncing.
func (d DebounceConfig) AppliesTo(stage string) bool {
	for _, s := range d.Stages {
		if s == stage {
			return true
		}
	}
	return false
}

// OverrideConfig controls the one-shot review-skip token.
type OverrideConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// ReworkConfig bounds how many times a high-severity review may block.
type ReworkConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

// StageConfig holds per-stage overrides.
type StageConfig struct {
	MaxRetries int `mapstructure:"max_retries"`
}

// ConflictConfig selects the severity conflict-resolution policy.
type ConflictConfig struct {
	Policy  string             `mapstructure:"policy"`
	Weights map[string]float64 `mapstructure:"weights"`
}

// DebateConfig controls the multi-round debate protocol.
type DebateConfig struct {
	Enabled               bool `mapstructure:"enabled"`
	MaxRounds             int  `mapstructure:"max_rounds"`
	TriggerOnDisagreement bool `mapstructure:"trigger_on_disagreement"`
	TriggerOnHighSeverity bool `mapstructure:"trigger_on_high_severity"`
}

// CompletionConfig controls the todo-completion review.
type CompletionConfig struct {
	IncludeSelfReview     bool `mapstructure:"include_self_review"`
	IncludeExternalReview bool `mapstructure:"include_external_review"`
	MaxReviews            int  `mapstructure:"max_reviews"`
}

// GeminiConfig holds Gemini agent settings.
type GeminiConfig struct {
	Model string `mapstructure:"model"`
}

// SecurityConfig controls sensitive-data masking of review context.
type SecurityConfig struct {
	MaskSensitiveData bool     `mapstructure:"mask_sensitive_data"`
	SensitivePatterns []string `mapstructure:"sensitive_patterns"`
}

// Timeout returns the per-agent-call timeout.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxRetriesFor returns the retry limit for a stage, preferring the
// per-stage override.
func (c Config) MaxRetriesFor(stage string) int {
	if sc, ok := c.StageSettings[stage]; ok && sc.MaxRetries > 0 {
		return sc.MaxRetries
	}
	return c.Rework.MaxRetries
}

// Default returns the built-in configuration.
func Default() Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	// Defaults always unmarshal cleanly.
	_ = v.Unmarshal(&cfg)
	cfg.applyPathDefaults()
	return cfg
}

// Load builds the effective config: defaults <- config file <- QUORUM_*
// environment variables. A missing config file is fine; a malformed one
// falls back to the built-in defaults rather than failing the hook.
func Load() Config {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	if dir, err := ConfigDir(); err == nil {
		v.AddConfigPath(dir)
	}
	v.SetEnvPrefix("QUORUM")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return Default()
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Default()
	}
	cfg.applyPathDefaults()
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("enabled_adapters", []string{"gemini", "copilot"})
	v.SetDefault("parallel_execution", true)
	v.SetDefault("timeout_seconds", 60)

	v.SetDefault("debounce.enabled", true)
	v.SetDefault("debounce.seconds", 3)
	v.SetDefault("debounce.stages", []string{"code"})

	v.SetDefault("override.enabled", true)

	v.SetDefault("rework_settings.max_retries", 3)

	v.SetDefault("conflict_resolution.policy", "conservative")

	v.SetDefault("debate.enabled", false)
	v.SetDefault("debate.max_rounds", 2)
	v.SetDefault("debate.trigger_on_disagreement", true)
	v.SetDefault("debate.trigger_on_high_severity", true)

	v.SetDefault("completion_review.include_self_review", true)
	v.SetDefault("completion_review.include_external_review", true)
	v.SetDefault("completion_review.max_reviews", 3)

	v.SetDefault("security.mask_sensitive_data", true)
	v.SetDefault("security.sensitive_patterns", []string{
		"password", "api_key", "secret", "token", "credential",
		"private_key", "access_key", "auth_token",
	})
}

func (c *Config) applyPathDefaults() {
	base, err := ConfigDir()
	if err != nil {
		base = "."
	}
	if c.StateDir == "" {
		c.StateDir = filepath.Join(base, "state")
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(base, "logs")
	}
	if c.PromptDir == "" {
		c.PromptDir = filepath.Join(base, "prompts")
	}
}

// ConfigDir returns the platform-appropriate config directory for quorum.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "quorum"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "quorum"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "quorum"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "quorum"), nil
	default:
		return filepath.Join(home, ".config", "quorum"), nil
	}
}
