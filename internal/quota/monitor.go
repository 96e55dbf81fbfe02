package quota

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"
)

// Status is the per-agent daily health state.
type Status string

const (
	StatusAvailable Status = "available"
	StatusLow       Status = "low"
	StatusExhausted Status = "exhausted"
	StatusUnknown   Status = "unknown"
)

const (
	cooldownDuration   = 30 * time.Minute
	exhaustedThreshold = 3
	lowThreshold       = 2
)

// quotaKeywords mark error text that indicates rate-limit or quota
// exhaustion. Matched case-insensitively as substrings.
var quotaKeywords = []string{"quota", "limit", "exceeded", "rate", "429", "exhausted"}

// Health tracks one agent's success/failure record for the current day.
type Health struct {
	Agent               string     `json:"agent"`
	Status              Status     `json:"status"`
	SuccessCount        int        `json:"success_count"`
	FailureCount        int        `json:"failure_count"`
	ConsecutiveFailures int        `json:"consecutive_failures"`
	LastSuccess         *time.Time `json:"last_success,omitempty"`
	LastFailure         *time.Time `json:"last_failure,omitempty"`
	CooldownUntil       *time.Time `json:"cooldown_until,omitempty"`
}

type stateFile struct {
	Date      string             `json:"date"`
	UpdatedAt time.Time          `json:"updated_at"`
	Quotas    map[string]*Health `json:"quotas"`
}

// Monitor tracks per-agent daily health and filters which agents are
// eligible to be queried. State is file-backed; records from a previous
// calendar date are discarded wholesale on first load.
type Monitor struct {
	dir string
	now func() time.Time

	mu     sync.Mutex
	quotas map[string]*Health
	loaded bool
}

// NewMonitor creates a Monitor persisting under dir.
func NewMonitor(dir string) (*Monitor, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating quota state directory: %w", err)
	}
	return &Monitor{
		dir:    dir,
		now:    time.Now,
		quotas: make(map[string]*Health),
	}, nil
}

func (m *Monitor) statePath() string { return filepath.Join(m.dir, "quota_state.json") }
func (m *Monitor) lockPath() string  { return filepath.Join(m.dir, "quota_state.lock") }

func (m *Monitor) today() string { return m.now().Format("2006-01-02") }

// load reads the state file, discarding it entirely if it belongs to a
// previous day or is corrupt. Caller holds m.mu.
func (m *Monitor) load() {
	if m.loaded {
		return
	}
	m.loaded = true
	m.quotas = make(map[string]*Health)

	lock := flock.New(m.lockPath())
	if err := lock.Lock(); err != nil {
		return
	}
	defer lock.Unlock()

	data, err := os.ReadFile(m.statePath())
	if err != nil {
		return
	}
	var state stateFile
	if err := json.Unmarshal(data, &state); err != nil {
		return
	}
	if state.Date != m.today() {
		return
	}
	for name, h := range state.Quotas {
		if h == nil {
			continue
		}
		h.Agent = name
		m.quotas[name] = h
	}
}

// save writes the state file. Caller holds m.mu.
func (m *Monitor) save() {
	state := stateFile{
		Date:      m.today(),
		UpdatedAt: m.now(),
		Quotas:    m.quotas,
	}
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return
	}

	lock := flock.New(m.lockPath())
	if err := lock.Lock(); err != nil {
		return
	}
	defer lock.Unlock()

	_ = os.WriteFile(m.statePath(), data, 0o644)
}

func (m *Monitor) health(agentID string, initial Status) *Health {
	h, ok := m.quotas[agentID]
	if !ok {
		h = &Health{Agent: agentID, Status: initial}
		m.quotas[agentID] = h
	}
	return h
}

// RecordSuccess marks a successful call: status AVAILABLE, consecutive
// failures cleared, cooldown lifted.
func (m *Monitor) RecordSuccess(agentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load()

	h := m.health(agentID, StatusAvailable)
	now := m.now()
	h.SuccessCount++
	h.ConsecutiveFailures = 0
	h.LastSuccess = &now
	h.Status = StatusAvailable
	h.CooldownUntil = nil
	m.save()
}

// RecordFailure marks a failed call. Error text matching the quota
// vocabulary, or three consecutive failures, transitions the agent to
// EXHAUSTED with a 30-minute cooldown; two consecutive failures mark it
// LOW.
func (m *Monitor) RecordFailure(agentID, errText string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load()

	h := m.health(agentID, StatusUnknown)
	now := m.now()
	h.FailureCount++
	h.ConsecutiveFailures++
	h.LastFailure = &now

	if isQuotaError(errText) || h.ConsecutiveFailures >= exhaustedThreshold {
		h.Status = StatusExhausted
		until := now.Add(cooldownDuration)
		h.CooldownUntil = &until
	} else if h.ConsecutiveFailures >= lowThreshold {
		h.Status = StatusLow
	}
	m.save()
}

// IsAvailable reports whether the agent may be queried. Only EXHAUSTED
// with an unexpired cooldown excludes an agent; an elapsed cooldown
// resets the record to UNKNOWN, re-admitting it optimistically.
func (m *Monitor) IsAvailable(agentID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load()

	h, ok := m.quotas[agentID]
	if !ok {
		return true
	}

	if h.CooldownUntil != nil {
		if m.now().Before(*h.CooldownUntil) {
			return false
		}
		h.Status = StatusUnknown
		h.ConsecutiveFailures = 0
		h.CooldownUntil = nil
		m.save()
	}

	return h.Status != StatusExhausted
}

// Filter returns the subset of agentIDs that are currently available.
func (m *Monitor) Filter(agentIDs []string) []string {
	available := make([]string, 0, len(agentIDs))
	for _, id := range agentIDs {
		if m.IsAvailable(id) {
			available = append(available, id)
		}
	}
	return available
}

// AgentSummary is one agent's line in the quota summary.
type AgentSummary struct {
	Status   Status `json:"status"`
	Success  int    `json:"success"`
	Failures int    `json:"failures"`
}

// Summary returns the per-agent counters for the current day.
func (m *Monitor) Summary() map[string]AgentSummary {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.load()

	summary := make(map[string]AgentSummary, len(m.quotas))
	for name, h := range m.quotas {
		summary[name] = AgentSummary{
			Status:   h.Status,
			Success:  h.SuccessCount,
			Failures: h.FailureCount,
		}
	}
	return summary
}

// Reset discards all quota records for the current day.
func (m *Monitor) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.loaded = true
	m.quotas = make(map[string]*Health)

	lock := flock.New(m.lockPath())
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking quota state: %w", err)
	}
	defer lock.Unlock()

	if err := os.Remove(m.statePath()); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing quota state: %w", err)
	}
	return nil
}

func isQuotaError(errText string) bool {
	lower := strings.ToLower(errText)
	for _, kw := range quotaKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
