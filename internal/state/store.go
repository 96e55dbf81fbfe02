package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

// Namespaces for per-session records. Each (session, namespace) pair maps
// to one durable JSON file guarded by an advisory lock of the same key.
const (
	nsRetry    = "retry"
	nsDebounce = "debounce"
	nsOverride = "override"
	nsTodo     = "todo"
)

var namespaces = []string{nsRetry, nsDebounce, nsOverride, nsTodo}

// Store provides durable, lock-protected per-session counters. Locks are
// held only across the read-modify-write of a single operation, never
// across an agent call.
type Store struct {
	dir string
	now func() time.Time
}

// NewStore creates a Store persisting under dir.
func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}
	return &Store{dir: dir, now: time.Now}, nil
}

func (s *Store) statePath(sessionID, namespace string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.json", sessionID, namespace))
}

func (s *Store) lockPath(sessionID, namespace string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%s.lock", sessionID, namespace))
}

// read unmarshals a record into dst. A missing or corrupt record is
// treated as absent, not an error.
func (s *Store) read(sessionID, namespace string, dst any) error {
	lock := flock.New(s.lockPath(sessionID, namespace))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s/%s: %w", sessionID, namespace, err)
	}
	defer lock.Unlock()

	data, err := os.ReadFile(s.statePath(sessionID, namespace))
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return nil
	}
	return nil
}

// update runs fn over the record under its lock and writes the result
// back.
func (s *Store) update(sessionID, namespace string, dst any, fn func()) error {
	lock := flock.New(s.lockPath(sessionID, namespace))
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("locking %s/%s: %w", sessionID, namespace, err)
	}
	defer lock.Unlock()

	if data, err := os.ReadFile(s.statePath(sessionID, namespace)); err == nil {
		// Corrupt records are treated as empty.
		_ = json.Unmarshal(data, dst)
	}

	fn()

	data, err := json.MarshalIndent(dst, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s/%s: %w", sessionID, namespace, err)
	}
	if err := os.WriteFile(s.statePath(sessionID, namespace), data, 0o644); err != nil {
		return fmt.Errorf("writing %s/%s: %w", sessionID, namespace, err)
	}
	return nil
}

// RetryCount returns the retry count for a stage.
func (s *Store) RetryCount(sessionID, stage string) (int, error) {
	counts := map[string]int{}
	if err := s.read(sessionID, nsRetry, &counts); err != nil {
		return 0, err
	}
	return counts[stage], nil
}

// IncrementRetry bumps the stage's retry count and returns the new value.
func (s *Store) IncrementRetry(sessionID, stage string) (int, error) {
	counts := map[string]int{}
	err := s.update(sessionID, nsRetry, &counts, func() {
		counts[stage]++
	})
	return counts[stage], err
}

// ResetRetry clears the stage's retry count.
func (s *Store) ResetRetry(sessionID, stage string) error {
	counts := map[string]int{}
	return s.update(sessionID, nsRetry, &counts, func() {
		counts[stage] = 0
	})
}

// LastCallTime returns the recorded last-call time for a stage.
func (s *Store) LastCallTime(sessionID, stage string) (time.Time, bool, error) {
	times := map[string]int64{}
	if err := s.read(sessionID, nsDebounce, &times); err != nil {
		return time.Time{}, false, err
	}
	ms, ok := times[stage]
	if !ok {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

// UpdateLastCallTime records now as the stage's last-call time.
func (s *Store) UpdateLastCallTime(sessionID, stage string) error {
	times := map[string]int64{}
	return s.update(sessionID, nsDebounce, &times, func() {
		times[stage] = s.now().UnixMilli()
	})
}

// ShouldDebounce reports whether the stage was called within the window.
func (s *Store) ShouldDebounce(sessionID, stage string, window time.Duration) (bool, error) {
	last, ok, err := s.LastCallTime(sessionID, stage)
	if err != nil || !ok {
		return false, err
	}
	return s.now().Sub(last) < window, nil
}

type overrideRecord struct {
	SkipCount int       `json:"skip_count"`
	SetAt     time.Time `json:"set_at"`
}

// SetOverride arms the one-shot skip token to fire for the next skipCount
// reviews.
func (s *Store) SetOverride(sessionID string, skipCount int) error {
	var rec overrideRecord
	return s.update(sessionID, nsOverride, &rec, func() {
		rec.SkipCount = skipCount
		rec.SetAt = s.now()
	})
}

// CheckAndConsumeOverride atomically consumes one skip token. It returns
// true if a token remained.
func (s *Store) CheckAndConsumeOverride(sessionID string) (bool, error) {
	var rec overrideRecord
	consumed := false
	err := s.update(sessionID, nsOverride, &rec, func() {
		if rec.SkipCount > 0 {
			rec.SkipCount--
			consumed = true
		}
	})
	return consumed, err
}

// TodoRecord is the persisted todo-completion snapshot. ReviewCount is
// preserved across snapshot saves and only changes through the increment
// and reset operations.
type TodoRecord struct {
	AllCompleted bool       `json:"all_completed"`
	Completed    int        `json:"completed_count"`
	Total        int        `json:"total_count"`
	ReviewCount  int        `json:"review_count"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TodoState returns the current todo snapshot.
func (s *Store) TodoState(sessionID string) (TodoRecord, error) {
	var rec TodoRecord
	err := s.read(sessionID, nsTodo, &rec)
	return rec, err
}

// SaveTodoSnapshot updates the completion snapshot, keeping the review
// counter intact.
func (s *Store) SaveTodoSnapshot(sessionID string, allCompleted bool, completed, total int) error {
	var rec TodoRecord
	return s.update(sessionID, nsTodo, &rec, func() {
		rec.AllCompleted = allCompleted
		rec.Completed = completed
		rec.Total = total
		rec.UpdatedAt = s.now()
	})
}

// CompletionReviewCount returns how many completion reviews have run.
func (s *Store) CompletionReviewCount(sessionID string) (int, error) {
	rec, err := s.TodoState(sessionID)
	return rec.ReviewCount, err
}

// IncrementCompletionReviewCount bumps the completion review counter and
// returns the new value.
func (s *Store) IncrementCompletionReviewCount(sessionID string) (int, error) {
	var rec TodoRecord
	err := s.update(sessionID, nsTodo, &rec, func() {
		rec.ReviewCount++
		now := s.now()
		rec.LastReviewAt = &now
	})
	return rec.ReviewCount, err
}

// ResetCompletionReviewCount clears the completion review counter, for
// when a new task starts.
func (s *Store) ResetCompletionReviewCount(sessionID string) error {
	var rec TodoRecord
	return s.update(sessionID, nsTodo, &rec, func() {
		rec.ReviewCount = 0
	})
}

// Cleanup deletes every namespace record and lock for a session.
func (s *Store) Cleanup(sessionID string) error {
	var firstErr error
	for _, ns := range namespaces {
		for _, path := range []string{s.statePath(sessionID, ns), s.lockPath(sessionID, ns)} {
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
