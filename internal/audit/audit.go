// Package audit appends orchestration decisions to a daily JSONL log.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Logger writes one JSON object per line to audit-YYYY-MM-DD.jsonl.
// Logging is best effort: callers never fail a review because the audit
// log could not be written.
type Logger struct {
	dir string
	now func() time.Time
}

// New creates a Logger writing under dir.
func New(dir string) *Logger {
	return &Logger{dir: dir, now: time.Now}
}

// Log appends an event. The id, timestamp, event_type, and session_id
// fields are set here; fields carries everything event-specific.
func (l *Logger) Log(eventType, sessionID string, fields map[string]any) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return fmt.Errorf("creating audit log directory: %w", err)
	}

	event := make(map[string]any, len(fields)+4)
	for k, v := range fields {
		event[k] = v
	}
	event["id"] = uuid.NewString()
	event["timestamp"] = l.now().Format(time.RFC3339)
	event["event_type"] = eventType
	event["session_id"] = sessionID

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling audit event: %w", err)
	}

	name := fmt.Sprintf("audit-%s.jsonl", l.now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(l.dir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("writing audit event: %w", err)
	}
	return nil
}
