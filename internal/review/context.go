package review

import (
	"fmt"

	"github.com/dshills/quorum/internal/agent"
	"github.com/dshills/quorum/internal/hook"
	"github.com/dshills/quorum/internal/redact"
)

// ExtractContext builds the review context from the triggering event.
// Edit payloads (old/new string) become a diff, Write payloads become
// code, and TodoWrite payloads carry the todo list. Code and diff go
// through sensitive-data masking when a masker is provided.
func ExtractContext(in hook.Input, masker *redact.Masker) agent.Context {
	rc := agent.Context{
		SessionID:   in.SessionID,
		ToolName:    in.ToolName,
		WorkDir:     in.WorkDir,
		UserRequest: in.UserRequest,
	}
	if rc.SessionID == "" {
		rc.SessionID = "unknown"
	}

	ti := in.ToolInput
	switch {
	case ti.OldString != "" || ti.NewString != "":
		rc.FilePath = ti.FilePath
		rc.Diff = fmt.Sprintf("- %s\n+ %s", ti.OldString, ti.NewString)
		rc.Code = ti.NewString
	case ti.Content != "":
		rc.FilePath = ti.FilePath
		rc.Code = ti.Content
	case len(ti.Todos) > 0:
		rc.Todos = ti.Todos
	}

	if masker != nil {
		if rc.Code != "" {
			rc.Code = masker.Mask(rc.Code)
		}
		if rc.Diff != "" {
			rc.Diff = masker.Mask(rc.Diff)
		}
	}
	return rc
}
