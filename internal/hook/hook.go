// Package hook implements the host invocation contract: JSON on stdin,
// a JSON continuation decision on stdout, exit code 0 always. Internal
// failures surface only through the message and continue fields; the
// caller's flow is never hard-crashed.
package hook

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/quorum/internal/agent"
)

// Input is the event payload from the host. The host may send the event
// directly or wrapped as {"stage": ..., "hook_input": {...}}; Read
// flattens the wrapper form.
type Input struct {
	SessionID      string    `json:"session_id"`
	Stage          string    `json:"stage,omitempty"`
	ToolName       string    `json:"tool_name,omitempty"`
	ToolInput      ToolInput `json:"tool_input,omitempty"`
	TranscriptPath string    `json:"transcript_path,omitempty"`
	UserRequest    string    `json:"user_request,omitempty"`
	WorkDir        string    `json:"cwd,omitempty"`

	HookInput *Input `json:"hook_input,omitempty"`
}

// ToolInput carries the payload of the triggering tool call.
type ToolInput struct {
	FilePath  string       `json:"file_path,omitempty"`
	OldString string       `json:"old_string,omitempty"`
	NewString string       `json:"new_string,omitempty"`
	Content   string       `json:"content,omitempty"`
	Todos     []agent.Todo `json:"todos,omitempty"`
}

// Output is the continuation decision returned to the host.
type Output struct {
	Continue      bool   `json:"continue"`
	SystemMessage string `json:"systemMessage,omitempty"`
}

// Continue builds a non-blocking output with an optional message.
func Continue(message string) Output {
	return Output{Continue: true, SystemMessage: message}
}

// Block builds a blocking output.
func Block(message string) Output {
	return Output{Continue: false, SystemMessage: message}
}

// Read decodes an Input, flattening the wrapper form: an embedded
// hook_input becomes the event, with the outer stage kept if the inner
// one is empty.
func Read(r io.Reader) (Input, error) {
	var in Input
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return Input{}, fmt.Errorf("decoding hook input: %w", err)
	}
	if in.HookInput != nil {
		inner := *in.HookInput
		if inner.Stage == "" {
			inner.Stage = in.Stage
		}
		inner.HookInput = nil
		return inner, nil
	}
	return in, nil
}

// Write encodes the decision to w.
func Write(w io.Writer, out Output) error {
	if err := json.NewEncoder(w).Encode(out); err != nil {
		return fmt.Errorf("encoding hook output: %w", err)
	}
	return nil
}
