package agent

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Copilot reviews by shelling out to the GitHub Copilot CLI.
type Copilot struct {
	cliPath string
	timeout time.Duration
}

// NewCopilot creates a Copilot agent, resolving the CLI binary from PATH.
func NewCopilot(timeout time.Duration) *Copilot {
	path, _ := exec.LookPath("copilot")
	return &Copilot{cliPath: path, timeout: timeout}
}

func (c *Copilot) ID() string { return "copilot" }

// Available reports whether the copilot binary was found on PATH.
func (c *Copilot) Available() bool { return c.cliPath != "" }

func (c *Copilot) Review(ctx context.Context, prompt string, rc Context) Outcome {
	if !c.Available() {
		return Failed(c.ID(), "copilot CLI not found")
	}

	start := time.Now()
	fullPrompt := BuildPrompt(prompt, rc)

	// The CLI does not read prompts from stdin; hand it a temp file.
	tmp, err := os.CreateTemp("", "quorum-copilot-*.txt")
	if err != nil {
		return c.failed(fmt.Sprintf("creating prompt file: %v", err), start)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(fullPrompt); err != nil {
		tmp.Close()
		return c.failed(fmt.Sprintf("writing prompt file: %v", err), start)
	}
	if err := tmp.Close(); err != nil {
		return c.failed(fmt.Sprintf("closing prompt file: %v", err), start)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(callCtx, c.cliPath, "-p",
		fmt.Sprintf("Please review the contents of this file: %s", tmpPath))
	if rc.WorkDir != "" {
		cmd.Dir = rc.WorkDir
	}

	stdout, err := cmd.Output()
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return c.failed(fmt.Sprintf("timeout after %s", c.timeout), start)
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return c.failed(fmt.Sprintf("CLI error: %s", string(exitErr.Stderr)), start)
		}
		return c.failed(err.Error(), start)
	}

	out := ParseResponse(c.ID(), string(stdout))
	out.DurationMS = time.Since(start).Milliseconds()
	return out
}

func (c *Copilot) failed(errText string, start time.Time) Outcome {
	out := Failed(c.ID(), errText)
	out.DurationMS = time.Since(start).Milliseconds()
	return out
}
