package review

import (
	"os"
	"path/filepath"
)

// defaultPrompts are the built-in stage prompts, used when no prompt file
// exists for the stage.
var defaultPrompts = map[string]string{
	"plan":  "You are a senior developer. Review the task plan below and identify unnecessary work (YAGNI), missing items, and potential issues.",
	"code":  "You are a senior code reviewer. Review the code changes below and identify bugs, security vulnerabilities, and code quality issues.",
	"test":  "You are a QA expert. Analyze the test results below and check for additional tests needed and missing cases.",
	"final": "You are a senior architect. Comprehensively review the entire work and evaluate the final quality.",
	"completion": "You are a senior software architect reviewing a completed task.\n" +
		"Verify the following:\n" +
		"1. Have all user requests been implemented?\n" +
		"2. Are there any missing features or requirements?\n" +
		"3. Were any unnecessary features added that weren't requested?",
}

// LoadPrompt returns the prompt for a stage: the file <dir>/<stage>.txt
// if present, otherwise the built-in default (falling back to the code
// prompt for unknown stages).
func LoadPrompt(dir, stage string) string {
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, stage+".txt")); err == nil {
			return string(data)
		}
	}
	if prompt, ok := defaultPrompts[stage]; ok {
		return prompt
	}
	return defaultPrompts["code"]
}
