package agent

import (
	"fmt"
	"strings"
)

const responseFormat = `
## Response Format
You must respond in the following JSON format:
` + "```json" + `
{
  "severity": "OK|LOW|MEDIUM|HIGH|CRITICAL",
  "issues": [
    {
      "description": "Issue description",
      "severity": "OK|LOW|MEDIUM|HIGH|CRITICAL",
      "location": "file:line (optional)",
      "suggestion": "Fix suggestion (optional)"
    }
  ]
}
` + "```" + `
`

// BuildPrompt assembles the full prompt an agent sends to its backend:
// the stage prompt, the relevant context sections, and the response
// format instructions.
func BuildPrompt(base string, rc Context) string {
	var b strings.Builder
	b.WriteString(base)

	if rc.FilePath != "" {
		fmt.Fprintf(&b, "\n\n## File Path\n%s", rc.FilePath)
	}
	if rc.Diff != "" {
		fmt.Fprintf(&b, "\n\n## Changes\n```\n%s\n```", rc.Diff)
	}
	if rc.Code != "" {
		fmt.Fprintf(&b, "\n\n## Code\n```\n%s\n```", rc.Code)
	}
	if len(rc.Todos) > 0 {
		fmt.Fprintf(&b, "\n\n## Task List\n%s", FormatTodos(rc.Todos))
	}
	if rc.UserRequest != "" {
		fmt.Fprintf(&b, "\n\n## User Request\n%s", rc.UserRequest)
	}

	b.WriteString("\n")
	b.WriteString(responseFormat)
	return b.String()
}

// FormatTodos renders a todo list as a numbered summary.
func FormatTodos(todos []Todo) string {
	if len(todos) == 0 {
		return "(none)"
	}
	var b strings.Builder
	for i, todo := range todos {
		marker := "[ ]"
		if todo.Completed() {
			marker = "[x]"
		}
		fmt.Fprintf(&b, "%d. %s %s\n", i+1, marker, todo.Content)
	}
	return strings.TrimRight(b.String(), "\n")
}
