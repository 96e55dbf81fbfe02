package agent

import (
	"encoding/json"
	"regexp"
	"strings"
)

// responsePayload is the JSON structure agents are instructed to return.
type responsePayload struct {
	Severity string         `json:"severity"`
	Issues   []issuePayload `json:"issues"`
}

type issuePayload struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Location    string `json:"location"`
	Suggestion  string `json:"suggestion"`
}

var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")

// ParseResponse converts a raw agent response into an Outcome. It first
// tries to locate a fenced JSON block (or treats the whole text as JSON)
// and parse severity + issues; missing severities default to OK. If that
// fails it falls back to a keyword classifier over the raw text and wraps
// the full response as a single finding. Both tiers produce a successful
// Outcome: a malformed response is recoverable, not an error.
func ParseResponse(agentID, raw string) Outcome {
	candidate := strings.TrimSpace(raw)
	if m := fencedJSON.FindStringSubmatch(candidate); m != nil {
		candidate = m[1]
	}

	var payload responsePayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return classifyText(agentID, raw)
	}

	severity := ParseSeverity(payload.Severity)
	findings := make([]Finding, 0, len(payload.Issues))
	for _, issue := range payload.Issues {
		findings = append(findings, Finding{
			Description: issue.Description,
			Severity:    ParseSeverity(issue.Severity),
			Location:    issue.Location,
			Suggestion:  issue.Suggestion,
		})
	}

	return Outcome{
		AgentID:  agentID,
		Severity: severity,
		Findings: findings,
		RawText:  raw,
		Success:  true,
	}
}

// Keyword tiers for the fallback classifier, checked highest first. First
// match wins.
var keywordTiers = []struct {
	severity Severity
	words    []string
}{
	{SeverityCritical, []string{"critical", "security vulnerability"}},
	{SeverityHigh, []string{"high", "bug", "error"}},
	{SeverityMedium, []string{"medium", "improvement"}},
	{SeverityLow, []string{"low", "minor", "trivial"}},
}

func classifyText(agentID, raw string) Outcome {
	lower := strings.ToLower(raw)

	severity := SeverityOK
	for _, tier := range keywordTiers {
		matched := false
		for _, word := range tier.words {
			if strings.Contains(lower, word) {
				matched = true
				break
			}
		}
		if matched {
			severity = tier.severity
			break
		}
	}

	return Outcome{
		AgentID:  agentID,
		Severity: severity,
		Findings: []Finding{{Description: raw, Severity: severity}},
		RawText:  raw,
		Success:  true,
	}
}
