package review

import "github.com/dshills/quorum/internal/agent"

// Policy names a severity conflict-resolution strategy.
type Policy string

const (
	PolicyConservative    Policy = "conservative"
	PolicyHighestSeverity Policy = "highest_severity"
	PolicyMajorityVote    Policy = "majority_vote"
	PolicyWeightedVote    Policy = "weighted_vote"
)

// ParsePolicy maps a config string to a Policy, defaulting to
// conservative for unknown values.
func ParsePolicy(value string) Policy {
	switch Policy(value) {
	case PolicyHighestSeverity, PolicyMajorityVote, PolicyWeightedVote:
		return Policy(value)
	default:
		return PolicyConservative
	}
}

// Resolve reduces the successful outcomes' severities to one decision.
// With no successful outcomes the result is OK (fail-open). Resolution is
// deterministic and order-independent for every policy.
func Resolve(policy Policy, weights map[string]float64, outcomes []agent.Outcome) agent.Severity {
	successful := make([]agent.Outcome, 0, len(outcomes))
	for _, out := range outcomes {
		if out.Success {
			successful = append(successful, out)
		}
	}
	if len(successful) == 0 {
		return agent.SeverityOK
	}

	switch policy {
	case PolicyMajorityVote:
		return majorityVote(successful)
	case PolicyWeightedVote:
		return weightedVote(successful, weights)
	default: // conservative / highest_severity
		return highest(successful)
	}
}

func highest(outcomes []agent.Outcome) agent.Severity {
	result := agent.SeverityOK
	for _, out := range outcomes {
		result = agent.MaxSeverity(result, out.Severity)
	}
	return result
}

// majorityVote picks the severity with the most occurrences; ties go to
// the higher severity.
func majorityVote(outcomes []agent.Outcome) agent.Severity {
	counts := make(map[agent.Severity]int)
	for _, out := range outcomes {
		counts[out.Severity]++
	}

	best := agent.SeverityOK
	bestCount := 0
	for severity, count := range counts {
		if count > bestCount || (count == bestCount && severity.Rank() > best.Rank()) {
			best = severity
			bestCount = count
		}
	}
	return best
}

// weightedVote returns the severity of the agent with the maximum
// weight x severity-rank score. Unconfigured agents weigh 1.0. Ties go to
// the higher severity so the result does not depend on outcome order.
func weightedVote(outcomes []agent.Outcome, weights map[string]float64) agent.Severity {
	best := agent.SeverityOK
	bestScore := -1.0
	for _, out := range outcomes {
		weight, ok := weights[out.AgentID]
		if !ok {
			weight = 1.0
		}
		score := weight * float64(out.Severity.Rank())
		if score > bestScore || (score == bestScore && out.Severity.Rank() > best.Rank()) {
			best = out.Severity
			bestScore = score
		}
	}
	return best
}
