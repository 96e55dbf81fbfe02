package agent

import (
	"encoding/json"
	"strings"
)

// Severity is the ordered scale summarizing a review outcome. The integer
// value is the rank; all comparisons go through the rank, never through
// string values or declaration tricks.
type Severity int

const (
	SeverityOK Severity = iota
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

var severityNames = [...]string{"OK", "LOW", "MEDIUM", "HIGH", "CRITICAL"}

// String returns the wire representation ("OK", "LOW", ...).
func (s Severity) String() string {
	if s < SeverityOK || s > SeverityCritical {
		return "OK"
	}
	return severityNames[s]
}

// Rank returns the numeric rank (OK=0 .. CRITICAL=4).
func (s Severity) Rank() int { return int(s) }

// ParseSeverity maps a string to a Severity. Unrecognized input maps to OK.
func ParseSeverity(value string) Severity {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "LOW":
		return SeverityLow
	case "MEDIUM":
		return SeverityMedium
	case "HIGH":
		return SeverityHigh
	case "CRITICAL":
		return SeverityCritical
	default:
		return SeverityOK
	}
}

// SeverityFromRank maps a rank back to a Severity, clamping out-of-range
// values to the nearest end of the scale.
func SeverityFromRank(rank int) Severity {
	if rank < int(SeverityOK) {
		return SeverityOK
	}
	if rank > int(SeverityCritical) {
		return SeverityCritical
	}
	return Severity(rank)
}

// MaxSeverity returns the higher of a and b.
func MaxSeverity(a, b Severity) Severity {
	if b.Rank() > a.Rank() {
		return b
	}
	return a
}

// MarshalJSON encodes the severity as its wire string.
func (s Severity) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a wire string, mapping unknown values to OK.
func (s *Severity) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	*s = ParseSeverity(str)
	return nil
}
