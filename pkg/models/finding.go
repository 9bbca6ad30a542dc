package models

// Severity levels for rule findings.
type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Finding is a single rule-module hit (secrets, danger, quality).
// The analyzer passes findings through without inspecting them.
type Finding struct {
	Message  string   `json:"message"`
	RuleID   string   `json:"rule_id"`
	File     string   `json:"file"`
	Line     uint32   `json:"line"`
	Severity Severity `json:"severity"`
}
