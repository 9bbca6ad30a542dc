// Package rules implements the plug-in pattern scanners: hardcoded secrets,
// dangerous calls, and nesting-depth quality checks. Each scanner is a
// single pass with no cross-file state; the analyzer passes its findings
// through untouched.
package rules

import (
	"bytes"
	"fmt"
	"regexp"

	"github.com/praxos/carrion/pkg/models"
)

type secretPattern struct {
	re    *regexp.Regexp
	label string
}

var secretPatterns = []secretPattern{
	{
		re:    regexp.MustCompile(`(?:A3T[A-Z0-9]|AKIA|AGPA|AIDA|AROA|AIPA|ANPA|ANVA|ASIA)[A-Z0-9]{16}`),
		label: "AWS access key ID",
	},
	{
		re:    regexp.MustCompile(`(?i)aws.{0,20}?['"][0-9a-zA-Z/+]{40}['"]`),
		label: "AWS secret access key",
	},
	{
		re:    regexp.MustCompile(`(?i)(?:api_key|apikey|secret|token|passwd|password)\s*[=:]\s*['"][^'"]{20,}['"]`),
		label: "hardcoded credential",
	},
}

// ScanSecrets runs the textual secret patterns over raw source. Comment
// lines are skipped so documentation examples don't fire.
func ScanSecrets(path string, source []byte) []models.Finding {
	var findings []models.Finding

	for i, line := range bytes.Split(source, []byte("\n")) {
		trimmed := bytes.TrimSpace(line)
		if len(trimmed) == 0 || trimmed[0] == '#' {
			continue
		}
		for _, pat := range secretPatterns {
			if pat.re.Match(line) {
				findings = append(findings, models.Finding{
					Message:  fmt.Sprintf("possible %s", pat.label),
					RuleID:   "CAR-S101",
					File:     path,
					Line:     uint32(i) + 1,
					Severity: models.SeverityHigh,
				})
			}
		}
	}

	return findings
}
