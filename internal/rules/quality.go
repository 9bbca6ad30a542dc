package rules

import (
	"fmt"

	"github.com/praxos/carrion/pkg/models"
	"github.com/praxos/carrion/pkg/pyparser"
	sitter "github.com/smacker/go-tree-sitter"
)

// maxNestingDepth is the deepest acceptable block nesting before a
// readability finding fires.
const maxNestingDepth = 5

// ScanQuality reports statements nested deeper than maxNestingDepth.
// Consecutive findings on the same line collapse into one.
func ScanQuality(path string, res *pyparser.ParseResult) []models.Finding {
	var findings []models.Finding
	walkDepth(res.Tree.RootNode(), res, path, 0, &findings)
	return dedupeConsecutive(findings)
}

func walkDepth(node *sitter.Node, res *pyparser.ParseResult, path string, depth int, findings *[]models.Finding) {
	if node == nil {
		return
	}

	nested := depth
	switch node.Type() {
	case "if_statement", "for_statement", "while_statement",
		"with_statement", "try_statement", "match_statement":
		nested++
		if nested > maxNestingDepth {
			*findings = append(*findings, models.Finding{
				Message:  fmt.Sprintf("nesting depth %d exceeds %d", nested, maxNestingDepth),
				RuleID:   "CAR-Q001",
				File:     path,
				Line:     res.Lines.Line(node.StartByte()),
				Severity: models.SeverityLow,
			})
		}
	case "function_definition", "class_definition":
		// Definitions reset the depth budget for their bodies.
		nested = 0
	}

	for i := range int(node.ChildCount()) {
		walkDepth(node.Child(i), res, path, nested, findings)
	}
}

func dedupeConsecutive(findings []models.Finding) []models.Finding {
	if len(findings) < 2 {
		return findings
	}
	out := findings[:1]
	for _, f := range findings[1:] {
		last := out[len(out)-1]
		if f.Line == last.Line && f.RuleID == last.RuleID && f.File == last.File {
			continue
		}
		out = append(out, f)
	}
	return out
}
