package rules

import (
	"fmt"

	"github.com/praxos/carrion/pkg/models"
	"github.com/praxos/carrion/pkg/pyparser"
	sitter "github.com/smacker/go-tree-sitter"
)

// ScanDanger flags calls that execute arbitrary code: eval/exec, and
// subprocess invocations with shell=True.
func ScanDanger(path string, res *pyparser.ParseResult) []models.Finding {
	var findings []models.Finding

	pyparser.Walk(res.Tree.RootNode(), res.Source, func(node *sitter.Node, src []byte) bool {
		if node.Type() != "call" {
			return true
		}

		fn := node.ChildByFieldName("function")
		if fn == nil {
			return true
		}
		line := res.Lines.Line(node.StartByte())

		switch fn.Type() {
		case "identifier":
			name := pyparser.NodeText(fn, src)
			if name == "eval" || name == "exec" {
				findings = append(findings, models.Finding{
					Message:  fmt.Sprintf("use of %s()", name),
					RuleID:   "CAR-D001",
					File:     path,
					Line:     line,
					Severity: models.SeverityCritical,
				})
			}
		case "attribute":
			object := fn.ChildByFieldName("object")
			if object == nil || object.Type() != "identifier" {
				return true
			}
			if pyparser.NodeText(object, src) != "subprocess" {
				return true
			}
			if hasShellTrue(node.ChildByFieldName("arguments"), src) {
				findings = append(findings, models.Finding{
					Message:  "subprocess call with shell=True",
					RuleID:   "CAR-D002",
					File:     path,
					Line:     line,
					Severity: models.SeverityCritical,
				})
			}
		}
		return true
	})

	return findings
}

func hasShellTrue(args *sitter.Node, source []byte) bool {
	if args == nil {
		return false
	}
	for _, arg := range pyparser.NamedChildren(args) {
		if arg.Type() != "keyword_argument" {
			continue
		}
		name := pyparser.NodeText(arg.ChildByFieldName("name"), source)
		value := arg.ChildByFieldName("value")
		if name == "shell" && value != nil && value.Type() == "true" {
			return true
		}
	}
	return false
}
