package analyzer

import (
	"github.com/praxos/carrion/pkg/pyparser"
	sitter "github.com/smacker/go-tree-sitter"
)

// entryPointCalls finds the top-level `if __name__ == "__main__"` guard and
// collects every call target name reachable from its body, recursing through
// nested conditionals, loops, and assignment right-hand sides. Symbols only
// invoked from the guard would otherwise look dead.
func entryPointCalls(root *sitter.Node, source []byte) []string {
	seen := map[string]bool{}
	for _, stmt := range pyparser.NamedChildren(root) {
		if stmt.Type() != "if_statement" {
			continue
		}
		if !isMainGuard(stmt.ChildByFieldName("condition"), source) {
			continue
		}
		collectCallTargets(stmt.ChildByFieldName("consequence"), source, seen)
	}

	if len(seen) == 0 {
		return nil
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	return names
}

// isMainGuard recognizes __name__ == "__main__" in either operand order.
func isMainGuard(cond *sitter.Node, source []byte) bool {
	if cond == nil {
		return false
	}
	if cond.Type() == "parenthesized_expression" {
		return isMainGuard(cond.NamedChild(0), source)
	}
	if cond.Type() != "comparison_operator" || cond.NamedChildCount() != 2 {
		return false
	}

	left := cond.NamedChild(0)
	right := cond.NamedChild(1)
	return (isNameVar(left, source) && isMainLiteral(right, source)) ||
		(isNameVar(right, source) && isMainLiteral(left, source))
}

func isNameVar(node *sitter.Node, source []byte) bool {
	return node != nil && node.Type() == "identifier" &&
		pyparser.NodeText(node, source) == "__name__"
}

func isMainLiteral(node *sitter.Node, source []byte) bool {
	return node != nil && node.Type() == "string" &&
		stringContent(node, source) == "__main__"
}

// collectCallTargets gathers call target names from a statement subtree:
// the called name for a bare call, the trailing attribute for a method call.
func collectCallTargets(node *sitter.Node, source []byte, seen map[string]bool) {
	pyparser.Walk(node, source, func(n *sitter.Node, src []byte) bool {
		if n.Type() != "call" {
			return true
		}
		fn := n.ChildByFieldName("function")
		if fn == nil {
			return true
		}
		switch fn.Type() {
		case "identifier":
			seen[pyparser.NodeText(fn, src)] = true
		case "attribute":
			if attr := fn.ChildByFieldName("attribute"); attr != nil {
				seen[pyparser.NodeText(attr, src)] = true
			}
		}
		return true
	})
}

// moduleQualified returns a name prefixed with its module, when one exists.
func moduleQualified(module, name string) string {
	if module == "" {
		return name
	}
	return module + "." + name
}
