package analyzer

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/praxos/carrion/pkg/pyparser"
	sitter "github.com/smacker/go-tree-sitter"
)

// testPathRe matches conventional test locations: a test/ or tests/
// directory anywhere in the path, or a *_test.py module.
var testPathRe = regexp.MustCompile(`(?:^|[/\\])tests?[/\\]|_test\.py$`)

// testDecoratorMarkers appear in pytest-style decorators.
var testDecoratorMarkers = []string{"pytest", "fixture", "parametrize"}

// isTestFile classifies a file path as test code.
func isTestFile(path string) bool {
	if testPathRe.MatchString(path) {
		return true
	}
	return strings.HasPrefix(filepath.Base(path), "test_")
}

// testLines returns the set of definition lines that are test-related:
// test-named functions, pytest-decorated functions, and Test classes.
// Definitions on these lines are implicitly considered used.
func testLines(root *sitter.Node, source []byte, lines *pyparser.LineIndex) map[uint32]bool {
	marked := map[uint32]bool{}

	pyparser.Walk(root, source, func(node *sitter.Node, src []byte) bool {
		switch node.Type() {
		case "function_definition":
			name := pyparser.NodeText(node.ChildByFieldName("name"), src)
			if strings.HasPrefix(name, "test_") || strings.HasSuffix(name, "_test") {
				marked[lines.Line(node.StartByte())] = true
			}
		case "class_definition":
			name := pyparser.NodeText(node.ChildByFieldName("name"), src)
			if strings.HasPrefix(name, "Test") || strings.HasSuffix(name, "Test") {
				marked[lines.Line(node.StartByte())] = true
			}
		case "decorated_definition":
			if hasTestDecorator(node, src) {
				if def := node.ChildByFieldName("definition"); def != nil {
					marked[lines.Line(def.StartByte())] = true
				}
			}
		}
		return true
	})

	return marked
}

func hasTestDecorator(node *sitter.Node, source []byte) bool {
	for _, child := range pyparser.NamedChildren(node) {
		if child.Type() != "decorator" {
			continue
		}
		text := strings.ToLower(pyparser.NodeText(child, source))
		for _, marker := range testDecoratorMarkers {
			if strings.Contains(text, marker) {
				return true
			}
		}
	}
	return false
}
