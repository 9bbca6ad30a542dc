package analyzer

import (
	"strings"

	"github.com/praxos/carrion/pkg/pyparser"
	sitter "github.com/smacker/go-tree-sitter"
)

// frameworkFragments are package-name fragments of common web and task
// frameworks whose decorated symbols are invoked by the framework itself.
var frameworkFragments = []string{
	"flask",
	"fastapi",
	"django",
	"rest_framework",
	"pydantic",
	"celery",
	"starlette",
	"uvicorn",
}

// decoratorMarkers indicate framework-managed callables: routing, HTTP
// verbs, validators, task queues.
var decoratorMarkers = []string{
	"route", "get", "post", "put", "delete", "patch", "validator", "task",
}

// baseClassMarkers indicate framework-managed classes.
var baseClassMarkers = []string{"view", "model", "schema"}

// frameworkInfo is the per-file output of the framework classifier.
type frameworkInfo struct {
	isFrameworkFile bool
	fragments       map[string]bool
	lines           map[uint32]bool
}

// classifyFramework scans a file for framework imports and marks the lines
// of framework-decorated functions and framework-derived classes.
func classifyFramework(root *sitter.Node, source []byte, lines *pyparser.LineIndex) frameworkInfo {
	info := frameworkInfo{
		fragments: map[string]bool{},
		lines:     map[uint32]bool{},
	}

	pyparser.Walk(root, source, func(node *sitter.Node, src []byte) bool {
		switch node.Type() {
		case "import_statement", "import_from_statement":
			for _, fragment := range frameworkFragments {
				if strings.Contains(pyparser.NodeText(node, src), fragment) {
					info.isFrameworkFile = true
					info.fragments[fragment] = true
				}
			}
		case "decorated_definition":
			if hasFrameworkDecorator(node, src) {
				if def := node.ChildByFieldName("definition"); def != nil {
					info.lines[lines.Line(def.StartByte())] = true
				}
			}
		case "class_definition":
			if hasFrameworkBase(node, src) {
				info.lines[lines.Line(node.StartByte())] = true
			}
		}
		return true
	})

	return info
}

func hasFrameworkDecorator(node *sitter.Node, source []byte) bool {
	for _, child := range pyparser.NamedChildren(node) {
		if child.Type() != "decorator" {
			continue
		}
		name := decoratorName(child.NamedChild(0), source)
		for _, marker := range decoratorMarkers {
			if strings.Contains(strings.ToLower(name), marker) {
				return true
			}
		}
	}
	return false
}

// decoratorName resolves a decorator expression through call and attribute
// wrappers to its innermost meaningful name: for @app.route("/") the call
// peels to app.route, whose trailing attribute is the marker.
func decoratorName(node *sitter.Node, source []byte) string {
	for node != nil {
		switch node.Type() {
		case "call":
			node = node.ChildByFieldName("function")
		case "attribute":
			return pyparser.NodeText(node.ChildByFieldName("attribute"), source)
		case "identifier":
			return pyparser.NodeText(node, source)
		default:
			return ""
		}
	}
	return ""
}

func hasFrameworkBase(node *sitter.Node, source []byte) bool {
	supers := node.ChildByFieldName("superclasses")
	if supers == nil {
		return false
	}
	for _, arg := range pyparser.NamedChildren(supers) {
		var base string
		switch arg.Type() {
		case "identifier":
			base = pyparser.NodeText(arg, source)
		case "attribute":
			base = pyparser.NodeText(arg.ChildByFieldName("attribute"), source)
		default:
			continue
		}
		lower := strings.ToLower(base)
		for _, marker := range baseClassMarkers {
			if strings.Contains(lower, marker) {
				return true
			}
		}
	}
	return false
}
