package analyzer

import (
	"path/filepath"
	"strings"

	"github.com/praxos/carrion/pkg/models"
	"github.com/praxos/carrion/pkg/pyparser"
	sitter "github.com/smacker/go-tree-sitter"
)

// dynamicPatterns are call targets that indicate runtime attribute lookup.
// A module using any of them gets lenient treatment for its symbols.
var dynamicPatterns = map[string]bool{
	"getattr": true,
	"globals": true,
	"eval":    true,
	"exec":    true,
}

// implicitPrefixes mark functions whose names imply external invocation.
var implicitPrefixes = []string{"test_", "visit_", "leave_", "on_"}

// implicitNames are conventional entry-point function names.
var implicitNames = map[string]bool{
	"main":    true,
	"run":     true,
	"execute": true,
}

// visitor walks one file's syntax tree, building qualified definitions and
// name references. Each file gets its own instance; nothing is shared.
type visitor struct {
	source     []byte
	lines      *pyparser.LineIndex
	path       string
	moduleName string
	inInit     bool

	classStack []string
	funcDepth  int

	defs    []models.Definition
	refs    []models.Reference
	exports []string
	dynamic bool
}

// moduleNameFor derives the module segment for a file. The stem of the file
// is used directly; a package __init__ file contributes its enclosing
// directory name instead, and an __init__ at the analysis root contributes
// nothing.
func moduleNameFor(path, root string) string {
	rel := path
	if root != "" {
		if r, err := filepath.Rel(root, path); err == nil {
			rel = r
		}
	}
	stem := strings.TrimSuffix(filepath.Base(rel), filepath.Ext(rel))
	if stem != "__init__" {
		return stem
	}
	dir := filepath.Dir(rel)
	if dir == "." || dir == string(filepath.Separator) {
		return ""
	}
	return filepath.Base(dir)
}

func newVisitor(res *pyparser.ParseResult, root string) *visitor {
	stem := strings.TrimSuffix(filepath.Base(res.Path), filepath.Ext(res.Path))
	return &visitor{
		source:     res.Source,
		lines:      res.Lines,
		path:       res.Path,
		moduleName: moduleNameFor(res.Path, root),
		inInit:     stem == "__init__",
	}
}

// run visits the whole module.
func (v *visitor) run(root *sitter.Node) {
	for _, child := range pyparser.NamedChildren(root) {
		v.visitStatement(child)
	}
}

func (v *visitor) text(node *sitter.Node) string {
	return pyparser.NodeText(node, v.source)
}

func (v *visitor) line(node *sitter.Node) uint32 {
	return v.lines.Line(node.StartByte())
}

// qualify joins the module, enclosing classes, and a symbol name.
func (v *visitor) qualify(name string) string {
	parts := make([]string, 0, len(v.classStack)+2)
	if v.moduleName != "" {
		parts = append(parts, v.moduleName)
	}
	parts = append(parts, v.classStack...)
	parts = append(parts, name)
	return strings.Join(parts, ".")
}

func (v *visitor) addRef(name string) {
	if name == "" {
		return
	}
	v.refs = append(v.refs, models.Reference{Name: name, File: v.path})
}

func (v *visitor) addDef(name string, kind models.Kind, line uint32, bases []string) {
	full := v.qualify(name)
	def := models.Definition{
		Name:        full,
		SimpleName:  name,
		Kind:        kind,
		File:        v.path,
		Line:        line,
		InInit:      v.inInit,
		BaseClasses: bases,
	}
	def.IsExported = v.implicitlyUsed(&def)
	v.defs = append(v.defs, def)
}

// implicitlyUsed reports whether a symbol's name alone implies usage that
// static reference counting cannot see.
func (v *visitor) implicitlyUsed(def *models.Definition) bool {
	name := def.SimpleName
	if def.IsDunder() {
		return true
	}
	switch def.Kind {
	case models.KindFunction, models.KindMethod:
		for _, prefix := range implicitPrefixes {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
		if implicitNames[name] {
			return true
		}
	}
	// Anything public in a package __init__ is part of the package surface.
	if v.inInit && !strings.HasPrefix(name, "_") {
		return true
	}
	return false
}

// ---- statements ----

func (v *visitor) visitStatement(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "function_definition":
		v.visitFunction(node, nil)
	case "class_definition":
		v.visitClass(node, nil)
	case "decorated_definition":
		v.visitDecorated(node)
	case "import_statement":
		v.visitImport(node)
	case "import_from_statement":
		v.visitImportFrom(node)
	case "future_import_statement":
		// __future__ imports are compiler directives, never dead code.
	case "expression_statement":
		for _, child := range pyparser.NamedChildren(node) {
			switch child.Type() {
			case "assignment":
				v.visitAssignment(child)
			case "augmented_assignment":
				// x += 1 both reads and writes x.
				v.visitExpression(child.ChildByFieldName("left"))
				v.visitExpression(child.ChildByFieldName("right"))
			default:
				v.visitExpression(child)
			}
		}
	case "if_statement":
		v.visitExpression(node.ChildByFieldName("condition"))
		v.visitBlock(node.ChildByFieldName("consequence"))
		for _, child := range pyparser.NamedChildren(node) {
			switch child.Type() {
			case "elif_clause":
				v.visitExpression(child.ChildByFieldName("condition"))
				v.visitBlock(child.ChildByFieldName("consequence"))
			case "else_clause":
				v.visitBlock(child.ChildByFieldName("body"))
			}
		}
	case "for_statement":
		v.visitTarget(node.ChildByFieldName("left"))
		v.visitExpression(node.ChildByFieldName("right"))
		v.visitBlock(node.ChildByFieldName("body"))
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			v.visitBlock(alt.ChildByFieldName("body"))
		}
	case "while_statement":
		v.visitExpression(node.ChildByFieldName("condition"))
		v.visitBlock(node.ChildByFieldName("body"))
		if alt := node.ChildByFieldName("alternative"); alt != nil {
			v.visitBlock(alt.ChildByFieldName("body"))
		}
	case "with_statement":
		for _, clause := range pyparser.NamedChildren(node) {
			if clause.Type() != "with_clause" {
				continue
			}
			for _, item := range pyparser.NamedChildren(clause) {
				if item.Type() != "with_item" {
					continue
				}
				value := item.ChildByFieldName("value")
				if value != nil && value.Type() == "as_pattern" {
					v.visitExpression(value.NamedChild(0))
				} else {
					v.visitExpression(value)
				}
			}
		}
		v.visitBlock(node.ChildByFieldName("body"))
	case "try_statement":
		v.visitBlock(node.ChildByFieldName("body"))
		for _, child := range pyparser.NamedChildren(node) {
			switch child.Type() {
			case "except_clause", "except_group_clause":
				for _, sub := range pyparser.NamedChildren(child) {
					if sub.Type() == "block" {
						v.visitBlock(sub)
					} else if sub.Type() == "as_pattern" {
						v.visitExpression(sub.NamedChild(0))
					} else {
						v.visitExpression(sub)
					}
				}
			case "else_clause":
				v.visitBlock(child.ChildByFieldName("body"))
			case "finally_clause":
				for _, sub := range pyparser.NamedChildren(child) {
					if sub.Type() == "block" {
						v.visitBlock(sub)
					}
				}
			}
		}
	case "return_statement", "delete_statement", "raise_statement",
		"assert_statement", "print_statement", "exec_statement":
		for _, child := range pyparser.NamedChildren(node) {
			v.visitExpression(child)
		}
	case "global_statement", "nonlocal_statement", "pass_statement",
		"break_statement", "continue_statement", "comment":
		// No references to record.
	case "match_statement":
		v.visitExpression(node.ChildByFieldName("subject"))
		for _, child := range pyparser.NamedChildren(node) {
			if child.Type() == "case_clause" {
				for _, sub := range pyparser.NamedChildren(child) {
					if sub.Type() == "block" {
						v.visitBlock(sub)
					}
				}
			}
		}
	case "block":
		v.visitBlock(node)
	default:
		// Unknown statement kinds still get their blocks walked so that
		// grammar additions degrade to reference collection, not silence.
		for _, child := range pyparser.NamedChildren(node) {
			if child.Type() == "block" {
				v.visitBlock(child)
			} else {
				v.visitExpression(child)
			}
		}
	}
}

func (v *visitor) visitBlock(block *sitter.Node) {
	if block == nil {
		return
	}
	for _, child := range pyparser.NamedChildren(block) {
		v.visitStatement(child)
	}
}

// visitTarget handles assignment/loop targets: bare names are stores and not
// references, but attribute and subscript targets read their base objects.
func (v *visitor) visitTarget(node *sitter.Node) {
	if node == nil {
		return
	}
	switch node.Type() {
	case "identifier":
		// Store context, not a reference.
	case "tuple", "list", "pattern_list", "tuple_pattern", "list_pattern":
		for _, child := range pyparser.NamedChildren(node) {
			v.visitTarget(child)
		}
	case "list_splat_pattern":
		v.visitTarget(node.NamedChild(0))
	default:
		v.visitExpression(node)
	}
}

// ---- definitions ----

func (v *visitor) visitDecorated(node *sitter.Node) {
	var decorators []*sitter.Node
	for _, child := range pyparser.NamedChildren(node) {
		if child.Type() == "decorator" {
			decorators = append(decorators, child)
			// The decorator expression is itself a usage.
			v.visitExpression(child.NamedChild(0))
		}
	}

	def := node.ChildByFieldName("definition")
	if def == nil {
		return
	}
	switch def.Type() {
	case "function_definition":
		v.visitFunction(def, decorators)
	case "class_definition":
		v.visitClass(def, decorators)
	}
}

func (v *visitor) visitFunction(node *sitter.Node, _ []*sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := v.text(nameNode)

	// Functions nested inside another function body cannot be referenced
	// externally, so they are not dead-code candidates.
	if v.funcDepth == 0 && name != "" {
		kind := models.KindFunction
		if len(v.classStack) > 0 {
			kind = models.KindMethod
		}
		v.addDef(name, kind, v.line(nameNode), nil)
	}

	v.visitParameters(node.ChildByFieldName("parameters"))
	v.visitExpression(node.ChildByFieldName("return_type"))

	v.funcDepth++
	v.visitBlock(node.ChildByFieldName("body"))
	v.funcDepth--
}

func (v *visitor) visitParameters(params *sitter.Node) {
	if params == nil {
		return
	}
	for _, p := range pyparser.NamedChildren(params) {
		switch p.Type() {
		case "identifier", "list_splat_pattern", "dictionary_splat_pattern",
			"positional_separator", "keyword_separator":
			// Parameter names are stores.
		case "default_parameter":
			v.visitExpression(p.ChildByFieldName("value"))
		case "typed_parameter":
			v.visitExpression(p.ChildByFieldName("type"))
		case "typed_default_parameter":
			v.visitExpression(p.ChildByFieldName("type"))
			v.visitExpression(p.ChildByFieldName("value"))
		}
	}
}

func (v *visitor) visitClass(node *sitter.Node, _ []*sitter.Node) {
	nameNode := node.ChildByFieldName("name")
	name := v.text(nameNode)
	if name == "" {
		return
	}

	var bases []string
	if supers := node.ChildByFieldName("superclasses"); supers != nil {
		for _, arg := range pyparser.NamedChildren(supers) {
			switch arg.Type() {
			case "identifier":
				base := v.text(arg)
				bases = append(bases, base)
				// Emit both raw and module-qualified forms so same-module
				// base classes resolve against their qualified definition.
				v.addRef(base)
				if v.moduleName != "" {
					v.addRef(v.moduleName + "." + base)
				}
			case "attribute":
				base := v.text(arg.ChildByFieldName("attribute"))
				bases = append(bases, base)
				v.visitExpression(arg)
				if v.moduleName != "" {
					v.addRef(v.moduleName + "." + base)
				}
			case "keyword_argument":
				v.visitExpression(arg.ChildByFieldName("value"))
			default:
				v.visitExpression(arg)
			}
		}
	}

	if v.funcDepth == 0 {
		v.addDef(name, models.KindClass, v.line(nameNode), bases)
	}

	v.classStack = append(v.classStack, name)
	v.visitBlock(node.ChildByFieldName("body"))
	v.classStack = v.classStack[:len(v.classStack)-1]
}

// ---- imports ----

func (v *visitor) visitImport(node *sitter.Node) {
	for _, child := range pyparser.NamedChildren(node) {
		switch child.Type() {
		case "dotted_name":
			v.addImportDef(v.text(child), child)
		case "aliased_import":
			v.addImportDef(v.text(child.ChildByFieldName("alias")), child)
		}
	}
}

func (v *visitor) visitImportFrom(node *sitter.Node) {
	moduleNode := node.ChildByFieldName("module_name")
	module := v.text(moduleNode)
	if module == "__future__" {
		return
	}

	names := childrenByFieldName(node, "name")
	if len(names) == 0 {
		// from X import *: mark the source module used, bind nothing.
		v.addRef(strings.TrimLeft(module, "."))
		return
	}

	for _, child := range names {
		var name, alias string
		switch child.Type() {
		case "dotted_name":
			name = v.text(child)
			alias = name
		case "aliased_import":
			name = v.text(child.ChildByFieldName("name"))
			alias = v.text(child.ChildByFieldName("alias"))
		default:
			continue
		}
		v.addImportDef(alias, child)
		// Mark the source symbol used in its defining module. Relative
		// import dots carry no name information and are stripped.
		if src := strings.TrimLeft(module, "."); src != "" {
			v.addRef(src + "." + name)
		}
	}
}

func (v *visitor) addImportDef(bound string, node *sitter.Node) {
	if bound == "" {
		return
	}
	simple := bound
	if i := strings.LastIndex(bound, "."); i >= 0 {
		simple = bound[i+1:]
	}
	def := models.Definition{
		Name:       bound,
		SimpleName: simple,
		Kind:       models.KindImport,
		File:       v.path,
		Line:       v.line(node),
		InInit:     v.inInit,
	}
	// Imports in a package __init__ commonly exist only for re-export.
	def.IsExported = v.inInit && !strings.HasPrefix(simple, "_")
	v.defs = append(v.defs, def)
}

// ---- assignments ----

func (v *visitor) visitAssignment(node *sitter.Node) {
	left := node.ChildByFieldName("left")
	right := node.ChildByFieldName("right")
	typeNode := node.ChildByFieldName("type")

	v.visitExpression(typeNode)

	if left != nil && left.Type() == "identifier" {
		name := v.text(left)
		if name == "__all__" && right != nil {
			v.recordExports(right)
		} else if v.funcDepth == 0 && len(v.classStack) == 0 && right != nil {
			v.addDef(name, models.KindVariable, v.line(left), nil)
		}
	} else {
		v.visitTarget(left)
	}

	v.visitExpression(right)
}

// recordExports handles __all__ = ["name", ...]: each listed name is both
// an export mark and a reference (bare and module-qualified).
func (v *visitor) recordExports(right *sitter.Node) {
	if right == nil {
		return
	}
	switch right.Type() {
	case "list", "tuple", "set":
		for _, el := range pyparser.NamedChildren(right) {
			if el.Type() != "string" {
				continue
			}
			name := stringContent(el, v.source)
			if name == "" {
				continue
			}
			v.exports = append(v.exports, name)
			v.addRef(name)
			if v.moduleName != "" {
				v.addRef(v.moduleName + "." + name)
			}
		}
	}
}

// ---- expressions ----

func (v *visitor) visitExpression(node *sitter.Node) {
	if node == nil {
		return
	}

	switch node.Type() {
	case "identifier":
		name := v.text(node)
		v.addRef(name)
		if dynamicPatterns[name] {
			v.dynamic = true
		}
	case "attribute":
		v.visitAttribute(node)
	case "call":
		fn := node.ChildByFieldName("function")
		if fn != nil && fn.Type() == "identifier" && dynamicPatterns[v.text(fn)] {
			v.dynamic = true
		}
		v.visitExpression(fn)
		v.visitExpression(node.ChildByFieldName("arguments"))
	case "argument_list":
		for _, arg := range pyparser.NamedChildren(node) {
			v.visitExpression(arg)
		}
	case "keyword_argument":
		// The keyword name is not a reference; only the value is.
		v.visitExpression(node.ChildByFieldName("value"))
	case "string":
		v.visitString(node)
	case "concatenated_string":
		for _, child := range pyparser.NamedChildren(node) {
			v.visitExpression(child)
		}
	case "lambda":
		v.visitParameters(node.ChildByFieldName("parameters"))
		v.visitExpression(node.ChildByFieldName("body"))
	case "conditional_expression":
		for _, child := range pyparser.NamedChildren(node) {
			v.visitExpression(child)
		}
	case "list_comprehension", "set_comprehension", "dictionary_comprehension",
		"generator_expression":
		for _, child := range pyparser.NamedChildren(node) {
			switch child.Type() {
			case "for_in_clause":
				v.visitTarget(child.ChildByFieldName("left"))
				v.visitExpression(child.ChildByFieldName("right"))
			case "if_clause":
				v.visitExpression(child.NamedChild(0))
			default:
				v.visitExpression(child)
			}
		}
	case "integer", "float", "true", "false", "none", "ellipsis":
		// Literals carry no names.
	default:
		// Operators, containers, subscripts, slices, await/yield, splats
		// and parenthesized forms: recurse with no side effect of their own.
		for _, child := range pyparser.NamedChildren(node) {
			v.visitExpression(child)
		}
	}
}

// visitAttribute implements the attribute reference rules. self/cls access
// inside a class resolves to the one qualified symbol; any other access on
// a named base emits three loose forms.
func (v *visitor) visitAttribute(node *sitter.Node) {
	object := node.ChildByFieldName("object")
	attr := v.text(node.ChildByFieldName("attribute"))
	if object == nil || attr == "" {
		return
	}

	if object.Type() == "identifier" {
		base := v.text(object)
		if (base == "self" || base == "cls") && len(v.classStack) > 0 {
			qualified := v.qualify(attr)
			v.addRef(qualified)
			return
		}
		v.addRef(base)
		v.addRef(base + "." + attr)
		v.addRef(attr)
		return
	}

	// Unknown receiver type: keep the loose attribute name so duck-typed
	// call sites still count as usage.
	v.visitExpression(object)
	v.addRef(attr)
}

// visitString records interpolations and applies the identifier heuristic:
// a plain literal with no whitespace or dots may name a symbol looked up
// dynamically at runtime.
func (v *visitor) visitString(node *sitter.Node) {
	interpolated := false
	for _, child := range pyparser.NamedChildren(node) {
		if child.Type() == "interpolation" {
			interpolated = true
			for _, sub := range pyparser.NamedChildren(child) {
				v.visitExpression(sub)
			}
		}
	}
	if interpolated {
		return
	}

	content := stringContent(node, v.source)
	if content != "" && !strings.ContainsAny(content, " .") {
		v.addRef(content)
	}
}

// stringContent returns the raw content of a string node, without quotes.
func stringContent(node *sitter.Node, source []byte) string {
	var b strings.Builder
	for _, child := range pyparser.NamedChildren(node) {
		if child.Type() == "string_content" {
			b.WriteString(pyparser.NodeText(child, source))
		}
	}
	return b.String()
}

// childrenByFieldName collects every child bound to the given field.
func childrenByFieldName(node *sitter.Node, field string) []*sitter.Node {
	var out []*sitter.Node
	count := int(node.ChildCount())
	cursor := sitter.NewTreeCursor(node)
	defer cursor.Close()
	if cursor.GoToFirstChild() {
		for i := 0; i < count; i++ {
			if cursor.CurrentFieldName() == field {
				out = append(out, cursor.CurrentNode())
			}
			if !cursor.GoToNextSibling() {
				break
			}
		}
	}
	return out
}
