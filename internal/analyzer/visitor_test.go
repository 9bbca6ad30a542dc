package analyzer

import (
	"testing"

	"github.com/praxos/carrion/pkg/models"
	"github.com/praxos/carrion/pkg/pyparser"
)

func parseSource(t *testing.T, path, source string) *pyparser.ParseResult {
	t.Helper()
	p := pyparser.New()
	defer p.Close()
	res, err := p.Parse([]byte(source), path)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return res
}

func runVisitor(t *testing.T, path, source string) *visitor {
	t.Helper()
	res := parseSource(t, path, source)
	v := newVisitor(res, "")
	v.run(res.Tree.RootNode())
	return v
}

func refNames(v *visitor) map[string]int {
	table := map[string]int{}
	for _, r := range v.refs {
		table[r.Name]++
	}
	return table
}

func TestModuleNameFor(t *testing.T) {
	tests := []struct {
		path string
		root string
		want string
	}{
		{"app.py", "", "app"},
		{"pkg/util.py", "", "util"},
		{"/proj/pkg/util.py", "/proj", "util"},
		{"pkg/__init__.py", "", "pkg"},
		{"/proj/pkg/__init__.py", "/proj", "pkg"},
		{"/proj/__init__.py", "/proj", ""},
		{"__init__.py", "", ""},
	}
	for _, tt := range tests {
		if got := moduleNameFor(tt.path, tt.root); got != tt.want {
			t.Errorf("moduleNameFor(%q, %q) = %q, want %q", tt.path, tt.root, got, tt.want)
		}
	}
}

func TestQualifiedDefinitionNames(t *testing.T) {
	v := runVisitor(t, "shop.py", `class Cart:
    def total(self):
        return 0

def checkout():
    pass
`)

	want := map[string]models.Kind{
		"shop.Cart":       models.KindClass,
		"shop.Cart.total": models.KindMethod,
		"shop.checkout":   models.KindFunction,
	}
	got := map[string]models.Kind{}
	for _, d := range v.defs {
		got[d.Name] = d.Kind
	}
	for name, kind := range want {
		if got[name] != kind {
			t.Errorf("definition %q = %q, want %q", name, got[name], kind)
		}
	}
	if len(got) != len(want) {
		t.Errorf("got %d definitions %v, want %d", len(got), got, len(want))
	}
}

func TestNestedFunctionsNotRecorded(t *testing.T) {
	v := runVisitor(t, "mod.py", `def outer():
    def inner():
        pass
    return inner
`)

	for _, d := range v.defs {
		if d.SimpleName == "inner" {
			t.Errorf("nested function recorded as definition: %+v", d)
		}
	}
}

func TestSelfAttributeQualifiedOnly(t *testing.T) {
	v := runVisitor(t, "svc.py", `class Service:
    def run(self):
        self._step()
`)
	refs := refNames(v)

	if refs["svc.Service._step"] == 0 {
		t.Errorf("self._step should emit the qualified reference, got %v", refs)
	}
	if refs["_step"] != 0 {
		t.Errorf("self access must not emit the loose name, got %v", refs)
	}
}

func TestAttributeEmitsThreeForms(t *testing.T) {
	v := runVisitor(t, "mod.py", `def f():
    return helpers.format(x)
`)
	refs := refNames(v)

	for _, want := range []string{"helpers", "helpers.format", "format"} {
		if refs[want] == 0 {
			t.Errorf("missing reference %q, got %v", want, refs)
		}
	}
}

func TestImportBindings(t *testing.T) {
	v := runVisitor(t, "mod.py", `import os.path
import numpy as np
from collections import OrderedDict
from . import siblings
`)

	bound := map[string]string{}
	for _, d := range v.defs {
		if d.Kind == models.KindImport {
			bound[d.Name] = d.SimpleName
		}
	}

	if bound["os.path"] != "path" {
		t.Errorf("dotted import binding = %v", bound)
	}
	if bound["np"] != "np" {
		t.Errorf("aliased import binding = %v", bound)
	}
	if bound["OrderedDict"] != "OrderedDict" {
		t.Errorf("from-import binding = %v", bound)
	}

	refs := refNames(v)
	if refs["collections.OrderedDict"] == 0 {
		t.Errorf("from-import should reference the source symbol, got %v", refs)
	}
}

func TestFutureImportSkipped(t *testing.T) {
	v := runVisitor(t, "mod.py", "from __future__ import annotations\n")
	if len(v.defs) != 0 {
		t.Errorf("__future__ import recorded: %+v", v.defs)
	}
}

func TestWildcardImportReferencesModule(t *testing.T) {
	v := runVisitor(t, "mod.py", "from helpers import *\n")
	if len(v.defs) != 0 {
		t.Errorf("wildcard import bound names: %+v", v.defs)
	}
	if refNames(v)["helpers"] == 0 {
		t.Errorf("wildcard import should reference the module, got %v", refNames(v))
	}
}

func TestDunderAllRecordsExports(t *testing.T) {
	v := runVisitor(t, "mod.py", `__all__ = ["alpha", "beta"]
`)

	if len(v.exports) != 2 || v.exports[0] != "alpha" || v.exports[1] != "beta" {
		t.Errorf("exports = %v, want [alpha beta]", v.exports)
	}
	refs := refNames(v)
	if refs["alpha"] == 0 || refs["mod.alpha"] == 0 {
		t.Errorf("export names should be referenced bare and qualified, got %v", refs)
	}
}

func TestStringLiteralHeuristic(t *testing.T) {
	v := runVisitor(t, "mod.py", `x = lookup("handler_name")
y = log("two words here")
z = log("dotted.path")
`)
	refs := refNames(v)

	if refs["handler_name"] == 0 {
		t.Errorf("bare identifier-like string should count, got %v", refs)
	}
	if refs["two words here"] != 0 || refs["dotted.path"] != 0 {
		t.Errorf("strings with spaces or dots must not count, got %v", refs)
	}
}

func TestFStringInterpolationsVisited(t *testing.T) {
	v := runVisitor(t, "mod.py", "msg = f\"value is {compute()}\"\n")
	if refNames(v)["compute"] == 0 {
		t.Errorf("interpolated expression not visited, got %v", refNames(v))
	}
}

func TestKeywordArgumentNameNotReferenced(t *testing.T) {
	v := runVisitor(t, "mod.py", "call(timeout=delay)\n")
	refs := refNames(v)

	if refs["timeout"] != 0 {
		t.Errorf("keyword name counted as reference, got %v", refs)
	}
	if refs["delay"] == 0 {
		t.Errorf("keyword value not counted, got %v", refs)
	}
}

func TestAssignmentTargetNotReferenced(t *testing.T) {
	v := runVisitor(t, "mod.py", `result = source
result += extra
`)
	refs := refNames(v)

	if refs["source"] == 0 || refs["extra"] == 0 {
		t.Errorf("right-hand sides should be referenced, got %v", refs)
	}
	// The augmented assignment reads result; the plain one does not.
	if refs["result"] != 1 {
		t.Errorf("result referenced %d times, want 1 (augmented read only)", refs["result"])
	}
}

func TestModuleVariablesRecorded(t *testing.T) {
	v := runVisitor(t, "mod.py", `LIMIT = 10

def f():
    local = 1
`)

	var vars []string
	for _, d := range v.defs {
		if d.Kind == models.KindVariable {
			vars = append(vars, d.SimpleName)
		}
	}
	if len(vars) != 1 || vars[0] != "LIMIT" {
		t.Errorf("variables = %v, want [LIMIT]", vars)
	}
}

func TestDynamicModuleDetection(t *testing.T) {
	v := runVisitor(t, "mod.py", "handler = getattr(registry, name)\n")
	if !v.dynamic {
		t.Error("getattr call should mark the module dynamic")
	}

	v = runVisitor(t, "mod.py", "handler = registry[name]\n")
	if v.dynamic {
		t.Error("plain subscript should not mark the module dynamic")
	}
}

func TestInitModuleExports(t *testing.T) {
	res := parseSource(t, "pkg/__init__.py", `def api():
    pass

def _internal():
    pass
`)
	v := newVisitor(res, "")
	v.run(res.Tree.RootNode())

	exported := map[string]bool{}
	for _, d := range v.defs {
		exported[d.SimpleName] = d.IsExported
	}
	if !exported["api"] {
		t.Error("public name in a package __init__ should be exported")
	}
	if exported["_internal"] {
		t.Error("private name in __init__ should not be exported")
	}
}
