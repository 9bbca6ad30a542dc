package analyzer

import "testing"

func TestClassifyFrameworkImports(t *testing.T) {
	res := parseSource(t, "app.py", `from flask import Flask
import celery
`)
	info := classifyFramework(res.Tree.RootNode(), res.Source, res.Lines)

	if !info.isFrameworkFile {
		t.Error("flask import should mark the file")
	}
	if !info.fragments["flask"] || !info.fragments["celery"] {
		t.Errorf("fragments = %v", info.fragments)
	}
}

func TestClassifyFrameworkDecorators(t *testing.T) {
	res := parseSource(t, "app.py", `@app.route("/")
def index():
    return "ok"

@cache
def plain():
    return 1
`)
	info := classifyFramework(res.Tree.RootNode(), res.Source, res.Lines)

	if !info.lines[2] {
		t.Errorf("route-decorated def on line 2 not marked, got %v", info.lines)
	}
	if info.lines[6] {
		t.Errorf("unrelated decorator marked line 6, got %v", info.lines)
	}
}

func TestClassifyFrameworkBases(t *testing.T) {
	res := parseSource(t, "m.py", `class User(models.Model):
    pass

class Plain(Helper):
    pass
`)
	info := classifyFramework(res.Tree.RootNode(), res.Source, res.Lines)

	if !info.lines[1] {
		t.Errorf("Model-derived class not marked, got %v", info.lines)
	}
	if info.lines[4] {
		t.Errorf("plain class marked, got %v", info.lines)
	}
}

func TestDecoratorName(t *testing.T) {
	res := parseSource(t, "app.py", `@app.route("/users")
def users():
    pass
`)
	root := res.Tree.RootNode()
	decorated := root.NamedChild(0)
	decorator := decorated.NamedChild(0)

	if got := decoratorName(decorator.NamedChild(0), res.Source); got != "route" {
		t.Errorf("decoratorName = %q, want route", got)
	}
}
