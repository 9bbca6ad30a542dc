// Package analyzer implements dead-code reachability analysis for Python
// source trees: per-file definition/reference extraction, cross-file
// aggregation into a global reference table, and confidence scoring.
package analyzer

import (
	"context"
	"strings"

	"github.com/praxos/carrion/internal/fileproc"
	"github.com/praxos/carrion/internal/rules"
	"github.com/praxos/carrion/pkg/models"
	"github.com/praxos/carrion/pkg/pyparser"
)

// Options configures an analysis run.
type Options struct {
	// Confidence is the minimum confidence (0-100) for a zero-reference
	// symbol to be reported.
	Confidence int

	// Rule scanners, disabled by default.
	Secrets bool
	Danger  bool
	Quality bool
}

// Analyzer runs the full dead-code analysis pipeline.
type Analyzer struct {
	opts Options
}

// New creates an analyzer with the given options.
func New(opts Options) *Analyzer {
	return &Analyzer{opts: opts}
}

// fileResult is one file's contribution, produced in isolation by a worker
// and handed to the aggregation phase. Failed files contribute empty sets.
type fileResult struct {
	path    string
	module  string
	defs    []models.Definition
	refs    []models.Reference
	exports []string
	ctx     fileContext

	secrets []models.Finding
	dangers []models.Finding
	quality []models.Finding
}

// AnalyzeProject analyzes a set of Python files. Files are processed in
// parallel; per-file read or parse failures contribute empty results and
// never abort the run. root anchors module naming for nested packages.
func (a *Analyzer) AnalyzeProject(ctx context.Context, root string, files []string, onProgress fileproc.ProgressFunc) (*models.AnalysisResult, error) {
	results, errs := fileproc.MapFilesWithContextAndProgress(ctx, files,
		func(p *pyparser.Parser, path string) (*fileResult, error) {
			return a.analyzeFile(p, path, root), nil
		}, onProgress)

	if errs != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	result := a.aggregate(results)
	result.Summary.TotalFiles = len(files)
	result.Sort()
	return result, nil
}

// analyzeFile runs the visitor, classifiers, and rule scanners over one
// file. Any failure yields an empty contribution for that path.
func (a *Analyzer) analyzeFile(p *pyparser.Parser, path, root string) *fileResult {
	fr := &fileResult{path: path}

	res, err := p.ParseFile(path)
	if err != nil {
		return fr
	}

	treeRoot := res.Tree.RootNode()

	v := newVisitor(res, root)
	v.run(treeRoot)

	fr.module = v.moduleName
	fr.defs = v.defs
	fr.refs = v.refs
	fr.exports = v.exports

	// Symbols reachable only from the main guard are still alive.
	for _, name := range entryPointCalls(treeRoot, res.Source) {
		fr.refs = append(fr.refs,
			models.Reference{Name: name, File: path},
			models.Reference{Name: moduleQualified(v.moduleName, name), File: path})
	}

	fw := classifyFramework(treeRoot, res.Source, res.Lines)
	fr.ctx = fileContext{
		isTestFile:     isTestFile(path),
		testLines:      testLines(treeRoot, res.Source, res.Lines),
		frameworkLines: fw.lines,
		ignoredLines:   ignoredLines(res.Source),
		dynamic:        v.dynamic,
	}

	if a.opts.Secrets {
		fr.secrets = rules.ScanSecrets(path, res.Source)
	}
	if a.opts.Danger {
		fr.dangers = rules.ScanDanger(path, res)
	}
	if a.opts.Quality {
		fr.quality = rules.ScanQuality(path, res)
	}

	return fr
}

// aggregate merges per-file results: builds the global reference table,
// applies implicit-use heuristics, scores each definition, and buckets
// zero-reference survivors by kind.
func (a *Analyzer) aggregate(results []*fileResult) *models.AnalysisResult {
	out := &models.AnalysisResult{
		UnusedFunctions: []models.Definition{},
		UnusedClasses:   []models.Definition{},
		UnusedImports:   []models.Definition{},
		UnusedVariables: []models.Definition{},
		Secrets:         []models.Finding{},
		Dangers:         []models.Finding{},
		Quality:         []models.Finding{},
	}

	// Global reference table: name string to occurrence count. A name seen
	// in any file satisfies a definition in any other, by design.
	table := map[string]int{}
	contexts := map[string]*fileContext{}
	var defs []models.Definition

	for _, fr := range results {
		if fr == nil {
			continue
		}
		for _, ref := range fr.refs {
			table[ref.Name]++
		}
		fctx := fr.ctx
		contexts[fr.path] = &fctx

		exported := map[string]bool{}
		for _, name := range fr.exports {
			exported[name] = true
		}

		for _, def := range fr.defs {
			if exported[def.SimpleName] {
				def.IsExported = true
			}
			// A module doing runtime attribute lookups may reach any of
			// its public callables.
			if fr.ctx.dynamic && !strings.HasPrefix(def.SimpleName, "_") &&
				(def.Kind == models.KindFunction || def.Kind == models.KindMethod) {
				def.IsExported = true
			}
			defs = append(defs, def)
		}

		out.Secrets = append(out.Secrets, fr.secrets...)
		out.Dangers = append(out.Dangers, fr.dangers...)
		out.Quality = append(out.Quality, fr.quality...)
	}

	for i := range defs {
		def := &defs[i]
		def.References = resolveReferences(def, table)
		def.Confidence = applyPenalties(def, contexts[def.File])

		if def.References > 0 || def.IsExported {
			continue
		}
		if def.Confidence <= 0 || def.Confidence < a.opts.Confidence {
			continue
		}

		switch def.Kind {
		case models.KindFunction, models.KindMethod:
			out.UnusedFunctions = append(out.UnusedFunctions, *def)
		case models.KindClass:
			out.UnusedClasses = append(out.UnusedClasses, *def)
		case models.KindImport:
			out.UnusedImports = append(out.UnusedImports, *def)
		case models.KindVariable:
			out.UnusedVariables = append(out.UnusedVariables, *def)
		}
	}

	out.Summary.SecretsCount = len(out.Secrets)
	out.Summary.DangerCount = len(out.Dangers)
	out.Summary.QualityCount = len(out.Quality)
	return out
}

// resolveReferences is the single point where a definition is matched
// against the reference table. Matching is name-string based: the full
// qualified name plus, when distinct, the bare simple name (which is what
// makes loose attribute references and same-module calls land). A stricter
// binder could replace this without touching the traversal.
func resolveReferences(def *models.Definition, table map[string]int) int {
	count := table[def.Name]
	if def.SimpleName != def.Name {
		count += table[def.SimpleName]
	}

	// Interpreter-invoked methods live and die with their class.
	if def.Kind == models.KindMethod && def.IsDunder() {
		if i := strings.LastIndex(def.Name, "."); i > 0 && table[def.Name[:i]] > 0 {
			count++
		}
	}

	return count
}
