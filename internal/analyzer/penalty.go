package analyzer

import (
	"bytes"

	"github.com/praxos/carrion/pkg/models"
)

// SuppressionMarker on a definition's source line forces confidence to zero.
const SuppressionMarker = "# pragma: no carrion"

const (
	baseConfidence      = 100
	frameworkConfidence = 20
	privatePenalty      = 40
	initPenalty         = 20
)

// fileContext holds the per-file classifier outputs consulted by the
// penalty cascade during aggregation.
type fileContext struct {
	isTestFile     bool
	testLines      map[uint32]bool
	frameworkLines map[uint32]bool
	ignoredLines   map[uint32]bool
	dynamic        bool
}

// applyPenalties computes a definition's confidence via the ordered rule
// cascade. Suppression and test rules short-circuit to zero; the framework
// rule caps the score low but lets later penalties still apply.
func applyPenalties(def *models.Definition, fctx *fileContext) int {
	if fctx != nil {
		if fctx.ignoredLines[def.Line] {
			return 0
		}
		if fctx.isTestFile || fctx.testLines[def.Line] {
			return 0
		}
	}

	confidence := baseConfidence
	if fctx != nil && fctx.frameworkLines[def.Line] {
		confidence = frameworkConfidence
	}

	if def.IsPrivate() {
		confidence -= privatePenalty
		if confidence < 0 {
			confidence = 0
		}
	}

	// Symbols declared in a package __init__ are part of its public
	// surface more often than reference counting can prove.
	if def.InInit && (def.Kind == models.KindFunction || def.Kind == models.KindClass) {
		confidence -= initPenalty
		if confidence < 0 {
			confidence = 0
		}
	}

	if def.IsDunder() {
		return 0
	}

	// A bare underscore is the conventional throwaway binding.
	if def.Kind == models.KindVariable && def.SimpleName == "_" {
		return 0
	}

	return confidence
}

// ignoredLines returns the 1-based lines carrying the suppression marker.
func ignoredLines(source []byte) map[uint32]bool {
	marked := map[uint32]bool{}
	for i, line := range bytes.Split(source, []byte("\n")) {
		if bytes.Contains(line, []byte(SuppressionMarker)) {
			marked[uint32(i)+1] = true
		}
	}
	if len(marked) == 0 {
		return nil
	}
	return marked
}
