// Package baseline persists acknowledged findings so repeated scans only
// surface regressions. Each unused symbol is identified by a content
// fingerprint that survives line-number drift.
package baseline

import (
	"encoding/hex"
	"fmt"
	"os"
	"time"

	"github.com/praxos/carrion/pkg/models"
	"github.com/zeebo/blake3"
	"gopkg.in/yaml.v3"
)

const currentVersion = 1

// Entry records one acknowledged unused symbol.
type Entry struct {
	Fingerprint string `yaml:"fingerprint"`
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	File        string `yaml:"file"`
}

// Baseline is the on-disk acknowledgement set.
type Baseline struct {
	Version   int       `yaml:"version"`
	CreatedAt time.Time `yaml:"created_at"`
	Entries   []Entry   `yaml:"entries"`
}

// Fingerprint derives a stable identity for a definition. Line numbers are
// deliberately excluded so edits above a symbol don't invalidate its entry.
func Fingerprint(def models.Definition) string {
	data := string(def.Kind) + ":" + def.Name + ":" + def.File
	sum := blake3.Sum256([]byte(data))
	return hex.EncodeToString(sum[:8])
}

// FromResult builds a baseline acknowledging every unused symbol in a result.
func FromResult(result *models.AnalysisResult) *Baseline {
	b := &Baseline{
		Version:   currentVersion,
		CreatedAt: time.Now().UTC(),
	}
	for _, defs := range [][]models.Definition{
		result.UnusedFunctions,
		result.UnusedClasses,
		result.UnusedImports,
		result.UnusedVariables,
	} {
		for _, def := range defs {
			b.Entries = append(b.Entries, Entry{
				Fingerprint: Fingerprint(def),
				Name:        def.Name,
				Kind:        string(def.Kind),
				File:        def.File,
			})
		}
	}
	return b
}

// Load reads a baseline file.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading baseline: %w", err)
	}
	var b Baseline
	if err := yaml.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parsing baseline: %w", err)
	}
	if b.Version != currentVersion {
		return nil, fmt.Errorf("unsupported baseline version %d", b.Version)
	}
	return &b, nil
}

// Write persists the baseline.
func (b *Baseline) Write(path string) error {
	data, err := yaml.Marshal(b)
	if err != nil {
		return fmt.Errorf("encoding baseline: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing baseline: %w", err)
	}
	return nil
}

// Filter removes acknowledged symbols from a result in place and returns
// how many were suppressed. Summary counts are left untouched; they describe
// the scan, not the report.
func (b *Baseline) Filter(result *models.AnalysisResult) int {
	known := make(map[string]bool, len(b.Entries))
	for _, e := range b.Entries {
		known[e.Fingerprint] = true
	}

	suppressed := 0
	keep := func(defs []models.Definition) []models.Definition {
		out := defs[:0]
		for _, def := range defs {
			if known[Fingerprint(def)] {
				suppressed++
				continue
			}
			out = append(out, def)
		}
		return out
	}

	result.UnusedFunctions = keep(result.UnusedFunctions)
	result.UnusedClasses = keep(result.UnusedClasses)
	result.UnusedImports = keep(result.UnusedImports)
	result.UnusedVariables = keep(result.UnusedVariables)
	return suppressed
}
