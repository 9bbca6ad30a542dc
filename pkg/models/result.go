package models

import "sort"

// AnalysisResult is the full output of one analysis run.
type AnalysisResult struct {
	UnusedFunctions []Definition `json:"unused_functions"`
	UnusedClasses   []Definition `json:"unused_classes"`
	UnusedImports   []Definition `json:"unused_imports"`
	UnusedVariables []Definition `json:"unused_variables"`
	Secrets         []Finding    `json:"secrets"`
	Dangers         []Finding    `json:"dangers"`
	Quality         []Finding    `json:"quality"`
	Summary         Summary      `json:"summary"`
}

// Summary provides aggregate counts for the run.
type Summary struct {
	TotalFiles   int `json:"total_files"`
	SecretsCount int `json:"secrets_count"`
	DangerCount  int `json:"danger_count"`
	QualityCount int `json:"quality_count"`
}

// TotalUnused returns the count of unused symbols across all kinds.
func (r *AnalysisResult) TotalUnused() int {
	return len(r.UnusedFunctions) + len(r.UnusedClasses) +
		len(r.UnusedImports) + len(r.UnusedVariables)
}

// Sort orders each unused list by file, then line, then name, so output
// is stable across runs regardless of parallel completion order.
func (r *AnalysisResult) Sort() {
	for _, list := range [][]Definition{
		r.UnusedFunctions, r.UnusedClasses, r.UnusedImports, r.UnusedVariables,
	} {
		sort.Slice(list, func(i, j int) bool {
			if list[i].File != list[j].File {
				return list[i].File < list[j].File
			}
			if list[i].Line != list[j].Line {
				return list[i].Line < list[j].Line
			}
			return list[i].Name < list[j].Name
		})
	}
	for _, list := range [][]Finding{r.Secrets, r.Dangers, r.Quality} {
		sort.Slice(list, func(i, j int) bool {
			if list[i].File != list[j].File {
				return list[i].File < list[j].File
			}
			return list[i].Line < list[j].Line
		})
	}
}
