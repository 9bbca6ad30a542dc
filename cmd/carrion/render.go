package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/praxos/carrion/internal/output"
	"github.com/praxos/carrion/pkg/models"
)

func confidenceCell(conf int, colored bool) string {
	s := fmt.Sprintf("%d%%", conf)
	if !colored {
		return s
	}
	switch {
	case conf >= 90:
		return color.RedString(s)
	case conf >= 75:
		return color.YellowString(s)
	default:
		return s
	}
}

func definitionTable(title string, defs []models.Definition, colored bool) *output.Table {
	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", def.File, def.Line),
			def.Name,
			string(def.Kind),
			confidenceCell(def.Confidence, colored),
		})
	}
	return output.NewTable(title, []string{"Location", "Name", "Kind", "Confidence"}, rows, nil, nil)
}

func findingTable(title string, findings []models.Finding, colored bool) *output.Table {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		severity := string(f.Severity)
		if colored {
			severity = output.SeverityColor(severity, severity)
		}
		rows = append(rows, []string{
			fmt.Sprintf("%s:%d", f.File, f.Line),
			f.RuleID,
			severity,
			f.Message,
		})
	}
	return output.NewTable(title, []string{"Location", "Rule", "Severity", "Message"}, rows, nil, nil)
}

func renderUnusedTables(formatter *output.Formatter, result *models.AnalysisResult) error {
	sections := []struct {
		title string
		defs  []models.Definition
	}{
		{"Unused Functions", result.UnusedFunctions},
		{"Unused Classes", result.UnusedClasses},
		{"Unused Imports", result.UnusedImports},
		{"Unused Variables", result.UnusedVariables},
	}

	for _, s := range sections {
		if len(s.defs) == 0 {
			continue
		}
		if err := formatter.Output(definitionTable(s.title, s.defs, formatter.Colored())); err != nil {
			return err
		}
	}
	return nil
}

func renderFindingTables(formatter *output.Formatter, result *models.AnalysisResult) error {
	sections := []struct {
		title    string
		findings []models.Finding
	}{
		{"Hardcoded Secrets", result.Secrets},
		{"Dangerous Calls", result.Dangers},
		{"Quality Issues", result.Quality},
	}

	for _, s := range sections {
		if len(s.findings) == 0 {
			continue
		}
		if err := formatter.Output(findingTable(s.title, s.findings, formatter.Colored())); err != nil {
			return err
		}
	}
	return nil
}
