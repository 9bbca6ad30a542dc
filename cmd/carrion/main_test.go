package main

import (
	"strings"
	"testing"

	"github.com/praxos/carrion/pkg/models"
	"github.com/urfave/cli/v2"
)

// TestGetPaths verifies path handling from CLI arguments.
func TestGetPaths(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected []string
	}{
		{
			name:     "no args defaults to current dir",
			args:     []string{},
			expected: []string{"."},
		},
		{
			name:     "single path",
			args:     []string{"/foo/bar"},
			expected: []string{"/foo/bar"},
		},
		{
			name:     "multiple paths",
			args:     []string{"/foo", "/bar"},
			expected: []string{"/foo", "/bar"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := &cli.App{
				Action: func(c *cli.Context) error {
					result := getPaths(c)
					if len(result) != len(tt.expected) {
						t.Errorf("getPaths() = %v, want %v", result, tt.expected)
						return nil
					}
					for i := range result {
						if result[i] != tt.expected[i] {
							t.Errorf("getPaths()[%d] = %q, want %q", i, result[i], tt.expected[i])
						}
					}
					return nil
				},
			}
			args := append([]string{"test"}, tt.args...)
			_ = app.Run(args)
		})
	}
}

func TestGenerateDefaultConfig(t *testing.T) {
	content, err := generateDefaultConfig()
	if err != nil {
		t.Fatal(err)
	}

	for _, want := range []string{"# Carrion configuration", "[analysis]", "confidence = 60", "[exclude]", "gitignore = true"} {
		if !strings.Contains(content, want) {
			t.Errorf("generated config missing %q:\n%s", want, content)
		}
	}
}

func TestConfidenceCellPlain(t *testing.T) {
	if got := confidenceCell(95, false); got != "95%" {
		t.Errorf("confidenceCell(95, false) = %q", got)
	}
	if got := confidenceCell(60, true); got != "60%" {
		t.Errorf("low confidence should stay uncolored, got %q", got)
	}
}

func TestDefinitionTableRows(t *testing.T) {
	defs := []models.Definition{
		{Name: "mod.orphan", Kind: models.KindFunction, File: "mod.py", Line: 4, Confidence: 100},
	}
	table := definitionTable("Unused Functions", defs, false)

	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.Rows))
	}
	row := table.Rows[0]
	if row[0] != "mod.py:4" || row[1] != "mod.orphan" || row[2] != "function" || row[3] != "100%" {
		t.Errorf("row = %v", row)
	}
}

func TestFindingTableRows(t *testing.T) {
	findings := []models.Finding{
		{Message: "use of eval()", RuleID: "CAR-D001", File: "app.py", Line: 2, Severity: models.SeverityCritical},
	}
	table := findingTable("Dangerous Calls", findings, false)

	if len(table.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(table.Rows))
	}
	row := table.Rows[0]
	if row[0] != "app.py:2" || row[1] != "CAR-D001" || row[2] != "CRITICAL" || row[3] != "use of eval()" {
		t.Errorf("row = %v", row)
	}
}
