package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"", FormatText},
		{"bogus", FormatText},
	}
	for _, tt := range tests {
		if got := ParseFormat(tt.input); got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestFormatterWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")

	f, err := NewFormatter(FormatJSON, path, true)
	if err != nil {
		t.Fatal(err)
	}
	if f.Colored() {
		t.Error("file output should disable color")
	}
	if err := f.Output(map[string]int{"count": 3}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]int
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded["count"] != 3 {
		t.Errorf("decoded = %v", decoded)
	}
}

func TestTableRenderText(t *testing.T) {
	table := NewTable("Unused Functions",
		[]string{"Name", "File", "Line"},
		[][]string{
			{"mod.orphan", "mod.py", "4"},
			{"mod.stale", "mod.py", "9"},
		},
		nil, nil)

	var buf bytes.Buffer
	if err := table.RenderText(&buf, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	for _, want := range []string{"Unused Functions", "mod.orphan", "mod.py", "9"} {
		if !strings.Contains(out, want) {
			t.Errorf("text output missing %q:\n%s", want, out)
		}
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable("Findings",
		[]string{"Rule", "Line"},
		[][]string{{"CAR-S101", "12"}},
		nil, nil)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	if !strings.Contains(out, "## Findings") {
		t.Errorf("missing title:\n%s", out)
	}
	if !strings.Contains(out, "| Rule | Line |") {
		t.Errorf("missing header row:\n%s", out)
	}
	if !strings.Contains(out, "| --- | --- |") {
		t.Errorf("missing separator row:\n%s", out)
	}
	if !strings.Contains(out, "| CAR-S101 | 12 |") {
		t.Errorf("missing data row:\n%s", out)
	}
}

func TestTableRenderDataPrefersWrapped(t *testing.T) {
	payload := map[string]int{"total": 7}
	table := NewTable("t", []string{"A"}, [][]string{{"x"}}, nil, payload)

	if got := table.RenderData(); got == nil {
		t.Fatal("nil render data")
	} else if m, ok := got.(map[string]int); !ok || m["total"] != 7 {
		t.Errorf("RenderData() = %v, want wrapped payload", got)
	}

	bare := NewTable("t", []string{"A"}, [][]string{{"x"}}, nil, nil)
	rows, ok := bare.RenderData().([]map[string]string)
	if !ok || len(rows) != 1 || rows[0]["A"] != "x" {
		t.Errorf("RenderData() = %v, want row maps", bare.RenderData())
	}
}

func TestOutputTOON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.toon")
	f, err := NewFormatter(FormatTOON, path, false)
	if err != nil {
		t.Fatal(err)
	}
	if err := f.Output(map[string]any{"files": 2}); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "files") {
		t.Errorf("toon output missing key:\n%s", data)
	}
}

func TestMessageHelpersPlain(t *testing.T) {
	var buf bytes.Buffer
	f := &Formatter{format: FormatText, writer: &buf, colored: false}

	f.Success("done %d", 1)
	f.Warning("careful")
	f.Error("broken")
	f.Info("fyi")

	out := buf.String()
	for _, want := range []string{"done 1", "WARNING: careful", "ERROR: broken", "fyi"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
