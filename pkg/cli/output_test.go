package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type buildSummary struct {
	BuildID string         `json:"build_id" yaml:"build_id"`
	Entries int            `json:"entries" yaml:"entries"`
	Counts  map[string]int `json:"counts" yaml:"counts"`
}

var summary = buildSummary{BuildID: "b1", Entries: 3, Counts: map[string]int{"cat": 2, "dog": 1}}

func TestOutput_Formats(t *testing.T) {
	tests := []struct {
		format OutputFormat
		want   []string
	}{
		{FormatYAML, []string{"build_id: b1", "entries: 3", "cat: 2"}},
		{"", []string{"build_id: b1"}},
		{FormatJSON, []string{`"build_id": "b1"`, `"cat": 2`}},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := Output(summary, OutputOptions{Format: tt.format, Writer: &buf}); err != nil {
			t.Fatalf("Output(%q) error: %v", tt.format, err)
		}
		for _, w := range tt.want {
			if !strings.Contains(buf.String(), w) {
				t.Errorf("Output(%q) missing %q in:\n%s", tt.format, w, buf.String())
			}
		}
	}
}

func TestOutput_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Output(summary, OutputOptions{Format: "csv", Writer: &buf}); err == nil {
		t.Error("Output should fail for unsupported format")
	}
}

func TestOutput_ToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.json")
	if err := Output(summary, OutputOptions{Format: FormatJSON, File: path, Indent: "\t"}); err != nil {
		t.Fatalf("Output error: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile error: %v", err)
	}
	if !strings.Contains(string(content), "\t\"entries\"") {
		t.Errorf("expected tab indentation, got: %s", content)
	}
	var got buildSummary
	if err := json.Unmarshal(content, &got); err != nil {
		t.Fatalf("Invalid JSON in file: %v", err)
	}
	if got.Counts["cat"] != 2 {
		t.Errorf("counts[cat] = %d, want 2", got.Counts["cat"])
	}
}

type countsTable map[string]int

func (c countsTable) Header() []string { return []string{"WORD", "RECORDINGS"} }

func (c countsTable) Rows() [][]string {
	return [][]string{{"cat", "2"}, {"dog", "1"}}
}

func TestOutput_Table(t *testing.T) {
	var buf bytes.Buffer

	err := Output(countsTable{"cat": 2, "dog": 1}, OutputOptions{
		Format: FormatTable,
		Writer: &buf,
	})
	if err != nil {
		t.Fatalf("Output error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"WORD", "RECORDINGS", "cat", "dog"} {
		if !strings.Contains(out, want) {
			t.Errorf("table should contain %q, got: %s", want, out)
		}
	}
}

func TestOutput_TableFallback(t *testing.T) {
	var buf bytes.Buffer

	// Non-tabular results fall back to YAML
	if err := Output(map[string]int{"count": 42}, OutputOptions{Format: FormatTable, Writer: &buf}); err != nil {
		t.Fatalf("Output error: %v", err)
	}
	if !strings.Contains(buf.String(), "count: 42") {
		t.Errorf("Output should contain YAML, got: %s", buf.String())
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    OutputFormat
		wantErr bool
	}{
		{"", FormatYAML, false},
		{"yaml", FormatYAML, false},
		{"json", FormatJSON, false},
		{"table", FormatTable, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
