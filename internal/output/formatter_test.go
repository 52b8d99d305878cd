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
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"TOON", FormatTOON},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseFormat(tt.input)
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterStdout(t *testing.T) {
	f, err := NewFormatter(FormatText, "", true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}
	defer f.Close()

	if f.file != nil {
		t.Error("file should be nil for stdout")
	}
	if f.Format() != FormatText {
		t.Errorf("Format() = %q, want %q", f.Format(), FormatText)
	}
	if !f.Colored() {
		t.Error("Colored() = false, want true")
	}
	if f.Writer() == nil {
		t.Error("Writer() should not be nil")
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "output.txt")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	if f.file == nil {
		t.Error("file should not be nil for file output")
	}
	if f.colored {
		t.Error("colored should be false when writing to file")
	}

	if err := f.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}

	if _, err := os.Stat(outputPath); os.IsNotExist(err) {
		t.Error("output file should exist")
	}
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, "/nonexistent/directory/file.txt", false)
	if err == nil {
		t.Error("NewFormatter() should error for invalid path")
	}
}

func TestTableRenderText(t *testing.T) {
	tests := []struct {
		name  string
		table *Table
		want  []string
	}{
		{
			name: "simple_table",
			table: NewTable(
				"Scan Results",
				[]string{"File", "Severity"},
				[][]string{
					{"db.py", "critical"},
					{"app.py", "low"},
				},
				nil,
				nil,
			),
			want: []string{"Scan Results", "FILE", "SEVERITY", "db.py", "critical"},
		},
		{
			name: "table_with_footer",
			table: NewTable(
				"Summary",
				[]string{"Metric", "Value"},
				[][]string{{"Files", "10"}},
				[]string{"Total", "10"},
				nil,
			),
			want: []string{"Summary", "METRIC", "Files", "Total"},
		},
		{
			name: "no_title",
			table: NewTable(
				"",
				[]string{"A", "B"},
				[][]string{{"1", "2"}},
				nil,
				nil,
			),
			want: []string{"A", "B", "1", "2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := tt.table.RenderText(&buf, false); err != nil {
				t.Fatalf("RenderText() error: %v", err)
			}

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("RenderText() missing %q in output:\n%s", want, output)
				}
			}
		})
	}
}

func TestTableRenderMarkdown(t *testing.T) {
	table := NewTable(
		"Dependencies",
		[]string{"Source", "Target"},
		[][]string{{"main.py", "os"}},
		[]string{"Total", "1"},
		nil,
	)

	var buf bytes.Buffer
	if err := table.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	output := buf.String()
	want := []string{"## Dependencies", "| Source | Target |", "| --- | --- |", "| main.py | os |", "| Total | 1 |"}
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("RenderMarkdown() missing %q in output:\n%s", w, output)
		}
	}
}

func TestTableRenderData(t *testing.T) {
	t.Run("with_data_field", func(t *testing.T) {
		data := map[string]any{"custom": "data"}
		table := NewTable("Title", []string{"H1"}, [][]string{{"R1"}}, nil, data)

		result, ok := table.RenderData().(map[string]any)
		if !ok {
			t.Fatal("RenderData() should return the Data field when set")
		}
		if result["custom"] != "data" {
			t.Error("RenderData() should return the correct data")
		}
	})

	t.Run("without_data_field", func(t *testing.T) {
		table := NewTable(
			"Test",
			[]string{"Name", "Value"},
			[][]string{{"foo", "100"}, {"bar", "200"}},
			nil,
			nil,
		)

		rows, ok := table.RenderData().([]map[string]string)
		if !ok {
			t.Fatalf("RenderData() should return []map[string]string, got %T", table.RenderData())
		}
		if len(rows) != 2 {
			t.Errorf("RenderData() returned %d rows, want 2", len(rows))
		}
		if rows[0]["Name"] != "foo" || rows[0]["Value"] != "100" {
			t.Errorf("RenderData() row 0 = %v", rows[0])
		}
	})
}

func TestSectionRenderText(t *testing.T) {
	section := &Section{
		Title:   "Architecture",
		Content: "Pattern: layered",
		Sections: []Section{
			{Title: "Signals", Content: "shared modules referenced from 3 top-level dirs"},
		},
	}

	var buf bytes.Buffer
	if err := section.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	output := buf.String()
	want := []string{"Architecture", "===", "Pattern: layered", "Signals", "---", "shared modules"}
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("RenderText() missing %q in output:\n%s", w, output)
		}
	}
}

func TestSectionRenderMarkdown(t *testing.T) {
	section := &Section{
		Title:   "Level 1",
		Content: "L1 content",
		Sections: []Section{
			{Title: "Level 2", Content: "L2 content"},
		},
	}

	var buf bytes.Buffer
	if err := section.RenderMarkdown(&buf); err != nil {
		t.Fatalf("RenderMarkdown() error: %v", err)
	}

	output := buf.String()
	want := []string{"## Level 1", "L1 content", "### Level 2", "L2 content"}
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("RenderMarkdown() missing %q in output:\n%s", w, output)
		}
	}
}

func TestReportRenderText(t *testing.T) {
	report := &Report{
		Title: "Repository Analysis",
		Sections: []Renderable{
			&Section{Title: "Summary", Content: "12 files"},
			NewTable("Files", []string{"Path", "Complexity"}, [][]string{{"main.go", "3"}}, nil, nil),
		},
	}

	var buf bytes.Buffer
	if err := report.RenderText(&buf, false); err != nil {
		t.Fatalf("RenderText() error: %v", err)
	}

	output := buf.String()
	want := []string{"Repository Analysis", "Summary", "12 files", "PATH", "COMPLEXITY", "main.go"}
	for _, w := range want {
		if !strings.Contains(output, w) {
			t.Errorf("RenderText() missing %q in output:\n%s", w, output)
		}
	}
}

func TestFormatterOutputJSON(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.json")

	f, err := NewFormatter(FormatJSON, outputPath, false)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	data := map[string]any{
		"name":  "test",
		"value": 123,
		"items": []string{"a", "b", "c"},
	}
	if err := f.Output(data); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	f.Close()

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(content, &result); err != nil {
		t.Fatalf("Unmarshal() error: %v", err)
	}
	if result["name"] != "test" {
		t.Errorf("name = %v, want test", result["name"])
	}
	if result["value"].(float64) != 123 {
		t.Errorf("value = %v, want 123", result["value"])
	}
}

func TestFormatterOutputTOON(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "out.toon")

	f, err := NewFormatter(FormatTOON, outputPath, false)
	if err != nil {
		t.Fatalf("NewFormatter() error: %v", err)
	}

	data := map[string]any{"total_files": 3, "success": true}
	if err := f.Output(data); err != nil {
		t.Fatalf("Output() error: %v", err)
	}
	f.Close()

	content, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if len(content) == 0 {
		t.Error("TOON output should not be empty")
	}
	if !strings.Contains(string(content), "total_files") {
		t.Errorf("TOON output missing field, got:\n%s", content)
	}
}

func TestFormatterOutputRenderable(t *testing.T) {
	formats := []Format{FormatText, FormatJSON, FormatMarkdown, FormatTOON}
	for _, format := range formats {
		t.Run(string(format), func(t *testing.T) {
			outputPath := filepath.Join(t.TempDir(), "out."+string(format))

			f, err := NewFormatter(format, outputPath, false)
			if err != nil {
				t.Fatalf("NewFormatter() error: %v", err)
			}
			defer f.Close()

			table := NewTable("Test", []string{"A"}, [][]string{{"1"}}, nil, nil)
			if err := f.Output(table); err != nil {
				t.Errorf("Output() error for %s: %v", format, err)
			}
			f.Close()

			content, err := os.ReadFile(outputPath)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if len(content) == 0 {
				t.Errorf("output file for %s should not be empty", format)
			}
		})
	}
}

func TestFormatterMessageMethods(t *testing.T) {
	tests := []struct {
		name   string
		method func(*Formatter, string, ...any)
		format string
		args   []any
		want   string
	}{
		{"success", (*Formatter).Success, "Analysis complete", nil, "Analysis complete"},
		{"warning", (*Formatter).Warning, "Large repository", nil, "WARNING: Large repository"},
		{"error", (*Formatter).Error, "Walk failed", nil, "ERROR: Walk failed"},
		{"info", (*Formatter).Info, "Processing %d files", []any{5}, "Processing 5 files"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outputPath := filepath.Join(t.TempDir(), "output.txt")

			f, err := NewFormatter(FormatText, outputPath, false)
			if err != nil {
				t.Fatalf("NewFormatter() error: %v", err)
			}

			tt.method(f, tt.format, tt.args...)
			f.Close()

			content, err := os.ReadFile(outputPath)
			if err != nil {
				t.Fatalf("ReadFile() error: %v", err)
			}
			if !strings.Contains(string(content), tt.want) {
				t.Errorf("output = %q, want to contain %q", content, tt.want)
			}
		})
	}
}

func TestSeverityColor(t *testing.T) {
	for _, severity := range []string{"critical", "high", "medium", "low", "unknown", ""} {
		if SeverityColor(severity, "text") == "" {
			t.Errorf("SeverityColor(%q) returned empty string", severity)
		}
	}
}
