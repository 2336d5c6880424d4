package cli

import (
	"strings"
	"testing"

	"github.com/mattn/go-runewidth"
)

func TestTableAddRow(t *testing.T) {
	table := NewTable([]string{"Name", "Age"})

	table.AddRow([]string{"Alice", "30"})
	table.AddRow([]string{"Bob"})
	table.AddRow([]string{"Charlie", "25", "Extra"})

	if len(table.rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(table.rows))
	}
	if len(table.rows[1]) != 2 || table.rows[1][1] != "" {
		t.Errorf("Expected short row to be padded, got %q", table.rows[1])
	}
	if len(table.rows[2]) != 2 {
		t.Errorf("Expected long row to be truncated, got %q", table.rows[2])
	}
}

func TestTableRender(t *testing.T) {
	table := NewTable([]string{"Hex", "Label"})
	table.AddRow([]string{"C7D7C9", "0.1M"})
	table.AddRow([]string{"B0B496", "0.001M"})

	lines := strings.Split(strings.TrimRight(table.Render(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("Expected 4 lines, got %d: %q", len(lines), lines)
	}
	if lines[0] != "Hex     Label" {
		t.Errorf("header = %q", lines[0])
	}
	if lines[1] != "------  ------" {
		t.Errorf("separator = %q", lines[1])
	}
	if lines[2] != "C7D7C9  0.1M" {
		t.Errorf("row = %q", lines[2])
	}
}

func TestTableRenderEmpty(t *testing.T) {
	if out := NewTable(nil).Render(); out != "" {
		t.Errorf("Expected empty string for empty table, got %q", out)
	}
}

func TestTableAlignsThaiLabels(t *testing.T) {
	table := NewTable([]string{"Label", "Hex"})
	table.AddRow([]string{"ปริมาณไอออนทองแดงในน้ำ", "C7D7C9"})
	table.AddRow([]string{"none", "000000"})

	lines := strings.Split(strings.TrimRight(table.Render(), "\n"), "\n")
	// The Hex column must start at the same display column on every row.
	col := func(line, marker string) int {
		return runewidth.StringWidth(line[:strings.Index(line, marker)])
	}
	if a, b := col(lines[2], "C7D7C9"), col(lines[3], "000000"); a != b {
		t.Errorf("hex column misaligned: %d vs %d\n%s", a, b, strings.Join(lines, "\n"))
	}
}

func TestPadRight(t *testing.T) {
	tests := []struct {
		input    string
		width    int
		expected string
	}{
		{"test", 10, "test      "},
		{"hello", 5, "hello"},
		{"world", 3, "world"},
		{"", 5, "     "},
	}

	for _, tt := range tests {
		if got := padRight(tt.input, tt.width); got != tt.expected {
			t.Errorf("padRight(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
		}
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		text  string
		width int
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"one two three", 7, []string{"one two", "three"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"anything", 0, []string{"anything"}},
	}

	for _, tt := range tests {
		got := wrapText(tt.text, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.text, tt.width, got, tt.want)
		}
	}
}
