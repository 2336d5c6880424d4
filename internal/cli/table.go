package cli

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Table renders rows as aligned text columns. Widths are measured in
// terminal cells, so combining marks (Thai vowels and tone marks) and wide
// glyphs line up.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int // Maximum width per column index (0 = no limit)
}

// NewTable creates a new table with the given headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:   headers,
		rows:      make([][]string, 0),
		padding:   2,
		maxWidths: make(map[int]int),
	}
}

// SetColumnMaxWidth sets a maximum width for a column; longer cells wrap.
func (t *Table) SetColumnMaxWidth(colIndex int, maxWidth int) {
	t.maxWidths[colIndex] = maxWidth
}

// AddRow adds a row, padding or truncating it to the header count.
func (t *Table) AddRow(row []string) {
	fitted := make([]string, len(t.headers))
	copy(fitted, row)
	t.rows = append(t.rows, fitted)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	wrapped := make([][][]string, len(t.rows))
	for r, row := range t.rows {
		wrapped[r] = make([][]string, len(row))
		for c, cell := range row {
			wrapped[r][c] = wrapText(cell, t.maxWidths[c])
		}
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range wrapped {
		for c, lines := range row {
			for _, line := range lines {
				widths[c] = max(widths[c], runewidth.StringWidth(line))
			}
		}
	}

	gap := strings.Repeat(" ", t.padding)
	var b strings.Builder

	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = padRight(cell, widths[i])
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteString("\n")
	}

	writeLine(t.headers)
	seps := make([]string, len(widths))
	for i, w := range widths {
		seps[i] = strings.Repeat("-", w)
	}
	writeLine(seps)

	for _, row := range wrapped {
		height := 1
		for _, lines := range row {
			height = max(height, len(lines))
		}
		for l := 0; l < height; l++ {
			cells := make([]string, len(t.headers))
			for c := range t.headers {
				if l < len(row[c]) {
					cells[c] = row[c][l]
				}
			}
			writeLine(cells)
		}
	}

	return b.String()
}

// padRight pads s with spaces to the given display width.
func padRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// wrapText wraps text at word boundaries to fit width display cells.
// Words wider than width are split.
func wrapText(text string, width int) []string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return []string{text}
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range words {
		for runewidth.StringWidth(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			head := runewidth.Truncate(word, width, "")
			lines = append(lines, head)
			word = word[len(head):]
		}

		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if runewidth.StringWidth(candidate) <= width {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}
	return lines
}
