package output

import (
	"strings"
	"unicode/utf8"
)

// Align is the horizontal alignment of a table column.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Table represents an ASCII table for formatted output.
type Table struct {
	headers []string
	aligns  []Align
	rows    [][]string
	widths  []int
}

// NewTable creates a new table with the given headers. All columns are
// left aligned until SetAlign is called.
func NewTable(headers ...string) *Table {
	t := &Table{
		headers: headers,
		aligns:  make([]Align, len(headers)),
		widths:  make([]int, len(headers)),
	}
	for i, h := range headers {
		t.widths[i] = displayWidth(h)
	}
	return t
}

// SetAlign sets the alignment of the given column indexes. Out of range
// indexes are ignored.
func (t *Table) SetAlign(align Align, columns ...int) *Table {
	for _, c := range columns {
		if c >= 0 && c < len(t.aligns) {
			t.aligns[c] = align
		}
	}
	return t
}

// AddRow adds a row to the table. Missing cells are blank and extra
// cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
	for i, cell := range row {
		if w := displayWidth(cell); w > t.widths[i] {
			t.widths[i] = w
		}
	}
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render returns the table with a separator after every row.
func (t *Table) Render() string {
	return t.render(true)
}

// RenderCompact returns the table without separators between data rows.
func (t *Table) RenderCompact() string {
	return t.render(false)
}

func (t *Table) render(rowSeparators bool) string {
	if len(t.headers) == 0 {
		return ""
	}

	var sb strings.Builder
	line := func(s string) {
		sb.WriteString(s)
		sb.WriteString("\n")
	}

	line(t.renderSeparator("-", "+"))
	line(t.renderRow(t.headers, false))
	line(t.renderSeparator("=", "+"))

	for _, row := range t.rows {
		line(t.renderRow(row, true))
		if rowSeparators {
			line(t.renderSeparator("-", "+"))
		}
	}
	if !rowSeparators {
		line(t.renderSeparator("-", "+"))
	}

	return sb.String()
}

// renderSeparator creates a line like +-----+-----+
func (t *Table) renderSeparator(fill, corner string) string {
	parts := make([]string, len(t.widths))
	for i, w := range t.widths {
		parts[i] = strings.Repeat(fill, w+2)
	}
	return corner + strings.Join(parts, corner) + corner
}

// renderRow creates a line like | val | val |. Headers are always left
// aligned.
func (t *Table) renderRow(cells []string, aligned bool) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		var padded string
		if aligned && t.aligns[i] == AlignRight {
			padded = padLeftToWidth(cell, t.widths[i])
		} else {
			padded = padToWidth(cell, t.widths[i])
		}
		parts[i] = " " + padded + " "
	}
	return "|" + strings.Join(parts, "|") + "|"
}

// displayWidth returns the display width of a string, ignoring ANSI escape codes.
func displayWidth(s string) int {
	return utf8.RuneCountInString(stripANSI(s))
}

// stripANSI removes ANSI escape codes from a string.
func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false
	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}
	return result.String()
}

// padToWidth pads a string on the right to the given display width.
func padToWidth(s string, width int) string {
	currentWidth := displayWidth(s)
	if currentWidth >= width {
		return s
	}
	return s + strings.Repeat(" ", width-currentWidth)
}

// padLeftToWidth pads a string on the left to the given display width.
func padLeftToWidth(s string, width int) string {
	currentWidth := displayWidth(s)
	if currentWidth >= width {
		return s
	}
	return strings.Repeat(" ", width-currentWidth) + s
}

// TruncateCell truncates text for a table cell. Colored text that needs
// truncation loses its color.
func TruncateCell(text string, maxWidth int) string {
	stripped := stripANSI(text)
	runes := []rune(stripped)
	if len(runes) <= maxWidth {
		return text
	}
	if maxWidth <= 3 {
		return string(runes[:maxWidth])
	}
	return string(runes[:maxWidth-3]) + "..."
}
