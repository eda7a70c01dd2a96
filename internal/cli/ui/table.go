package ui

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// Table renders rows under a bold header with aligned columns
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow adds a row. Missing cells render empty, extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

// Len returns the number of rows added so far.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render writes the table
func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}

	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = utf8.RuneCountInString(header)
	}
	for _, row := range t.rows {
		for i := range widths {
			if i < len(row) {
				widths[i] = max(widths[i], utf8.RuneCountInString(row[i]))
			}
		}
	}

	bold := newColor(t.noColor, color.Bold, color.FgCyan)
	gray := newColor(t.noColor, color.FgHiBlack)

	cells := make([]string, len(widths))
	for i, header := range t.headers {
		cells[i] = bold.Sprint(padRight(header, widths[i]))
	}
	t.line(cells)

	for i, width := range widths {
		cells[i] = gray.Sprint(strings.Repeat("─", width))
	}
	t.line(cells)

	for _, row := range t.rows {
		for i, width := range widths {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			cells[i] = padRight(cell, width)
		}
		t.line(cells)
	}
}

func (t *Table) line(cells []string) {
	fmt.Fprintln(t.writer, strings.TrimRight(strings.Join(cells, "  "), " "))
}

// padRight pads a string with spaces on the right to reach the target width
func padRight(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

// KeyValueTable renders a simple key-value table (2 columns)
type KeyValueTable struct {
	writer  io.Writer
	keys    []string
	values  []string
	noColor bool
}

// NewKeyValueTable creates a new key-value table
func NewKeyValueTable(w io.Writer, noColor bool) *KeyValueTable {
	return &KeyValueTable{writer: w, noColor: noColor}
}

// AddRow adds a key-value pair. Empty values are skipped.
func (t *KeyValueTable) AddRow(key, value string) {
	if value == "" {
		return
	}
	t.keys = append(t.keys, key)
	t.values = append(t.values, value)
}

// Render renders the key-value table
func (t *KeyValueTable) Render() {
	width := 0
	for _, key := range t.keys {
		width = max(width, utf8.RuneCountInString(key)+1)
	}
	cyan := newColor(t.noColor, color.FgCyan)
	for i, key := range t.keys {
		fmt.Fprintf(t.writer, "%s %s\n", cyan.Sprint(padRight(key+":", width)), t.values[i])
	}
}

// Header renders a styled section title followed by a divider
func Header(w io.Writer, title string, noColor bool) {
	newColor(noColor, color.Bold, color.FgCyan).Fprintln(w, title)
	newColor(noColor, color.FgHiBlack).Fprintln(w, strings.Repeat("─", utf8.RuneCountInString(title)))
}

func newColor(noColor bool, attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if noColor {
		c.DisableColor()
	}
	return c
}
