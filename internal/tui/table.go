package tui

import (
	"fmt"
	"io"
)

// TableColumn defines a column in a table.
type TableColumn struct {
	Name  string
	Width int
	Align Alignment
}

// Alignment defines text alignment in a column.
type Alignment int

// Alignment constants.
const (
	AlignLeft Alignment = iota
	AlignRight
)

// Table provides styled fixed-width table rendering.
type Table struct {
	w       io.Writer
	styles  *TableStyles
	columns []TableColumn
}

// NewTable creates a new table with the given columns.
func NewTable(w io.Writer, columns []TableColumn) *Table {
	return &Table{
		w:       w,
		styles:  NewTableStyles(),
		columns: columns,
	}
}

// WriteHeader writes the table header row.
func (t *Table) WriteHeader() {
	header := ""
	for i, col := range t.columns {
		if i > 0 {
			header += " "
		}
		header += fmt.Sprintf(t.formatSpec(col), col.Name)
	}
	_, _ = fmt.Fprintln(t.w, t.styles.Header.Render(header))
}

// WriteRow writes a data row to the table. Missing values render empty;
// overlong values are truncated with an ellipsis.
func (t *Table) WriteRow(values ...string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		if col.Width > 1 && len(value) > col.Width {
			value = value[:col.Width-1] + "…"
		}
		row += fmt.Sprintf(t.formatSpec(col), value)
	}
	_, _ = fmt.Fprintln(t.w, row)
}

// WriteStyledRow writes a data row with one styled cell. styledValue carries
// ANSI escapes; plainValue is the same text unstyled, used to keep column
// widths correct.
func (t *Table) WriteStyledRow(values []string, styledIndex int, styledValue, plainValue string) {
	row := ""
	for i, col := range t.columns {
		if i > 0 {
			row += " "
		}
		if i == styledIndex {
			offset := len(styledValue) - len(plainValue)
			row += fmt.Sprintf(t.formatSpecWithOffset(col, offset), styledValue)
			continue
		}
		value := ""
		if i < len(values) {
			value = values[i]
		}
		if col.Width > 1 && len(value) > col.Width {
			value = value[:col.Width-1] + "…"
		}
		row += fmt.Sprintf(t.formatSpec(col), value)
	}
	_, _ = fmt.Fprintln(t.w, row)
}

// formatSpec returns the format specifier for a column.
func (t *Table) formatSpec(col TableColumn) string {
	if col.Align == AlignRight {
		return fmt.Sprintf("%%%ds", col.Width)
	}
	return fmt.Sprintf("%%-%ds", col.Width)
}

// formatSpecWithOffset widens a column by offset bytes to compensate for
// ANSI escape sequences in the value.
func (t *Table) formatSpecWithOffset(col TableColumn, offset int) string {
	width := col.Width + offset
	if col.Align == AlignRight {
		return fmt.Sprintf("%%%ds", width)
	}
	return fmt.Sprintf("%%-%ds", width)
}
