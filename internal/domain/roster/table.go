// Package roster holds the data model shared by the roster extraction pipeline:
// raw and normalized tables, selected rows, code mappings and shift events.
package roster

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// PersonColumn is the canonical label given to the person-name column.
const PersonColumn = "スタッフ名"

var dateLabelPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)

// IsDateLabel reports whether a column label looks like a month/day header such as "4/1".
func IsDateLabel(label string) bool {
	return dateLabelPattern.MatchString(strings.TrimSpace(label))
}

// ParseDateLabel splits a month/day label into its numeric parts.
// Range validation is left to the caller.
func ParseDateLabel(label string) (month, day int, ok bool) {
	m := dateLabelPattern.FindStringSubmatch(strings.TrimSpace(label))
	if m == nil {
		return 0, 0, false
	}
	month, _ = strconv.Atoi(m[1])
	day, _ = strconv.Atoi(m[2])
	return month, day, true
}

// PlaceholderLabel is the label given to column i when its header is blank or repeated.
func PlaceholderLabel(i int) string {
	return fmt.Sprintf("col_%d", i)
}

// LabelColumns trims raw header values and replaces blank or repeated labels
// with positional placeholders so every label is unique.
func LabelColumns(raw []string) []string {
	labels := make([]string, len(raw))
	seen := make(map[string]bool, len(raw))
	for i, v := range raw {
		label := strings.TrimSpace(v)
		if label == "" || seen[label] {
			label = PlaceholderLabel(i)
		}
		seen[label] = true
		labels[i] = label
	}
	return labels
}

// RawTable is a rectangular grid of cell strings as produced by a table extraction strategy.
type RawTable struct {
	Columns []string
	Rows    [][]string
	// Source names the strategy that produced the table.
	Source string
	// Page is the 1-indexed page the table was found on, 0 when unknown.
	Page int
}

// NewRawTable labels the header and pads or truncates every row to its width.
func NewRawTable(header []string, rows [][]string, source string, page int) RawTable {
	columns := LabelColumns(header)
	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, fitRow(row, len(columns)))
	}
	return RawTable{Columns: columns, Rows: out, Source: source, Page: page}
}

// ColumnCount returns the number of columns.
func (t RawTable) ColumnCount() int {
	return len(t.Columns)
}

// Cell returns the value at row r, column c, or "" when out of range.
func (t RawTable) Cell(r, c int) string {
	if r < 0 || r >= len(t.Rows) || c < 0 || c >= len(t.Rows[r]) {
		return ""
	}
	return t.Rows[r][c]
}

func fitRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

// NormalizedTable is a RawTable after header detection, row filtering and
// name-column identification. It is immutable; accessors return copies.
type NormalizedTable struct {
	columns     []string
	rows        [][]string
	dateColumns []string
	nameIndex   int
}

// NewNormalizedTable builds a normalized view. The column at nameIndex is relabelled
// PersonColumn; any other column already carrying that label gets a placeholder.
func NewNormalizedTable(columns []string, rows [][]string, nameIndex int) (NormalizedTable, error) {
	if nameIndex < 0 || nameIndex >= len(columns) {
		return NormalizedTable{}, fmt.Errorf("name column %d out of range: %w", nameIndex, ErrNoNameColumn)
	}

	labels := make([]string, len(columns))
	copy(labels, columns)
	for i, label := range labels {
		if i != nameIndex && label == PersonColumn {
			labels[i] = PlaceholderLabel(i)
		}
	}
	labels[nameIndex] = PersonColumn

	var dates []string
	for i, label := range labels {
		if i != nameIndex && IsDateLabel(label) {
			dates = append(dates, label)
		}
	}
	if len(dates) == 0 {
		return NormalizedTable{}, ErrNoDateHeader
	}

	out := make([][]string, 0, len(rows))
	for _, row := range rows {
		out = append(out, fitRow(row, len(labels)))
	}

	return NormalizedTable{
		columns:     labels,
		rows:        out,
		dateColumns: dates,
		nameIndex:   nameIndex,
	}, nil
}

// Columns returns all column labels in table order.
func (t NormalizedTable) Columns() []string {
	return append([]string(nil), t.columns...)
}

// DateColumns returns the date column labels in table order.
func (t NormalizedTable) DateColumns() []string {
	return append([]string(nil), t.dateColumns...)
}

// NameIndex returns the index of the person-name column.
func (t NormalizedTable) NameIndex() int {
	return t.nameIndex
}

// Len returns the number of data rows.
func (t NormalizedTable) Len() int {
	return len(t.rows)
}

// Name returns the raw person-name cell of row i.
func (t NormalizedTable) Name(i int) string {
	return t.rows[i][t.nameIndex]
}

// Row returns row i keyed by column label.
func (t NormalizedTable) Row(i int) Row {
	cells := make(map[string]string, len(t.columns))
	for c, label := range t.columns {
		cells[label] = t.rows[i][c]
	}
	return Row{Index: i, Name: t.Name(i), Cells: cells}
}

// Row is one selected roster row.
type Row struct {
	Index int
	Name  string
	Cells map[string]string
}

// Cell returns the value under label, or "" when the row has no such column.
func (r Row) Cell(label string) string {
	return r.Cells[label]
}
