// Package normalizer turns a raw extracted table into a roster table with known
// date columns, without decoration rows, and with a canonical person-name column.
package normalizer

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// Substrings that mark a column label as the person-name column.
var nameKeywords = []string{
	// Japanese
	"名前", "氏名", "スタッフ", "従業員",
	// English
	"name",
}

// weekdayGlyphs are the single-character weekday labels found in decoration rows.
const weekdayGlyphs = "月火水木金土日"

// Normalize identifies date columns, drops weekday decoration rows and picks the
// person-name column. The input table is not modified.
func Normalize(raw roster.RawTable) (roster.NormalizedTable, error) {
	columns := append([]string(nil), raw.Columns...)
	rows := raw.Rows

	dateIdx := dateColumnIndexes(columns)
	if len(dateIdx) == 0 && len(rows) > 0 {
		columns = roster.LabelColumns(padTo(rows[0], len(columns)))
		rows = rows[1:]
		dateIdx = dateColumnIndexes(columns)
	}
	if len(dateIdx) == 0 {
		return roster.NormalizedTable{}, fmt.Errorf("%d columns scanned: %w", len(columns), roster.ErrNoDateHeader)
	}

	kept := make([][]string, 0, len(rows))
	for _, row := range rows {
		if isDecorationRow(row, dateIdx) {
			continue
		}
		kept = append(kept, row)
	}

	nameIdx, err := pickNameColumn(columns)
	if err != nil {
		return roster.NormalizedTable{}, err
	}

	return roster.NewNormalizedTable(columns, kept, nameIdx)
}

func dateColumnIndexes(columns []string) []int {
	var idx []int
	for i, label := range columns {
		if roster.IsDateLabel(label) {
			idx = append(idx, i)
		}
	}
	return idx
}

// isDecorationRow reports whether every date cell is blank or a lone weekday glyph.
func isDecorationRow(row []string, dateIdx []int) bool {
	for _, i := range dateIdx {
		var v string
		if i < len(row) {
			v = strings.TrimSpace(row[i])
		}
		if v == "" {
			continue
		}
		if utf8.RuneCountInString(v) != 1 || !strings.Contains(weekdayGlyphs, v) {
			return false
		}
	}
	return true
}

// pickNameColumn prefers a labelled name column, then falls back to position:
// the second non-date column, the first, then the rest. Extraction commonly
// leaves an empty placeholder column ahead of the real name column.
func pickNameColumn(columns []string) (int, error) {
	var nonDates []int
	for i, label := range columns {
		if !roster.IsDateLabel(label) {
			nonDates = append(nonDates, i)
		}
	}
	if len(nonDates) == 0 {
		return -1, roster.ErrNoNameColumn
	}

	for _, i := range nonDates {
		if hasNameKeyword(columns[i]) {
			return i, nil
		}
	}

	if len(nonDates) >= 2 {
		return nonDates[1], nil
	}
	return nonDates[0], nil
}

func hasNameKeyword(label string) bool {
	lower := strings.ToLower(label)
	for _, kw := range nameKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func padTo(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
