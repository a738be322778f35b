// Package codemap loads the shift-code to time-range table from CSV or XLSX.
package codemap

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/xuri/excelize/v2"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// Format identifies the encoding of a code mapping source.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// requiredColumns must all be present in the header row.
var requiredColumns = []string{"code", "start", "end"}

// record is one row of the mapping table.
type record struct {
	Code  string `csv:"code"`
	Start string `csv:"start"`
	End   string `csv:"end"`
}

// FormatFromPath picks the format from the file extension; anything but .xlsx is CSV.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return FormatXLSX
	}
	return FormatCSV
}

// Load reads the mapping file at path.
func Load(path string) (roster.CodeMapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", roster.ErrCodeMappingLoad, err)
	}
	defer f.Close()

	return Parse(f, FormatFromPath(path))
}

// Parse reads a mapping table in the given format. The first row is the header;
// column names are matched case-insensitively and extra columns are ignored.
func Parse(r io.Reader, format Format) (roster.CodeMapping, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatXLSX:
		records, err = readXLSX(r)
	case FormatCSV:
		records, err = readCSV(r)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", roster.ErrCodeMappingLoad, err)
	}

	return fromRecords(records)
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	return records, nil
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}
	return rows, nil
}

func fromRecords(records [][]string) (roster.CodeMapping, error) {
	if len(records) < 2 {
		return nil, fmt.Errorf("%w: source has no data rows", roster.ErrCodeMappingLoad)
	}

	header := normalizeHeader(records[0])
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	for _, col := range requiredColumns {
		if !present[col] {
			return nil, fmt.Errorf("%w: missing column %q", roster.ErrCodeMappingLoad, col)
		}
	}

	width := len(header)
	table := make([][]string, 0, len(records))
	table = append(table, header)
	for _, rec := range records[1:] {
		row := make([]string, width)
		copy(row, rec)
		table = append(table, row)
	}

	var rows []record
	if err := gocsv.UnmarshalCSV(&recordsReader{records: table}, &rows); err != nil {
		return nil, fmt.Errorf("%w: %v", roster.ErrCodeMappingLoad, err)
	}

	mapping := make(roster.CodeMapping, len(rows))
	for i, row := range rows {
		code := strings.TrimSpace(row.Code)
		if code == "" {
			continue
		}
		if _, dup := mapping[code]; dup {
			return nil, fmt.Errorf("%w: duplicate code %q on row %d", roster.ErrCodeMappingLoad, code, i+2)
		}
		mapping[code] = roster.TimeRange{
			Start: strings.TrimSpace(row.Start),
			End:   strings.TrimSpace(row.End),
		}
	}

	return mapping, nil
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = strings.ToLower(strings.TrimSpace(h))
	}
	return out
}

// recordsReader feeds already-read rows to gocsv.
type recordsReader struct {
	records [][]string
	pos     int
}

func (r *recordsReader) Read() ([]string, error) {
	if r.pos >= len(r.records) {
		return nil, io.EOF
	}
	rec := r.records[r.pos]
	r.pos++
	return rec, nil
}

func (r *recordsReader) ReadAll() ([][]string, error) {
	rest := r.records[r.pos:]
	r.pos = len(r.records)
	return rest, nil
}
