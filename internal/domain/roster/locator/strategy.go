package locator

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tsawler/tabula/model"
	"github.com/tsawler/tabula/tables"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// Strategy names, in trial order.
const (
	StrategyLattice    = "lattice"
	StrategyStream     = "stream"
	StrategyPermissive = "permissive"
	StrategyTextRows   = "textrows"
)

// Strategy extracts candidate tables from a loaded document.
type Strategy struct {
	Name    string
	Extract func(doc *Document) ([]roster.RawTable, error)
}

// Attempt is the outcome of running one strategy.
type Attempt struct {
	Strategy string
	Tables   []roster.RawTable
	Err      error
}

// Run executes s and folds any error or panic into the attempt.
func (s Strategy) Run(doc *Document) (attempt Attempt) {
	attempt.Strategy = s.Name
	defer func() {
		if r := recover(); r != nil {
			attempt.Tables = nil
			attempt.Err = fmt.Errorf("%s strategy panic: %v", s.Name, r)
		}
	}()

	attempt.Tables, attempt.Err = s.Extract(doc)
	return attempt
}

// DefaultPhases returns the strategy phases in trial order. A later phase only
// runs when every earlier phase produced no table at all.
func DefaultPhases() [][]Strategy {
	return [][]Strategy{
		{Lattice(), Stream()},
		{Permissive()},
		{TextRows()},
	}
}

// Lattice builds tables from ruling-line grids, one cell per grid square.
// Text is placed by its center point, so a merged cell keeps its text in a
// single square and leaves the rest empty.
func Lattice() Strategy {
	return Strategy{Name: StrategyLattice, Extract: extractLattice}
}

func extractLattice(doc *Document) ([]roster.RawTable, error) {
	var out []roster.RawTable
	for _, page := range doc.Pages {
		for _, grid := range page.Grids {
			nRows, nCols := len(grid.Rows)-1, len(grid.Cols)-1
			if nRows < 1 || nCols < 1 {
				continue
			}

			cells := make([][][]model.TextFragment, nRows)
			for i := range cells {
				cells[i] = make([][]model.TextFragment, nCols)
			}
			for _, frag := range page.Fragments {
				center := frag.BBox.Center()
				row, col := locateCell(center, grid)
				if row < 0 || col < 0 {
					continue
				}
				cells[row][col] = append(cells[row][col], frag)
			}

			rows := make([][]string, nRows)
			for i := range cells {
				rows[i] = make([]string, nCols)
				for j := range cells[i] {
					rows[i][j] = joinFragments(cells[i][j])
				}
			}

			out = append(out, roster.NewRawTable(make([]string, nCols), rows, StrategyLattice, page.Number))
		}
	}
	return out, nil
}

// Stream finds tables from whitespace alignment of text alone.
func Stream() Strategy {
	cfg := tables.DefaultConfig()
	cfg.UseLines = false
	cfg.UseWhitespace = true
	cfg.DetectMergedCells = false
	return Strategy{
		Name: StrategyStream,
		Extract: func(doc *Document) ([]roster.RawTable, error) {
			return extractGeometric(doc, cfg, false, StrategyStream)
		},
	}
}

// Permissive is Stream with the confidence gate removed and ruling lines
// offered to the detector; every detected row is treated as data.
func Permissive() Strategy {
	cfg := tables.Config{
		MinRows:            1,
		MinCols:            2,
		MinConfidence:      0,
		UseLines:           true,
		UseWhitespace:      true,
		MaxCellGap:         10,
		AlignmentTolerance: 3,
		DetectMergedCells:  false,
	}
	return Strategy{
		Name: StrategyPermissive,
		Extract: func(doc *Document) ([]roster.RawTable, error) {
			return extractGeometric(doc, cfg, true, StrategyPermissive)
		},
	}
}

func extractGeometric(doc *Document, cfg tables.Config, withLines bool, source string) ([]roster.RawTable, error) {
	detector := tables.NewGeometricDetector()
	if err := detector.Configure(cfg); err != nil {
		return nil, fmt.Errorf("failed to configure detector: %w", err)
	}

	var out []roster.RawTable
	for _, page := range doc.Pages {
		if len(page.Fragments) == 0 {
			continue
		}

		mp := model.NewPage(page.Width, page.Height)
		mp.Number = page.Number
		mp.RawText = page.Fragments
		if withLines {
			mp.RawLines = page.Lines
		}

		found, err := detector.Detect(mp)
		if err != nil {
			return out, fmt.Errorf("page %d: %w", page.Number, err)
		}

		for _, t := range found {
			rows := compact(tableText(t))
			if len(rows) == 0 {
				continue
			}
			out = append(out, roster.NewRawTable(make([]string, len(rows[0])), rows, source, page.Number))
		}
	}
	return out, nil
}

func tableText(t *model.Table) [][]string {
	rows := make([][]string, len(t.Rows))
	for i, row := range t.Rows {
		rows[i] = make([]string, len(row))
		for j, cell := range row {
			rows[i][j] = strings.TrimSpace(cell.Text)
		}
	}
	return rows
}

// compact drops rows and columns that are empty everywhere. The geometric
// detector places boundaries at every text edge, which leaves such gaps.
func compact(rows [][]string) [][]string {
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}

	used := make([]bool, width)
	var kept [][]string
	for _, row := range rows {
		empty := true
		for j, v := range row {
			if v != "" {
				used[j] = true
				empty = false
			}
		}
		if !empty {
			kept = append(kept, row)
		}
	}

	var cols []int
	for j, u := range used {
		if u {
			cols = append(cols, j)
		}
	}

	out := make([][]string, len(kept))
	for i, row := range kept {
		out[i] = make([]string, len(cols))
		for k, j := range cols {
			if j < len(row) {
				out[i][k] = row[j]
			}
		}
	}
	return out
}

// locateCell returns the grid square containing p, or -1s when outside.
func locateCell(p model.Point, grid *model.TableGrid) (row, col int) {
	row, col = -1, -1
	for i := 0; i+1 < len(grid.Rows); i++ {
		if p.Y <= grid.Rows[i] && p.Y >= grid.Rows[i+1] {
			row = i
			break
		}
	}
	for j := 0; j+1 < len(grid.Cols); j++ {
		if p.X >= grid.Cols[j] && p.X <= grid.Cols[j+1] {
			col = j
			break
		}
	}
	return row, col
}

// joinFragments orders fragments top to bottom, then left to right, and joins
// them. Lines are separated by a newline; on one line a space is inserted only
// where the horizontal gap is wider than a third of the font size.
func joinFragments(frags []model.TextFragment) string {
	if len(frags) == 0 {
		return ""
	}

	sorted := append([]model.TextFragment(nil), frags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sameLine(sorted[i], sorted[j]) {
			return sorted[i].BBox.Y > sorted[j].BBox.Y
		}
		return sorted[i].BBox.X < sorted[j].BBox.X
	})

	var sb strings.Builder
	for i, f := range sorted {
		if i > 0 {
			prev := sorted[i-1]
			switch {
			case !sameLine(prev, f):
				sb.WriteByte('\n')
			case f.BBox.X-(prev.BBox.X+prev.BBox.Width) > fontSize(f)/3:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString(f.Text)
	}
	return strings.TrimSpace(sb.String())
}

func sameLine(a, b model.TextFragment) bool {
	tol := math.Max(2, math.Min(fontSize(a), fontSize(b))/2)
	return math.Abs(a.BBox.Y-b.BBox.Y) <= tol
}

func fontSize(f model.TextFragment) float64 {
	if f.FontSize > 0 {
		return f.FontSize
	}
	if f.BBox.Height > 0 {
		return f.BBox.Height
	}
	return 10
}
