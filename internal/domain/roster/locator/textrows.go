package locator

import (
	"math"
	"sort"
	"strings"

	"github.com/tsawler/tabula/model"

	"github.com/FACorreiaa/shift-roster/internal/domain/roster"
)

// Minimum shape of a fallback table: at least two rows and more than two columns.
const (
	textRowsMinRows    = 2
	textRowsMinCols    = 3
	columnAnchorSpread = 6.0
)

// TextRows is the fallback backend. It rebuilds rows from text baselines and
// columns from ruling lines when the page has them, otherwise from clustered
// left edges. Lines with fewer than three segments (titles, footers) are ignored
// and the first remaining line is the header.
func TextRows() Strategy {
	return Strategy{Name: StrategyTextRows, Extract: extractTextRows}
}

// segment is a run of fragments on one line with no wide gap inside it.
type segment struct {
	x0, x1 float64
	text   string
}

func extractTextRows(doc *Document) ([]roster.RawTable, error) {
	var out []roster.RawTable
	for _, page := range doc.Pages {
		var lines [][]segment
		for _, line := range groupLines(page.Fragments) {
			segs := splitSegments(line)
			if len(segs) >= textRowsMinCols {
				lines = append(lines, segs)
			}
		}
		if len(lines) < textRowsMinRows {
			continue
		}

		bounds := gridColumns(page)
		var rows [][]string
		if len(bounds) > textRowsMinCols {
			rows = assignByBounds(lines, bounds)
		} else {
			rows = assignByAnchors(lines, columnAnchors(lines))
		}
		rows = compact(rows)
		if len(rows) < textRowsMinRows || len(rows[0]) < textRowsMinCols {
			continue
		}

		out = append(out, roster.NewRawTable(rows[0], rows[1:], StrategyTextRows, page.Number))
	}
	return out, nil
}

// groupLines buckets fragments by baseline, top of page first.
func groupLines(frags []model.TextFragment) [][]model.TextFragment {
	sorted := append([]model.TextFragment(nil), frags...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].BBox.Y > sorted[j].BBox.Y
	})

	var lines [][]model.TextFragment
	for _, f := range sorted {
		if strings.TrimSpace(f.Text) == "" {
			continue
		}
		n := len(lines)
		if n > 0 && sameLine(lines[n-1][0], f) {
			lines[n-1] = append(lines[n-1], f)
			continue
		}
		lines = append(lines, []model.TextFragment{f})
	}

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].BBox.X < line[j].BBox.X
		})
	}
	return lines
}

// splitSegments merges neighbouring fragments on a line into cell-sized runs.
// A gap wider than one em starts a new segment.
func splitSegments(line []model.TextFragment) []segment {
	var segs []segment
	for _, f := range line {
		right := f.BBox.X + f.BBox.Width
		n := len(segs)
		if n > 0 {
			gap := f.BBox.X - segs[n-1].x1
			if gap <= fontSize(f) {
				if gap > fontSize(f)/3 {
					segs[n-1].text += " "
				}
				segs[n-1].text += f.Text
				segs[n-1].x1 = math.Max(segs[n-1].x1, right)
				continue
			}
		}
		segs = append(segs, segment{x0: f.BBox.X, x1: right, text: f.Text})
	}
	for i := range segs {
		segs[i].text = strings.TrimSpace(segs[i].text)
	}
	return segs
}

// gridColumns returns the X boundaries of the page's widest ruling grid.
func gridColumns(page Page) []float64 {
	var best []float64
	for _, g := range page.Grids {
		if len(g.Cols) > len(best) {
			best = g.Cols
		}
	}
	return best
}

func assignByBounds(lines [][]segment, bounds []float64) [][]string {
	width := len(bounds) - 1
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		row := make([]string, width)
		for _, s := range line {
			center := (s.x0 + s.x1) / 2
			for j := 0; j < width; j++ {
				if center >= bounds[j] && center <= bounds[j+1] {
					row[j] = appendCell(row[j], s.text)
					break
				}
			}
		}
		rows = append(rows, row)
	}
	return rows
}

// columnAnchors clusters segment left edges; each cluster is one column.
func columnAnchors(lines [][]segment) []float64 {
	var xs []float64
	for _, line := range lines {
		for _, s := range line {
			xs = append(xs, s.x0)
		}
	}
	sort.Float64s(xs)

	var anchors []float64
	var sum float64
	var count int
	for i, x := range xs {
		if i > 0 && x-xs[i-1] > columnAnchorSpread {
			anchors = append(anchors, sum/float64(count))
			sum, count = 0, 0
		}
		sum += x
		count++
	}
	if count > 0 {
		anchors = append(anchors, sum/float64(count))
	}
	return anchors
}

func assignByAnchors(lines [][]segment, anchors []float64) [][]string {
	rows := make([][]string, 0, len(lines))
	for _, line := range lines {
		row := make([]string, len(anchors))
		for _, s := range line {
			best, bestDist := 0, math.Inf(1)
			for j, a := range anchors {
				if d := math.Abs(s.x0 - a); d < bestDist {
					best, bestDist = j, d
				}
			}
			row[best] = appendCell(row[best], s.text)
		}
		rows = append(rows, row)
	}
	return rows
}

func appendCell(cell, text string) string {
	if cell == "" {
		return text
	}
	return cell + " " + text
}
