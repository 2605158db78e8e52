package pdf

import (
	"math"
	"strings"
)

// detectTables finds runs of at least two consecutive lines that split into
// the same number (>= 2) of cells with aligned column starts.
func detectTables(lines []*line, page int) []Table {
	var tables []Table
	var run []*line

	flush := func() {
		if len(run) >= 2 {
			tables = append(tables, buildTable(run, page))
		}
		run = nil
	}

	for _, l := range lines {
		cells := l.cells()
		if len(cells) < 2 {
			flush()
			continue
		}
		if len(run) > 0 && !sameColumns(run[0], l) {
			flush()
		}
		run = append(run, l)
	}
	flush()
	return tables
}

func sameColumns(a, b *line) bool {
	if len(a.cells()) != len(b.cells()) || len(a.segments) != len(b.segments) {
		return false
	}
	tol := cellGap * math.Max(a.fontSize(), 1)
	for i := range a.segments {
		if math.Abs(a.segments[i].x0-b.segments[i].x0) > tol {
			return false
		}
	}
	return true
}

func buildTable(rows []*line, page int) Table {
	t := Table{
		Page:        page,
		BBox:        BBox{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)},
		AnchorBlock: rows[0].block,
	}
	for _, l := range rows {
		cells := l.cells()
		t.Rows = append(t.Rows, cells)
		if len(cells) > t.ColCount {
			t.ColCount = len(cells)
		}
		t.BBox[0] = math.Min(t.BBox[0], l.x0)
		t.BBox[1] = math.Min(t.BBox[1], l.y)
		t.BBox[2] = math.Max(t.BBox[2], l.x1)
		t.BBox[3] = math.Max(t.BBox[3], l.top)
	}
	t.RowCount = len(t.Rows)
	return t
}

// TableText renders rows with cells joined by " | ", one row per line.
func TableText(rows [][]string) string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, strings.Join(r, " | "))
	}
	return strings.Join(out, "\n")
}
