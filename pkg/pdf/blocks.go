package pdf

import (
	"math"
	"sort"
	"strings"

	lpdf "github.com/ledongthuc/pdf"
)

const (
	// baselineTolerance is the fraction of the font size within which two
	// glyphs are considered to share a baseline.
	baselineTolerance = 0.5
	// spaceGap is the fraction of the font size a horizontal gap must exceed
	// before a space is inserted.
	spaceGap = 0.15
	// cellGap is the fraction of the font size a gap must exceed to start a
	// new cell on the same line.
	cellGap = 2.0
	// blockGap is the vertical gap, in line heights, that separates blocks.
	blockGap = 1.5
)

type segment struct {
	x0, x1 float64
	text   strings.Builder
}

type line struct {
	y        float64
	x0, x1   float64
	top      float64
	sizes    []float64
	fonts    map[string]int
	segments []*segment
	block    int
}

func (l *line) text() string {
	parts := make([]string, 0, len(l.segments))
	for _, s := range l.segments {
		if t := strings.TrimSpace(s.text.String()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (l *line) cells() []string {
	out := make([]string, 0, len(l.segments))
	for _, s := range l.segments {
		if t := strings.TrimSpace(s.text.String()); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func (l *line) fontSize() float64 {
	if len(l.sizes) == 0 {
		return 0
	}
	sum := 0.0
	for _, s := range l.sizes {
		sum += s
	}
	return sum / float64(len(l.sizes))
}

func (l *line) dominantFont() string {
	best, n := "", -1
	for f, c := range l.fonts {
		if c > n || (c == n && f < best) {
			best, n = f, c
		}
	}
	return best
}

// assembleLines groups decoded glyphs into lines by baseline and splits each
// line into segments at wide horizontal gaps.
func assembleLines(glyphs []lpdf.Text) []*line {
	var lines []*line
	var cur *line
	var prev *lpdf.Text

	for i := range glyphs {
		g := &glyphs[i]
		if g.S == "" || g.S == "\n" {
			continue
		}
		size := g.FontSize
		if size <= 0 {
			size = 1
		}

		if cur == nil || math.Abs(g.Y-cur.y) > baselineTolerance*size {
			cur = &line{y: g.Y, x0: g.X, x1: g.X + g.W, fonts: map[string]int{}}
			cur.segments = append(cur.segments, &segment{x0: g.X, x1: g.X + g.W})
			lines = append(lines, cur)
			prev = nil
		}

		seg := cur.segments[len(cur.segments)-1]
		if prev != nil {
			gap := g.X - (prev.X + prev.W)
			switch {
			case gap > cellGap*size:
				seg = &segment{x0: g.X, x1: g.X + g.W}
				cur.segments = append(cur.segments, seg)
			case gap > spaceGap*size && prev.S != " " && g.S != " ":
				seg.text.WriteByte(' ')
			}
		}
		seg.text.WriteString(g.S)
		if end := g.X + g.W; end > seg.x1 {
			seg.x1 = end
		}

		cur.x0 = math.Min(cur.x0, g.X)
		cur.x1 = math.Max(cur.x1, g.X+g.W)
		cur.top = math.Max(cur.top, g.Y+size)
		if g.S != " " {
			cur.sizes = append(cur.sizes, g.FontSize)
			cur.fonts[g.Font]++
		}
		prev = g
	}

	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l.text()) != "" {
			out = append(out, l)
		}
	}
	return out
}

// assembleBlocks merges consecutive lines into blocks. A block ends on a
// vertical gap larger than blockGap line heights, an upward jump (new column)
// or a change of dominant font or size.
func assembleBlocks(lines []*line, page int) []TextBlock {
	var blocks []TextBlock
	var members []*line

	flush := func() {
		if len(members) == 0 {
			return
		}
		blocks = append(blocks, buildBlock(members, page))
		members = nil
	}

	for _, l := range lines {
		if len(members) > 0 {
			p := members[len(members)-1]
			height := math.Max(p.fontSize(), l.fontSize())
			if height <= 0 {
				height = 1
			}
			drop := p.y - l.y
			switch {
			case drop <= 0, drop > blockGap*height:
				flush()
			case p.dominantFont() != l.dominantFont(), math.Abs(p.fontSize()-l.fontSize()) > 0.5:
				flush()
			}
		}
		l.block = len(blocks)
		members = append(members, l)
	}
	flush()
	return blocks
}

func buildBlock(lines []*line, page int) TextBlock {
	texts := make([]string, 0, len(lines))
	fonts := map[string]struct{}{}
	var sizeSum float64
	var sizeN int
	box := BBox{math.Inf(1), math.Inf(1), math.Inf(-1), math.Inf(-1)}

	for _, l := range lines {
		texts = append(texts, l.text())
		for f := range l.fonts {
			fonts[f] = struct{}{}
		}
		for _, s := range l.sizes {
			sizeSum += s
			sizeN++
		}
		box[0] = math.Min(box[0], l.x0)
		box[1] = math.Min(box[1], l.y)
		box[2] = math.Max(box[2], l.x1)
		box[3] = math.Max(box[3], l.top)
	}

	names := make([]string, 0, len(fonts))
	for f := range fonts {
		if f != "" {
			names = append(names, f)
		}
	}
	sort.Strings(names)

	b := TextBlock{
		Page:  page,
		Text:  strings.Join(texts, "\n"),
		BBox:  box,
		Fonts: names,
	}
	if sizeN > 0 {
		b.FontSize = math.Round(sizeSum/float64(sizeN)*100) / 100
	}
	return b
}
