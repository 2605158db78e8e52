package pdf

import "errors"

// ErrUnreadablePDF is returned when the file cannot be decoded at all.
var ErrUnreadablePDF = errors.New("unreadable pdf")

type BlockType string

const (
	BlockSectionHeading BlockType = "section_heading"
	BlockTitle          BlockType = "title"
	BlockHeading        BlockType = "heading"
	BlockReference      BlockType = "reference"
	BlockFormula        BlockType = "formula"
	BlockBody           BlockType = "body"
)

// BBox is [x0, y0, x1, y1] in PDF user space (origin bottom-left).
type BBox [4]float64

func (b BBox) Width() float64  { return b[2] - b[0] }
func (b BBox) Height() float64 { return b[3] - b[1] }

// IsZero reports whether the box was never set.
func (b BBox) IsZero() bool { return b == BBox{} }

// Slice returns the box as a plain slice for JSON metadata.
func (b BBox) Slice() []float64 { return []float64{b[0], b[1], b[2], b[3]} }

type TextBlock struct {
	Index    int
	Page     int
	Text     string // lines joined by "\n"
	BBox     BBox
	FontSize float64
	Fonts    []string
	Type     BlockType
}

type ImageType string

const (
	ImageChart   ImageType = "chart"
	ImageFigure  ImageType = "figure"
	ImageDiagram ImageType = "diagram"
)

type Image struct {
	Page   int
	Index  int // order on the page
	Name   string
	BBox   BBox
	Format string // jpeg, jp2, raw
	Width  int
	Height int
	Data   []byte
	Type   ImageType
	// AnchorBlock is the index of the last text block that precedes the image
	// on its page, or -1.
	AnchorBlock int
	// PayloadUnavailable is set when the stream uses a filter that is not
	// decoded here, so Data is empty even though the image has content.
	PayloadUnavailable bool
}

type Table struct {
	Page        int
	Index       int
	Rows        [][]string
	RowCount    int
	ColCount    int
	BBox        BBox
	AnchorBlock int
}

type SectionCategory string

const (
	CategoryAbstract     SectionCategory = "abstract"
	CategoryIntroduction SectionCategory = "introduction"
	CategoryMethodology  SectionCategory = "methodology"
	CategoryResults      SectionCategory = "results"
	CategoryDiscussion   SectionCategory = "discussion"
	CategoryConclusion   SectionCategory = "conclusion"
	CategoryReferences   SectionCategory = "references"
	CategoryOther        SectionCategory = "other"
)

type Section struct {
	Title      string
	StartBlock int
	EndBlock   int
	Page       int
	Category   SectionCategory
}

type Structure struct {
	Sections        []Section
	Title           string
	AbstractStart   int
	ReferencesStart int
	// UsedFallback is set when the word-prefix detector produced the sections.
	UsedFallback bool
}

type Content struct {
	PageCount int
	Metadata  map[string]string
	Blocks    []TextBlock
	Images    []Image
	Tables    []Table
	Structure Structure
}

// PageText returns the concatenated block text of a 1-based page.
func (c *Content) PageText(page int) string {
	var out []byte
	for _, b := range c.Blocks {
		if b.Page != page {
			continue
		}
		if len(out) > 0 {
			out = append(out, '\n')
		}
		out = append(out, b.Text...)
	}
	return string(out)
}
