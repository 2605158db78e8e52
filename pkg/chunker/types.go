package chunker

import (
	"research-rag-be/pkg/pdf"
)

type ChunkType string

const (
	TypeText      ChunkType = "text"
	TypeTable     ChunkType = "table"
	TypeImage     ChunkType = "image"
	TypeReference ChunkType = "reference"
)

// Payload is the type-specific part of a chunk.
type Payload interface {
	Type() ChunkType
	Content() string
}

type TextPayload struct {
	Text string
	// SectionType is the section category, possibly refined by structural
	// analysis.
	SectionType string
}

func (p *TextPayload) Type() ChunkType  { return TypeText }
func (p *TextPayload) Content() string { return p.Text }

type TablePayload struct {
	Text       string
	Rows       [][]string
	RowCount   int
	ColCount   int
	TableIndex int
}

func (p *TablePayload) Type() ChunkType  { return TypeTable }
func (p *TablePayload) Content() string { return p.Text }

// Headers returns the first non-empty row.
func (p *TablePayload) Headers() []string {
	for _, r := range p.Rows {
		for _, c := range r {
			if c != "" {
				return r
			}
		}
	}
	return nil
}

type ImagePayload struct {
	Text       string
	Caption    string
	ImageType  pdf.ImageType
	ImageIndex int
	Format     string
	Width      int
	Height     int
	Data       []byte
}

func (p *ImagePayload) Type() ChunkType  { return TypeImage }
func (p *ImagePayload) Content() string { return p.Text }

type ReferencePayload struct {
	Text string
}

func (p *ReferencePayload) Type() ChunkType  { return TypeReference }
func (p *ReferencePayload) Content() string { return p.Text }

type Chunk struct {
	Index        int
	Page         int
	Position     int
	SectionTitle string
	BBox         []float64
	Payload      Payload
	Metadata     map[string]interface{}
}

func (c Chunk) Type() ChunkType { return c.Payload.Type() }
func (c Chunk) Content() string { return c.Payload.Content() }

// SectionType returns the section_type metadata value.
func (c Chunk) SectionType() string {
	s, _ := c.Metadata["section_type"].(string)
	return s
}

func (c Chunk) HasFormulas() bool {
	v, _ := c.Metadata["has_formulas"].(bool)
	return v
}

func (c Chunk) HasCitations() bool {
	v, _ := c.Metadata["has_citations"].(bool)
	return v
}

type Config struct {
	ChunkSize int
	Overlap   int
	MinWords  int
	MinChars  int
}

func DefaultConfig() Config {
	return Config{ChunkSize: 512, Overlap: 50, MinWords: 10, MinChars: 20}
}

// Stats summarises a chunking run. The type shares are a health signal only.
type Stats struct {
	Total          int               `json:"total"`
	ByType         map[ChunkType]int `json:"by_type"`
	TextShare      float64           `json:"text_share"`
	TableShare     float64           `json:"table_share"`
	ReferenceShare float64           `json:"reference_share"`
	Dropped        int               `json:"dropped"`
	Merged         int               `json:"merged"`
	Duplicates     int               `json:"duplicates"`
	Degenerate     bool              `json:"degenerate"`
	AnalysisFailed bool              `json:"analysis_failed"`
}
