package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name    string
		content *Content
		want    string
	}{
		{
			name:    "metadata wins",
			content: &Content{Metadata: map[string]string{"Title": "  Dense Passage Retrieval  "}, Blocks: blocksOf("Another Candidate Title Here")},
			want:    "Dense Passage Retrieval",
		},
		{
			name:    "file name metadata ignored",
			content: &Content{Metadata: map[string]string{"Title": "paper_final.pdf"}, Blocks: blocksOf("Graph Neural Networks for Citation Analysis")},
			want:    "Graph Neural Networks for Citation Analysis",
		},
		{
			name: "skips boilerplate and headers",
			content: &Content{Blocks: blocksOf(
				"Page 1",
				"PROCEEDINGS OF THE WORKSHOP",
				"Abstract of the talk we gave",
				"#### $$$ @@@ !!!",
				"Retrieval Augmented Generation\nfor Research Papers",
			)},
			want: "Retrieval Augmented Generation for Research Papers",
		},
		{
			name: "too many words",
			content: &Content{Blocks: blocksOf(
				strings.Repeat("word ", 21),
			)},
			want: "",
		},
		{name: "nil content", content: nil, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractTitle(tt.content))
		})
	}
}

func TestExtractTitleLaterPage(t *testing.T) {
	blocks := blocksOf("Neural Ranking Models in Practice")
	blocks[0].Page = 3
	assert.Equal(t, "", ExtractTitle(&Content{Blocks: blocks}))
}

func TestTruncateTitle(t *testing.T) {
	assert.Equal(t, "Short title", TruncateTitle("Short title"))

	long := strings.Repeat("a", 75)
	got := TruncateTitle(long)
	assert.Equal(t, 60, len([]rune(got)))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestClassifyImage(t *testing.T) {
	tests := []struct {
		name string
		box  BBox
		w, h int
		want ImageType
	}{
		{name: "wide", box: BBox{0, 0, 300, 100}, want: ImageChart},
		{name: "square", box: BBox{0, 0, 100, 100}, want: ImageFigure},
		{name: "tall", box: BBox{0, 0, 40, 100}, want: ImageDiagram},
		{name: "degenerate box uses pixels", box: BBox{}, w: 640, h: 480, want: ImageFigure},
		{name: "nothing known", want: ImageDiagram},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyImage(tt.box, tt.w, tt.h))
		})
	}
}
