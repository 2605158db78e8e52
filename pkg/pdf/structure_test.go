package pdf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func blocksOf(texts ...string) []TextBlock {
	blocks := make([]TextBlock, len(texts))
	c := classifier{patterns: DefaultHeadingPatterns}
	for i, t := range texts {
		blocks[i] = TextBlock{Index: i, Page: 1, Text: t, FontSize: 10}
		blocks[i].Type = c.classify(blocks[i])
	}
	return blocks
}

func TestClassify(t *testing.T) {
	c := classifier{patterns: DefaultHeadingPatterns}
	tests := []struct {
		name  string
		block TextBlock
		want  BlockType
	}{
		{name: "numbered heading", block: TextBlock{Text: "3.2 Experimental Setup", FontSize: 10}, want: BlockSectionHeading},
		{name: "roman heading", block: TextBlock{Text: "IV. Discussion", FontSize: 10}, want: BlockSectionHeading},
		{name: "appendix", block: TextBlock{Text: "Appendix B", FontSize: 10}, want: BlockSectionHeading},
		{name: "large font", block: TextBlock{Text: "Learning to Rank Passages", FontSize: 16}, want: BlockTitle},
		{name: "medium font", block: TextBlock{Text: "A subsection title", FontSize: 13}, want: BlockHeading},
		{name: "bracket reference", block: TextBlock{Text: "[12] Author, A. Title. 2019.", FontSize: 9}, want: BlockReference},
		{name: "formula", block: TextBlock{Text: "loss = ∑ log p(y|x)", FontSize: 10}, want: BlockFormula},
		{name: "body", block: TextBlock{Text: "Plain body text about retrieval.", FontSize: 10}, want: BlockBody},
		{name: "heading only on first line", block: TextBlock{Text: "Our results\nResults", FontSize: 10}, want: BlockBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.classify(tt.block))
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := map[string]SectionCategory{
		"Abstract":             CategoryAbstract,
		"1 Introduction":       CategoryIntroduction,
		"2. Background":        CategoryIntroduction,
		"3 Proposed Approach":  CategoryMethodology,
		"Methodology":          CategoryMethodology,
		"4. Experiments":       CategoryResults,
		"Results and Analysis": CategoryResults,
		"Discussion":           CategoryDiscussion,
		"6 Conclusions":        CategoryConclusion,
		"Bibliography":         CategoryReferences,
		"Acknowledgements":     CategoryOther,
	}
	for title, want := range tests {
		assert.Equal(t, want, Categorize(title), title)
	}
}

func TestDetectStructureHeuristics(t *testing.T) {
	blocks := blocksOf(
		"RELATED SYSTEMS",
		"Body text that follows the first all caps heading in this paper.",
		"3 Proposed Pipeline",
		"Body text describing the pipeline stages one after another here.",
		"Evaluation",
		"Body text with the numbers we measured across all the datasets.",
	)
	s := DetectStructure(blocks)

	require.Len(t, s.Sections, 3)
	assert.False(t, s.UsedFallback)
	assert.Equal(t, "RELATED SYSTEMS", s.Sections[0].Title)
	assert.Equal(t, 1, s.Sections[0].EndBlock)
	assert.Equal(t, "3 Proposed Pipeline", s.Sections[1].Title)
	assert.Equal(t, CategoryResults, s.Sections[2].Category)
	assert.Equal(t, -1, s.AbstractStart)
	assert.Equal(t, -1, s.ReferencesStart)
}

func TestDetectStructureLargeFontHeading(t *testing.T) {
	blocks := blocksOf(
		"Body text long enough to not be treated as any kind of heading at all.",
		"Short Bigger Line",
		"Body text long enough to not be treated as any kind of heading at all.",
	)
	blocks[1].FontSize = 11.5
	blocks[1].Type = BlockBody

	s := DetectStructure(blocks)
	require.NotEmpty(t, s.Sections)
	assert.Equal(t, "Short Bigger Line", s.Sections[0].Title)
}

func TestDetectStructureFallback(t *testing.T) {
	blocks := blocksOf(
		"Deep retrieval for papers",
		"Introduction to the problem: papers are long and models forget context easily.",
		"We propose chunking by section and ranking chunks by cosine similarity.",
		"Results show better grounding when chunks follow section boundaries closely.",
	)
	s := DetectStructure(blocks)

	require.Len(t, s.Sections, 2)
	assert.True(t, s.UsedFallback)
	assert.Equal(t, CategoryIntroduction, s.Sections[0].Category)
	assert.Equal(t, 1, s.Sections[0].StartBlock)
	assert.Equal(t, 2, s.Sections[0].EndBlock)
	assert.Equal(t, CategoryResults, s.Sections[1].Category)
	assert.Equal(t, 3, s.Sections[1].EndBlock)
}

func TestPrefixHeadingFirstLineOnly(t *testing.T) {
	tests := []struct {
		text  string
		title string
		ok    bool
	}{
		{"Introduction to the problem\nmore text", "Introduction to the problem", true},
		{"  3. Results and analysis", "3. Results and analysis", true},
		{"some preface text on the first line\nintroduction follows on the second line", "", false},
		{"as shown in the discussion", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			title, ok := prefixHeading(tt.text)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.title, title)
		})
	}

	s := DetectStructure(blocksOf("some preface text on the first line\nintroduction follows on the second line"))
	assert.False(t, s.UsedFallback)
}

func TestDetectStructureReferencesStopHeuristics(t *testing.T) {
	blocks := blocksOf(
		"Abstract",
		"Body text of the abstract that is long enough to stay a body block.",
		"1. Introduction",
		"Body text of the introduction that is long enough to stay a body block.",
		"References",
		"12 Smith J and Doe A",
		"13 Roe B and Moe C",
	)
	s := DetectStructure(blocks)

	require.Len(t, s.Sections, 3)
	assert.Equal(t, 0, s.AbstractStart)
	assert.Equal(t, 4, s.ReferencesStart)
	assert.Equal(t, 6, s.Sections[2].EndBlock)
}

func TestDetectStructureEmpty(t *testing.T) {
	s := DetectStructure(nil)
	assert.Empty(t, s.Sections)
	assert.Equal(t, -1, s.AbstractStart)
	assert.Equal(t, -1, s.ReferencesStart)
}
