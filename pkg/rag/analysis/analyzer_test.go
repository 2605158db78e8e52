package analysis

import (
	"context"
	"errors"
	"strings"
	"testing"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type funcProvider func(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error)

func (f funcProvider) Complete(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	return f(ctx, messages, options...)
}

func reply(text string) funcProvider {
	return func(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
		return &llm.Completion{Text: text}, nil
	}
}

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"abc", 1},
		{"abcd", 1},
		{"abcde", 2},
		{"abcdefgh", 2},
		{"αβγδ", 1},
		{"αβγδε", 2},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.in), tt.in)
	}
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		ok    bool
	}{
		{name: "plain", reply: `{"research_area":"nlp"}`, ok: true},
		{name: "fenced", reply: "```json\n{\"research_area\":\"nlp\"}\n```", ok: true},
		{name: "prose around", reply: "Sure! Here it is: {\"research_area\":\"nlp\"} Hope it helps.", ok: true},
		{name: "garbage", reply: "I cannot do that", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out StructureAnalysis
			err := decodeJSON(tt.reply, &out)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "nlp", out.ResearchArea)
		})
	}
}

func TestAnalyzeStructure(t *testing.T) {
	var prompt string
	provider := funcProvider(func(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
		prompt = messages[1].Content
		return &llm.Completion{Text: "```json\n" + `{"document_type":"research_paper","sections":[{"title":"Introduction","type":"introduction","topics":["retrieval"],"semantic_boundaries":[120, -4, 300.0]}]}` + "\n```"}, nil
	})
	a := NewAnalyzer(provider, logger.NewNopLogger())

	res, err := a.AnalyzeStructure(context.Background(), []SectionPreview{
		{Title: "Introduction", Text: strings.Repeat("word ", 200)},
		{Title: "", Text: "short"},
	})
	require.NoError(t, err)
	require.Len(t, res.Sections, 1)
	assert.Equal(t, []int{120, 300}, res.Sections[0].Boundaries())
	assert.Contains(t, prompt, "Section: Introduction")
	assert.Contains(t, prompt, "Section: Untitled")
}

func TestAnalyzeStructureBudget(t *testing.T) {
	var prompt string
	provider := funcProvider(func(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
		prompt = messages[1].Content
		return &llm.Completion{Text: `{"sections":[]}`}, nil
	})
	a := NewAnalyzer(provider, logger.NewNopLogger())

	// 500-char previews are 125 tokens each; 47 of them stay below the 6000 cap
	var sections []SectionPreview
	for i := 0; i < 60; i++ {
		sections = append(sections, SectionPreview{Title: "S", Text: strings.Repeat("x", 800)})
	}
	_, err := a.AnalyzeStructure(context.Background(), sections)
	require.NoError(t, err)
	assert.Equal(t, 47, strings.Count(prompt, "Section: S"))
}

func TestAnalyzeStructureFailure(t *testing.T) {
	a := NewAnalyzer(reply("not json at all"), logger.NewNopLogger())
	_, err := a.AnalyzeStructure(context.Background(), []SectionPreview{{Title: "A", Text: "some text"}})
	assert.ErrorIs(t, err, llm.ErrMalformedResponse)
}

func TestPlanConceptBatches(t *testing.T) {
	texts := make([]string, 70)
	for i := range texts {
		texts[i] = strings.Repeat("y", 400)
	}
	batches := planConceptBatches(texts)
	require.Len(t, batches, 2)
	assert.Len(t, batches[0], 66)
	assert.Len(t, batches[1], 4)
	assert.Equal(t, 66, batches[1][0].index)
	assert.Len(t, batches[0][0].preview, ConceptPreviewChars)
}

func TestExtractConcepts(t *testing.T) {
	t.Run("maps results by order", func(t *testing.T) {
		a := NewAnalyzer(reply(`[{"concepts":["attention"],"methods":["transformer"],"keywords":["nlp"],"research_area":"nlp"},{"concepts":null}]`), logger.NewNopLogger())
		got := a.ExtractConcepts(context.Background(), []string{"first", "second", "third"})

		require.Len(t, got, 3)
		assert.Equal(t, []string{"attention"}, got[0].Concepts)
		assert.Equal(t, "nlp", got[0].ResearchArea)
		assert.Equal(t, []string{}, got[1].Concepts)
		assert.Equal(t, UnknownResearchArea, got[1].ResearchArea)
		assert.Equal(t, UnknownResearchArea, got[2].ResearchArea)
	})

	t.Run("failed batch leaves empty concepts", func(t *testing.T) {
		failing := funcProvider(func(ctx context.Context, messages []llm.Message, options ...llm.Option) (*llm.Completion, error) {
			return nil, llm.Unavailable("test", errors.New("down"))
		})
		got := NewAnalyzer(failing, logger.NewNopLogger()).ExtractConcepts(context.Background(), []string{"a", "b"})
		require.Len(t, got, 2)
		for _, c := range got {
			assert.Empty(t, c.Concepts)
			assert.Equal(t, UnknownResearchArea, c.ResearchArea)
		}
	})
}
