package analysis

import (
	"context"
	"fmt"
	"strings"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/llm"
)

const moduleName = "LLM_ANALYSIS"

const (
	SectionPreviewChars   = 500
	StructureTokenBudget  = 6000
	ConceptPreviewChars   = 300
	ConceptBatchTokenSize = 5000
	UnknownResearchArea   = "unknown"
)

// SectionPreview is the per-section input to structural analysis.
type SectionPreview struct {
	Title string
	Text  string
}

type SectionAnalysis struct {
	Title              string    `json:"title"`
	Type               string    `json:"type"`
	Topics             []string  `json:"topics"`
	SemanticBoundaries []float64 `json:"semantic_boundaries"`
	Complexity         string    `json:"complexity"`
}

// Boundaries returns the proposed offsets as ints, dropping negatives.
func (s SectionAnalysis) Boundaries() []int {
	out := make([]int, 0, len(s.SemanticBoundaries))
	for _, b := range s.SemanticBoundaries {
		if b >= 0 {
			out = append(out, int(b))
		}
	}
	return out
}

type StructureAnalysis struct {
	DocumentType           string            `json:"document_type"`
	Sections               []SectionAnalysis `json:"sections"`
	OverallThemes          []string          `json:"overall_themes"`
	ResearchArea           string            `json:"research_area"`
	SuggestedChunkStrategy string            `json:"suggested_chunk_strategy"`
}

// EmptyStructure is used when analysis is unavailable.
func EmptyStructure() *StructureAnalysis {
	return &StructureAnalysis{
		DocumentType:           "research_paper",
		ResearchArea:           UnknownResearchArea,
		SuggestedChunkStrategy: "paragraph",
	}
}

type Concepts struct {
	Concepts     []string `json:"concepts"`
	Methods      []string `json:"methods"`
	Keywords     []string `json:"keywords"`
	ResearchArea string   `json:"research_area"`
}

func EmptyConcepts() Concepts {
	return Concepts{
		Concepts:     []string{},
		Methods:      []string{},
		Keywords:     []string{},
		ResearchArea: UnknownResearchArea,
	}
}

// Analyzer runs the LLM-assisted enrichment steps of the chunking pipeline.
type Analyzer struct {
	llm    llm.Provider
	logger logger.ILogger
}

func NewAnalyzer(provider llm.Provider, log logger.ILogger) *Analyzer {
	return &Analyzer{llm: provider, logger: log}
}

// AnalyzeStructure sends one batched request covering as many section previews
// as fit in StructureTokenBudget.
func (a *Analyzer) AnalyzeStructure(ctx context.Context, sections []SectionPreview) (*StructureAnalysis, error) {
	var parts []string
	total := 0
	for _, s := range sections {
		title := s.Title
		if title == "" {
			title = "Untitled"
		}
		preview := Preview(s.Text, SectionPreviewChars)
		tokens := EstimateTokens(preview)
		if total+tokens >= StructureTokenBudget {
			break
		}
		parts = append(parts, fmt.Sprintf("Section: %s\n%s", title, preview))
		total += tokens
	}
	if len(parts) == 0 {
		return EmptyStructure(), nil
	}

	messages := []llm.Message{
		{
			Role:    llm.RoleSystem,
			Content: "You are a research paper structure analyzer. Analyze the document and provide comprehensive structure analysis. Return only valid JSON.",
		},
		{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(structurePrompt, strings.Join(parts, "\n\n")),
		},
	}

	res, err := a.llm.Complete(ctx, messages, llm.WithMaxTokens(800), llm.WithTemperature(0.1))
	if err != nil {
		return nil, fmt.Errorf("structure analysis: %w", err)
	}

	out := EmptyStructure()
	if err := decodeJSON(res.Text, out); err != nil {
		return nil, fmt.Errorf("structure analysis: %w", llm.Malformed(llm.NameOf(a.llm), err))
	}

	a.logger.Debug(moduleName, "Structure analysis complete", map[string]interface{}{
		"sections_sent":     len(parts),
		"sections_returned": len(out.Sections),
		"estimated_tokens":  total,
	})
	return out, nil
}

// ExtractConcepts returns exactly one Concepts value per input text, in input
// order. A failed batch leaves its entries empty.
func (a *Analyzer) ExtractConcepts(ctx context.Context, texts []string) []Concepts {
	results := make([]Concepts, len(texts))
	for i := range results {
		results[i] = EmptyConcepts()
	}

	for _, batch := range planConceptBatches(texts) {
		got, err := a.processConceptBatch(ctx, batch)
		if err != nil {
			a.logger.Warn(moduleName, "Concept batch failed, leaving chunks unenriched", map[string]interface{}{
				"first_index": batch[0].index,
				"size":        len(batch),
				"error":       err.Error(),
			})
			continue
		}
		for j, item := range batch {
			if j < len(got) {
				results[item.index] = normalizeConcepts(got[j])
			}
		}
	}
	return results
}

type conceptItem struct {
	index   int
	preview string
}

// planConceptBatches groups 300-char previews into batches of at most
// ConceptBatchTokenSize estimated tokens.
func planConceptBatches(texts []string) [][]conceptItem {
	var batches [][]conceptItem
	var current []conceptItem
	size := 0
	for i, text := range texts {
		preview := Preview(text, ConceptPreviewChars)
		tokens := EstimateTokens(preview)
		if size+tokens > ConceptBatchTokenSize && len(current) > 0 {
			batches = append(batches, current)
			current = nil
			size = 0
		}
		current = append(current, conceptItem{index: i, preview: preview})
		size += tokens
	}
	if len(current) > 0 {
		batches = append(batches, current)
	}
	return batches
}

func (a *Analyzer) processConceptBatch(ctx context.Context, batch []conceptItem) ([]Concepts, error) {
	var sb strings.Builder
	for _, item := range batch {
		fmt.Fprintf(&sb, "\n--- Chunk %d ---\n%s\n", item.index, item.preview)
	}

	messages := []llm.Message{
		{
			Role:    llm.RoleSystem,
			Content: "Extract research concepts from multiple academic text chunks. Return JSON array with one object per chunk.",
		},
		{
			Role:    llm.RoleUser,
			Content: fmt.Sprintf(conceptPrompt, sb.String()),
		},
	}

	res, err := a.llm.Complete(ctx, messages, llm.WithMaxTokens(600), llm.WithTemperature(0.1))
	if err != nil {
		return nil, err
	}

	var out []Concepts
	if err := decodeJSON(res.Text, &out); err != nil {
		return nil, llm.Malformed(llm.NameOf(a.llm), err)
	}
	return out, nil
}

func normalizeConcepts(c Concepts) Concepts {
	if c.Concepts == nil {
		c.Concepts = []string{}
	}
	if c.Methods == nil {
		c.Methods = []string{}
	}
	if c.Keywords == nil {
		c.Keywords = []string{}
	}
	if strings.TrimSpace(c.ResearchArea) == "" {
		c.ResearchArea = UnknownResearchArea
	}
	return c
}

const structurePrompt = `Analyze this research paper's structure and provide semantic chunking guidance:

%s

Return JSON with:
{
    "document_type": "research_paper|survey|technical_report|other",
    "sections": [
        {
            "title": "section title",
            "type": "abstract|introduction|methodology|results|discussion|conclusion|references|other",
            "topics": ["key topics in this section"],
            "semantic_boundaries": [character offsets within the section text where the topic shifts],
            "complexity": "high|medium|low"
        }
    ],
    "overall_themes": ["main research themes"],
    "research_area": "primary research domain",
    "suggested_chunk_strategy": "semantic|paragraph|hybrid"
}`

const conceptPrompt = `Extract key research concepts from these academic text chunks:
%s
Return JSON array with one object per chunk, in the same order:
[
    {
        "concepts": ["main research concepts/terms"],
        "methods": ["methodologies mentioned"],
        "keywords": ["academic keywords"],
        "research_area": "primary research domain"
    }
]`
