package embedding

import (
	"context"
	"fmt"
	"strings"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/chunker"
)

const (
	moduleName       = "EMBEDDING"
	defaultBatchSize = 32
)

var taggedSections = map[string]bool{
	"abstract":     true,
	"introduction": true,
	"conclusion":   true,
	"methodology":  true,
}

// Service embeds queries and chunks. It never fails: when the provider does,
// the affected vectors are all-zero vectors of the configured dimension.
type Service struct {
	provider  Provider
	batchSize int
	logger    logger.ILogger
}

func NewService(provider Provider, log logger.ILogger) *Service {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Service{provider: provider, batchSize: defaultBatchSize, logger: log}
}

func (s *Service) Dimension() int { return s.provider.Dimension() }
func (s *Service) Model() string  { return s.provider.Model() }

func (s *Service) EmbedText(ctx context.Context, text string) []float32 {
	return s.EmbedBatch(ctx, []string{text})[0]
}

// EmbedBatch returns one vector per text, in order. Texts are sent in
// batches; a failed batch degrades to zero vectors on its own.
func (s *Service) EmbedBatch(ctx context.Context, texts []string) [][]float32 {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += s.batchSize {
		end := start + s.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		batch := make([]string, end-start)
		for i, t := range texts[start:end] {
			batch[i] = clean(t)
		}
		out = append(out, s.embedBatch(ctx, batch)...)
	}
	return out
}

func (s *Service) embedBatch(ctx context.Context, texts []string) [][]float32 {
	vecs, err := s.provider.Embed(ctx, texts)
	if err == nil {
		err = checkShape(s.provider.Model(), vecs, len(texts), s.provider.Dimension())
	}
	if err != nil {
		s.logger.Error(moduleName, "Embedding failed, using zero vectors", map[string]interface{}{
			"model": s.provider.Model(),
			"count": len(texts),
			"error": err.Error(),
		})
		return s.zeros(len(texts))
	}
	return vecs
}

func (s *Service) zeros(n int) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = make([]float32, s.provider.Dimension())
	}
	return out
}

// EmbedChunks enriches every chunk by type and embeds the results.
func (s *Service) EmbedChunks(ctx context.Context, chunks []chunker.Chunk) [][]float32 {
	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = Enrich(ch)
	}
	return s.EmbedBatch(ctx, texts)
}

// Enrich builds the text that is embedded for a chunk. The stored chunk
// content is left untouched.
func Enrich(ch chunker.Chunk) string {
	switch p := ch.Payload.(type) {
	case *chunker.TextPayload:
		return enrichText(ch, p)
	case *chunker.TablePayload:
		return enrichTable(p)
	case *chunker.ReferencePayload:
		return "[REFERENCE] " + p.Text
	default:
		return ch.Content()
	}
}

func enrichText(ch chunker.Chunk, p *chunker.TextPayload) string {
	text := p.Text
	if ch.SectionTitle != "" && !strings.Contains(p.Text, ch.SectionTitle) {
		text = fmt.Sprintf("Section: %s. %s", ch.SectionTitle, text)
	}
	if taggedSections[p.SectionType] {
		text = "[" + strings.ToUpper(p.SectionType) + "] " + text
	}
	if ch.HasFormulas() {
		text = "[CONTAINS_FORMULAS] " + text
	}
	if ch.HasCitations() {
		text = "[CONTAINS_CITATIONS] " + text
	}
	return text
}

func enrichTable(p *chunker.TablePayload) string {
	parts := []string{"[TABLE]"}
	if p.RowCount > 0 && p.ColCount > 0 {
		parts = append(parts, fmt.Sprintf("Structure: %dx%d table", p.RowCount, p.ColCount))
	}
	if p.Text != "" {
		parts = append(parts, p.Text)
	}
	var headers []string
	for _, h := range p.Headers() {
		if h != "" {
			headers = append(headers, h)
		}
	}
	if len(headers) > 0 {
		parts = append(parts, "Headers: "+strings.Join(headers, ", "))
	}
	return strings.Join(parts, " ")
}

func clean(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
