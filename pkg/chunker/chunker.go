package chunker

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"research-rag-be/internal/pkg/logger"
	"research-rag-be/pkg/pdf"
	"research-rag-be/pkg/rag/analysis"
	"research-rag-be/pkg/utils"
)

const moduleName = "CHUNKER"

const (
	minBoundaryFragment = 50
	minTableConceptText = 100
)

// Analyzer is the optional LLM-backed enrichment used by Chunk.
type Analyzer interface {
	AnalyzeStructure(ctx context.Context, sections []analysis.SectionPreview) (*analysis.StructureAnalysis, error)
	ExtractConcepts(ctx context.Context, texts []string) []analysis.Concepts
}

type Chunker struct {
	cfg      Config
	analyzer Analyzer
	logger   logger.ILogger
}

// New returns a Chunker. A nil analyzer disables the LLM stages.
func New(cfg Config, analyzer Analyzer, log logger.ILogger) *Chunker {
	def := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = def.ChunkSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.ChunkSize {
		cfg.Overlap = def.Overlap
	}
	if cfg.MinWords <= 0 {
		cfg.MinWords = def.MinWords
	}
	if cfg.MinChars <= 0 {
		cfg.MinChars = def.MinChars
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Chunker{cfg: cfg, analyzer: analyzer, logger: log}
}

// Chunk turns extracted content into the ordered chunk list to persist.
func (c *Chunker) Chunk(ctx context.Context, content *pdf.Content) ([]Chunk, Stats, error) {
	if content == nil {
		return nil, Stats{}, fmt.Errorf("chunk: nil content")
	}
	var stats Stats

	sections := textSections(content)
	structure := c.analyzeStructure(ctx, content, sections, &stats)
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	var textChunks []Chunk
	if len(content.Structure.Sections) == 0 {
		textChunks = c.pageChunks(content)
	} else {
		textChunks = c.sectionChunks(content, sections, structure)
	}
	c.enrichConcepts(ctx, textChunks)

	tableChunks := c.tableChunks(ctx, content)
	imageChunks := c.imageChunks(content)
	refChunks := c.referenceChunks(content)
	if err := ctx.Err(); err != nil {
		return nil, stats, err
	}

	all := make([]Chunk, 0, len(textChunks)+len(tableChunks)+len(imageChunks)+len(refChunks))
	all = append(all, textChunks...)
	all = append(all, tableChunks...)
	all = append(all, imageChunks...)
	all = append(all, refChunks...)

	sort.SliceStable(all, func(i, j int) bool {
		if all[i].Page != all[j].Page {
			return all[i].Page < all[j].Page
		}
		return all[i].Position < all[j].Position
	})
	for i := range all {
		all[i].Index = i
	}

	out := c.filter(all, &stats)
	c.fillStats(out, &stats)
	return out, stats, nil
}

// textSections returns the detected sections with the references section
// removed and any section clamped to end before it.
func textSections(content *pdf.Content) []pdf.Section {
	refStart := content.Structure.ReferencesStart
	var out []pdf.Section
	for _, s := range content.Structure.Sections {
		if refStart >= 0 {
			if s.StartBlock == refStart || s.Category == pdf.CategoryReferences && s.StartBlock > refStart {
				continue
			}
			if s.StartBlock < refStart && s.EndBlock >= refStart {
				s.EndBlock = refStart - 1
			}
		}
		if s.EndBlock < s.StartBlock {
			continue
		}
		out = append(out, s)
	}
	return out
}

func sectionText(blocks []pdf.TextBlock, start, end int) string {
	if start < 0 {
		start = 0
	}
	if end >= len(blocks) {
		end = len(blocks) - 1
	}
	parts := make([]string, 0, end-start+1)
	for i := start; i <= end; i++ {
		if t := strings.Join(strings.Fields(blocks[i].Text), " "); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

func (c *Chunker) analyzeStructure(ctx context.Context, content *pdf.Content, sections []pdf.Section, stats *Stats) *analysis.StructureAnalysis {
	if c.analyzer == nil || len(sections) == 0 {
		return analysis.EmptyStructure()
	}
	previews := make([]analysis.SectionPreview, len(sections))
	for i, s := range sections {
		previews[i] = analysis.SectionPreview{
			Title: s.Title,
			Text:  sectionText(content.Blocks, s.StartBlock, s.EndBlock),
		}
	}
	res, err := c.analyzer.AnalyzeStructure(ctx, previews)
	if err != nil {
		stats.AnalysisFailed = true
		c.logger.Warn(moduleName, "Structure analysis failed, continuing without it", map[string]interface{}{
			"sections": len(sections),
			"error":    err.Error(),
		})
		return analysis.EmptyStructure()
	}
	return res
}

func (c *Chunker) sectionChunks(content *pdf.Content, sections []pdf.Section, structure *analysis.StructureAnalysis) []Chunk {
	var chunks []Chunk
	for i, s := range sections {
		text := sectionText(content.Blocks, s.StartBlock, s.EndBlock)
		if text == "" {
			continue
		}

		sectionType := string(s.Category)
		var topics []string
		var boundaries []int
		// analysis sections are matched by position
		if i < len(structure.Sections) {
			a := structure.Sections[i]
			if s.Category == pdf.CategoryOther && isCategory(a.Type) {
				sectionType = a.Type
			}
			topics = a.Topics
			boundaries = a.Boundaries()
		}

		for _, part := range c.splitSection(text, boundaries) {
			chunks = append(chunks, Chunk{
				Page:         s.Page,
				Position:     s.StartBlock,
				SectionTitle: s.Title,
				Payload:      &TextPayload{Text: part, SectionType: sectionType},
				Metadata:     baseMetadata(part, sectionType, topics),
			})
		}
	}
	return chunks
}

func isCategory(t string) bool {
	switch pdf.SectionCategory(t) {
	case pdf.CategoryAbstract, pdf.CategoryIntroduction, pdf.CategoryMethodology, pdf.CategoryResults,
		pdf.CategoryDiscussion, pdf.CategoryConclusion:
		return true
	}
	return false
}

// splitSection applies boundary splitting when boundaries exist and the text
// is over size, sentence splitting when only the size is exceeded, and keeps
// the text whole otherwise.
func (c *Chunker) splitSection(text string, boundaries []int) []string {
	size := len([]rune(text))
	if size <= c.cfg.ChunkSize {
		return []string{text}
	}
	if len(boundaries) > 0 {
		if parts := c.splitAtBoundaries(text, boundaries); len(parts) > 0 {
			return parts
		}
	}
	return utils.SplitText(text, c.cfg.ChunkSize, c.cfg.Overlap)
}

func (c *Chunker) splitAtBoundaries(text string, boundaries []int) []string {
	runes := []rune(text)
	offsets := validBoundaries(boundaries, len(runes))
	if len(offsets) == 0 {
		return nil
	}

	var parts []string
	prev := 0
	for _, off := range append(offsets, len(runes)) {
		frag := strings.TrimSpace(string(runes[prev:off]))
		prev = off
		if len([]rune(frag)) < minBoundaryFragment {
			continue
		}
		if len([]rune(frag)) > 2*c.cfg.ChunkSize {
			parts = append(parts, utils.SplitText(frag, c.cfg.ChunkSize, c.cfg.Overlap)...)
			continue
		}
		parts = append(parts, frag)
	}
	return parts
}

// validBoundaries keeps in-range offsets, sorted and without duplicates.
func validBoundaries(boundaries []int, n int) []int {
	var out []int
	seen := map[int]bool{}
	for _, b := range boundaries {
		if b <= 0 || b >= n || seen[b] {
			continue
		}
		seen[b] = true
		out = append(out, b)
	}
	sort.Ints(out)
	return out
}

func (c *Chunker) pageChunks(content *pdf.Content) []Chunk {
	pages := map[int][]pdf.TextBlock{}
	var order []int
	for _, b := range content.Blocks {
		if _, ok := pages[b.Page]; !ok {
			order = append(order, b.Page)
		}
		pages[b.Page] = append(pages[b.Page], b)
	}

	var chunks []Chunk
	for _, page := range order {
		blocks := pages[page]
		text := sectionText(blocks, 0, len(blocks)-1)
		if text == "" {
			continue
		}
		title := fmt.Sprintf("Page %d", page)
		for _, part := range c.splitSection(text, nil) {
			chunks = append(chunks, Chunk{
				Page:         page,
				Position:     blocks[0].Index,
				SectionTitle: title,
				Payload:      &TextPayload{Text: part, SectionType: string(pdf.CategoryOther)},
				Metadata:     baseMetadata(part, string(pdf.CategoryOther), nil),
			})
		}
	}
	return chunks
}

func (c *Chunker) enrichConcepts(ctx context.Context, chunks []Chunk) {
	if len(chunks) == 0 {
		return
	}
	concepts := make([]analysis.Concepts, len(chunks))
	if c.analyzer != nil {
		texts := make([]string, len(chunks))
		for i, ch := range chunks {
			texts[i] = ch.Content()
		}
		concepts = c.analyzer.ExtractConcepts(ctx, texts)
	}
	for i := range chunks {
		cc := analysis.EmptyConcepts()
		if i < len(concepts) && concepts[i].ResearchArea != "" {
			cc = concepts[i]
		}
		applyConcepts(chunks[i].Metadata, cc)
	}
}

func applyConcepts(meta map[string]interface{}, cc analysis.Concepts) {
	meta["concepts"] = cc.Concepts
	meta["methods"] = cc.Methods
	meta["keywords"] = cc.Keywords
	meta["research_area"] = cc.ResearchArea
}

func (c *Chunker) tableChunks(ctx context.Context, content *pdf.Content) []Chunk {
	var chunks []Chunk
	var wantConcepts []int
	for i, t := range content.Tables {
		body := pdf.TableText(t.Rows)
		if strings.TrimSpace(body) == "" {
			continue
		}
		payload := &TablePayload{
			Text:       "[TABLE] " + body,
			Rows:       t.Rows,
			RowCount:   t.RowCount,
			ColCount:   t.ColCount,
			TableIndex: i,
		}
		meta := baseMetadata(payload.Text, "table", nil)
		meta["table_index"] = i
		meta["rows"] = t.RowCount
		meta["cols"] = t.ColCount
		meta["headers"] = payload.Headers()

		if len([]rune(payload.Text)) > minTableConceptText {
			wantConcepts = append(wantConcepts, len(chunks))
		}
		chunks = append(chunks, Chunk{
			Page:         t.Page,
			Position:     t.AnchorBlock,
			SectionTitle: fmt.Sprintf("Table %d", i+1),
			BBox:         t.BBox.Slice(),
			Payload:      payload,
			Metadata:     meta,
		})
	}

	if c.analyzer != nil && len(wantConcepts) > 0 {
		texts := make([]string, len(wantConcepts))
		for i, idx := range wantConcepts {
			texts[i] = chunks[idx].Content()
		}
		concepts := c.analyzer.ExtractConcepts(ctx, texts)
		for i, idx := range wantConcepts {
			if i < len(concepts) {
				applyConcepts(chunks[idx].Metadata, concepts[i])
			}
		}
	}
	return chunks
}

func (c *Chunker) imageChunks(content *pdf.Content) []Chunk {
	var chunks []Chunk
	for i, img := range content.Images {
		caption := findCaption(content.Blocks, img)
		text := fmt.Sprintf("[%s] ", strings.ToUpper(string(img.Type)))
		if caption != "" {
			text += caption
		} else {
			text += fmt.Sprintf("Image on page %d", img.Page)
		}

		payload := &ImagePayload{
			Text:       text,
			Caption:    caption,
			ImageType:  img.Type,
			ImageIndex: i,
			Format:     img.Format,
			Width:      img.Width,
			Height:     img.Height,
			Data:       img.Data,
		}
		meta := baseMetadata(text, "figure", nil)
		meta["image_index"] = i
		meta["image_type"] = string(img.Type)
		meta["image_size"] = []int{img.Width, img.Height}
		meta["format"] = img.Format
		if img.PayloadUnavailable {
			meta["payload_unavailable"] = true
		}

		chunks = append(chunks, Chunk{
			Page:         img.Page,
			Position:     img.AnchorBlock,
			SectionTitle: fmt.Sprintf("Figure %d", i+1),
			BBox:         img.BBox.Slice(),
			Payload:      payload,
			Metadata:     meta,
		})
	}
	return chunks
}

// findCaption returns the first block after the image anchor on the same page
// that starts with "Figure" or "Fig.".
func findCaption(blocks []pdf.TextBlock, img pdf.Image) string {
	for i := img.AnchorBlock + 1; i >= 0 && i < len(blocks); i++ {
		b := blocks[i]
		if b.Page < img.Page {
			continue
		}
		if b.Page > img.Page {
			break
		}
		text := strings.Join(strings.Fields(b.Text), " ")
		if strings.HasPrefix(text, "Figure") || strings.HasPrefix(text, "Fig.") {
			return text
		}
	}
	return ""
}

func (c *Chunker) referenceChunks(content *pdf.Content) []Chunk {
	start := content.Structure.ReferencesStart
	if start < 0 || start >= len(content.Blocks) {
		return nil
	}
	end := len(content.Blocks) - 1
	for _, s := range content.Structure.Sections {
		if s.StartBlock == start {
			end = s.EndBlock
			break
		}
	}

	text := sectionText(content.Blocks, start, end)
	if text == "" {
		return nil
	}
	parts := []string{text}
	if len([]rune(text)) > 2*c.cfg.ChunkSize {
		parts = utils.SplitText(text, c.cfg.ChunkSize, c.cfg.Overlap)
	}

	// Every part sits at the heading position so a following appendix never
	// sorts between them; the stable sort keeps their order.
	page := content.Blocks[start].Page
	chunks := make([]Chunk, 0, len(parts))
	for i, part := range parts {
		meta := baseMetadata(part, string(pdf.CategoryReferences), nil)
		meta["reference_index"] = i
		chunks = append(chunks, Chunk{
			Page:         page,
			Position:     start,
			SectionTitle: "References",
			Payload:      &ReferencePayload{Text: part},
			Metadata:     meta,
		})
	}
	return chunks
}
