package chunker

import (
	"strings"
	"unicode/utf8"
)

func (c *Chunker) undersized(text string) bool {
	return wordCount(text) < c.cfg.MinWords || utf8.RuneCountInString(strings.TrimSpace(text)) < c.cfg.MinChars
}

// filter merges an undersized reference chunk into the reference chunk kept
// immediately before it, drops the remaining undersized chunks and exact
// duplicates, then reindexes.
func (c *Chunker) filter(chunks []Chunk, stats *Stats) []Chunk {
	out := make([]Chunk, 0, len(chunks))
	seen := make(map[string]bool, len(chunks))
	prevKept := false

	for _, ch := range chunks {
		text := ch.Content()
		if c.undersized(text) {
			if mergeReference(out, ch, prevKept, seen) {
				stats.Merged++
				continue
			}
			stats.Dropped++
			prevKept = false
			continue
		}
		key := strings.TrimSpace(text)
		if seen[key] {
			stats.Duplicates++
			prevKept = false
			continue
		}
		seen[key] = true
		out = append(out, ch)
		prevKept = true
	}

	for i := range out {
		out[i].Index = i
	}
	return out
}

// mergeReference appends ch to the last kept chunk when both are references
// and nothing was skipped between them. The duplicate key follows the new text.
func mergeReference(out []Chunk, ch Chunk, prevKept bool, seen map[string]bool) bool {
	ref, ok := ch.Payload.(*ReferencePayload)
	if !ok || !prevKept || len(out) == 0 {
		return false
	}
	last := &out[len(out)-1]
	prev, ok := last.Payload.(*ReferencePayload)
	if !ok {
		return false
	}
	delete(seen, strings.TrimSpace(prev.Text))
	prev.Text = strings.TrimSpace(prev.Text + " " + ref.Text)
	seen[prev.Text] = true
	refreshTextMetadata(last.Metadata, prev.Text)
	return true
}

func refreshTextMetadata(meta map[string]interface{}, text string) {
	meta["word_count"] = wordCount(text)
	meta["has_formulas"] = HasFormulas(text)
	meta["has_citations"] = HasCitations(text)
}

func (c *Chunker) fillStats(chunks []Chunk, stats *Stats) {
	stats.Total = len(chunks)
	stats.ByType = map[ChunkType]int{}
	for _, ch := range chunks {
		stats.ByType[ch.Type()]++
	}
	if stats.Total == 0 {
		return
	}
	total := float64(stats.Total)
	stats.TextShare = float64(stats.ByType[TypeText]) / total
	stats.TableShare = float64(stats.ByType[TypeTable]) / total
	stats.ReferenceShare = float64(stats.ByType[TypeReference]) / total
	stats.Degenerate = stats.TextShare < 0.5 || stats.ReferenceShare > 0.5

	details := map[string]interface{}{
		"total":           stats.Total,
		"text_share":      stats.TextShare,
		"table_share":     stats.TableShare,
		"reference_share": stats.ReferenceShare,
		"dropped":         stats.Dropped,
		"merged":          stats.Merged,
	}
	if stats.Degenerate {
		c.logger.Warn(moduleName, "Chunk type distribution looks degenerate", details)
		return
	}
	c.logger.Info(moduleName, "Chunking complete", details)
}
