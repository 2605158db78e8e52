package pdf

import (
	"regexp"
	"strings"
	"unicode"
)

// DefaultHeadingPatterns match a whole line that is a canonical section
// heading, optionally numbered ("1.", "2.3", "IV.", "A.").
var DefaultHeadingPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(abstract|summary)\s*$`),
	regexp.MustCompile(`(?i)^\s*(\d+(\.\d+)*\.?|[ivx]+\.|[a-h]\.)?\s*(introduction|background|related\s+work|literature\s+review|preliminaries)\s*$`),
	regexp.MustCompile(`(?i)^\s*(\d+(\.\d+)*\.?|[ivx]+\.|[a-h]\.)?\s*(methodology|methods?|approach|proposed\s+method|model|experiments?|experimental\s+setup|results?|evaluation|analysis|discussion|findings)\s*$`),
	regexp.MustCompile(`(?i)^\s*(\d+(\.\d+)*\.?|[ivx]+\.|[a-h]\.)?\s*(conclusions?|future\s+work|conclusions?\s+and\s+future\s+work|acknowledge?ments?)\s*$`),
	regexp.MustCompile(`(?i)^\s*(references?|bibliography|works?\s+cited)\s*$`),
	appendixRe,
	regexp.MustCompile(`(?i)^\s*\d+\.?\s+[a-z][a-z\s]+$`),
}

var (
	appendixRe       = regexp.MustCompile(`(?i)^\s*(appendix\s*[a-z]?|[a-z]\.?\s*appendix)\b.*$`)
	referenceLineRe  = regexp.MustCompile(`^\[\d+\]|^\d+\.`)
	numberedHeadRe   = regexp.MustCompile(`^\d+(\.\d+)*\.?\s+[A-Z][a-zA-Z\s]+`)
	mathGlyphs       = "∑∫∂∇∆∞≤≥≠±×÷√∏∈∉⊂⊃∪∩αβγδεζηθικλμνξπρστυφχψω"
	fallbackKeywords = []string{
		"abstract", "introduction", "background", "method", "approach", "experiment",
		"result", "evaluation", "discussion", "conclusion", "reference", "bibliography",
	}
)

type classifier struct {
	patterns []*regexp.Regexp
}

func (c classifier) isHeading(text string) bool {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		for _, p := range c.patterns {
			if p.MatchString(line) {
				return true
			}
		}
		// only the first line of a block can be a heading
		break
	}
	return false
}

func (c classifier) classify(b TextBlock) BlockType {
	text := strings.TrimSpace(b.Text)
	switch {
	case c.isHeading(text):
		return BlockSectionHeading
	case b.FontSize > 14:
		return BlockTitle
	case b.FontSize > 12:
		return BlockHeading
	case referenceLineRe.MatchString(text):
		return BlockReference
	case HasFormula(text):
		return BlockFormula
	}
	return BlockBody
}

// HasFormula reports whether text contains mathematical glyphs.
func HasFormula(text string) bool {
	return strings.ContainsAny(text, mathGlyphs)
}

// likelyHeading is the broader heuristic used by structure detection on top of
// the block type.
func likelyHeading(b TextBlock, avgFontSize float64) bool {
	text := firstLine(b.Text)
	if text == "" {
		return false
	}
	if numberedHeadRe.MatchString(text) && !strings.HasSuffix(text, ".") {
		return true
	}
	words := len(strings.Fields(text))
	if isUpper(text) && words <= 4 && len(text) > 5 {
		return true
	}
	return avgFontSize > 0 && b.FontSize > avgFontSize+0.5 && words <= 6 && !strings.Contains(b.Text, "\n")
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// isUpper reports whether s has at least one cased letter and no lower-case ones.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}

// Categorize maps a section title to its category.
func Categorize(title string) SectionCategory {
	t := strings.ToLower(title)
	switch {
	case strings.Contains(t, "abstract"):
		return CategoryAbstract
	case strings.Contains(t, "introduction"), strings.Contains(t, "background"):
		return CategoryIntroduction
	case strings.Contains(t, "method"), strings.Contains(t, "approach"):
		return CategoryMethodology
	case strings.Contains(t, "result"), strings.Contains(t, "experiment"), strings.Contains(t, "evaluation"):
		return CategoryResults
	case strings.Contains(t, "discussion"):
		return CategoryDiscussion
	case strings.Contains(t, "conclusion"):
		return CategoryConclusion
	case strings.Contains(t, "reference"), strings.Contains(t, "bibliography"):
		return CategoryReferences
	}
	return CategoryOther
}
