package chunker

import (
	"regexp"
	"strings"

	"research-rag-be/pkg/pdf"
)

var citationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\[(\d+(?:,\s*\d+)*)\]`),
	regexp.MustCompile(`\(([A-Za-z]+(?:\s+et\s+al\.?)?,?\s*\d{4}(?:;\s*[A-Za-z]+(?:\s+et\s+al\.?)?,?\s*\d{4})*)\)`),
	regexp.MustCompile(`([A-Za-z]+(?:\s+et\s+al\.?)?\s+\(\d{4}\))`),
}

var formulaPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)equation\s+\(\d+\)`),
	regexp.MustCompile(`(?i)formula\s+\(\d+\)`),
	regexp.MustCompile(`(?i)eq\.\s*\(\d+\)`),
	regexp.MustCompile(`(?i)\\begin\{equation\}`),
	regexp.MustCompile(`(?i)\\begin\{align\}`),
	regexp.MustCompile(`\$[^$]+\$`),
}

func HasCitations(text string) bool {
	for _, p := range citationPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return false
}

func HasFormulas(text string) bool {
	for _, p := range formulaPatterns {
		if p.MatchString(text) {
			return true
		}
	}
	return pdf.HasFormula(text)
}

func wordCount(s string) int {
	return len(strings.Fields(s))
}

// baseMetadata holds the fields every chunk carries.
func baseMetadata(text, sectionType string, topics []string) map[string]interface{} {
	if topics == nil {
		topics = []string{}
	}
	return map[string]interface{}{
		"word_count":    wordCount(text),
		"has_formulas":  HasFormulas(text),
		"has_citations": HasCitations(text),
		"section_type":  sectionType,
		"topics":        topics,
	}
}
