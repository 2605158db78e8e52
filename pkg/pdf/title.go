package pdf

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxTitleRunes    = 60
	titleScanBlocks  = 20
	titleMinChars    = 10
	titleMinWords    = 3
	titleMaxWords    = 20
	titleMaxPage     = 2
	titleMaxSpecials = 0.3
)

var titleStopWords = []string{"abstract", "introduction", "page", "figure", "table"}

// ExtractTitle returns the paper title from the Info dictionary or, failing
// that, from the first blocks of the document. It returns "" when nothing
// plausible is found.
func ExtractTitle(c *Content) string {
	if c == nil {
		return ""
	}
	if t := usableMetadataTitle(c.Metadata["Title"]); t != "" {
		return t
	}

	limit := len(c.Blocks)
	if limit > titleScanBlocks {
		limit = titleScanBlocks
	}
	for _, b := range c.Blocks[:limit] {
		text := strings.TrimSpace(b.Text)
		if utf8.RuneCountInString(text) < titleMinChars {
			continue
		}
		lower := strings.ToLower(text)
		if containsAny(lower, titleStopWords) {
			continue
		}
		if isUpper(text) {
			continue
		}
		if specialRatio(text) > titleMaxSpecials {
			continue
		}
		words := len(strings.Fields(text))
		if words >= titleMinWords && words <= titleMaxWords && b.Page <= titleMaxPage {
			return joinLines(text)
		}
	}
	return ""
}

// TruncateTitle cuts titles longer than MaxTitleRunes to 57 runes plus "...".
func TruncateTitle(t string) string {
	r := []rune(t)
	if len(r) <= MaxTitleRunes {
		return t
	}
	return string(r[:MaxTitleRunes-3]) + "..."
}

func usableMetadataTitle(t string) string {
	t = strings.TrimSpace(t)
	lower := strings.ToLower(t)
	if t == "" || lower == "untitled" || strings.HasSuffix(lower, ".pdf") || strings.HasSuffix(lower, ".dvi") {
		return ""
	}
	return t
}

func specialRatio(s string) float64 {
	total, special := 0, 0
	for _, r := range s {
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != ' ' {
			special++
		}
	}
	if total == 0 {
		return 1
	}
	return float64(special) / float64(total)
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}
