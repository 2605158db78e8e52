package utils

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// SplitSentences cuts text after runs of sentence-terminal punctuation
// (. ! ?) that are followed by whitespace or the end of the text.
func SplitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i
		for j+1 < len(runes) && isTerminal(runes[j+1]) {
			j++
		}
		if j+1 == len(runes) || unicode.IsSpace(runes[j+1]) {
			if s := strings.TrimSpace(string(runes[start : j+1])); s != "" {
				sentences = append(sentences, s)
			}
			start = j + 1
		}
		i = j
	}
	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}
	return sentences
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// SplitText splits text into chunks of about chunkSize characters on sentence
// boundaries. Each new chunk is seeded with up to overlap characters from the
// tail of the previous one. A chunk exceeds chunkSize by at most one sentence.
func SplitText(text string, chunkSize int, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 || utf8.RuneCountInString(text) <= chunkSize {
		return []string{text}
	}
	if overlap < 0 || overlap >= chunkSize {
		overlap = 0
	}

	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, sentence := range SplitSentences(text) {
		sentenceLen := utf8.RuneCountInString(sentence)
		if currentLen > 0 && currentLen+1+sentenceLen > chunkSize {
			closed := current.String()
			chunks = append(chunks, closed)

			current.Reset()
			currentLen = 0
			if tail := OverlapTail(closed, overlap); tail != "" {
				current.WriteString(tail)
				currentLen = utf8.RuneCountInString(tail)
			}
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(sentence)
		currentLen += sentenceLen
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}

// OverlapTail returns at most n trailing characters of s, starting on a word
// boundary when one is available.
func OverlapTail(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return strings.TrimSpace(s)
	}
	tail := runes[len(runes)-n:]
	for i, r := range tail {
		if unicode.IsSpace(r) {
			return strings.TrimSpace(string(tail[i:]))
		}
	}
	return strings.TrimSpace(string(tail))
}

// WordCount counts whitespace-separated fields.
func WordCount(s string) int {
	return len(strings.Fields(s))
}
