package analysis

import "unicode/utf8"

// CharsPerToken is the divisor used by EstimateTokens.
const CharsPerToken = 4

// EstimateTokens approximates the token count of s as characters / 4,
// rounded up so any non-empty text counts as at least one token.
// On English prose this lands within roughly 25% of a BPE tokenizer; it
// under-counts for code, numbers and non-Latin scripts. It is only used to
// bound prompt sizes, never for billing.
func EstimateTokens(s string) int {
	return (utf8.RuneCountInString(s) + CharsPerToken - 1) / CharsPerToken
}

// Preview returns at most n runes of s.
func Preview(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
