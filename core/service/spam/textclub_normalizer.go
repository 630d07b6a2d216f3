// Package spam implements the spam classification and capture pipeline:
// phrase-rule matching, heuristic pattern scoring, learning-based scoring and
// the race-safe batch status transition that ties them together.
package spam

import (
	"strings"
	"unicode"
)

// =============================================================================
// Text Normalization
// =============================================================================

// Normalize lowercases text, removes every rune that is not a Unicode letter,
// digit or whitespace, collapses whitespace runs to a single space and trims.
// Total over all inputs; the empty string normalizes to itself.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))

	pendingSpace := false
	for _, r := range strings.ToLower(text) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if pendingSpace && b.Len() > 0 {
				b.WriteByte(' ')
			}
			pendingSpace = false
			b.WriteRune(r)
		}
		// Punctuation and symbols are dropped without leaving a gap, so
		// "can't" normalizes to "cant", not "can t".
	}

	return b.String()
}

// =============================================================================
// Positional Similarity
// =============================================================================

// similarity scores two strings in [0,1] by positional character mismatch:
// 1 - (mismatches + lengthDelta) / maxLen, where mismatches counts differing
// runes at the same index over the shorter string.
//
// This is deliberately NOT an edit distance. A single leading insertion shifts
// every position and tanks the score. The keyword-classification threshold
// below was tuned against this exact behavior; do not swap in a smarter
// metric.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	maxLen, minLen := la, lb
	if lb > la {
		maxLen, minLen = lb, la
	}
	if maxLen == 0 {
		return 1
	}

	mismatches := 0
	for i := 0; i < minLen; i++ {
		if ra[i] != rb[i] {
			mismatches++
		}
	}

	return 1 - float64(mismatches+(maxLen-minLen))/float64(maxLen)
}
