// Package fuzzy provides a generic fuzzy-substring matcher based on
// normalized Levenshtein similarity over sliding windows.
package fuzzy

// Ratio returns the Levenshtein similarity of a and b in [0,1]:
// 1 - distance/maxLen. Identical strings score 1; two empty strings score 1.
func Ratio(a, b string) float64 {
	if a == b {
		return 1
	}

	ra, rb := []rune(a), []rune(b)
	maxLen := len(ra)
	if len(rb) > maxLen {
		maxLen = len(rb)
	}
	if maxLen == 0 {
		return 1
	}

	return 1 - float64(distance(ra, rb))/float64(maxLen)
}

// Contains reports whether needle appears inside haystack with at least the
// given similarity threshold. Exact substrings always match; otherwise windows
// of needle's length (+/-1) are slid across haystack and compared by Ratio.
func Contains(haystack, needle string, threshold float64) bool {
	if needle == "" || haystack == "" {
		return false
	}

	h, n := []rune(haystack), []rune(needle)
	if len(h) <= len(n) {
		return Ratio(haystack, needle) >= threshold
	}

	for size := len(n) - 1; size <= len(n)+1; size++ {
		if size < 1 || size > len(h) {
			continue
		}
		for i := 0; i+size <= len(h); i++ {
			if ratioRunes(h[i:i+size], n) >= threshold {
				return true
			}
		}
	}

	return false
}

func ratioRunes(a, b []rune) float64 {
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	if maxLen == 0 {
		return 1
	}
	return 1 - float64(distance(a, b))/float64(maxLen)
}

// distance computes the Levenshtein edit distance with a two-row table.
func distance(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = minInt(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

func minInt(a, b, c int) int {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
