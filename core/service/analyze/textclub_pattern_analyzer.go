// Package analyze implements the heuristic spam pattern analyzer.
package analyze

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"textclub_server/core/port/out"
)

// =============================================================================
// Heuristic Pattern Analyzer
// =============================================================================

// Signal weights. Each signal contributes to a 0-100 total; the sum is
// clamped at 100.
const (
	scoreGibberish      = 35.0
	scoreCharRepetition = 25.0
	scoreWordRepetition = 25.0
	scoreNumericNoise   = 20.0
	scoreLinkNoise      = 30.0
	scoreShoutyCaps     = 15.0
	scoreExcessSymbols  = 15.0
)

var (
	urlPattern      = regexp.MustCompile(`(?i)(https?://|www\.|bit\.ly/|tinyurl\.)\S*`)
	digitRunPattern = regexp.MustCompile(`\d{6,}`)
)

// HeuristicAnalyzer scores message text against a fixed set of spam-shaped
// signals. It is deterministic and performs no I/O.
type HeuristicAnalyzer struct{}

// NewHeuristicAnalyzer creates a new heuristic analyzer.
func NewHeuristicAnalyzer() *HeuristicAnalyzer {
	return &HeuristicAnalyzer{}
}

type signal struct {
	reason string
	weight float64
}

// Analyze returns a 0-100 spam-likeness score with the contributing reasons
// ordered from strongest to weakest.
func (a *HeuristicAnalyzer) Analyze(_ context.Context, text string) (*out.PatternReport, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return &out.PatternReport{Score: 0, Reasons: nil}, nil
	}

	var signals []signal

	if urlPattern.MatchString(trimmed) {
		signals = append(signals, signal{reason: "link noise", weight: scoreLinkNoise})
	}
	if hasCharRun(strings.ToLower(trimmed)) {
		signals = append(signals, signal{reason: "character repetition", weight: scoreCharRepetition})
	}
	if digitRunPattern.MatchString(trimmed) {
		signals = append(signals, signal{reason: "numeric noise", weight: scoreNumericNoise})
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if hasWordRepetition(words) {
		signals = append(signals, signal{reason: "word repetition", weight: scoreWordRepetition})
	}
	if gibberishRatio(words) >= 0.5 {
		signals = append(signals, signal{reason: "gibberish", weight: scoreGibberish})
	}
	if isShouty(trimmed) {
		signals = append(signals, signal{reason: "excessive capitalization", weight: scoreShoutyCaps})
	}
	if symbolRatio(trimmed) >= 0.3 {
		signals = append(signals, signal{reason: "symbol noise", weight: scoreExcessSymbols})
	}

	sort.SliceStable(signals, func(i, j int) bool {
		return signals[i].weight > signals[j].weight
	})

	total := 0.0
	reasons := make([]string, 0, len(signals))
	for _, s := range signals {
		total += s.weight
		reasons = append(reasons, s.reason)
	}
	if total > 100 {
		total = 100
	}

	return &out.PatternReport{Score: total, Reasons: reasons}, nil
}

// hasWordRepetition reports whether any word makes up a third or more of a
// message with at least three words.
// hasCharRun reports whether s contains the same character repeated four or
// more times in a row. Newlines do not form runs, matching the dot-excludes-
// newline behavior of the `(.)\1{3,}` pattern this replaces (Go's RE2 engine
// does not support backreferences).
func hasCharRun(s string) bool {
	var prev rune
	run := 0
	for _, r := range s {
		if r == prev && r != '\n' {
			run++
			if run >= 4 {
				return true
			}
		} else {
			prev = r
			run = 1
		}
	}
	return false
}

func hasWordRepetition(words []string) bool {
	if len(words) < 3 {
		return false
	}
	counts := make(map[string]int, len(words))
	for _, w := range words {
		counts[w]++
		if counts[w]*3 >= len(words) && counts[w] >= 3 {
			return true
		}
	}
	return false
}

// gibberishRatio returns the fraction of alphabetic words that look like
// keyboard mash (long consonant runs or no vowels at all).
func gibberishRatio(words []string) float64 {
	alphabetic := 0
	gibberish := 0
	for _, w := range words {
		if !isAlphabetic(w) || len(w) < 4 {
			continue
		}
		alphabetic++
		if looksGibberish(w) {
			gibberish++
		}
	}
	if alphabetic == 0 {
		return 0
	}
	return float64(gibberish) / float64(alphabetic)
}

func isAlphabetic(w string) bool {
	for _, r := range w {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return len(w) > 0
}

// looksGibberish flags words with a run of 4+ consonants or with no vowels.
func looksGibberish(w string) bool {
	run := 0
	vowels := 0
	for _, r := range w {
		switch r {
		case 'a', 'e', 'i', 'o', 'u':
			vowels++
			run = 0
		default:
			run++
			if run >= 4 {
				return true
			}
		}
	}
	return vowels == 0
}

// isShouty reports whether a mostly-alphabetic message of nontrivial length
// is written mostly in capitals.
func isShouty(text string) bool {
	letters := 0
	uppers := 0
	for _, r := range text {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				uppers++
			}
		}
	}
	if letters < 10 {
		return false
	}
	return float64(uppers)/float64(letters) >= 0.7
}

// symbolRatio returns the fraction of non-space runes that are neither
// letters nor digits.
func symbolRatio(text string) float64 {
	total := 0
	symbols := 0
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		total++
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			symbols++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(symbols) / float64(total)
}
