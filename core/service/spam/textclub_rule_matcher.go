package spam

import (
	"regexp"
	"strings"

	"textclub_server/core/domain"
	"textclub_server/pkg/fuzzy"
)

// =============================================================================
// Rule Matcher
// =============================================================================

const (
	// singleTokenFuzzyThreshold applies to fuzzy containment of a single
	// obfuscation-prone keyword inside the message.
	singleTokenFuzzyThreshold = 0.70

	// phraseFuzzyThreshold applies to fuzzy containment of a multi-token
	// phrase after the word-boundary regexp failed.
	phraseFuzzyThreshold = 0.75

	// keywordSimilarityThreshold decides whether a single-token pattern is a
	// variant of a curated obfuscation keyword and therefore eligible for
	// fuzzy matching at all.
	keywordSimilarityThreshold = 0.5
)

// obfuscationKeywords are short spam keywords that senders routinely obfuscate
// ("fr3e", "w1n"). Only patterns resembling one of these are ever
// fuzzy-matched; everything else is exact-only to keep false positives down.
var obfuscationKeywords = []string{
	"unlock", "claim", "win", "free", "urgent",
	"prize", "winner", "reward", "cash", "gift",
}

// MatchesRule decides whether a single rule applies to a message. Pure and
// total over all inputs including empty brand and text.
func MatchesRule(rule *domain.SpamRule, messageBrand, messageText string) bool {
	if rule == nil {
		return false
	}

	// Brand scoping: a brand-bound rule only applies to messages of that
	// brand, compared after normalization so casing and punctuation differ.
	if rule.Brand != nil {
		if Normalize(*rule.Brand) != Normalize(messageBrand) {
			return false
		}
	}

	text := Normalize(messageText)
	pattern := rule.PatternNorm
	if pattern == "" {
		pattern = rule.Pattern
	}
	pattern = Normalize(pattern)

	if text == "" || pattern == "" {
		return false
	}

	if rule.Mode == domain.RuleModeLone {
		return text == pattern
	}

	tokens := strings.Fields(pattern)
	if len(tokens) == 1 {
		return matchSingleToken(text, pattern)
	}
	return matchPhrase(text, pattern)
}

// matchSingleToken matches a one-word pattern on word boundaries, falling back
// to per-token fuzzy comparison only for curated obfuscation keywords.
func matchSingleToken(text, pattern string) bool {
	for _, tok := range strings.Fields(text) {
		if tok == pattern {
			return true
		}
	}

	if !isFuzzyEligible(pattern) {
		return false
	}

	// Fuzzy matching stays word-bounded: each whole token is compared
	// against the pattern. A longer word that merely embeds the keyword as
	// an exact substring ("twin" for "win", "winner" for "win") is not an
	// obfuscation and never counts.
	for _, tok := range strings.Fields(text) {
		if len(tok) > len(pattern) && strings.Contains(tok, pattern) {
			continue
		}
		if fuzzy.Ratio(tok, pattern) >= singleTokenFuzzyThreshold {
			return true
		}
	}
	return false
}

// matchPhrase matches a multi-token pattern as a literal word-bounded phrase,
// then falls back to fuzzy containment.
func matchPhrase(text, pattern string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(pattern) + `\b`)
	if err == nil && re.MatchString(text) {
		return true
	}

	return fuzzy.Contains(text, pattern, phraseFuzzyThreshold)
}

// isFuzzyEligible reports whether a single-token pattern should be considered
// for fuzzy matching: it must resemble a curated obfuscation keyword and must
// not look like an incidental typo.
func isFuzzyEligible(pattern string) bool {
	if looksLikeTypo(pattern) {
		return false
	}
	for _, kw := range obfuscationKeywords {
		if pattern == kw || similarity(pattern, kw) >= keywordSimilarityThreshold {
			return true
		}
	}
	return false
}

// looksLikeTypo flags short consonant-heavy tokens ("fodd", "frre") that are
// more plausibly typos of ordinary words than obfuscated spam keywords.
// Heuristic: length <= 4 and a run of >= 3 consecutive non-vowel runes.
func looksLikeTypo(pattern string) bool {
	runes := []rune(pattern)
	if len(runes) > 4 {
		return false
	}

	run := 0
	for _, r := range runes {
		if isVowel(r) {
			run = 0
			continue
		}
		run++
		if run >= 3 {
			return true
		}
	}
	return false
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}
