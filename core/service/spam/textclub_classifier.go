package spam

import (
	"context"
	"fmt"
	"math"
	"strings"

	"textclub_server/core/domain"
	"textclub_server/core/port/out"
	"textclub_server/pkg/logger"
)

// =============================================================================
// Classification Orchestrator
// =============================================================================

const (
	// patternScoreThreshold: pattern analysis counts as a spam signal at or
	// above this 0-100 score.
	patternScoreThreshold = 50

	// learningScoreThreshold: the learning model counts as a spam signal at
	// or above this 0-100 score.
	learningScoreThreshold = 60
)

// Verdict is the outcome of classifying one message. Empty Hits means
// "not spam". Hits double as provenance: each entry records why the message
// was flagged, in the order the signals fired.
type Verdict struct {
	Hits           []string
	MatchedRuleIDs []int64

	// Per-source flags for run tallies.
	PhraseHit   bool
	PatternHit  bool
	LearningHit bool
}

// Classifier merges phrase rules, heuristic pattern analysis and the learning
// scorer into a single verdict per message. Rule and pattern checks are cheap
// and always run; the learning scorer is consulted only when they found
// nothing, bounding average latency.
type Classifier struct {
	analyzer out.PatternAnalyzer
	scorer   out.LearningScorer
	log      *logger.Logger

	patternThreshold  float64
	learningThreshold float64
}

// NewClassifier creates a classifier. Either collaborator may be nil, in
// which case its signal simply abstains.
func NewClassifier(analyzer out.PatternAnalyzer, scorer out.LearningScorer) *Classifier {
	return &Classifier{
		analyzer:          analyzer,
		scorer:            scorer,
		log:               logger.WithField("component", "spam_classifier"),
		patternThreshold:  patternScoreThreshold,
		learningThreshold: learningScoreThreshold,
	}
}

// WithThresholds overrides the default signal thresholds. Non-positive values
// keep the defaults.
func (c *Classifier) WithThresholds(pattern, learning float64) *Classifier {
	if pattern > 0 {
		c.patternThreshold = pattern
	}
	if learning > 0 {
		c.learningThreshold = learning
	}
	return c
}

// Classify runs one message against all enabled rules, then pattern analysis,
// then (only if nothing matched yet) the learning scorer. Collaborator
// failures are logged and treated as abstention; Classify itself never fails.
func (c *Classifier) Classify(ctx context.Context, msg *domain.Message, rules []*domain.SpamRule) *Verdict {
	v := &Verdict{}

	brand := msg.BrandValue()
	text := msg.TextValue()

	for _, rule := range rules {
		if !rule.Enabled {
			continue
		}
		if MatchesRule(rule, brand, text) {
			v.Hits = append(v.Hits, rule.Pattern)
			v.MatchedRuleIDs = append(v.MatchedRuleIDs, rule.ID)
			v.PhraseHit = true
		}
	}

	if text != "" && c.analyzer != nil {
		report, err := c.analyzer.Analyze(ctx, text)
		switch {
		case err != nil:
			c.log.WithError(err).WithField("message_id", msg.ID.String()).
				Warn("pattern analysis failed, treating as no signal")
		case report != nil && report.Score >= c.patternThreshold:
			v.Hits = append(v.Hits, formatPatternHit(report))
			v.PatternHit = true
		}
	}

	if len(v.Hits) == 0 && text != "" && c.scorer != nil {
		score, err := c.scorer.Score(ctx, text, brand)
		switch {
		case err != nil:
			c.log.WithError(err).WithField("message_id", msg.ID.String()).
				Warn("learning score failed, treating as no signal")
		case score >= c.learningThreshold:
			v.Hits = append(v.Hits, fmt.Sprintf("Learning: %d%%", int(math.Round(score))))
			v.LearningHit = true
		}
	}

	return v
}

// formatPatternHit renders a pattern signal as provenance, e.g.
// "Pattern: 78% (gibberish, repeated characters)".
func formatPatternHit(report *out.PatternReport) string {
	score := int(math.Round(report.Score))
	reasons := report.Reasons
	if len(reasons) > 2 {
		reasons = reasons[:2]
	}
	if len(reasons) == 0 {
		return fmt.Sprintf("Pattern: %d%%", score)
	}
	return fmt.Sprintf("Pattern: %d%% (%s)", score, strings.Join(reasons, ", "))
}
