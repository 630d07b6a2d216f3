package out

import (
	"context"
)

// =============================================================================
// Scoring Ports
// =============================================================================

// PatternReport is the result of heuristic pattern analysis.
type PatternReport struct {
	// Score is a 0-100 "looks like spam" estimate.
	Score float64 `json:"score"`
	// Reasons are human-readable findings ordered by contribution.
	Reasons []string `json:"reasons,omitempty"`
}

// PatternAnalyzer scores message text with deterministic heuristics
// (gibberish, repetition, numeric noise). Implementations may fail; callers
// treat failure as "no pattern signal".
type PatternAnalyzer interface {
	Analyze(ctx context.Context, text string) (*PatternReport, error)
}

// LearningScorer returns a 0-100 probability-like spam score from an adaptive
// model. It is the costliest signal and is consulted only when cheaper checks
// found nothing. Brand may be empty.
type LearningScorer interface {
	Score(ctx context.Context, text, brand string) (float64, error)

	// Train feeds a labeled example back into the model. Implementations that
	// cannot learn online may make this a no-op.
	Train(ctx context.Context, text, brand string, spam bool) error
}
