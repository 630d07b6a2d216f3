package spam

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"textclub_server/core/domain"
	"textclub_server/core/port/out"
)

// fakeAnalyzer returns a fixed report and counts calls.
type fakeAnalyzer struct {
	report *out.PatternReport
	err    error
	calls  int
}

func (f *fakeAnalyzer) Analyze(_ context.Context, _ string) (*out.PatternReport, error) {
	f.calls++
	return f.report, f.err
}

// fakeScorer returns a fixed score and counts calls.
type fakeScorer struct {
	score   float64
	err     error
	calls   int
	trained int
}

func (f *fakeScorer) Score(_ context.Context, _, _ string) (float64, error) {
	f.calls++
	return f.score, f.err
}

func (f *fakeScorer) Train(_ context.Context, _, _ string, _ bool) error {
	f.trained++
	return nil
}

func newMessage(text, brand string) *domain.Message {
	m := &domain.Message{
		ID:     uuid.New(),
		Status: domain.StatusReady,
	}
	if text != "" {
		m.Text = &text
	}
	if brand != "" {
		m.Brand = &brand
	}
	return m
}

// TestClassifyPhraseHit tests rule matching and hit provenance.
func TestClassifyPhraseHit(t *testing.T) {
	rules := []*domain.SpamRule{
		{ID: 1, Pattern: "unsubscribe", PatternNorm: "unsubscribe", Mode: domain.RuleModeContains, Enabled: true},
		{ID: 2, Pattern: "stop", PatternNorm: "stop", Mode: domain.RuleModeLone, Enabled: true},
		{ID: 3, Pattern: "prize", PatternNorm: "prize", Mode: domain.RuleModeContains, Enabled: false},
	}

	c := NewClassifier(nil, nil)
	v := c.Classify(context.Background(), newMessage("please unsubscribe me", ""), rules)

	if !v.PhraseHit {
		t.Fatal("expected phrase hit")
	}
	if len(v.Hits) != 1 || v.Hits[0] != "unsubscribe" {
		t.Errorf("Hits = %v, want [unsubscribe]", v.Hits)
	}
	if len(v.MatchedRuleIDs) != 1 || v.MatchedRuleIDs[0] != 1 {
		t.Errorf("MatchedRuleIDs = %v, want [1]", v.MatchedRuleIDs)
	}

	// Disabled rules never fire even on exact text.
	v = c.Classify(context.Background(), newMessage("claim your prize", ""), rules)
	if v.PhraseHit {
		t.Errorf("disabled rule fired: %v", v.Hits)
	}
}

// TestClassifyLearningShortCircuit tests that the learning scorer is skipped
// whenever a cheaper signal already fired.
func TestClassifyLearningShortCircuit(t *testing.T) {
	rules := []*domain.SpamRule{
		{ID: 1, Pattern: "unsubscribe", PatternNorm: "unsubscribe", Mode: domain.RuleModeContains, Enabled: true},
	}

	t.Run("phrase hit skips scorer", func(t *testing.T) {
		scorer := &fakeScorer{score: 99}
		c := NewClassifier(nil, scorer)

		v := c.Classify(context.Background(), newMessage("please unsubscribe me", ""), rules)
		if scorer.calls != 0 {
			t.Errorf("scorer called %d times, want 0", scorer.calls)
		}
		if v.LearningHit {
			t.Error("learning hit recorded despite short-circuit")
		}
	})

	t.Run("pattern hit skips scorer", func(t *testing.T) {
		analyzer := &fakeAnalyzer{report: &out.PatternReport{Score: 80, Reasons: []string{"gibberish"}}}
		scorer := &fakeScorer{score: 99}
		c := NewClassifier(analyzer, scorer)

		v := c.Classify(context.Background(), newMessage("xqzkt plrbw vnmch", ""), nil)
		if !v.PatternHit {
			t.Fatal("expected pattern hit")
		}
		if scorer.calls != 0 {
			t.Errorf("scorer called %d times, want 0", scorer.calls)
		}
	})

	t.Run("no cheaper signal consults scorer", func(t *testing.T) {
		analyzer := &fakeAnalyzer{report: &out.PatternReport{Score: 10}}
		scorer := &fakeScorer{score: 75}
		c := NewClassifier(analyzer, scorer)

		v := c.Classify(context.Background(), newMessage("hello there", ""), rules)
		if scorer.calls != 1 {
			t.Errorf("scorer called %d times, want 1", scorer.calls)
		}
		if !v.LearningHit {
			t.Error("expected learning hit at score 75")
		}
		if len(v.Hits) != 1 || v.Hits[0] != "Learning: 75%" {
			t.Errorf("Hits = %v, want [Learning: 75%%]", v.Hits)
		}
	})
}

// TestClassifyCollaboratorFailure tests that analyzer and scorer errors are
// treated as abstention.
func TestClassifyCollaboratorFailure(t *testing.T) {
	analyzer := &fakeAnalyzer{err: errors.New("analysis backend down")}
	scorer := &fakeScorer{err: errors.New("model unavailable")}
	c := NewClassifier(analyzer, scorer)

	v := c.Classify(context.Background(), newMessage("hello there", ""), nil)
	if len(v.Hits) != 0 {
		t.Errorf("Hits = %v, want empty on collaborator failure", v.Hits)
	}
	if v.PhraseHit || v.PatternHit || v.LearningHit {
		t.Error("no signal flags should be set on failure")
	}
	if analyzer.calls != 1 || scorer.calls != 1 {
		t.Errorf("calls analyzer=%d scorer=%d, want 1 and 1", analyzer.calls, scorer.calls)
	}
}

// TestClassifyThresholds tests inclusive threshold boundaries and overrides.
func TestClassifyThresholds(t *testing.T) {
	tests := []struct {
		name            string
		patternScore    float64
		learningScore   float64
		wantPatternHit  bool
		wantLearningHit bool
	}{
		{
			name:            "both exactly at default thresholds",
			patternScore:    50,
			learningScore:   60,
			wantPatternHit:  true,
			wantLearningHit: false, // pattern hit short-circuits
		},
		{
			name:            "both just below default thresholds",
			patternScore:    49.4,
			learningScore:   59.9,
			wantPatternHit:  false,
			wantLearningHit: false,
		},
		{
			name:            "learning at threshold when pattern abstains",
			patternScore:    0,
			learningScore:   60,
			wantPatternHit:  false,
			wantLearningHit: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			analyzer := &fakeAnalyzer{report: &out.PatternReport{Score: tt.patternScore}}
			scorer := &fakeScorer{score: tt.learningScore}
			c := NewClassifier(analyzer, scorer)

			v := c.Classify(context.Background(), newMessage("some message text", ""), nil)
			if v.PatternHit != tt.wantPatternHit {
				t.Errorf("PatternHit = %v, want %v", v.PatternHit, tt.wantPatternHit)
			}
			if v.LearningHit != tt.wantLearningHit {
				t.Errorf("LearningHit = %v, want %v", v.LearningHit, tt.wantLearningHit)
			}
		})
	}

	t.Run("overridden thresholds apply", func(t *testing.T) {
		analyzer := &fakeAnalyzer{report: &out.PatternReport{Score: 30}}
		c := NewClassifier(analyzer, nil).WithThresholds(25, 0)

		v := c.Classify(context.Background(), newMessage("some message text", ""), nil)
		if !v.PatternHit {
			t.Error("expected pattern hit at lowered threshold")
		}
	})
}

// TestClassifyEmptyText tests that blank messages are never classified.
func TestClassifyEmptyText(t *testing.T) {
	analyzer := &fakeAnalyzer{report: &out.PatternReport{Score: 100}}
	scorer := &fakeScorer{score: 100}
	c := NewClassifier(analyzer, scorer)

	v := c.Classify(context.Background(), newMessage("", ""), nil)
	if len(v.Hits) != 0 {
		t.Errorf("Hits = %v, want empty for blank text", v.Hits)
	}
	if analyzer.calls != 0 || scorer.calls != 0 {
		t.Errorf("collaborators called on blank text: analyzer=%d scorer=%d",
			analyzer.calls, scorer.calls)
	}
}

// TestFormatPatternHit tests provenance string rendering.
func TestFormatPatternHit(t *testing.T) {
	tests := []struct {
		name   string
		report *out.PatternReport
		want   string
	}{
		{
			name:   "score only",
			report: &out.PatternReport{Score: 78},
			want:   "Pattern: 78%",
		},
		{
			name:   "up to two reasons listed",
			report: &out.PatternReport{Score: 78, Reasons: []string{"gibberish", "repeated characters"}},
			want:   "Pattern: 78% (gibberish, repeated characters)",
		},
		{
			name:   "extra reasons trimmed",
			report: &out.PatternReport{Score: 91.4, Reasons: []string{"gibberish", "link noise", "numeric noise"}},
			want:   "Pattern: 91% (gibberish, link noise)",
		},
		{
			name:   "score rounds half up",
			report: &out.PatternReport{Score: 66.5},
			want:   "Pattern: 67%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatPatternHit(tt.report); got != tt.want {
				t.Errorf("formatPatternHit() = %q, want %q", got, tt.want)
			}
		})
	}
}
