package analyze

import (
	"context"
	"testing"
)

// TestAnalyzeSignals tests individual heuristic signals.
func TestAnalyzeSignals(t *testing.T) {
	a := NewHeuristicAnalyzer()

	tests := []struct {
		name        string
		text        string
		wantReason  string
		wantMinimum float64
	}{
		{
			name:        "shortened link",
			text:        "your package is waiting bit.ly/3xk2",
			wantReason:  "link noise",
			wantMinimum: scoreLinkNoise,
		},
		{
			name:        "plain url",
			text:        "visit https://example.com/deal today",
			wantReason:  "link noise",
			wantMinimum: scoreLinkNoise,
		},
		{
			name:        "character repetition",
			text:        "winnnnner announced today",
			wantReason:  "character repetition",
			wantMinimum: scoreCharRepetition,
		},
		{
			name:        "numeric noise",
			text:        "call 18005550199 immediately",
			wantReason:  "numeric noise",
			wantMinimum: scoreNumericNoise,
		},
		{
			name:        "word repetition",
			text:        "buy buy buy today",
			wantReason:  "word repetition",
			wantMinimum: scoreWordRepetition,
		},
		{
			name:        "gibberish",
			text:        "xqzkt plrbw vnmch",
			wantReason:  "gibberish",
			wantMinimum: scoreGibberish,
		},
		{
			name:        "excessive capitalization",
			text:        "CONGRATULATIONS YOU ARE SELECTED",
			wantReason:  "excessive capitalization",
			wantMinimum: scoreShoutyCaps,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := a.Analyze(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("Analyze() error: %v", err)
			}
			if report.Score < tt.wantMinimum {
				t.Errorf("Score = %v, want >= %v", report.Score, tt.wantMinimum)
			}
			found := false
			for _, r := range report.Reasons {
				if r == tt.wantReason {
					found = true
				}
			}
			if !found {
				t.Errorf("Reasons = %v, want to include %q", report.Reasons, tt.wantReason)
			}
		})
	}
}

// TestAnalyzeCleanText tests that ordinary messages score low.
func TestAnalyzeCleanText(t *testing.T) {
	a := NewHeuristicAnalyzer()

	clean := []string{
		"Hi, can you confirm my appointment for tomorrow at 3pm?",
		"Thanks for the quick reply, see you then.",
		"My order arrived damaged, what are my options?",
	}

	for _, text := range clean {
		report, err := a.Analyze(context.Background(), text)
		if err != nil {
			t.Fatalf("Analyze(%q) error: %v", text, err)
		}
		if report.Score >= 50 {
			t.Errorf("Analyze(%q).Score = %v (%v), want < 50",
				text, report.Score, report.Reasons)
		}
	}
}

// TestAnalyzeEmptyText tests the zero case.
func TestAnalyzeEmptyText(t *testing.T) {
	a := NewHeuristicAnalyzer()

	for _, text := range []string{"", "   ", "\n\t"} {
		report, err := a.Analyze(context.Background(), text)
		if err != nil {
			t.Fatalf("Analyze(%q) error: %v", text, err)
		}
		if report.Score != 0 || len(report.Reasons) != 0 {
			t.Errorf("Analyze(%q) = %v %v, want 0 with no reasons",
				text, report.Score, report.Reasons)
		}
	}
}

// TestAnalyzeScoreClamp tests that stacked signals never exceed 100 and that
// reasons come ordered from strongest to weakest.
func TestAnalyzeScoreClamp(t *testing.T) {
	a := NewHeuristicAnalyzer()

	// Link, character run, digit run, word repetition, gibberish and caps in
	// one message.
	text := "WWWIN WWWIN WWWIN XXXXX 18005550199 WWW.SPAM.EXAMPLE ZZZZTK QQQQPL"
	report, err := a.Analyze(context.Background(), text)
	if err != nil {
		t.Fatalf("Analyze() error: %v", err)
	}

	if report.Score != 100 {
		t.Errorf("Score = %v, want clamped to 100", report.Score)
	}
	if len(report.Reasons) < 4 {
		t.Fatalf("Reasons = %v, want at least 4 signals", report.Reasons)
	}
	if report.Reasons[0] != "gibberish" {
		t.Errorf("strongest reason = %q, want gibberish first", report.Reasons[0])
	}
}
