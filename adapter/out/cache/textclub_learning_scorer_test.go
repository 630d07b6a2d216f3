package cache

import (
	"math"
	"testing"
)

// TestTokenize tests token extraction for the counter model.
func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "normalizes and splits",
			in:   "Claim your FREE prize!",
			want: []string{"claim", "your", "free", "prize"},
		},
		{
			name: "duplicates collapse",
			in:   "buy buy buy now",
			want: []string{"buy", "now"},
		},
		{
			name: "single-rune tokens dropped",
			in:   "a b claim",
			want: []string{"claim"},
		},
		{
			name: "empty text yields no tokens",
			in:   "  !!!  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tokenize(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("tokenize(%q) = %v, want %v", tt.in, got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("tokenize(%q)[%d] = %q, want %q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestPrior tests the smoothed class prior.
func TestPrior(t *testing.T) {
	tests := []struct {
		name  string
		self  float64
		other float64
		want  float64
	}{
		{"no examples is neutral", 0, 0, 0.5},
		{"balanced classes stay neutral", 10, 10, 0.5},
		{"dominant class approaches one", 98, 0, 0.99},
		{"smoothing keeps zero class above zero", 0, 98, 0.01},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := prior(tt.self, tt.other)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("prior(%v, %v) = %v, want %v", tt.self, tt.other, got, tt.want)
			}
		})
	}
}

// TestCounterAt tests tolerant counter parsing of HMGET replies.
func TestCounterAt(t *testing.T) {
	vals := []interface{}{"12", nil, "not-a-number", "3.5"}

	tests := []struct {
		name string
		i    int
		want float64
	}{
		{"numeric string", 0, 12},
		{"missing field", 1, 0},
		{"garbage value", 2, 0},
		{"float string", 3, 3.5},
		{"out of range", 9, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := counterAt(vals, tt.i); got != tt.want {
				t.Errorf("counterAt(vals, %d) = %v, want %v", tt.i, got, tt.want)
			}
		})
	}
}

// TestModelKey tests brand scoping of counter keys.
func TestModelKey(t *testing.T) {
	s := &RedisLearningScorer{prefix: "spam:model"}

	if got := s.key("Acme", "spam"); got != "spam:model:acme:spam" {
		t.Errorf("key(Acme, spam) = %q", got)
	}
	if got := s.key("", "ham"); got != "spam:model:_global:ham" {
		t.Errorf("key(empty, ham) = %q", got)
	}
	if got := s.key("  Acme  ", "spam"); got != "spam:model:acme:spam" {
		t.Errorf("key with padding = %q", got)
	}
}
