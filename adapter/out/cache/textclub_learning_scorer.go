// Package cache provides Redis-backed adapters.
package cache

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"textclub_server/core/service/spam"
)

// =============================================================================
// Redis Learning Scorer
// =============================================================================

const (
	tokenCountField = "__total__"

	// Laplace smoothing constant for unseen tokens.
	smoothing = 1.0
)

// RedisLearningScorer keeps per-token spam and ham counters in Redis hashes
// and scores messages with a naive Bayes style probability. Counters are
// brand-scoped so one customer's vocabulary does not bleed into another's.
type RedisLearningScorer struct {
	client *redis.Client
	prefix string
}

// NewRedisLearningScorer creates a scorer backed by the given Redis client.
func NewRedisLearningScorer(client *redis.Client) *RedisLearningScorer {
	return &RedisLearningScorer{client: client, prefix: "spam:model"}
}

func (s *RedisLearningScorer) key(brand, class string) string {
	b := strings.ToLower(strings.TrimSpace(brand))
	if b == "" {
		b = "_global"
	}
	return fmt.Sprintf("%s:%s:%s", s.prefix, b, class)
}

// Score returns a 0-100 spam probability for the message text. Unknown
// tokens contribute a neutral prior, so an untrained model scores near 50
// only when the text is non-empty and near 0 when it is blank.
func (s *RedisLearningScorer) Score(ctx context.Context, text, brand string) (float64, error) {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return 0, nil
	}

	spamKey := s.key(brand, "spam")
	hamKey := s.key(brand, "ham")

	fields := append([]string{tokenCountField}, tokens...)
	spamVals, err := s.client.HMGet(ctx, spamKey, fields...).Result()
	if err != nil {
		return 0, fmt.Errorf("learning scorer: read spam counters: %w", err)
	}
	hamVals, err := s.client.HMGet(ctx, hamKey, fields...).Result()
	if err != nil {
		return 0, fmt.Errorf("learning scorer: read ham counters: %w", err)
	}

	spamTotal := counterAt(spamVals, 0)
	hamTotal := counterAt(hamVals, 0)
	if spamTotal == 0 && hamTotal == 0 {
		// Untrained model abstains.
		return 0, nil
	}

	// Log-domain naive Bayes over tokens with Laplace smoothing.
	logSpam := math.Log(prior(spamTotal, hamTotal))
	logHam := math.Log(prior(hamTotal, spamTotal))
	for i := range tokens {
		sc := counterAt(spamVals, i+1)
		hc := counterAt(hamVals, i+1)
		logSpam += math.Log((sc + smoothing) / (spamTotal + smoothing*2))
		logHam += math.Log((hc + smoothing) / (hamTotal + smoothing*2))
	}

	// Normalize via log-sum-exp to avoid underflow on long messages.
	max := math.Max(logSpam, logHam)
	pSpam := math.Exp(logSpam - max)
	pHam := math.Exp(logHam - max)
	return 100 * pSpam / (pSpam + pHam), nil
}

// Train records a confirmed example in the brand-scoped model.
func (s *RedisLearningScorer) Train(ctx context.Context, text, brand string, isSpam bool) error {
	tokens := tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	class := "ham"
	if isSpam {
		class = "spam"
	}
	key := s.key(brand, class)

	pipe := s.client.Pipeline()
	pipe.HIncrBy(ctx, key, tokenCountField, 1)
	for _, tok := range tokens {
		pipe.HIncrBy(ctx, key, tok, 1)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("learning scorer: train %s model: %w", class, err)
	}
	return nil
}

// prior returns a smoothed class prior from the per-class example totals.
func prior(self, other float64) float64 {
	return (self + smoothing) / (self + other + smoothing*2)
}

func counterAt(vals []interface{}, i int) float64 {
	if i >= len(vals) || vals[i] == nil {
		return 0
	}
	str, ok := vals[i].(string)
	if !ok {
		return 0
	}
	n, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0
	}
	return n
}

// tokenize normalizes the text and deduplicates its tokens. Presence, not
// frequency, is what the counters track.
func tokenize(text string) []string {
	fields := strings.Fields(spam.Normalize(text))
	seen := make(map[string]struct{}, len(fields))
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		if len(f) < 2 {
			continue
		}
		if _, ok := seen[f]; ok {
			continue
		}
		seen[f] = struct{}{}
		tokens = append(tokens, f)
	}
	return tokens
}
