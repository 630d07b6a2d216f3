// Package llm provides a model-backed spam scorer using the OpenAI API.
package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	openai "github.com/sashabaranov/go-openai"
	"github.com/sony/gobreaker"

	"textclub_server/pkg/logger"
)

// =============================================================================
// OpenAI Learning Scorer
// =============================================================================

const DefaultModel = "gpt-4o-mini"

const systemPrompt = `You score short inbound customer text messages for spam likelihood.
Respond with a JSON object: {"score": <integer 0-100>}.
0 means certainly genuine customer content, 100 means certainly spam.
Consider obfuscated keywords, promotional language, suspicious links and gibberish.`

// Scorer scores messages with a chat completion call. Calls are wrapped in a
// circuit breaker so a degraded API cannot stall the capture pipeline.
type Scorer struct {
	client  *openai.Client
	model   string
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// Config for the scorer.
type Config struct {
	APIKey string
	Model  string
}

// NewScorer creates an OpenAI-backed scorer.
func NewScorer(cfg Config) *Scorer {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	log := logger.Default().WithField("component", "llm_scorer")

	cbSettings := gobreaker.Settings{
		Name:        "openai-scorer",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}

	return &Scorer{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		breaker: gobreaker.NewCircuitBreaker(cbSettings),
		log:     log,
	}
}

// Score asks the model for a 0-100 spam score.
func (s *Scorer) Score(ctx context.Context, text, brand string) (float64, error) {
	userPrompt := fmt.Sprintf("Brand: %s\nMessage: %s", brandOrAny(brand), text)

	result, err := s.breaker.Execute(func() (interface{}, error) {
		resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			MaxTokens:   32,
			Temperature: 0,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("empty completion")
		}
		return resp.Choices[0].Message.Content, nil
	})
	if err != nil {
		return 0, fmt.Errorf("llm scorer: %w", err)
	}

	var parsed struct {
		Score float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(result.(string)), &parsed); err != nil {
		return 0, fmt.Errorf("llm scorer: parse response: %w", err)
	}

	if parsed.Score < 0 {
		parsed.Score = 0
	}
	if parsed.Score > 100 {
		parsed.Score = 100
	}
	return parsed.Score, nil
}

// Train is a no-op. The hosted model does not take per-example updates;
// confirmed examples only feed the Redis model.
func (s *Scorer) Train(_ context.Context, _, _ string, _ bool) error {
	return nil
}

func brandOrAny(brand string) string {
	if strings.TrimSpace(brand) == "" {
		return "(none)"
	}
	return brand
}
