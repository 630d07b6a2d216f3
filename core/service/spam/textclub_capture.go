package spam

import (
	"context"
	"sync/atomic"
	"time"

	"textclub_server/core/domain"
	"textclub_server/core/port/out"
	"textclub_server/pkg/apperr"
	"textclub_server/pkg/logger"
	"textclub_server/pkg/metrics"

	"github.com/go-pkgz/pool"
	"github.com/google/uuid"
)

// =============================================================================
// Batch Capture Coordinator
// =============================================================================

// CaptureConfig bounds a single capture run.
type CaptureConfig struct {
	// WindowSize caps how many READY messages one run considers, newest
	// first. Whatever the window misses stays READY for the next run.
	WindowSize int

	// ChunkSize bounds how many messages are classified per sub-batch.
	ChunkSize int

	// ProvenanceConcurrency bounds the parallel provenance writes of step
	// two, and the per-row fallback updates when the bulk update fails.
	ProvenanceConcurrency int
}

// DefaultCaptureConfig returns the defaults.
func DefaultCaptureConfig() *CaptureConfig {
	return &CaptureConfig{
		WindowSize:            1000,
		ChunkSize:             100,
		ProvenanceConcurrency: 10,
	}
}

// MatchedBy tallies flagged messages per signal source. A message can count
// toward both phrase and pattern.
type MatchedBy struct {
	Phrase   int `json:"phrase"`
	Pattern  int `json:"pattern"`
	Learning int `json:"learning"`
}

// CaptureReport is the outcome of one capture run.
type CaptureReport struct {
	UpdatedCount           int64     `json:"updated_count"`
	TotalInQueue           int       `json:"total_in_queue"`
	RemainingInQueue       int       `json:"remaining_in_queue"`
	Processed              int       `json:"processed"`
	MatchedBy              MatchedBy `json:"matched_by"`
	ValidationBlockedCount int       `json:"validation_blocked_count"`
	DurationMs             int64     `json:"duration_ms"`
}

// candidate is a message that classified as spam and passed transition
// validation against its fetched status.
type candidate struct {
	id      uuid.UUID
	hits    []string
	text    string
	brand   string
	ruleIDs []int64
	phrase  bool
}

// CaptureService drives one end-to-end capture run: load rules, classify a
// bounded window of READY messages, flip them to SPAM_REVIEW with a
// conditional bulk update, then attach provenance in a second bounded pass.
//
// Concurrent runs, and the independent promotion pipeline, are tolerated
// purely through compare-and-swap writes; no locks are taken and a message is
// never blindly overwritten.
type CaptureService struct {
	messages   out.MessageRepository
	rules      out.SpamRuleRepository
	classifier *Classifier
	scorer     out.LearningScorer
	config     *CaptureConfig
	latency    *metrics.LatencyTracker
	log        *logger.Logger
}

// NewCaptureService creates a capture service. scorer may be nil; it is used
// only for best-effort model training on confirmed phrase hits.
func NewCaptureService(
	messages out.MessageRepository,
	rules out.SpamRuleRepository,
	classifier *Classifier,
	scorer out.LearningScorer,
	config *CaptureConfig,
) *CaptureService {
	if config == nil {
		config = DefaultCaptureConfig()
	}
	return &CaptureService{
		messages:   messages,
		rules:      rules,
		classifier: classifier,
		scorer:     scorer,
		config:     config,
		latency:    metrics.NewLatencyTracker(256),
		log:        logger.WithField("component", "spam_capture"),
	}
}

// Latency exposes run duration statistics for the health endpoint.
func (s *CaptureService) Latency() metrics.LatencyStats {
	return s.latency.Stats()
}

// Run executes one capture run and returns its report. Unexpected load or
// classification failures abort the run; progress already committed by the
// bulk update stays committed (at-least-once, safe because classification is
// idempotent and skipped messages remain READY).
func (s *CaptureService) Run(ctx context.Context) (*CaptureReport, error) {
	start := time.Now()

	enabled, err := s.rules.ListEnabled(ctx)
	if err != nil {
		return nil, apperr.DatabaseError("load spam rules", err)
	}

	total, err := s.messages.CountByStatus(ctx, domain.StatusReady)
	if err != nil {
		return nil, apperr.DatabaseError("count ready messages", err)
	}

	window, err := s.messages.FindReadyOrderedByCreatedDesc(ctx, s.config.WindowSize)
	if err != nil {
		return nil, apperr.DatabaseError("load ready messages", err)
	}

	s.log.WithFields(map[string]any{
		"rules":       len(enabled),
		"total_ready": total,
		"window":      len(window),
		"window_size": s.config.WindowSize,
		"chunk_size":  s.config.ChunkSize,
	}).Info("capture run started")

	report := &CaptureReport{TotalInQueue: total}
	var candidates []*candidate

	for chunkStart := 0; chunkStart < len(window); chunkStart += s.config.ChunkSize {
		chunkEnd := chunkStart + s.config.ChunkSize
		if chunkEnd > len(window) {
			chunkEnd = len(window)
		}
		chunk := window[chunkStart:chunkEnd]

		for _, msg := range chunk {
			report.Processed++

			verdict := s.classifier.Classify(ctx, msg, enabled)
			if len(verdict.Hits) == 0 {
				continue
			}

			if verdict.PhraseHit {
				report.MatchedBy.Phrase++
			}
			if verdict.PatternHit {
				report.MatchedBy.Pattern++
			}
			if verdict.LearningHit {
				report.MatchedBy.Learning++
			}

			// Validate against the fetched status. A message that some other
			// process already moved is skipped, not an error.
			if err := domain.ValidateTransition(msg.Status, domain.StatusSpamReview); err != nil {
				report.ValidationBlockedCount++
				s.log.WithField("message_id", msg.ID.String()).WithError(err).
					Info("transition blocked, skipping message")
				continue
			}

			candidates = append(candidates, &candidate{
				id:      msg.ID,
				hits:    verdict.Hits,
				text:    msg.TextValue(),
				brand:   msg.BrandValue(),
				ruleIDs: verdict.MatchedRuleIDs,
				phrase:  verdict.PhraseHit,
			})
		}

		s.log.WithFields(map[string]any{
			"chunk_end":  chunkEnd,
			"candidates": len(candidates),
		}).Debug("chunk classified")
	}

	report.UpdatedCount = s.transition(ctx, candidates)
	if report.UpdatedCount < int64(len(candidates)) {
		// Expected race: a concurrent writer moved some rows between our
		// read and the conditional update. Their status wins.
		s.log.WithFields(map[string]any{
			"candidates": len(candidates),
			"updated":    report.UpdatedCount,
		}).Info("some candidates were transitioned concurrently, skipped")
	}

	attached := s.attachProvenance(ctx, candidates)

	remaining := total - int(report.UpdatedCount)
	if remaining < 0 {
		remaining = 0
	}
	report.RemainingInQueue = remaining

	elapsed := time.Since(start)
	s.latency.Record(elapsed)
	report.DurationMs = elapsed.Milliseconds()

	s.log.WithFields(map[string]any{
		"processed":          report.Processed,
		"updated":            report.UpdatedCount,
		"provenance_written": attached,
		"blocked":            report.ValidationBlockedCount,
		"matched_phrase":     report.MatchedBy.Phrase,
		"matched_pattern":    report.MatchedBy.Pattern,
		"matched_learning":   report.MatchedBy.Learning,
		"remaining":          report.RemainingInQueue,
	}).WithDuration(elapsed).Info("capture run finished")

	return report, nil
}

// transition flips all candidates READY -> SPAM_REVIEW in one conditional bulk
// update. The affected-row count is the authoritative success count. If the
// bulk statement itself fails, it falls back to per-row conditional updates.
func (s *CaptureService) transition(ctx context.Context, candidates []*candidate) int64 {
	if len(candidates) == 0 {
		return 0
	}

	ids := make([]uuid.UUID, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}

	updated, err := s.messages.ConditionalBulkUpdateStatus(ctx, ids, domain.StatusReady, domain.StatusSpamReview)
	if err == nil {
		return updated
	}

	s.log.WithError(err).Warn("bulk status update failed, falling back to per-row updates")
	return s.transitionPerRow(ctx, ids)
}

// rowUpdateWorker performs one guarded per-row status flip (fallback path).
type rowUpdateWorker struct {
	svc     *CaptureService
	updated *atomic.Int64
}

func (w *rowUpdateWorker) Do(ctx context.Context, id uuid.UUID) error {
	ok, err := w.svc.messages.ConditionalUpdateStatus(ctx, id, domain.StatusReady, domain.StatusSpamReview)
	if err != nil {
		w.svc.log.WithError(err).WithField("message_id", id.String()).
			Error("per-row status update failed")
		return err
	}
	if ok {
		w.updated.Add(1)
	}
	return nil
}

func (s *CaptureService) transitionPerRow(ctx context.Context, ids []uuid.UUID) int64 {
	var updated atomic.Int64

	p := pool.New[uuid.UUID](s.config.ProvenanceConcurrency, &rowUpdateWorker{svc: s, updated: &updated}).
		WithContinueOnError()
	if err := p.Go(ctx); err != nil {
		s.log.WithError(err).Error("failed to start fallback update pool")
		return 0
	}
	for _, id := range ids {
		p.Submit(id)
	}
	if err := p.Close(ctx); err != nil {
		s.log.WithError(err).Warn("fallback update pool finished with errors")
	}

	return updated.Load()
}

// provenanceWorker writes preview matches for one confirmed row and performs
// the best-effort side work (rule hit counters, model training).
type provenanceWorker struct {
	svc      *CaptureService
	attached *atomic.Int64
}

func (w *provenanceWorker) Do(ctx context.Context, c *candidate) error {
	ok, err := w.svc.messages.ConditionalUpdatePreviewMatches(ctx, c.id, domain.StatusSpamReview, c.hits)
	if err != nil {
		w.svc.log.WithError(err).WithField("message_id", c.id.String()).
			Error("provenance write failed")
		return err
	}
	if !ok {
		// Row is no longer SPAM_REVIEW; a concurrent writer owns it now.
		return nil
	}
	w.attached.Add(1)

	for _, ruleID := range c.ruleIDs {
		if err := w.svc.rules.IncrementHitCount(ctx, ruleID); err != nil {
			w.svc.log.WithError(err).WithField("rule_id", ruleID).
				Warn("rule hit count update failed")
		}
	}

	// Feed confirmed phrase hits back into the learning model so it catches
	// variants the rules miss.
	if c.phrase && w.svc.scorer != nil && c.text != "" {
		if err := w.svc.scorer.Train(ctx, c.text, c.brand, true); err != nil {
			w.svc.log.WithError(err).Warn("learning model training failed")
		}
	}

	return nil
}

// attachProvenance writes preview matches for rows confirmed SPAM_REVIEW,
// with bounded concurrency. Failures here are logged per-id and never affect
// the run's authoritative updated count.
func (s *CaptureService) attachProvenance(ctx context.Context, candidates []*candidate) int64 {
	if len(candidates) == 0 {
		return 0
	}

	var attached atomic.Int64

	p := pool.New[*candidate](s.config.ProvenanceConcurrency, &provenanceWorker{svc: s, attached: &attached}).
		WithContinueOnError()
	if err := p.Go(ctx); err != nil {
		s.log.WithError(err).Error("failed to start provenance pool")
		return 0
	}
	for _, c := range candidates {
		p.Submit(c)
	}
	if err := p.Close(ctx); err != nil {
		s.log.WithError(err).Warn("provenance pool finished with errors")
	}

	return attached.Load()
}
