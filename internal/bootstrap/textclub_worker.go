package bootstrap

import (
	"context"
	"os"
	"sync"
	"time"

	"textclub_server/config"

	"github.com/rs/zerolog"
)

// Worker runs the capture pipeline on a fixed interval. One run executes at a
// time; if a run overruns the interval the next tick waits for it.
type Worker struct {
	deps     *Dependencies
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	zlog     zerolog.Logger
}

func NewWorker(cfg *config.Config, deps *Dependencies) *Worker {
	zlog := zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
		With().Timestamp().Str("component", "capture_worker").
		Str("worker_id", cfg.WorkerID).Logger()

	ctx, cancel := context.WithCancel(context.Background())

	return &Worker{
		deps:     deps,
		interval: cfg.CaptureInterval,
		ctx:      ctx,
		cancel:   cancel,
		zlog:     zlog,
	}
}

// Start begins the interval loop. The first run fires immediately.
func (w *Worker) Start() {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		w.zlog.Info().Dur("interval", w.interval).Msg("capture worker started")

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		w.runOnce()

		for {
			select {
			case <-w.ctx.Done():
				w.zlog.Info().Msg("capture worker stopping")
				return
			case <-ticker.C:
				w.runOnce()
			}
		}
	}()
}

func (w *Worker) runOnce() {
	report, err := w.deps.CaptureService.Run(w.ctx)
	if err != nil {
		if w.ctx.Err() != nil {
			return
		}
		w.zlog.Error().Err(err).Msg("capture run failed")
		return
	}

	w.zlog.Info().
		Int("processed", report.Processed).
		Int64("updated", report.UpdatedCount).
		Int("blocked", report.ValidationBlockedCount).
		Int("remaining", report.RemainingInQueue).
		Int64("duration_ms", report.DurationMs).
		Msg("capture run completed")
}

// Stop cancels the loop and waits for an in-flight run to finish.
func (w *Worker) Stop() {
	w.cancel()
	w.wg.Wait()
	w.zlog.Info().Msg("capture worker stopped")
}
