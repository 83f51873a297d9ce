package service

import (
	"context"
	"time"

	"duothan/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	defaultReapInterval = time.Minute
	defaultStaleAfter   = 15 * time.Minute
	defaultReapBatch    = 100
)

// Reaper periodically fails submissions stuck in a non-terminal state,
// covering graders lost to crashes or judge outages.
type Reaper struct {
	service    *SubmissionService
	interval   time.Duration
	staleAfter time.Duration
	batch      int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewReaper creates a reaper over a submission service.
func NewReaper(service *SubmissionService, interval, staleAfter time.Duration) *Reaper {
	if interval <= 0 {
		interval = defaultReapInterval
	}
	if staleAfter <= 0 {
		staleAfter = defaultStaleAfter
	}
	return &Reaper{
		service:    service,
		interval:   interval,
		staleAfter: staleAfter,
		batch:      defaultReapBatch,
	}
}

// Start launches the reap loop. Call Stop to shut it down.
func (r *Reaper) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.done = make(chan struct{})

	go func() {
		defer close(r.done)
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				r.reap(ctx)
			}
		}
	}()
}

// Stop shuts down the reap loop and waits for it to exit.
func (r *Reaper) Stop() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
}

func (r *Reaper) reap(ctx context.Context) {
	cutoff := time.Now().Add(-r.staleAfter)
	failed, err := r.service.FailStale(ctx, cutoff, r.batch)
	if err != nil {
		logger.Warn(ctx, "reap stale submissions failed", zap.Error(err))
		return
	}
	if failed > 0 {
		logger.Info(ctx, "failed stale submissions", zap.Int("count", failed))
	}
}
