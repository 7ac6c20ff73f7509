package worker

import (
	"context"
	"sync"
	"time"

	"recruitflow/internal/logger"
)

// SubscriptionExpirer marks lapsed subscriptions as expired and reports how many changed.
type SubscriptionExpirer interface {
	ExpireSubscriptions(ctx context.Context, now time.Time) (int64, error)
}

// SubscriptionWorker periodically expires paid subscriptions whose end date has passed.
type SubscriptionWorker struct {
	candidates SubscriptionExpirer
	interval   time.Duration
	now        func() time.Time

	wg sync.WaitGroup
}

func NewSubscriptionWorker(candidates SubscriptionExpirer, interval time.Duration) *SubscriptionWorker {
	if interval <= 0 {
		interval = 6 * time.Hour
	}
	return &SubscriptionWorker{
		candidates: candidates,
		interval:   interval,
		now:        time.Now,
	}
}

// Start runs one check immediately and then one per interval until ctx is cancelled.
func (w *SubscriptionWorker) Start(ctx context.Context) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		w.run(ctx)
	}()
}

// Wait blocks until the worker goroutine has returned.
func (w *SubscriptionWorker) Wait() {
	w.wg.Wait()
}

func (w *SubscriptionWorker) run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("subscription worker stopped")
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce performs a single expiry pass.
func (w *SubscriptionWorker) RunOnce(ctx context.Context) (int64, error) {
	n, err := w.candidates.ExpireSubscriptions(ctx, w.now())
	logger.WorkerLog("subscription", "expire", err)
	if err == nil && n > 0 {
		logger.Info("subscriptions expired", "count", n)
	}
	return n, err
}
