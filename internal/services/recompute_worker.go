package services

import (
	"context"
	"sync"
	"time"

	"credibly/internal/observability"
	"credibly/internal/utils"
	"credibly/pkg/logger"
)

// RecomputeWorker periodically drains the stale-aggregate queue. Ratees that
// fail again go back on the queue for the next tick.
type RecomputeWorker struct {
	aggregator RatingAggregator
	queue      StaleAggregateQueue
	interval   time.Duration
	batchSize  int
	metrics    *observability.Metrics
	logger     *logger.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

func NewRecomputeWorker(
	aggregator RatingAggregator,
	queue StaleAggregateQueue,
	interval time.Duration,
	batchSize int,
	metrics *observability.Metrics,
	logger *logger.Logger,
) *RecomputeWorker {
	if batchSize < 1 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &RecomputeWorker{
		aggregator: aggregator,
		queue:      queue,
		interval:   interval,
		batchSize:  batchSize,
		metrics:    metrics,
		logger:     logger,
	}
}

// Start runs the worker until ctx is cancelled or Stop is called.
func (w *RecomputeWorker) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)

	w.logger.WithFields(map[string]interface{}{
		"interval":   w.interval.String(),
		"batch_size": w.batchSize,
	}).Info("Aggregate recompute worker started")

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := w.RunOnce(ctx); err != nil && ctx.Err() == nil {
					w.logger.WithError(err).Error("Aggregate recompute pass failed")
				}
			}
		}
	}()
}

// Stop cancels the loop and waits for the current pass to finish.
func (w *RecomputeWorker) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
	w.logger.Info("Aggregate recompute worker stopped")
}

// RunOnce drains up to one batch and returns how many ratees were repaired.
func (w *RecomputeWorker) RunOnce(ctx context.Context) (int, error) {
	ids, err := w.queue.Pop(ctx, w.batchSize)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, id := range ids {
		if _, err := w.aggregator.Recompute(ctx, id, TriggerWorker); err != nil {
			if utils.KindOf(err) == utils.KindNotFound {
				continue
			}
			w.logger.WithError(err).WithField("ratee_id", id.Hex()).Warn("Queued aggregate recompute failed")
			if pushErr := w.queue.Push(context.WithoutCancel(ctx), id); pushErr != nil {
				w.logger.WithError(pushErr).WithField("ratee_id", id.Hex()).Error("Failed to requeue stale aggregate")
			}
			continue
		}
		repaired++
	}

	if depth, err := w.queue.Len(ctx); err == nil {
		w.metrics.SetStaleQueueDepth(depth)
	}

	if len(ids) > 0 {
		w.logger.WithFields(map[string]interface{}{
			"popped":   len(ids),
			"repaired": repaired,
		}).Info("Drained stale aggregates")
	}

	return repaired, nil
}
