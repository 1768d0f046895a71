package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"credibly/internal/models"
	"credibly/internal/observability"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Recompute triggers, used as the metrics label.
const (
	TriggerCreate  = "create"
	TriggerUpdate  = "update"
	TriggerDelete  = "delete"
	TriggerWorker  = "worker"
	TriggerAdmin   = "admin"
	TriggerRebuild = "rebuild"
)

const enqueueTimeout = 2 * time.Second

// ErrAggregateContention is returned when every recompute attempt lost the
// version race.
var ErrAggregateContention = utils.NewTransientStorageError("aggregate is being updated concurrently", nil)

// RatingAggregator keeps users' average_rating and total_ratings equal to a
// fresh aggregation over their ratings.
type RatingAggregator interface {
	Recompute(ctx context.Context, rateeID primitive.ObjectID, trigger string) (models.RatingAggregate, error)
	// RecomputeOrEnqueue recomputes and, on failure, queues the ratee for the
	// background worker. It never returns an error.
	RecomputeOrEnqueue(ctx context.Context, rateeID primitive.ObjectID, trigger string)
	// RebuildAll recomputes every user that has ratings or a stored
	// aggregate. Failures are queued and counted.
	RebuildAll(ctx context.Context) (rebuilt int, failed int, err error)
}

type ratingAggregator struct {
	ratingRepo interfaces.RatingRepository
	userRepo   interfaces.UserRepository
	queue      StaleAggregateQueue
	maxRetries int
	metrics    *observability.Metrics
	logger     *logger.Logger
}

func NewRatingAggregator(
	ratingRepo interfaces.RatingRepository,
	userRepo interfaces.UserRepository,
	queue StaleAggregateQueue,
	maxRetries int,
	metrics *observability.Metrics,
	logger *logger.Logger,
) RatingAggregator {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &ratingAggregator{
		ratingRepo: ratingRepo,
		userRepo:   userRepo,
		queue:      queue,
		maxRetries: maxRetries,
		metrics:    metrics,
		logger:     logger,
	}
}

func (a *ratingAggregator) Recompute(ctx context.Context, rateeID primitive.ObjectID, trigger string) (models.RatingAggregate, error) {
	for attempt := 1; attempt <= a.maxRetries; attempt++ {
		version, err := a.userRepo.GetAggregateVersion(ctx, rateeID)
		if err != nil {
			a.metrics.RecordRecompute(trigger, observability.ResultError)
			return models.RatingAggregate{}, err
		}

		aggregate, err := a.ratingRepo.ComputeAggregate(ctx, rateeID)
		if err != nil {
			a.metrics.RecordRecompute(trigger, observability.ResultError)
			return models.RatingAggregate{}, err
		}

		err = a.userRepo.UpdateAggregates(ctx, rateeID, version, aggregate.AverageRating, aggregate.TotalRatings)
		if err == nil {
			a.metrics.RecordRecompute(trigger, observability.ResultSuccess)
			return aggregate, nil
		}
		if !errors.Is(err, interfaces.ErrVersionConflict) {
			a.metrics.RecordRecompute(trigger, observability.ResultError)
			return models.RatingAggregate{}, err
		}

		a.metrics.RecordRecompute(trigger, observability.ResultConflict)
		a.logger.WithFields(map[string]interface{}{
			"ratee_id": rateeID.Hex(),
			"attempt":  attempt,
		}).Debug("Aggregate version moved, retrying")
	}

	return models.RatingAggregate{}, fmt.Errorf("failed to recompute aggregate for %s: %w", rateeID.Hex(), ErrAggregateContention)
}

func (a *ratingAggregator) RecomputeOrEnqueue(ctx context.Context, rateeID primitive.ObjectID, trigger string) {
	if _, err := a.Recompute(ctx, rateeID, trigger); err != nil {
		a.logger.WithContext(ctx).WithError(err).WithFields(map[string]interface{}{
			"ratee_id": rateeID.Hex(),
			"trigger":  trigger,
		}).Warn("Aggregate recompute failed, queueing for retry")
		a.enqueue(ctx, rateeID)
	}
}

// enqueue uses a detached context so a request that already timed out can
// still record the stale ratee.
func (a *ratingAggregator) enqueue(ctx context.Context, ids ...primitive.ObjectID) {
	if len(ids) == 0 {
		return
	}

	pushCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), enqueueTimeout)
	defer cancel()

	if err := a.queue.Push(pushCtx, ids...); err != nil {
		a.logger.WithContext(ctx).WithError(err).WithField("count", len(ids)).
			Error("Failed to queue stale aggregates; run an aggregate rebuild to repair")
		return
	}
	for range ids {
		a.metrics.RecordStaleEnqueued()
	}
}

func (a *ratingAggregator) RebuildAll(ctx context.Context) (int, int, error) {
	rated, err := a.ratingRepo.DistinctRatedIDs(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list rated users: %w", err)
	}
	withAggregates, err := a.userRepo.ListIDsWithAggregates(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to list users with aggregates: %w", err)
	}

	seen := make(map[primitive.ObjectID]struct{}, len(rated)+len(withAggregates))
	var failedIDs []primitive.ObjectID
	rebuilt := 0

	for _, id := range append(rated, withAggregates...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if err := ctx.Err(); err != nil {
			return rebuilt, len(failedIDs), utils.NewTimeoutError(err)
		}

		if _, err := a.Recompute(ctx, id, TriggerRebuild); err != nil {
			if utils.KindOf(err) == utils.KindNotFound {
				continue
			}
			failedIDs = append(failedIDs, id)
			continue
		}
		rebuilt++
	}

	a.enqueue(ctx, failedIDs...)

	a.logger.WithFields(map[string]interface{}{
		"rebuilt": rebuilt,
		"failed":  len(failedIDs),
	}).Info("Aggregate rebuild finished")

	return rebuilt, len(failedIDs), nil
}
