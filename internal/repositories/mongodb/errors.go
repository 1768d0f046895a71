package mongodb

import (
	"context"
	"errors"
	"fmt"

	"credibly/internal/utils"

	"go.mongodb.org/mongo-driver/mongo"
)

// wrapError maps driver errors onto the service error taxonomy. A deadline on
// the caller's context is a Timeout; driver timeouts and network failures are
// TransientStorage; duplicate keys are Conflict with conflictMsg.
func wrapError(ctx context.Context, err error, action, conflictMsg string) error {
	if err == nil {
		return nil
	}

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return err
	}

	wrapped := fmt.Errorf("failed to %s: %w", action, err)

	switch {
	case ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return utils.NewTimeoutError(wrapped)
	case mongo.IsDuplicateKeyError(err):
		if conflictMsg == "" {
			conflictMsg = utils.ErrConflict
		}
		return &utils.AppError{Kind: utils.KindConflict, Message: conflictMsg, Err: wrapped}
	case mongo.IsTimeout(err), mongo.IsNetworkError(err):
		return utils.NewTransientStorageError(utils.ErrStorageUnavailable, wrapped)
	}

	var serverErr mongo.ServerError
	if errors.As(err, &serverErr) && serverErr.HasErrorLabel("RetryableWriteError") {
		return utils.NewTransientStorageError(utils.ErrStorageUnavailable, wrapped)
	}

	return wrapped
}

func notFoundOr(ctx context.Context, err error, resource, action string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return utils.NewNotFoundError(resource)
	}
	return wrapError(ctx, err, action, "")
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor, resource string) ([]*T, error) {
	defer cursor.Close(ctx)

	items := make([]*T, 0)
	for cursor.Next(ctx) {
		var item T
		if err := cursor.Decode(&item); err != nil {
			return nil, fmt.Errorf("failed to decode %s: %w", resource, err)
		}
		items = append(items, &item)
	}

	if err := cursor.Err(); err != nil {
		return nil, wrapError(ctx, err, "iterate "+resource, "")
	}

	return items, nil
}
