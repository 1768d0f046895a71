package mongodb

import (
	"context"

	"credibly/internal/repositories/interfaces"
	"credibly/pkg/database"

	"go.mongodb.org/mongo-driver/mongo"
)

type transactor struct {
	db      *database.MongoDB
	enabled bool
}

// NewTransactor returns a Transactor backed by MongoDB sessions. When
// enabled is false fn runs directly, for standalone servers without
// transaction support.
func NewTransactor(db *database.MongoDB, enabled bool) interfaces.Transactor {
	return &transactor{db: db, enabled: enabled}
}

func (t *transactor) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if !t.enabled {
		return fn(ctx)
	}

	_, err := t.db.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	if err != nil {
		return wrapError(ctx, err, "run transaction", "")
	}
	return nil
}
