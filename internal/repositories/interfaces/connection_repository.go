package interfaces

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConnectionRepository interface {
	Create(ctx context.Context, connection *models.Connection) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error)
	GetByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	ListForUser(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, params *utils.PaginationParams) ([]*models.Connection, int64, error)
	AcceptedPeerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}

type BlockRepository interface {
	Create(ctx context.Context, block *models.Block) error
	Delete(ctx context.Context, blockerID, blockedID primitive.ObjectID) error
	Exists(ctx context.Context, blockerID, blockedID primitive.ObjectID) (bool, error)
	// IsBlockedEither reports whether a blocked b or b blocked a.
	IsBlockedEither(ctx context.Context, a, b primitive.ObjectID) (bool, error)
	ListByBlocker(ctx context.Context, blockerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Block, int64, error)
	// RelatedUserIDs returns every user that userID blocked or was blocked by.
	RelatedUserIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error)
}
