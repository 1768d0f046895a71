package interfaces

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	// ListForUsers returns activities whose actor or subject is in userIDs and
	// neither party is in excluded, newest first.
	ListForUsers(ctx context.Context, userIDs, excluded []primitive.ObjectID, params *utils.PaginationParams) ([]*models.Activity, int64, error)
}
