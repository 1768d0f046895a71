package interfaces

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, rating *models.Rating) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error)
	Update(ctx context.Context, rating *models.Rating) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	FindByPair(ctx context.Context, raterID, ratedID primitive.ObjectID) (*models.Rating, error)

	// Listing. ListForRatee joins rater display info and is newest first.
	ListForRatee(ctx context.Context, ratedID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RatingWithRater, int64, error)
	ListByRater(ctx context.Context, raterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error)

	// Rating statistics
	ComputeAggregate(ctx context.Context, ratedID primitive.ObjectID) (models.RatingAggregate, error)
	GetDistribution(ctx context.Context, ratedID primitive.ObjectID) (map[int]int64, error)
	DistinctRatedIDs(ctx context.Context) ([]primitive.ObjectID, error)
	Count(ctx context.Context) (int64, error)
}
