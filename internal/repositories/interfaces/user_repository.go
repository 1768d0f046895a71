package interfaces

import (
	"context"
	"errors"
	"time"

	"credibly/internal/models"
	"credibly/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrVersionConflict is returned by UpdateAggregates when the stored
// aggregate version no longer matches the expected one.
var ErrVersionConflict = errors.New("aggregate version changed")

type UserRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, update *models.UserProfileUpdate) (*models.User, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) error
	// InvalidateCache drops the cached document. Writes made inside a
	// transaction call it again after the commit.
	InvalidateCache(ctx context.Context, id primitive.ObjectID)

	// Authentication operations
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByVerificationTokenHash(ctx context.Context, tokenHash string) (*models.User, error)
	SetVerificationToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error
	MarkVerified(ctx context.Context, id primitive.ObjectID) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error

	// Aggregate fields. GetAggregateVersion always reads from storage.
	GetAggregateVersion(ctx context.Context, id primitive.ObjectID) (int64, error)
	UpdateAggregates(ctx context.Context, id primitive.ObjectID, expectedVersion int64, averageRating float64, totalRatings int) error
	ListIDsWithAggregates(ctx context.Context) ([]primitive.ObjectID, error)

	// Search and listing
	List(ctx context.Context, filter *models.UserFilter, params *utils.PaginationParams) ([]*models.User, int64, error)
	Count(ctx context.Context, filter *models.UserFilter) (int64, error)
}
