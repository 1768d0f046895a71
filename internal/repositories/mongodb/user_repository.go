package mongodb

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/cache"
	"credibly/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type userRepository struct {
	collection *mongo.Collection
	cache      cache.Cache
	cacheTTL   time.Duration
}

// NewUserRepository builds the user store. cache may be nil.
func NewUserRepository(db *mongo.Database, c cache.Cache, cacheTTL time.Duration) interfaces.UserRepository {
	if cacheTTL <= 0 {
		cacheTTL = utils.UserCacheTTL
	}
	return &userRepository{
		collection: db.Collection(database.UsersCollection),
		cache:      c,
		cacheTTL:   cacheTTL,
	}
}

// Basic CRUD operations
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	now := time.Now().UTC()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, user); err != nil {
		return wrapError(ctx, err, "create user", utils.ErrUserExists)
	}

	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	if user := r.getUserFromCache(ctx, id); user != nil {
		return user, nil
	}

	var user models.User
	err := r.collection.FindOne(ctx, activeFilter(bson.M{"_id": id})).Decode(&user)
	if err != nil {
		return nil, notFoundOr(ctx, err, "user", "get user")
	}

	r.cacheUser(ctx, &user)
	return &user, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, update *models.UserProfileUpdate) (*models.User, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	setIfPresent(set, "first_name", update.FirstName)
	setIfPresent(set, "last_name", update.LastName)
	setIfPresent(set, "headline", update.Headline)
	setIfPresent(set, "bio", update.Bio)
	setIfPresent(set, "job_title", update.JobTitle)
	setIfPresent(set, "company", update.Company)
	setIfPresent(set, "location", update.Location)
	setIfPresent(set, "avatar_url", update.AvatarURL)

	var user models.User
	err := r.collection.FindOneAndUpdate(
		ctx,
		activeFilter(bson.M{"_id": id}),
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&user)
	if err != nil {
		return nil, notFoundOr(ctx, err, "user", "update user profile")
	}

	r.invalidateUserCache(ctx, id)
	return &user, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.UserStatus) error {
	return r.updateFields(ctx, id, bson.M{"status": status}, "update user status")
}

// Authentication operations
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, activeFilter(bson.M{"email": email})).Decode(&user)
	if err != nil {
		return nil, notFoundOr(ctx, err, "user", "get user by email")
	}
	return &user, nil
}

func (r *userRepository) GetByVerificationTokenHash(ctx context.Context, tokenHash string) (*models.User, error) {
	var user models.User
	err := r.collection.FindOne(ctx, activeFilter(bson.M{"verification_token_hash": tokenHash})).Decode(&user)
	if err != nil {
		return nil, notFoundOr(ctx, err, "verification token", "get user by verification token")
	}
	return &user, nil
}

func (r *userRepository) SetVerificationToken(ctx context.Context, id primitive.ObjectID, tokenHash string, expiresAt time.Time) error {
	return r.updateFields(ctx, id, bson.M{
		"verification_token_hash": tokenHash,
		"verification_expires_at": expiresAt,
	}, "set verification token")
}

func (r *userRepository) MarkVerified(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.UpdateOne(
		ctx,
		activeFilter(bson.M{"_id": id}),
		bson.M{
			"$set":   bson.M{"verified": true, "updated_at": time.Now().UTC()},
			"$unset": bson.M{"verification_token_hash": "", "verification_expires_at": ""},
		},
	)
	if err != nil {
		return wrapError(ctx, err, "mark user verified", "")
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("user")
	}

	r.invalidateUserCache(ctx, id)
	return nil
}

func (r *userRepository) UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error {
	return r.updateFields(ctx, id, bson.M{"last_login_at": time.Now().UTC()}, "update last login")
}

// Aggregate fields
func (r *userRepository) GetAggregateVersion(ctx context.Context, id primitive.ObjectID) (int64, error) {
	var result struct {
		Version int64 `bson:"aggregate_version"`
	}

	err := r.collection.FindOne(
		ctx,
		bson.M{"_id": id},
		options.FindOne().SetProjection(bson.M{"aggregate_version": 1}),
	).Decode(&result)
	if err != nil {
		return 0, notFoundOr(ctx, err, "user", "get aggregate version")
	}

	return result.Version, nil
}

// UpdateAggregates is a single conditional write: it only applies when the
// stored version still equals expectedVersion, and bumps the version.
func (r *userRepository) UpdateAggregates(ctx context.Context, id primitive.ObjectID, expectedVersion int64, averageRating float64, totalRatings int) error {
	filter := bson.M{"_id": id, "aggregate_version": expectedVersion}
	if expectedVersion == 0 {
		// documents written before the version field existed
		filter = bson.M{
			"_id": id,
			"$or": bson.A{
				bson.M{"aggregate_version": 0},
				bson.M{"aggregate_version": bson.M{"$exists": false}},
			},
		}
	}

	result, err := r.collection.UpdateOne(ctx, filter, bson.M{
		"$set": bson.M{
			"average_rating": averageRating,
			"total_ratings":  totalRatings,
		},
		"$inc": bson.M{"aggregate_version": 1},
	})
	if err != nil {
		return wrapError(ctx, err, "update rating aggregates", "")
	}

	if result.MatchedCount == 0 {
		exists, err := r.collection.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
		if err != nil {
			return wrapError(ctx, err, "check user existence", "")
		}
		if exists == 0 {
			return utils.NewNotFoundError("user")
		}
		return interfaces.ErrVersionConflict
	}

	r.invalidateUserCache(ctx, id)
	return nil
}

func (r *userRepository) ListIDsWithAggregates(ctx context.Context) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(
		ctx,
		bson.M{"$or": bson.A{
			bson.M{"total_ratings": bson.M{"$gt": 0}},
			bson.M{"average_rating": bson.M{"$ne": 0}},
		}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, wrapError(ctx, err, "list users with aggregates", "")
	}

	docs, err := decodeAll[struct {
		ID primitive.ObjectID `bson:"_id"`
	}](ctx, cursor, "user id")
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	return ids, nil
}

// Search and listing
func (r *userRepository) List(ctx context.Context, filter *models.UserFilter, params *utils.PaginationParams) ([]*models.User, int64, error) {
	query := userQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count users", "")
	}

	cursor, err := r.collection.Find(ctx, query, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrapError(ctx, err, "find users", "")
	}

	users, err := decodeAll[models.User](ctx, cursor, "user")
	if err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (r *userRepository) Count(ctx context.Context, filter *models.UserFilter) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, userQuery(filter))
	if err != nil {
		return 0, wrapError(ctx, err, "count users", "")
	}
	return total, nil
}

func userQuery(filter *models.UserFilter) bson.M {
	query := bson.M{}
	if filter == nil {
		return activeFilter(query)
	}

	if filter.Status != "" {
		query["status"] = filter.Status
	}
	if filter.Role != "" {
		query["role"] = filter.Role
	}
	if filter.Search != "" {
		pattern := primitive.Regex{Pattern: regexp.QuoteMeta(filter.Search), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"first_name": pattern},
			bson.M{"last_name": pattern},
			bson.M{"headline": pattern},
			bson.M{"company": pattern},
			bson.M{"job_title": pattern},
		}
	}

	return activeFilter(query)
}

func (r *userRepository) updateFields(ctx context.Context, id primitive.ObjectID, fields bson.M, action string) error {
	fields["updated_at"] = time.Now().UTC()

	result, err := r.collection.UpdateOne(ctx, activeFilter(bson.M{"_id": id}), bson.M{"$set": fields})
	if err != nil {
		return wrapError(ctx, err, action, "")
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("user")
	}

	r.invalidateUserCache(ctx, id)
	return nil
}

// activeFilter excludes soft-deleted users.
func activeFilter(filter bson.M) bson.M {
	filter["deleted_at"] = nil
	return filter
}

func setIfPresent(set bson.M, field string, value *string) {
	if value != nil {
		set[field] = *value
	}
}

func userCacheKey(id primitive.ObjectID) string {
	return fmt.Sprintf("%s%s", utils.CacheUserPrefix, id.Hex())
}

func (r *userRepository) cacheUser(ctx context.Context, user *models.User) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Set(ctx, userCacheKey(user.ID), user, r.cacheTTL)
}

func (r *userRepository) getUserFromCache(ctx context.Context, id primitive.ObjectID) *models.User {
	if r.cache == nil {
		return nil
	}

	var user models.User
	if err := r.cache.Get(ctx, userCacheKey(id), &user); err != nil {
		return nil
	}

	return &user
}

func (r *userRepository) InvalidateCache(ctx context.Context, id primitive.ObjectID) {
	r.invalidateUserCache(ctx, id)
}

func (r *userRepository) invalidateUserCache(ctx context.Context, id primitive.ObjectID) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, userCacheKey(id))
}
