package mongodb

import (
	"context"
	"time"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type blockRepository struct {
	collection *mongo.Collection
}

func NewBlockRepository(db *mongo.Database) interfaces.BlockRepository {
	return &blockRepository{
		collection: db.Collection(database.BlocksCollection),
	}
}

func (r *blockRepository) Create(ctx context.Context, block *models.Block) error {
	block.ID = primitive.NewObjectID()
	block.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, block); err != nil {
		return wrapError(ctx, err, "create block", "user is already blocked")
	}
	return nil
}

func (r *blockRepository) Delete(ctx context.Context, blockerID, blockedID primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"blocker_id": blockerID, "blocked_id": blockedID})
	if err != nil {
		return wrapError(ctx, err, "delete block", "")
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("block")
	}
	return nil
}

func (r *blockRepository) Exists(ctx context.Context, blockerID, blockedID primitive.ObjectID) (bool, error) {
	return r.exists(ctx, bson.M{"blocker_id": blockerID, "blocked_id": blockedID})
}

func (r *blockRepository) IsBlockedEither(ctx context.Context, a, b primitive.ObjectID) (bool, error) {
	return r.exists(ctx, bson.M{"$or": bson.A{
		bson.M{"blocker_id": a, "blocked_id": b},
		bson.M{"blocker_id": b, "blocked_id": a},
	}})
}

func (r *blockRepository) exists(ctx context.Context, filter bson.M) (bool, error) {
	count, err := r.collection.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, wrapError(ctx, err, "check block", "")
	}
	return count > 0, nil
}

func (r *blockRepository) ListByBlocker(ctx context.Context, blockerID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Block, int64, error) {
	filter := bson.M{"blocker_id": blockerID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count blocks", "")
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrapError(ctx, err, "list blocks", "")
	}

	blocks, err := decodeAll[models.Block](ctx, cursor, "block")
	if err != nil {
		return nil, 0, err
	}
	return blocks, total, nil
}

func (r *blockRepository) RelatedUserIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"$or": bson.A{
		bson.M{"blocker_id": userID},
		bson.M{"blocked_id": userID},
	}})
	if err != nil {
		return nil, wrapError(ctx, err, "list related blocks", "")
	}

	blocks, err := decodeAll[models.Block](ctx, cursor, "block")
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(blocks))
	for _, b := range blocks {
		if b.BlockerID == userID {
			ids = append(ids, b.BlockedID)
		} else {
			ids = append(ids, b.BlockerID)
		}
	}
	return ids, nil
}
