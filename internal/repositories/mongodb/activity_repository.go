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
)

type activityRepository struct {
	collection *mongo.Collection
}

func NewActivityRepository(db *mongo.Database) interfaces.ActivityRepository {
	return &activityRepository{
		collection: db.Collection(database.ActivitiesCollection),
	}
}

func (r *activityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.ID = primitive.NewObjectID()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}

	if _, err := r.collection.InsertOne(ctx, activity); err != nil {
		return wrapError(ctx, err, "create activity", "")
	}
	return nil
}

func (r *activityRepository) ListForUsers(ctx context.Context, userIDs, excluded []primitive.ObjectID, params *utils.PaginationParams) ([]*models.Activity, int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"actor_id": bson.M{"$in": userIDs}},
		bson.M{"subject_id": bson.M{"$in": userIDs}},
	}}
	if len(excluded) > 0 {
		filter["actor_id"] = bson.M{"$nin": excluded}
		filter["subject_id"] = bson.M{"$nin": excluded}
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count activities", "")
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrapError(ctx, err, "list activities", "")
	}

	activities, err := decodeAll[models.Activity](ctx, cursor, "activity")
	if err != nil {
		return nil, 0, err
	}
	return activities, total, nil
}
