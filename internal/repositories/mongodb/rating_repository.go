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

const duplicateRatingMsg = "you have already rated this user"

type ratingRepository struct {
	collection *mongo.Collection
}

func NewRatingRepository(db *mongo.Database) interfaces.RatingRepository {
	return &ratingRepository{
		collection: db.Collection(database.RatingsCollection),
	}
}

// Basic CRUD operations
func (r *ratingRepository) Create(ctx context.Context, rating *models.Rating) error {
	now := time.Now().UTC()
	rating.ID = primitive.NewObjectID()
	rating.CreatedAt = now
	rating.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, rating); err != nil {
		return wrapError(ctx, err, "create rating", duplicateRatingMsg)
	}

	return nil
}

func (r *ratingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Rating, error) {
	var rating models.Rating
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rating); err != nil {
		return nil, notFoundOr(ctx, err, "rating", "get rating")
	}
	return &rating, nil
}

func (r *ratingRepository) Update(ctx context.Context, rating *models.Rating) error {
	rating.UpdatedAt = time.Now().UTC()

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"_id": rating.ID},
		bson.M{"$set": bson.M{
			"criteria":   rating.Criteria,
			"comment":    rating.Comment,
			"updated_at": rating.UpdatedAt,
		}},
	)
	if err != nil {
		return wrapError(ctx, err, "update rating", "")
	}
	if result.MatchedCount == 0 {
		return utils.NewNotFoundError("rating")
	}

	return nil
}

func (r *ratingRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapError(ctx, err, "delete rating", "")
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("rating")
	}
	return nil
}

func (r *ratingRepository) FindByPair(ctx context.Context, raterID, ratedID primitive.ObjectID) (*models.Rating, error) {
	var rating models.Rating
	err := r.collection.FindOne(ctx, bson.M{"rater_id": raterID, "rated_id": ratedID}).Decode(&rating)
	if err != nil {
		return nil, notFoundOr(ctx, err, "rating", "find rating by pair")
	}
	return &rating, nil
}

// Listing
func (r *ratingRepository) ListForRatee(ctx context.Context, ratedID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RatingWithRater, int64, error) {
	filter := bson.M{"rated_id": ratedID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count ratings", "")
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: filter}},
		{{Key: "$sort", Value: params.SortDocument()}},
		{{Key: "$skip", Value: params.GetSkip()}},
		{{Key: "$limit", Value: params.GetLimit()}},
		{{Key: "$lookup", Value: bson.M{
			"from": database.UsersCollection,
			"let":  bson.M{"raterId": "$rater_id"},
			"pipeline": bson.A{
				bson.M{"$match": bson.M{"$expr": bson.M{"$eq": bson.A{"$_id", "$$raterId"}}}},
				bson.M{"$project": bson.M{
					"first_name": 1,
					"last_name":  1,
					"headline":   1,
					"avatar_url": 1,
				}},
			},
			"as": "rater",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$rater", "preserveNullAndEmptyArrays": true}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "list ratings for user", "")
	}

	ratings, err := decodeAll[models.RatingWithRater](ctx, cursor, "rating")
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}

func (r *ratingRepository) ListByRater(ctx context.Context, raterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	filter := bson.M{"rater_id": raterID}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count ratings", "")
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrapError(ctx, err, "list ratings by rater", "")
	}

	ratings, err := decodeAll[models.Rating](ctx, cursor, "rating")
	if err != nil {
		return nil, 0, err
	}

	return ratings, total, nil
}

// Rating statistics

// ComputeAggregate runs the average and count over every rating of ratedID.
// An empty set yields the zero aggregate.
func (r *ratingRepository) ComputeAggregate(ctx context.Context, ratedID primitive.ObjectID) (models.RatingAggregate, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"rated_id": ratedID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"avg":   bson.M{"$avg": "$criteria.overall"},
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return models.RatingAggregate{}, wrapError(ctx, err, "compute rating aggregate", "")
	}
	defer cursor.Close(ctx)

	var result struct {
		Avg   float64 `bson:"avg"`
		Count int     `bson:"count"`
	}

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return models.RatingAggregate{}, wrapError(ctx, err, "compute rating aggregate", "")
		}
		return models.RatingAggregate{}, nil
	}

	if err := cursor.Decode(&result); err != nil {
		return models.RatingAggregate{}, wrapError(ctx, err, "decode rating aggregate", "")
	}

	return models.RatingAggregate{
		AverageRating: result.Avg,
		TotalRatings:  result.Count,
	}, nil
}

func (r *ratingRepository) GetDistribution(ctx context.Context, ratedID primitive.ObjectID) (map[int]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"rated_id": ratedID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$criteria.overall",
			"count": bson.M{"$sum": 1},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, wrapError(ctx, err, "get rating distribution", "")
	}

	buckets, err := decodeAll[struct {
		Score int   `bson:"_id"`
		Count int64 `bson:"count"`
	}](ctx, cursor, "rating distribution")
	if err != nil {
		return nil, err
	}

	distribution := make(map[int]int64, utils.MaxScore)
	for score := utils.MinScore; score <= utils.MaxScore; score++ {
		distribution[score] = 0
	}
	for _, b := range buckets {
		distribution[b.Score] = b.Count
	}

	return distribution, nil
}

func (r *ratingRepository) DistinctRatedIDs(ctx context.Context) ([]primitive.ObjectID, error) {
	values, err := r.collection.Distinct(ctx, "rated_id", bson.M{})
	if err != nil {
		return nil, wrapError(ctx, err, "list rated users", "")
	}

	ids := make([]primitive.ObjectID, 0, len(values))
	for _, v := range values {
		if id, ok := v.(primitive.ObjectID); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (r *ratingRepository) Count(ctx context.Context) (int64, error) {
	total, err := r.collection.EstimatedDocumentCount(ctx, options.EstimatedDocumentCount())
	if err != nil {
		return 0, wrapError(ctx, err, "count ratings", "")
	}
	return total, nil
}
