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

type connectionRepository struct {
	collection *mongo.Collection
}

func NewConnectionRepository(db *mongo.Database) interfaces.ConnectionRepository {
	return &connectionRepository{
		collection: db.Collection(database.ConnectionsCollection),
	}
}

func (r *connectionRepository) Create(ctx context.Context, connection *models.Connection) error {
	now := time.Now().UTC()
	connection.ID = primitive.NewObjectID()
	connection.UserLow, connection.UserHigh = utils.OrderedPair(connection.RequesterID, connection.AddresseeID)
	connection.CreatedAt = now
	connection.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, connection); err != nil {
		return wrapError(ctx, err, "create connection", "a connection between these users already exists")
	}
	return nil
}

func (r *connectionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Connection, error) {
	var connection models.Connection
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&connection); err != nil {
		return nil, notFoundOr(ctx, err, "connection", "get connection")
	}
	return &connection, nil
}

func (r *connectionRepository) GetByPair(ctx context.Context, a, b primitive.ObjectID) (*models.Connection, error) {
	low, high := utils.OrderedPair(a, b)

	var connection models.Connection
	if err := r.collection.FindOne(ctx, bson.M{"user_low": low, "user_high": high}).Decode(&connection); err != nil {
		return nil, notFoundOr(ctx, err, "connection", "get connection by pair")
	}
	return &connection, nil
}

func (r *connectionRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ConnectionStatus) (*models.Connection, error) {
	now := time.Now().UTC()
	set := bson.M{"status": status, "updated_at": now}
	if status == models.ConnectionStatusAccepted {
		set["accepted_at"] = now
	}

	var connection models.Connection
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&connection)
	if err != nil {
		return nil, notFoundOr(ctx, err, "connection", "update connection status")
	}
	return &connection, nil
}

func (r *connectionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return wrapError(ctx, err, "delete connection", "")
	}
	if result.DeletedCount == 0 {
		return utils.NewNotFoundError("connection")
	}
	return nil
}

func (r *connectionRepository) ListForUser(ctx context.Context, userID primitive.ObjectID, status models.ConnectionStatus, params *utils.PaginationParams) ([]*models.Connection, int64, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"requester_id": userID},
		bson.M{"addressee_id": userID},
	}}
	if status != "" {
		filter["status"] = status
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count connections", "")
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrapError(ctx, err, "list connections", "")
	}

	connections, err := decodeAll[models.Connection](ctx, cursor, "connection")
	if err != nil {
		return nil, 0, err
	}
	return connections, total, nil
}

func (r *connectionRepository) AcceptedPeerIDs(ctx context.Context, userID primitive.ObjectID) ([]primitive.ObjectID, error) {
	filter := bson.M{
		"status": models.ConnectionStatusAccepted,
		"$or": bson.A{
			bson.M{"requester_id": userID},
			bson.M{"addressee_id": userID},
		},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetProjection(bson.M{"requester_id": 1, "addressee_id": 1}))
	if err != nil {
		return nil, wrapError(ctx, err, "list accepted connections", "")
	}

	connections, err := decodeAll[models.Connection](ctx, cursor, "connection")
	if err != nil {
		return nil, err
	}

	ids := make([]primitive.ObjectID, 0, len(connections))
	for _, c := range connections {
		ids = append(ids, c.Other(userID))
	}
	return ids, nil
}
