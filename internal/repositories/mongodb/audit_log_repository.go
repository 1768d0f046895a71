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

type auditLogRepository struct {
	collection *mongo.Collection
}

func NewAuditLogRepository(db *mongo.Database) interfaces.AuditLogRepository {
	return &auditLogRepository{
		collection: db.Collection(database.AuditLogsCollection),
	}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	entry.ID = primitive.NewObjectID()
	entry.CreatedAt = time.Now().UTC()

	if _, err := r.collection.InsertOne(ctx, entry); err != nil {
		return wrapError(ctx, err, "create audit log", "")
	}
	return nil
}

func (r *auditLogRepository) List(ctx context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count audit logs", "")
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrapError(ctx, err, "list audit logs", "")
	}

	entries, err := decodeAll[models.AuditLog](ctx, cursor, "audit log")
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
