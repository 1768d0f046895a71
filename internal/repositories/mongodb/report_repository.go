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

type reportRepository struct {
	collection *mongo.Collection
}

func NewReportRepository(db *mongo.Database) interfaces.ReportRepository {
	return &reportRepository{
		collection: db.Collection(database.ReportsCollection),
	}
}

func (r *reportRepository) Create(ctx context.Context, report *models.Report) error {
	now := time.Now().UTC()
	report.ID = primitive.NewObjectID()
	report.Open = report.Status.IsOpen()
	report.CreatedAt = now
	report.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, report); err != nil {
		return wrapError(ctx, err, "create report", "you already have an open report against this user")
	}
	return nil
}

func (r *reportRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error) {
	var report models.Report
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&report); err != nil {
		return nil, notFoundOr(ctx, err, "report", "get report")
	}
	return &report, nil
}

func (r *reportRepository) FindOpenByPair(ctx context.Context, reporterID, reportedUserID primitive.ObjectID) (*models.Report, error) {
	var report models.Report
	err := r.collection.FindOne(ctx, bson.M{
		"reporter_id":      reporterID,
		"reported_user_id": reportedUserID,
		"open":             true,
	}).Decode(&report)
	if err != nil {
		return nil, notFoundOr(ctx, err, "report", "find open report")
	}
	return &report, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, update *models.ReportStatusUpdate) (*models.Report, error) {
	now := time.Now().UTC()
	set := bson.M{
		"status":     update.Status,
		"open":       update.Status.IsOpen(),
		"updated_at": now,
	}
	if update.AdminNote != "" {
		set["admin_note"] = update.AdminNote
	}
	if update.Action != "" {
		set["action"] = update.Action
	}
	if !update.Status.IsOpen() {
		set["resolved_by"] = update.ResolvedBy
		set["resolved_at"] = now
	}

	var report models.Report
	err := r.collection.FindOneAndUpdate(
		ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&report)
	if err != nil {
		return nil, notFoundOr(ctx, err, "report", "update report status")
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, status models.ReportStatus, params *utils.PaginationParams) ([]*models.Report, int64, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return r.find(ctx, filter, params)
}

func (r *reportRepository) ListByReporter(ctx context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Report, int64, error) {
	return r.find(ctx, bson.M{"reporter_id": reporterID}, params)
}

func (r *reportRepository) CountOpen(ctx context.Context) (int64, error) {
	total, err := r.collection.CountDocuments(ctx, bson.M{"open": true})
	if err != nil {
		return 0, wrapError(ctx, err, "count open reports", "")
	}
	return total, nil
}

func (r *reportRepository) find(ctx context.Context, filter bson.M, params *utils.PaginationParams) ([]*models.Report, int64, error) {
	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, wrapError(ctx, err, "count reports", "")
	}

	cursor, err := r.collection.Find(ctx, filter, params.GetSortOptions())
	if err != nil {
		return nil, 0, wrapError(ctx, err, "list reports", "")
	}

	reports, err := decodeAll[models.Report](ctx, cursor, "report")
	if err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}
