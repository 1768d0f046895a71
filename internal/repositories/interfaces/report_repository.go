package interfaces

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/utils"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportRepository interface {
	Create(ctx context.Context, report *models.Report) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Report, error)
	FindOpenByPair(ctx context.Context, reporterID, reportedUserID primitive.ObjectID) (*models.Report, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, update *models.ReportStatusUpdate) (*models.Report, error)
	List(ctx context.Context, status models.ReportStatus, params *utils.PaginationParams) ([]*models.Report, int64, error)
	ListByReporter(ctx context.Context, reporterID primitive.ObjectID, params *utils.PaginationParams) ([]*models.Report, int64, error)
	CountOpen(ctx context.Context) (int64, error)
}
