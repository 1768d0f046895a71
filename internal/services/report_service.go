package services

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportService interface {
	Create(ctx context.Context, caller *Caller, input *ReportInput) (*models.Report, error)
	ListMine(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Report, int64, error)
}

type ReportInput struct {
	ReportedUserID primitive.ObjectID
	RatingID       *primitive.ObjectID
	Type           models.ReportType
	Description    string
}

type reportService struct {
	reportRepo interfaces.ReportRepository
	userRepo   interfaces.UserRepository
	ratingRepo interfaces.RatingRepository
	logger     *logger.Logger
}

func NewReportService(
	reportRepo interfaces.ReportRepository,
	userRepo interfaces.UserRepository,
	ratingRepo interfaces.RatingRepository,
	logger *logger.Logger,
) ReportService {
	return &reportService{
		reportRepo: reportRepo,
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
		logger:     logger,
	}
}

func (s *reportService) Create(ctx context.Context, caller *Caller, input *ReportInput) (*models.Report, error) {
	if input.ReportedUserID == caller.UserID {
		return nil, utils.NewValidationError("you cannot report yourself", map[string]string{
			"reportedUserId": "must differ from your own id",
		})
	}

	if _, err := s.userRepo.GetByID(ctx, input.ReportedUserID); err != nil {
		return nil, err
	}

	if input.RatingID != nil {
		rating, err := s.ratingRepo.GetByID(ctx, *input.RatingID)
		if err != nil {
			return nil, err
		}
		if rating.RaterID != input.ReportedUserID && rating.RatedID != input.ReportedUserID {
			return nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{
				"ratingId": "rating does not involve the reported user",
			})
		}
	}

	if _, err := s.reportRepo.FindOpenByPair(ctx, caller.UserID, input.ReportedUserID); err == nil {
		return nil, utils.NewConflictError("you already have an open report for this user")
	} else if utils.KindOf(err) != utils.KindNotFound {
		return nil, err
	}

	report := &models.Report{
		ReporterID:     caller.UserID,
		ReportedUserID: input.ReportedUserID,
		RatingID:       input.RatingID,
		Type:           input.Type,
		Description:    input.Description,
		Status:         models.ReportStatusPending,
	}
	if err := s.reportRepo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.logger.LogSecurityEvent("user_reported", "low", map[string]interface{}{
		"report_id":        report.ID.Hex(),
		"reporter_id":      caller.UserID.Hex(),
		"reported_user_id": input.ReportedUserID.Hex(),
		"type":             input.Type,
	})
	return report, nil
}

func (s *reportService) ListMine(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Report, int64, error) {
	return s.reportRepo.ListByReporter(ctx, caller.UserID, params)
}
