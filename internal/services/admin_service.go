package services

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const rebuildTimeout = 30 * time.Minute

type AdminService interface {
	// Reports
	ListReports(ctx context.Context, status models.ReportStatus, params *utils.PaginationParams) ([]*models.Report, int64, error)
	UpdateReport(ctx context.Context, admin *Caller, reportID primitive.ObjectID, decision *ReportDecision, ipAddress string) (*models.Report, error)

	// Users
	UpdateUserStatus(ctx context.Context, admin *Caller, userID primitive.ObjectID, status models.UserStatus, reason, ipAddress string) (*models.User, error)

	// Aggregates
	RecomputeUser(ctx context.Context, admin *Caller, userID primitive.ObjectID, ipAddress string) (models.RatingAggregate, error)
	// RebuildAggregates starts a background rebuild. Only one runs at a time.
	RebuildAggregates(ctx context.Context, admin *Caller, ipAddress string) error
	Wait()

	Stats(ctx context.Context) (*models.AdminStats, error)
	ListAuditLogs(ctx context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error)
}

type ReportDecision struct {
	Status    models.ReportStatus
	AdminNote string
	Action    models.ModerationAction
}

type adminService struct {
	userRepo   interfaces.UserRepository
	ratingRepo interfaces.RatingRepository
	reportRepo interfaces.ReportRepository
	auditRepo  interfaces.AuditLogRepository
	transactor interfaces.Transactor
	aggregator RatingAggregator
	queue      StaleAggregateQueue
	logger     *logger.Logger

	rebuilding atomic.Bool
	wg         sync.WaitGroup
}

func NewAdminService(
	userRepo interfaces.UserRepository,
	ratingRepo interfaces.RatingRepository,
	reportRepo interfaces.ReportRepository,
	auditRepo interfaces.AuditLogRepository,
	transactor interfaces.Transactor,
	aggregator RatingAggregator,
	queue StaleAggregateQueue,
	logger *logger.Logger,
) AdminService {
	return &adminService{
		userRepo:   userRepo,
		ratingRepo: ratingRepo,
		reportRepo: reportRepo,
		auditRepo:  auditRepo,
		transactor: transactor,
		aggregator: aggregator,
		queue:      queue,
		logger:     logger,
	}
}

func (s *adminService) ListReports(ctx context.Context, status models.ReportStatus, params *utils.PaginationParams) ([]*models.Report, int64, error) {
	switch status {
	case "", models.ReportStatusPending, models.ReportStatusReviewing, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		return nil, 0, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{
			"status": "must be one of: pending reviewing resolved dismissed",
		})
	}
	return s.reportRepo.List(ctx, status, params)
}

// UpdateReport moves a report through triage. A resolution with a suspend
// or ban action changes the reported user's status in the same transaction.
func (s *adminService) UpdateReport(ctx context.Context, admin *Caller, reportID primitive.ObjectID, decision *ReportDecision, ipAddress string) (*models.Report, error) {
	if !admin.IsAdmin() {
		return nil, utils.NewAuthorizationError(utils.ErrForbidden)
	}

	if decision.Action == "" {
		decision.Action = models.ModerationActionNone
	}
	if decision.Action != models.ModerationActionNone && decision.Status != models.ReportStatusResolved {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{
			"action": "a moderation action requires status resolved",
		})
	}

	report, err := s.reportRepo.GetByID(ctx, reportID)
	if err != nil {
		return nil, err
	}
	if !report.Status.IsOpen() {
		return nil, utils.NewConflictError("report is already " + string(report.Status))
	}

	newUserStatus := userStatusFor(decision.Action)

	var updated *models.Report
	err = s.transactor.WithTransaction(ctx, func(txCtx context.Context) error {
		var err error
		updated, err = s.reportRepo.UpdateStatus(txCtx, reportID, &models.ReportStatusUpdate{
			Status:     decision.Status,
			AdminNote:  decision.AdminNote,
			Action:     decision.Action,
			ResolvedBy: admin.UserID,
		})
		if err != nil {
			return err
		}
		if newUserStatus != "" {
			return s.userRepo.UpdateStatus(txCtx, report.ReportedUserID, newUserStatus)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if newUserStatus != "" {
		// A read between the in-transaction write and the commit can
		// re-cache the old status.
		s.userRepo.InvalidateCache(ctx, report.ReportedUserID)
	}

	s.audit(ctx, &models.AuditLog{
		AdminID:    admin.UserID,
		Action:     models.AuditActionReportUpdated,
		Resource:   "report",
		ResourceID: reportID.Hex(),
		OldValues:  map[string]interface{}{"status": report.Status},
		NewValues: map[string]interface{}{
			"status":     decision.Status,
			"action":     decision.Action,
			"admin_note": decision.AdminNote,
		},
		IPAddress: ipAddress,
	})
	if newUserStatus != "" {
		s.audit(ctx, &models.AuditLog{
			AdminID:    admin.UserID,
			Action:     models.AuditActionUserStatusChanged,
			Resource:   "user",
			ResourceID: report.ReportedUserID.Hex(),
			NewValues: map[string]interface{}{
				"status":    newUserStatus,
				"report_id": reportID.Hex(),
			},
			IPAddress: ipAddress,
		})
	}

	return updated, nil
}

func (s *adminService) UpdateUserStatus(ctx context.Context, admin *Caller, userID primitive.ObjectID, status models.UserStatus, reason, ipAddress string) (*models.User, error) {
	if !admin.IsAdmin() {
		return nil, utils.NewAuthorizationError(utils.ErrForbidden)
	}
	if !status.Valid() {
		return nil, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{
			"status": "must be one of: active suspended banned",
		})
	}
	if userID == admin.UserID {
		return nil, utils.NewValidationError("you cannot change your own status", nil)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	previous := user.Status

	if previous != status {
		if err := s.userRepo.UpdateStatus(ctx, userID, status); err != nil {
			return nil, err
		}
		user.Status = status

		s.audit(ctx, &models.AuditLog{
			AdminID:    admin.UserID,
			Action:     models.AuditActionUserStatusChanged,
			Resource:   "user",
			ResourceID: userID.Hex(),
			OldValues:  map[string]interface{}{"status": previous},
			NewValues:  map[string]interface{}{"status": status, "reason": reason},
			IPAddress:  ipAddress,
		})
	}

	return forDisplay(user), nil
}

func (s *adminService) RecomputeUser(ctx context.Context, admin *Caller, userID primitive.ObjectID, ipAddress string) (models.RatingAggregate, error) {
	aggregate, err := s.aggregator.Recompute(ctx, userID, TriggerAdmin)
	if err != nil {
		return models.RatingAggregate{}, err
	}

	s.audit(ctx, &models.AuditLog{
		AdminID:    admin.UserID,
		Action:     models.AuditActionAggregateRebuilt,
		Resource:   "user",
		ResourceID: userID.Hex(),
		NewValues: map[string]interface{}{
			"average_rating": aggregate.AverageRating,
			"total_ratings":  aggregate.TotalRatings,
		},
		IPAddress: ipAddress,
	})

	aggregate.AverageRating = utils.RoundTo(aggregate.AverageRating, utils.RatingDisplayPrecision)
	return aggregate, nil
}

func (s *adminService) RebuildAggregates(ctx context.Context, admin *Caller, ipAddress string) error {
	if !s.rebuilding.CompareAndSwap(false, true) {
		return utils.NewConflictError("an aggregate rebuild is already running")
	}

	s.audit(ctx, &models.AuditLog{
		AdminID:   admin.UserID,
		Action:    models.AuditActionAggregateRebuilt,
		Resource:  "aggregates",
		IPAddress: ipAddress,
	})

	rebuildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rebuildTimeout)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		defer s.rebuilding.Store(false)

		if _, _, err := s.aggregator.RebuildAll(rebuildCtx); err != nil {
			s.logger.WithError(err).Error("Aggregate rebuild failed")
		}
	}()

	return nil
}

// Wait blocks until a running rebuild finishes.
func (s *adminService) Wait() {
	s.wg.Wait()
}

func (s *adminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	var (
		stats models.AdminStats
		err   error
	)

	if stats.TotalUsers, err = s.userRepo.Count(ctx, &models.UserFilter{}); err != nil {
		return nil, err
	}
	if stats.SuspendedUsers, err = s.userRepo.Count(ctx, &models.UserFilter{Status: models.UserStatusSuspended}); err != nil {
		return nil, err
	}
	if stats.BannedUsers, err = s.userRepo.Count(ctx, &models.UserFilter{Status: models.UserStatusBanned}); err != nil {
		return nil, err
	}
	if stats.TotalRatings, err = s.ratingRepo.Count(ctx); err != nil {
		return nil, err
	}
	if stats.OpenReports, err = s.reportRepo.CountOpen(ctx); err != nil {
		return nil, err
	}
	if stats.StaleQueue, err = s.queue.Len(ctx); err != nil {
		s.logger.WithError(err).Warn("Failed to read stale queue depth")
		stats.StaleQueue = -1
	}

	return &stats, nil
}

func (s *adminService) ListAuditLogs(ctx context.Context, params *utils.PaginationParams) ([]*models.AuditLog, int64, error) {
	return s.auditRepo.List(ctx, params)
}

func (s *adminService) audit(ctx context.Context, entry *models.AuditLog) {
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("action", entry.Action).Error("Failed to write audit log")
	}
}

func userStatusFor(action models.ModerationAction) models.UserStatus {
	switch action {
	case models.ModerationActionSuspend:
		return models.UserStatusSuspended
	case models.ModerationActionBan:
		return models.UserStatusBanned
	}
	return ""
}
