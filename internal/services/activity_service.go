package services

import (
	"context"
	"time"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/logger"
)

type ActivityService interface {
	// Record stores a feed entry. Failures are logged and swallowed.
	Record(ctx context.Context, activity *models.Activity)
	Feed(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Activity, int64, error)
}

type activityService struct {
	activityRepo   interfaces.ActivityRepository
	connectionRepo interfaces.ConnectionRepository
	blockRepo      interfaces.BlockRepository
	logger         *logger.Logger
}

func NewActivityService(
	activityRepo interfaces.ActivityRepository,
	connectionRepo interfaces.ConnectionRepository,
	blockRepo interfaces.BlockRepository,
	logger *logger.Logger,
) ActivityService {
	return &activityService{
		activityRepo:   activityRepo,
		connectionRepo: connectionRepo,
		blockRepo:      blockRepo,
		logger:         logger,
	}
}

func (s *activityService) Record(ctx context.Context, activity *models.Activity) {
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		s.logger.WithContext(ctx).WithError(err).WithField("type", activity.Type).Warn("Failed to record activity")
	}
}

// Feed lists activity by the caller and their accepted connections, minus
// anything involving a user blocked in either direction.
func (s *activityService) Feed(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Activity, int64, error) {
	peers, err := s.connectionRepo.AcceptedPeerIDs(ctx, caller.UserID)
	if err != nil {
		return nil, 0, err
	}
	excluded, err := s.blockRepo.RelatedUserIDs(ctx, caller.UserID)
	if err != nil {
		return nil, 0, err
	}

	userIDs := append(peers, caller.UserID)
	return s.activityRepo.ListForUsers(ctx, userIDs, excluded, params)
}
