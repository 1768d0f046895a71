package services

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type BlockService interface {
	Block(ctx context.Context, caller *Caller, targetID primitive.ObjectID, reason string) (*models.Block, error)
	Unblock(ctx context.Context, caller *Caller, targetID primitive.ObjectID) error
	List(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Block, int64, error)
}

type blockService struct {
	blockRepo      interfaces.BlockRepository
	connectionRepo interfaces.ConnectionRepository
	userRepo       interfaces.UserRepository
	logger         *logger.Logger
}

func NewBlockService(
	blockRepo interfaces.BlockRepository,
	connectionRepo interfaces.ConnectionRepository,
	userRepo interfaces.UserRepository,
	logger *logger.Logger,
) BlockService {
	return &blockService{
		blockRepo:      blockRepo,
		connectionRepo: connectionRepo,
		userRepo:       userRepo,
		logger:         logger,
	}
}

func (s *blockService) Block(ctx context.Context, caller *Caller, targetID primitive.ObjectID, reason string) (*models.Block, error) {
	if targetID == caller.UserID {
		return nil, utils.NewValidationError("you cannot block yourself", map[string]string{
			"userId": "must differ from your own id",
		})
	}

	if _, err := s.userRepo.GetByID(ctx, targetID); err != nil {
		return nil, err
	}

	exists, err := s.blockRepo.Exists(ctx, caller.UserID, targetID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, utils.NewConflictError("user is already blocked")
	}

	block := &models.Block{
		BlockerID: caller.UserID,
		BlockedID: targetID,
		Reason:    reason,
	}
	if err := s.blockRepo.Create(ctx, block); err != nil {
		return nil, err
	}

	connection, err := s.connectionRepo.GetByPair(ctx, caller.UserID, targetID)
	switch {
	case err == nil && connection.Status != models.ConnectionStatusBlocked:
		if _, err := s.connectionRepo.UpdateStatus(ctx, connection.ID, models.ConnectionStatusBlocked); err != nil {
			s.logger.WithContext(ctx).WithError(err).WithField("connection_id", connection.ID.Hex()).Warn("Failed to mark connection blocked")
		}
	case err != nil && utils.KindOf(err) != utils.KindNotFound:
		s.logger.WithContext(ctx).WithError(err).Warn("Failed to look up connection for block")
	}

	s.logger.WithContext(ctx).LogUserAction(caller.UserID, "user_blocked", map[string]interface{}{
		"blocked_id": targetID.Hex(),
	})
	return block, nil
}

// Unblock removes the caller's block. A connection left in the blocked state
// is deleted unless the other user still blocks the caller. Once the block is
// gone the call succeeds; connection cleanup failures are only logged.
func (s *blockService) Unblock(ctx context.Context, caller *Caller, targetID primitive.ObjectID) error {
	if err := s.blockRepo.Delete(ctx, caller.UserID, targetID); err != nil {
		return err
	}

	log := s.logger.WithContext(ctx)
	log.LogUserAction(caller.UserID, "user_unblocked", map[string]interface{}{
		"blocked_id": targetID.Hex(),
	})

	stillBlocked, err := s.blockRepo.Exists(ctx, targetID, caller.UserID)
	if err != nil {
		log.WithError(err).Warn("Failed to check reverse block after unblock")
		return nil
	}
	if stillBlocked {
		return nil
	}

	connection, err := s.connectionRepo.GetByPair(ctx, caller.UserID, targetID)
	if err != nil {
		if utils.KindOf(err) != utils.KindNotFound {
			log.WithError(err).Warn("Failed to look up connection for unblock")
		}
		return nil
	}
	if connection.Status == models.ConnectionStatusBlocked {
		if err := s.connectionRepo.Delete(ctx, connection.ID); err != nil && utils.KindOf(err) != utils.KindNotFound {
			log.WithError(err).WithField("connection_id", connection.ID.Hex()).Warn("Failed to remove blocked connection")
		}
	}
	return nil
}

func (s *blockService) List(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Block, int64, error) {
	return s.blockRepo.ListByBlocker(ctx, caller.UserID, params)
}
