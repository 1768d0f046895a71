package services

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConnectionService interface {
	Request(ctx context.Context, caller *Caller, targetID primitive.ObjectID) (*models.Connection, error)
	Accept(ctx context.Context, caller *Caller, connectionID primitive.ObjectID) (*models.Connection, error)
	Remove(ctx context.Context, caller *Caller, connectionID primitive.ObjectID) error
	List(ctx context.Context, caller *Caller, status models.ConnectionStatus, params *utils.PaginationParams) ([]*models.Connection, int64, error)
}

type connectionService struct {
	connectionRepo interfaces.ConnectionRepository
	blockRepo      interfaces.BlockRepository
	userRepo       interfaces.UserRepository
	activitySvc    ActivityService
	logger         *logger.Logger
}

func NewConnectionService(
	connectionRepo interfaces.ConnectionRepository,
	blockRepo interfaces.BlockRepository,
	userRepo interfaces.UserRepository,
	activitySvc ActivityService,
	logger *logger.Logger,
) ConnectionService {
	return &connectionService{
		connectionRepo: connectionRepo,
		blockRepo:      blockRepo,
		userRepo:       userRepo,
		activitySvc:    activitySvc,
		logger:         logger,
	}
}

func (s *connectionService) Request(ctx context.Context, caller *Caller, targetID primitive.ObjectID) (*models.Connection, error) {
	if targetID == caller.UserID {
		return nil, utils.NewValidationError("you cannot connect with yourself", map[string]string{
			"userId": "must differ from your own id",
		})
	}

	target, err := s.userRepo.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if target.Status == models.UserStatusBanned {
		return nil, utils.NewNotFoundError("user")
	}

	blocked, err := s.blockRepo.IsBlockedEither(ctx, caller.UserID, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, utils.NewAuthorizationError("you cannot connect with this user")
	}

	if _, err := s.connectionRepo.GetByPair(ctx, caller.UserID, targetID); err == nil {
		return nil, utils.NewConflictError("a connection between these users already exists")
	} else if utils.KindOf(err) != utils.KindNotFound {
		return nil, err
	}

	connection := &models.Connection{
		RequesterID: caller.UserID,
		AddresseeID: targetID,
		Status:      models.ConnectionStatusPending,
	}
	if err := s.connectionRepo.Create(ctx, connection); err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).LogUserAction(caller.UserID, "connection_requested", map[string]interface{}{
		"connection_id": connection.ID.Hex(),
		"addressee_id":  targetID.Hex(),
	})
	return connection, nil
}

func (s *connectionService) Accept(ctx context.Context, caller *Caller, connectionID primitive.ObjectID) (*models.Connection, error) {
	connection, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if !connection.Involves(caller.UserID) {
		return nil, utils.NewNotFoundError("connection")
	}
	if connection.AddresseeID != caller.UserID {
		return nil, utils.NewAuthorizationError("only the addressee can accept this connection")
	}
	if connection.Status != models.ConnectionStatusPending {
		return nil, utils.NewConflictError("connection is " + string(connection.Status))
	}

	connection, err = s.connectionRepo.UpdateStatus(ctx, connectionID, models.ConnectionStatusAccepted)
	if err != nil {
		return nil, err
	}

	s.activitySvc.Record(ctx, &models.Activity{
		Type:      models.ActivityConnectionAccepted,
		ActorID:   caller.UserID,
		SubjectID: connection.RequesterID,
		RefID:     &connection.ID,
	})

	s.logger.WithContext(ctx).LogUserAction(caller.UserID, utils.EventConnectionAccepted, map[string]interface{}{
		"connection_id": connection.ID.Hex(),
	})
	return connection, nil
}

// Remove deletes a pending or accepted connection. Blocked connections are
// only cleared by removing the block.
func (s *connectionService) Remove(ctx context.Context, caller *Caller, connectionID primitive.ObjectID) error {
	connection, err := s.connectionRepo.GetByID(ctx, connectionID)
	if err != nil {
		return err
	}
	if !connection.Involves(caller.UserID) {
		return utils.NewNotFoundError("connection")
	}
	if connection.Status == models.ConnectionStatusBlocked {
		return utils.NewAuthorizationError("connection is blocked")
	}

	return s.connectionRepo.Delete(ctx, connectionID)
}

func (s *connectionService) List(ctx context.Context, caller *Caller, status models.ConnectionStatus, params *utils.PaginationParams) ([]*models.Connection, int64, error) {
	switch status {
	case "", models.ConnectionStatusPending, models.ConnectionStatusAccepted, models.ConnectionStatusBlocked:
	default:
		return nil, 0, utils.NewValidationError(utils.ErrValidationFailed, map[string]string{
			"status": "must be one of: pending accepted blocked",
		})
	}
	return s.connectionRepo.ListForUser(ctx, caller.UserID, status, params)
}
