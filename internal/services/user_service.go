package services

import (
	"context"

	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/internal/validators"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserService interface {
	GetMe(ctx context.Context, caller *Caller) (*models.User, error)
	GetProfile(ctx context.Context, caller *Caller, userID primitive.ObjectID) (*models.User, error)
	UpdateProfile(ctx context.Context, caller *Caller, request *validators.UserUpdateRequest) (*models.User, error)
	Search(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.User, int64, error)
}

type userService struct {
	userRepo  interfaces.UserRepository
	blockRepo interfaces.BlockRepository
	logger    *logger.Logger
}

func NewUserService(userRepo interfaces.UserRepository, blockRepo interfaces.BlockRepository, logger *logger.Logger) UserService {
	return &userService{
		userRepo:  userRepo,
		blockRepo: blockRepo,
		logger:    logger,
	}
}

func (s *userService) GetMe(ctx context.Context, caller *Caller) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, caller.UserID)
	if err != nil {
		return nil, err
	}
	return forDisplay(user), nil
}

// GetProfile hides banned users, and users who blocked the caller, from
// everyone but admins.
func (s *userService) GetProfile(ctx context.Context, caller *Caller, userID primitive.ObjectID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if !caller.IsAdmin() && userID != caller.UserID {
		if user.Status == models.UserStatusBanned {
			return nil, utils.NewNotFoundError("user")
		}
		blocked, err := s.blockRepo.Exists(ctx, userID, caller.UserID)
		if err != nil {
			return nil, err
		}
		if blocked {
			return nil, utils.NewNotFoundError("user")
		}
	}

	return forDisplay(user), nil
}

func (s *userService) UpdateProfile(ctx context.Context, caller *Caller, request *validators.UserUpdateRequest) (*models.User, error) {
	if errs := validators.ValidateUserUpdate(request); len(errs) > 0 {
		return nil, errs.AsError()
	}

	user, err := s.userRepo.UpdateProfile(ctx, caller.UserID, &models.UserProfileUpdate{
		FirstName: request.FirstName,
		LastName:  request.LastName,
		Headline:  request.Headline,
		Bio:       request.Bio,
		JobTitle:  request.JobTitle,
		Company:   request.Company,
		Location:  request.Location,
		AvatarURL: request.AvatarURL,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithContext(ctx).LogUserAction(caller.UserID, "profile_updated", nil)
	return forDisplay(user), nil
}

// Search lists active users for the directory. Admins see every status.
func (s *userService) Search(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.User, int64, error) {
	filter := &models.UserFilter{Search: params.Search}
	if !caller.IsAdmin() {
		filter.Status = models.UserStatusActive
	}

	users, total, err := s.userRepo.List(ctx, filter, params)
	if err != nil {
		return nil, 0, err
	}

	for i, user := range users {
		users[i] = forDisplay(user)
	}
	return users, total, nil
}

// forDisplay returns a copy with the aggregate rounded for presentation.
// The stored value keeps full precision.
func forDisplay(user *models.User) *models.User {
	out := *user
	out.AverageRating = utils.RoundTo(user.AverageRating, utils.RatingDisplayPrecision)
	return &out
}
