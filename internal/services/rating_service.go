package services

import (
	"context"
	"fmt"

	"credibly/internal/config"
	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/internal/validators"
	"credibly/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingService interface {
	Create(ctx context.Context, caller *Caller, input *RatingInput) (*models.Rating, error)
	Update(ctx context.Context, caller *Caller, ratingID primitive.ObjectID, patch *RatingPatch) (*models.Rating, error)
	Delete(ctx context.Context, caller *Caller, ratingID primitive.ObjectID) error
	Get(ctx context.Context, ratingID primitive.ObjectID) (*models.Rating, error)

	ListForRatee(ctx context.Context, rateeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RatingWithRater, int64, error)
	ListMine(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Rating, int64, error)
	Summary(ctx context.Context, userID primitive.ObjectID) (*models.RatingSummary, error)
}

// RatingInput is a validated create request. A zero Overall is derived from
// the three criteria.
type RatingInput struct {
	RatedID  primitive.ObjectID
	Criteria models.RatingCriteria
	Comment  string
}

// RatingPatch holds the fields of a partial update. Nil means unchanged.
type RatingPatch struct {
	Professionalism *int
	Timeliness      *int
	Communication   *int
	Overall         *int
	Comment         *string
}

type ratingService struct {
	ratingRepo  interfaces.RatingRepository
	userRepo    interfaces.UserRepository
	blockRepo   interfaces.BlockRepository
	auditRepo   interfaces.AuditLogRepository
	aggregator  RatingAggregator
	activitySvc ActivityService
	config      config.RatingsConfig
	logger      *logger.Logger
}

func NewRatingService(
	ratingRepo interfaces.RatingRepository,
	userRepo interfaces.UserRepository,
	blockRepo interfaces.BlockRepository,
	auditRepo interfaces.AuditLogRepository,
	aggregator RatingAggregator,
	activitySvc ActivityService,
	cfg config.RatingsConfig,
	logger *logger.Logger,
) RatingService {
	return &ratingService{
		ratingRepo:  ratingRepo,
		userRepo:    userRepo,
		blockRepo:   blockRepo,
		auditRepo:   auditRepo,
		aggregator:  aggregator,
		activitySvc: activitySvc,
		config:      cfg,
		logger:      logger,
	}
}

func (s *ratingService) Create(ctx context.Context, caller *Caller, input *RatingInput) (*models.Rating, error) {
	if input.RatedID == caller.UserID {
		return nil, utils.NewValidationError("you cannot rate yourself", map[string]string{
			"ratedUserId": "must differ from the rater",
		})
	}

	criteria := input.Criteria
	if criteria.Overall == 0 {
		criteria.Overall = models.DeriveOverall(criteria.Professionalism, criteria.Timeliness, criteria.Communication)
	}
	if err := s.checkContent(criteria, input.Comment); err != nil {
		return nil, err
	}

	if s.config.RequireVerified {
		rater, err := s.userRepo.GetByID(ctx, caller.UserID)
		if err != nil {
			return nil, err
		}
		if !rater.Verified {
			return nil, utils.NewAuthorizationError("verify your email address before rating")
		}
	}

	ratee, err := s.userRepo.GetByID(ctx, input.RatedID)
	if err != nil {
		return nil, err
	}
	if ratee.Status == models.UserStatusBanned {
		return nil, utils.NewNotFoundError("user")
	}

	blocked, err := s.blockRepo.IsBlockedEither(ctx, caller.UserID, input.RatedID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, utils.NewAuthorizationError("you cannot rate this user")
	}

	if s.config.OnePerPair {
		_, err := s.ratingRepo.FindByPair(ctx, caller.UserID, input.RatedID)
		if err == nil {
			return nil, utils.NewConflictError("you have already rated this user")
		}
		if utils.KindOf(err) != utils.KindNotFound {
			return nil, err
		}
	}

	rating := &models.Rating{
		RaterID:  caller.UserID,
		RatedID:  input.RatedID,
		Criteria: criteria,
		Comment:  input.Comment,
	}
	if err := s.ratingRepo.Create(ctx, rating); err != nil {
		return nil, err
	}

	s.aggregator.RecomputeOrEnqueue(ctx, rating.RatedID, TriggerCreate)

	s.activitySvc.Record(ctx, &models.Activity{
		Type:      models.ActivityRatingReceived,
		ActorID:   rating.RaterID,
		SubjectID: rating.RatedID,
		RefID:     &rating.ID,
		Metadata:  map[string]interface{}{"overall": rating.Criteria.Overall},
	})

	s.logger.WithContext(ctx).LogRatingEvent(rating.ID, rating.RatedID, utils.EventRatingCreated, map[string]interface{}{
		"rater_id": rating.RaterID.Hex(),
		"overall":  rating.Criteria.Overall,
	})

	return rating, nil
}

func (s *ratingService) Update(ctx context.Context, caller *Caller, ratingID primitive.ObjectID, patch *RatingPatch) (*models.Rating, error) {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return nil, err
	}
	if rating.RaterID != caller.UserID {
		return nil, utils.NewAuthorizationError("only the rater can edit this rating")
	}

	criteria := rating.Criteria
	criterionPatched := patch.Professionalism != nil || patch.Timeliness != nil || patch.Communication != nil
	if patch.Professionalism != nil {
		criteria.Professionalism = *patch.Professionalism
	}
	if patch.Timeliness != nil {
		criteria.Timeliness = *patch.Timeliness
	}
	if patch.Communication != nil {
		criteria.Communication = *patch.Communication
	}
	// Overall is only re-derived when a criterion changed and the patch
	// does not carry its own.
	switch {
	case patch.Overall != nil:
		criteria.Overall = *patch.Overall
	case criterionPatched:
		criteria.Overall = models.DeriveOverall(criteria.Professionalism, criteria.Timeliness, criteria.Communication)
	}

	comment := rating.Comment
	if patch.Comment != nil {
		comment = *patch.Comment
	}

	if err := s.checkContent(criteria, comment); err != nil {
		return nil, err
	}

	scoresChanged := criteria != rating.Criteria
	rating.Criteria = criteria
	rating.Comment = comment

	if err := s.ratingRepo.Update(ctx, rating); err != nil {
		return nil, err
	}

	if scoresChanged {
		s.aggregator.RecomputeOrEnqueue(ctx, rating.RatedID, TriggerUpdate)
	}

	s.logger.WithContext(ctx).LogRatingEvent(rating.ID, rating.RatedID, utils.EventRatingUpdated, map[string]interface{}{
		"rater_id":       rating.RaterID.Hex(),
		"scores_changed": scoresChanged,
	})

	return rating, nil
}

func (s *ratingService) Delete(ctx context.Context, caller *Caller, ratingID primitive.ObjectID) error {
	rating, err := s.ratingRepo.GetByID(ctx, ratingID)
	if err != nil {
		return err
	}

	isRater := rating.RaterID == caller.UserID
	if !isRater && !caller.IsAdmin() {
		return utils.NewAuthorizationError("only the rater or an admin can delete this rating")
	}

	if err := s.ratingRepo.Delete(ctx, ratingID); err != nil {
		return err
	}

	s.aggregator.RecomputeOrEnqueue(ctx, rating.RatedID, TriggerDelete)

	if !isRater {
		entry := &models.AuditLog{
			AdminID:    caller.UserID,
			Action:     models.AuditActionRatingDeleted,
			Resource:   "rating",
			ResourceID: rating.ID.Hex(),
			OldValues: map[string]interface{}{
				"rater_id": rating.RaterID.Hex(),
				"rated_id": rating.RatedID.Hex(),
				"overall":  rating.Criteria.Overall,
				"comment":  rating.Comment,
			},
		}
		if err := s.auditRepo.Create(ctx, entry); err != nil {
			s.logger.WithContext(ctx).WithError(err).Error("Failed to write audit log")
		}
	}

	s.logger.WithContext(ctx).LogRatingEvent(rating.ID, rating.RatedID, utils.EventRatingDeleted, map[string]interface{}{
		"deleted_by": caller.UserID.Hex(),
		"by_admin":   !isRater,
	})

	return nil
}

func (s *ratingService) Get(ctx context.Context, ratingID primitive.ObjectID) (*models.Rating, error) {
	return s.ratingRepo.GetByID(ctx, ratingID)
}

func (s *ratingService) ListForRatee(ctx context.Context, rateeID primitive.ObjectID, params *utils.PaginationParams) ([]*models.RatingWithRater, int64, error) {
	if _, err := s.userRepo.GetByID(ctx, rateeID); err != nil {
		return nil, 0, err
	}
	return s.ratingRepo.ListForRatee(ctx, rateeID, params)
}

func (s *ratingService) ListMine(ctx context.Context, caller *Caller, params *utils.PaginationParams) ([]*models.Rating, int64, error) {
	return s.ratingRepo.ListByRater(ctx, caller.UserID, params)
}

// Summary reads the stored aggregate and rounds it for display. The
// distribution is computed live.
func (s *ratingService) Summary(ctx context.Context, userID primitive.ObjectID) (*models.RatingSummary, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	distribution, err := s.ratingRepo.GetDistribution(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load rating distribution: %w", err)
	}

	return &models.RatingSummary{
		UserID:        user.ID,
		AverageRating: utils.RoundTo(user.AverageRating, utils.RatingDisplayPrecision),
		TotalRatings:  user.TotalRatings,
		Distribution:  distribution,
	}, nil
}

func (s *ratingService) checkContent(criteria models.RatingCriteria, comment string) error {
	details := make(map[string]string)
	scores := map[string]int{
		"criteria.professionalism": criteria.Professionalism,
		"criteria.timeliness":      criteria.Timeliness,
		"criteria.communication":   criteria.Communication,
		"criteria.overall":         criteria.Overall,
	}
	for field, score := range scores {
		if !validators.IsValidScore(score) {
			details[field] = fmt.Sprintf("must be an integer between %d and %d", utils.MinScore, utils.MaxScore)
		}
	}
	if utils.CharCount(comment) > s.config.CommentMaxLength {
		details["comment"] = fmt.Sprintf("must be at most %d characters", s.config.CommentMaxLength)
	}

	if len(details) > 0 {
		return utils.NewValidationError(utils.ErrValidationFailed, details)
	}
	return nil
}
