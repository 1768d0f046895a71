package handlers

import (
	"credibly/internal/models"
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type RatingHandler struct {
	ratingService    services.RatingService
	commentMaxLength int
}

func NewRatingHandler(ratingService services.RatingService, commentMaxLength int) *RatingHandler {
	return &RatingHandler{
		ratingService:    ratingService,
		commentMaxLength: commentMaxLength,
	}
}

// CreateRating submits a rating of another user
func (h *RatingHandler) CreateRating(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var request validators.RatingCreateRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateRatingCreate(&request, h.commentMaxLength); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	if request.RaterUserID != "" && request.RaterUserID != caller.UserID.Hex() {
		utils.HandleError(c, utils.NewAuthorizationError("you can only submit ratings as yourself"))
		return
	}

	ratedID, _ := primitive.ObjectIDFromHex(request.RatedUserID)
	input := &services.RatingInput{
		RatedID: ratedID,
		Criteria: models.RatingCriteria{
			Professionalism: request.Criteria.Professionalism,
			Timeliness:      request.Criteria.Timeliness,
			Communication:   request.Criteria.Communication,
		},
		Comment: request.Comment,
	}
	if request.Criteria.Overall != nil {
		input.Criteria.Overall = *request.Criteria.Overall
	}

	rating, err := h.ratingService.Create(c.Request.Context(), caller, input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Rating submitted successfully", rating)
}

// ListRatings lists ratings received by a user, newest first
func (h *RatingHandler) ListRatings(c *gin.Context) {
	var query validators.RatingListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		utils.BadRequestResponse(c, "Invalid query parameters")
		return
	}
	if errs := validators.ValidateStruct(&query); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	ratedID, _ := primitive.ObjectIDFromHex(query.RatedUserID)
	params := utils.GetPaginationParams(c)

	ratings, total, err := h.ratingService.ListForRatee(c.Request.Context(), ratedID, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Ratings retrieved successfully", "ratings", ratings, params, total)
}

// ListMyRatings lists ratings the caller has given
func (h *RatingHandler) ListMyRatings(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	ratings, total, err := h.ratingService.ListMine(c.Request.Context(), caller, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Ratings retrieved successfully", "ratings", ratings, params, total)
}

func (h *RatingHandler) GetRating(c *gin.Context) {
	ratingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	rating, err := h.ratingService.Get(c.Request.Context(), ratingID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Rating retrieved successfully", rating)
}

// UpdateRating partially updates a rating. Only the rater may edit.
func (h *RatingHandler) UpdateRating(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	ratingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.RatingUpdateRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateRatingUpdate(&request, h.commentMaxLength); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	patch := &services.RatingPatch{Comment: request.Comment}
	if request.Criteria != nil {
		patch.Professionalism = request.Criteria.Professionalism
		patch.Timeliness = request.Criteria.Timeliness
		patch.Communication = request.Criteria.Communication
		patch.Overall = request.Criteria.Overall
	}

	rating, err := h.ratingService.Update(c.Request.Context(), caller, ratingID, patch)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Rating updated successfully", rating)
}

// DeleteRating removes a rating. The rater or an admin may delete.
func (h *RatingHandler) DeleteRating(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	ratingID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.ratingService.Delete(c.Request.Context(), caller, ratingID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Rating deleted successfully", nil)
}
