package handlers

import (
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/internal/validators"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService   services.UserService
	ratingService services.RatingService
}

func NewUserHandler(userService services.UserService, ratingService services.RatingService) *UserHandler {
	return &UserHandler{
		userService:   userService,
		ratingService: ratingService,
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	user, err := h.userService.GetMe(c.Request.Context(), caller)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile retrieved successfully", user)
}

func (h *UserHandler) UpdateMe(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var request validators.UserUpdateRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateUserUpdate(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), caller, &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Profile updated successfully", user)
}

// GetUser returns a public profile with rounded rating aggregates
func (h *UserHandler) GetUser(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetProfile(c.Request.Context(), caller, userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User retrieved successfully", user)
}

func (h *UserHandler) GetRatingSummary(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	// Visibility rules match the profile.
	if _, err := h.userService.GetProfile(c.Request.Context(), caller, userID); err != nil {
		utils.HandleError(c, err)
		return
	}

	summary, err := h.ratingService.Summary(c.Request.Context(), userID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Rating summary retrieved successfully", summary)
}

func (h *UserHandler) SearchUsers(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	users, total, err := h.userService.Search(c.Request.Context(), caller, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Users retrieved successfully", "users", users, params, total)
}
