package handlers

import (
	"credibly/internal/services"
	"credibly/internal/utils"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	activityService services.ActivityService
}

func NewFeedHandler(activityService services.ActivityService) *FeedHandler {
	return &FeedHandler{activityService: activityService}
}

// GetFeed returns activity from the caller and their connections
func (h *FeedHandler) GetFeed(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	activities, total, err := h.activityService.Feed(c.Request.Context(), caller, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Feed retrieved successfully", "activities", activities, params, total)
}
