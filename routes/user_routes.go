package routes

import (
	"credibly/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupUserRoutes sets up profile and directory routes
func SetupUserRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, userHandler *handlers.UserHandler, feedHandler *handlers.FeedHandler) {
	users := r.Group("/users")
	users.Use(auth)
	{
		users.GET("", userHandler.SearchUsers)
		users.GET("/me", userHandler.GetMe)
		users.PATCH("/me", userHandler.UpdateMe)
		users.GET("/:id", userHandler.GetUser)
		users.GET("/:id/rating-summary", userHandler.GetRatingSummary)
	}

	r.GET("/feed", auth, feedHandler.GetFeed)
}
