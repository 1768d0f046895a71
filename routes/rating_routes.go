package routes

import (
	"credibly/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRatingRoutes sets up routes for submitting and reading ratings
func SetupRatingRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, ratingHandler *handlers.RatingHandler) {
	ratings := r.Group("/ratings")
	ratings.Use(auth)
	{
		ratings.POST("", ratingHandler.CreateRating)
		ratings.GET("", ratingHandler.ListRatings)
		ratings.GET("/mine", ratingHandler.ListMyRatings)
		ratings.GET("/:id", ratingHandler.GetRating)
		ratings.PATCH("/:id", ratingHandler.UpdateRating)
		ratings.DELETE("/:id", ratingHandler.DeleteRating)
	}
}
