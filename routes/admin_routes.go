package routes

import (
	"credibly/internal/handlers"
	"credibly/internal/middleware"

	"github.com/gin-gonic/gin"
)

// SetupAdminRoutes sets up moderation and aggregate maintenance routes
func SetupAdminRoutes(r *gin.RouterGroup, auth gin.HandlerFunc, adminHandler *handlers.AdminHandler) {
	admin := r.Group("/admin")
	admin.Use(auth, middleware.AdminRequired())
	{
		// Moderation
		admin.GET("/reports", adminHandler.ListReports)
		admin.PATCH("/reports/:id", adminHandler.UpdateReport)
		admin.PATCH("/users/:id/status", adminHandler.UpdateUserStatus)

		// Aggregates
		admin.POST("/users/:id/recompute", adminHandler.RecomputeUser)
		admin.POST("/aggregates/rebuild", adminHandler.RebuildAggregates)

		admin.GET("/stats", adminHandler.GetStats)
		admin.GET("/audit-logs", adminHandler.ListAuditLogs)
	}
}
