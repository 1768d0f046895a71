package routes

import (
	"credibly/internal/handlers"

	"github.com/gin-gonic/gin"
)

// SetupRelationshipRoutes sets up connection, block and report routes
func SetupRelationshipRoutes(
	r *gin.RouterGroup,
	auth gin.HandlerFunc,
	connectionHandler *handlers.ConnectionHandler,
	reportHandler *handlers.ReportHandler,
) {
	connections := r.Group("/connections")
	connections.Use(auth)
	{
		connections.POST("", connectionHandler.RequestConnection)
		connections.GET("", connectionHandler.ListConnections)
		connections.POST("/:id/accept", connectionHandler.AcceptConnection)
		connections.DELETE("/:id", connectionHandler.RemoveConnection)
	}

	blocks := r.Group("/blocks")
	blocks.Use(auth)
	{
		blocks.POST("", connectionHandler.BlockUser)
		blocks.GET("", connectionHandler.ListBlocks)
		blocks.DELETE("/:userId", connectionHandler.UnblockUser)
	}

	reports := r.Group("/reports")
	reports.Use(auth)
	{
		reports.POST("", reportHandler.CreateReport)
		reports.GET("/mine", reportHandler.ListMyReports)
	}
}
