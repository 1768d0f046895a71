package handlers

import (
	"credibly/internal/middleware"
	"credibly/internal/services"
	"credibly/internal/utils"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// currentCaller writes a 401 and returns false when no caller is set.
func currentCaller(c *gin.Context) (*services.Caller, bool) {
	caller, ok := middleware.GetCaller(c)
	if !ok {
		utils.UnauthorizedResponse(c)
		return nil, false
	}
	return caller, true
}

// pathID parses an ObjectID path parameter, writing a 400 on failure.
func pathID(c *gin.Context, name string) (primitive.ObjectID, bool) {
	id, err := utils.ParseObjectID(c.Param(name), name)
	if err != nil {
		utils.HandleError(c, err)
		return primitive.NilObjectID, false
	}
	return id, true
}

func bindJSON(c *gin.Context, request interface{}) bool {
	if err := c.ShouldBindJSON(request); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return false
	}
	return true
}

func paginated(c *gin.Context, message, key string, items interface{}, params *utils.PaginationParams, total int64) {
	utils.SuccessResponseWithMeta(c, message, gin.H{key: items}, &utils.Meta{
		Pagination: utils.CreatePaginationMeta(params, total),
		RequestID:  c.GetString(middleware.RequestIDKey),
	})
}
