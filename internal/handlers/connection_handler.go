package handlers

import (
	"credibly/internal/models"
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConnectionHandler struct {
	connectionService services.ConnectionService
	blockService      services.BlockService
}

func NewConnectionHandler(connectionService services.ConnectionService, blockService services.BlockService) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
		blockService:      blockService,
	}
}

// RequestConnection sends a connection request to another user
func (h *ConnectionHandler) RequestConnection(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var request validators.ConnectionRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	targetID, _ := primitive.ObjectIDFromHex(request.UserID)
	connection, err := h.connectionService.Request(c.Request.Context(), caller, targetID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Connection requested successfully", connection)
}

func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	status := models.ConnectionStatus(c.Query("status"))

	connections, total, err := h.connectionService.List(c.Request.Context(), caller, status, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Connections retrieved successfully", "connections", connections, params, total)
}

func (h *ConnectionHandler) AcceptConnection(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	connectionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	connection, err := h.connectionService.Accept(c.Request.Context(), caller, connectionID)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Connection accepted successfully", connection)
}

func (h *ConnectionHandler) RemoveConnection(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	connectionID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.connectionService.Remove(c.Request.Context(), caller, connectionID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Connection removed successfully", nil)
}

// BlockUser blocks another user and freezes any connection with them
func (h *ConnectionHandler) BlockUser(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var request validators.BlockRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	targetID, _ := primitive.ObjectIDFromHex(request.UserID)
	block, err := h.blockService.Block(c.Request.Context(), caller, targetID, request.Reason)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "User blocked successfully", block)
}

func (h *ConnectionHandler) ListBlocks(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	blocks, total, err := h.blockService.List(c.Request.Context(), caller, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Blocks retrieved successfully", "blocks", blocks, params, total)
}

func (h *ConnectionHandler) UnblockUser(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}
	targetID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	if err := h.blockService.Unblock(c.Request.Context(), caller, targetID); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User unblocked successfully", nil)
}
