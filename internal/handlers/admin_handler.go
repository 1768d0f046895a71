package handlers

import (
	"net/http"

	"credibly/internal/models"
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/internal/validators"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	adminService services.AdminService
}

func NewAdminHandler(adminService services.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

func (h *AdminHandler) ListReports(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	status := models.ReportStatus(c.Query("status"))

	reports, total, err := h.adminService.ListReports(c.Request.Context(), status, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Reports retrieved successfully", "reports", reports, params, total)
}

// UpdateReport triages a report and optionally applies a moderation action
func (h *AdminHandler) UpdateReport(c *gin.Context) {
	admin, ok := currentCaller(c)
	if !ok {
		return
	}
	reportID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.ReportStatusUpdateRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	report, err := h.adminService.UpdateReport(c.Request.Context(), admin, reportID, &services.ReportDecision{
		Status:    models.ReportStatus(request.Status),
		AdminNote: request.AdminNote,
		Action:    models.ModerationAction(request.Action),
	}, c.ClientIP())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Report updated successfully", report)
}

func (h *AdminHandler) UpdateUserStatus(c *gin.Context) {
	admin, ok := currentCaller(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	var request validators.UserStatusUpdateRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	user, err := h.adminService.UpdateUserStatus(c.Request.Context(), admin, userID, models.UserStatus(request.Status), request.Reason, c.ClientIP())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "User status updated successfully", user)
}

func (h *AdminHandler) RecomputeUser(c *gin.Context) {
	admin, ok := currentCaller(c)
	if !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	aggregate, err := h.adminService.RecomputeUser(c.Request.Context(), admin, userID, c.ClientIP())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Aggregate recomputed successfully", aggregate)
}

// RebuildAggregates starts a full rebuild in the background
func (h *AdminHandler) RebuildAggregates(c *gin.Context) {
	admin, ok := currentCaller(c)
	if !ok {
		return
	}

	if err := h.adminService.RebuildAggregates(c.Request.Context(), admin, c.ClientIP()); err != nil {
		utils.HandleError(c, err)
		return
	}

	c.JSON(http.StatusAccepted, utils.APIResponse{
		Status:  utils.StatusSuccess,
		Message: "Aggregate rebuild started",
	})
}

func (h *AdminHandler) GetStats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Stats retrieved successfully", stats)
}

func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	logs, total, err := h.adminService.ListAuditLogs(c.Request.Context(), params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Audit logs retrieved successfully", "auditLogs", logs, params, total)
}
