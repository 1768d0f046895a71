package handlers

import (
	"strings"

	"credibly/internal/models"
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/internal/validators"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportHandler struct {
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
	}
}

// CreateReport files a report against a user, optionally about one rating
func (h *ReportHandler) CreateReport(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	var request validators.ReportCreateRequest
	if !bindJSON(c, &request) {
		return
	}
	request.Description = strings.TrimSpace(request.Description)
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	reportedID, _ := primitive.ObjectIDFromHex(request.ReportedUserID)
	input := &services.ReportInput{
		ReportedUserID: reportedID,
		Type:           models.ReportType(request.Type),
		Description:    request.Description,
	}
	if request.RatingID != "" {
		ratingID, _ := primitive.ObjectIDFromHex(request.RatingID)
		input.RatingID = &ratingID
	}

	report, err := h.reportService.Create(c.Request.Context(), caller, input)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Report submitted successfully", report)
}

func (h *ReportHandler) ListMyReports(c *gin.Context) {
	caller, ok := currentCaller(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	reports, total, err := h.reportService.ListMine(c.Request.Context(), caller, params)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	paginated(c, "Reports retrieved successfully", "reports", reports, params, total)
}
