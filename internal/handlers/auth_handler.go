package handlers

import (
	"credibly/internal/services"
	"credibly/internal/utils"
	"credibly/internal/validators"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var request validators.UserRegistrationRequest
	if !bindJSON(c, &request) {
		return
	}

	response, err := h.authService.Register(c.Request.Context(), &request)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.CreatedResponse(c, "Registration successful, check your email to verify your account", response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var request validators.UserLoginRequest
	if !bindJSON(c, &request) {
		return
	}

	response, err := h.authService.Login(c.Request.Context(), &request, c.ClientIP())
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Login successful", response)
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var request validators.VerifyEmailRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	user, err := h.authService.VerifyEmail(c.Request.Context(), request.Token)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Email verified successfully", user)
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var request validators.ResendVerificationRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), request.Email); err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "If the account exists and is unverified, a new email has been sent", nil)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var request validators.RefreshTokenRequest
	if !bindJSON(c, &request) {
		return
	}
	if errs := validators.ValidateStruct(&request); len(errs) > 0 {
		utils.ValidationErrorResponse(c, errs.Details())
		return
	}

	tokens, err := h.authService.RefreshToken(c.Request.Context(), request.RefreshToken)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, "Token refreshed successfully", tokens)
}
