package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"credibly/internal/config"
	"credibly/internal/models"
	"credibly/internal/repositories/interfaces"
	"credibly/internal/utils"
	"credibly/internal/validators"
	"credibly/pkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService interface {
	// Authentication
	Register(ctx context.Context, request *validators.UserRegistrationRequest) (*AuthResponse, error)
	Login(ctx context.Context, request *validators.UserLoginRequest, ipAddress string) (*AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error)

	// Email verification
	VerifyEmail(ctx context.Context, token string) (*models.User, error)
	ResendVerification(ctx context.Context, email string) error

	// ResolveCaller turns a bearer token into the caller identity.
	ResolveCaller(ctx context.Context, bearerToken string) (*Caller, error)
}

type AuthResponse struct {
	User   *models.User     `json:"user"`
	Tokens *utils.TokenPair `json:"tokens"`
}

type authService struct {
	userRepo     interfaces.UserRepository
	activitySvc  ActivityService
	emailSender  EmailSender
	tokenManager *utils.TokenManager
	security     config.SecurityConfig
	baseURL      string
	logger       *logger.Logger

	// dummyHash keeps unknown-email logins as slow as wrong-password ones.
	dummyHash []byte
}

func NewAuthService(
	userRepo interfaces.UserRepository,
	activitySvc ActivityService,
	emailSender EmailSender,
	tokenManager *utils.TokenManager,
	security config.SecurityConfig,
	baseURL string,
	logger *logger.Logger,
) AuthService {
	cost := security.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	security.BcryptCost = cost

	dummyHash, _ := bcrypt.GenerateFromPassword([]byte("credibly-dummy-password"), cost)

	return &authService{
		userRepo:     userRepo,
		activitySvc:  activitySvc,
		emailSender:  emailSender,
		tokenManager: tokenManager,
		security:     security,
		baseURL:      strings.TrimRight(baseURL, "/"),
		logger:       logger,
		dummyHash:    dummyHash,
	}
}

func (s *authService) Register(ctx context.Context, request *validators.UserRegistrationRequest) (*AuthResponse, error) {
	if errs := validators.ValidateUserRegistration(request, s.security.PasswordMinLength); len(errs) > 0 {
		return nil, errs.AsError()
	}

	// Check if user already exists
	if _, err := s.userRepo.GetByEmail(ctx, request.Email); err == nil {
		return nil, utils.NewConflictError(utils.ErrUserExists)
	} else if utils.KindOf(err) != utils.KindNotFound {
		return nil, err
	}

	hashedPassword, err := s.hashPassword(request.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	token, tokenHash, expiresAt, err := s.newVerificationToken()
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:                 request.Email,
		PasswordHash:          hashedPassword,
		FirstName:             strings.TrimSpace(request.FirstName),
		LastName:              strings.TrimSpace(request.LastName),
		Headline:              strings.TrimSpace(request.Headline),
		Role:                  models.UserRoleUser,
		Status:                models.UserStatusActive,
		VerificationTokenHash: tokenHash,
		VerificationExpiresAt: &expiresAt,
	}

	// Create user in database; the unique email index catches a racing signup
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.tokenManager.GenerateTokenPair(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.sendVerificationEmail(ctx, user, token)

	s.activitySvc.Record(ctx, &models.Activity{
		Type:      models.ActivityUserJoined,
		ActorID:   user.ID,
		SubjectID: user.ID,
	})

	s.logger.WithContext(ctx).LogUserAction(user.ID, utils.EventUserRegistered, map[string]interface{}{
		"email": utils.MaskEmail(user.Email),
	})

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, request *validators.UserLoginRequest, ipAddress string) (*AuthResponse, error) {
	if errs := validators.ValidateStruct(request); len(errs) > 0 {
		return nil, errs.AsError()
	}

	email := utils.NormalizeEmail(request.Email)
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if utils.KindOf(err) != utils.KindNotFound {
			return nil, err
		}
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(request.Password))
		s.logFailedLogin(email, ipAddress, "unknown_email")
		return nil, utils.NewAuthenticationError(utils.ErrInvalidCredentials)
	}

	if !s.checkPassword(request.Password, user.PasswordHash) {
		s.logFailedLogin(email, ipAddress, "wrong_password")
		return nil, utils.NewAuthenticationError(utils.ErrInvalidCredentials)
	}

	if !user.CanAuthenticate() {
		s.logger.LogSecurityEvent("login_blocked", "medium", map[string]interface{}{
			"user_id": user.ID.Hex(),
			"status":  user.Status,
			"ip":      ipAddress,
		})
		return nil, utils.NewAuthorizationError("account is " + string(user.Status))
	}

	if err := s.userRepo.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Warn("Failed to update last login")
	}

	tokens, err := s.tokenManager.GenerateTokenPair(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.logger.WithContext(ctx).LogUserAction(user.ID, utils.EventUserLogin, map[string]interface{}{
		"ip": ipAddress,
	})

	return &AuthResponse{User: user, Tokens: tokens}, nil
}

func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*utils.TokenPair, error) {
	claims, err := s.tokenManager.ValidateToken(refreshToken, utils.TokenTypeRefresh)
	if err != nil {
		return nil, utils.NewAuthenticationError(utils.ErrInvalidToken)
	}

	user, err := s.loadActiveUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	tokens, err := s.tokenManager.GenerateTokenPair(user.ID, string(user.Role), user.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}
	return tokens, nil
}

func (s *authService) VerifyEmail(ctx context.Context, token string) (*models.User, error) {
	user, err := s.userRepo.GetByVerificationTokenHash(ctx, utils.HashToken(token))
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return nil, utils.NewValidationError("invalid or expired verification token", nil)
		}
		return nil, err
	}

	if user.VerificationExpiresAt == nil || time.Now().After(*user.VerificationExpiresAt) {
		return nil, utils.NewValidationError("invalid or expired verification token", nil)
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}
	user.Verified = true
	user.VerificationTokenHash = ""
	user.VerificationExpiresAt = nil

	s.logger.WithContext(ctx).LogUserAction(user.ID, utils.EventEmailVerified, nil)
	return user, nil
}

// ResendVerification succeeds silently for unknown or verified addresses so
// the endpoint cannot be used to probe accounts.
func (s *authService) ResendVerification(ctx context.Context, email string) error {
	user, err := s.userRepo.GetByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return nil
		}
		return err
	}
	if user.Verified || !user.CanAuthenticate() {
		return nil
	}

	token, tokenHash, expiresAt, err := s.newVerificationToken()
	if err != nil {
		return err
	}
	if err := s.userRepo.SetVerificationToken(ctx, user.ID, tokenHash, expiresAt); err != nil {
		return err
	}

	s.sendVerificationEmail(ctx, user, token)
	return nil
}

func (s *authService) ResolveCaller(ctx context.Context, bearerToken string) (*Caller, error) {
	if bearerToken == "" {
		return nil, utils.NewAuthenticationError("authorization token required")
	}

	claims, err := s.tokenManager.ValidateToken(bearerToken, utils.TokenTypeAccess)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, utils.NewAuthenticationError(utils.ErrTokenExpired)
		}
		return nil, utils.NewAuthenticationError(utils.ErrInvalidToken)
	}

	user, err := s.loadActiveUser(ctx, claims)
	if err != nil {
		return nil, err
	}

	return &Caller{
		UserID: user.ID,
		Role:   user.Role,
		Email:  user.Email,
	}, nil
}

// loadActiveUser re-reads the user so status and role changes apply to
// tokens that were issued earlier.
func (s *authService) loadActiveUser(ctx context.Context, claims *utils.JWTClaims) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		if utils.KindOf(err) == utils.KindNotFound {
			return nil, utils.NewAuthenticationError(utils.ErrInvalidToken)
		}
		return nil, err
	}
	if !user.CanAuthenticate() {
		return nil, utils.NewAuthenticationError("account is " + string(user.Status))
	}
	return user, nil
}

func (s *authService) newVerificationToken() (token, tokenHash string, expiresAt time.Time, err error) {
	token, err = utils.GenerateRandomString(utils.VerificationTokenLength)
	if err != nil {
		return "", "", time.Time{}, fmt.Errorf("failed to generate verification token: %w", err)
	}
	return token, utils.HashToken(token), time.Now().UTC().Add(s.security.VerificationTokenTTL), nil
}

func (s *authService) sendVerificationEmail(ctx context.Context, user *models.User, token string) {
	link := fmt.Sprintf("%s/verify-email?token=%s", s.baseURL, token)
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Confirm your email address to start rating on %s:</p><p><a href=\"%s\">Verify email</a></p>",
		user.FirstName, utils.AppName, link,
	)

	if err := s.emailSender.SendEmail(ctx, user.Email, "Verify your email", body); err != nil {
		s.logger.WithError(err).WithUserID(user.ID).Error("Failed to send verification email")
	}
}

func (s *authService) logFailedLogin(email, ipAddress, reason string) {
	s.logger.LogSecurityEvent("login_failed", "low", map[string]interface{}{
		"email":  utils.MaskEmail(email),
		"ip":     ipAddress,
		"reason": reason,
	})
}

// Helper methods
func (s *authService) hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), s.security.BcryptCost)
	return string(bytes), err
}

func (s *authService) checkPassword(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
