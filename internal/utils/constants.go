package utils

import "time"

// Application Constants
const (
	AppName    = "Credibly"
	AppVersion = "1.0.0"

	// Pagination
	DefaultPageSize = 20
	MaxPageSize     = 100
	MinPageSize     = 1

	// Authentication
	PasswordMaxLength       = 128
	VerificationTokenLength = 48
	TokenTypeAccess         = "access"
	TokenTypeRefresh        = "refresh"

	// Ratings
	MinScore               = 1
	MaxScore               = 5
	RatingDisplayPrecision = 2

	// Cache
	UserCacheTTL = 15 * time.Minute
)

// HTTP Status Messages
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Error Messages
const (
	ErrInvalidCredentials = "invalid credentials"
	ErrUserNotFound       = "user not found"
	ErrUserExists         = "user already exists"
	ErrInvalidToken       = "invalid token"
	ErrTokenExpired       = "token expired"
	ErrInvalidInput       = "invalid input"
	ErrInternalServer     = "internal server error"
	ErrUnauthorized       = "unauthorized"
	ErrForbidden          = "forbidden"
	ErrNotFound           = "not found"
	ErrConflict           = "conflict"
	ErrValidationFailed   = "validation failed"
	ErrRatingNotFound     = "rating not found"
	ErrStorageUnavailable = "storage temporarily unavailable"
	ErrRequestTimeout     = "request timed out"
	ErrTooManyRequests    = "too many requests"
)

// Cache Keys
const (
	CacheUserPrefix      = "user:"
	CacheStaleAggregates = "ratings:stale"
)

// Activity and audit event types
const (
	EventUserRegistered     = "user_registered"
	EventUserLogin          = "user_login"
	EventEmailVerified      = "email_verified"
	EventRatingCreated      = "rating_created"
	EventRatingUpdated      = "rating_updated"
	EventRatingDeleted      = "rating_deleted"
	EventAggregateStale     = "aggregate_stale"
	EventConnectionAccepted = "connection_accepted"
)
