package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserStatus string
type UserRole string

const (
	UserStatusActive    UserStatus = "active"
	UserStatusSuspended UserStatus = "suspended"
	UserStatusBanned    UserStatus = "banned"

	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

func (s UserStatus) Valid() bool {
	switch s {
	case UserStatusActive, UserStatusSuspended, UserStatusBanned:
		return true
	}
	return false
}

// User is the identity record. AverageRating and TotalRatings are a
// materialized view over the ratings collection and are only written by the
// rating aggregator.
type User struct {
	ID                    primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Email                 string             `json:"email" bson:"email"`
	PasswordHash          string             `json:"-" bson:"password_hash"`
	FirstName             string             `json:"firstName" bson:"first_name"`
	LastName              string             `json:"lastName" bson:"last_name"`
	Headline              string             `json:"headline,omitempty" bson:"headline,omitempty"`
	Bio                   string             `json:"bio,omitempty" bson:"bio,omitempty"`
	JobTitle              string             `json:"jobTitle,omitempty" bson:"job_title,omitempty"`
	Company               string             `json:"company,omitempty" bson:"company,omitempty"`
	Location              string             `json:"location,omitempty" bson:"location,omitempty"`
	AvatarURL             string             `json:"avatarUrl,omitempty" bson:"avatar_url,omitempty"`
	Role                  UserRole           `json:"role" bson:"role"`
	Status                UserStatus         `json:"status" bson:"status"`
	Verified              bool               `json:"verified" bson:"verified"`
	VerificationTokenHash string             `json:"-" bson:"verification_token_hash,omitempty"`
	VerificationExpiresAt *time.Time         `json:"-" bson:"verification_expires_at,omitempty"`
	AverageRating         float64            `json:"averageRating" bson:"average_rating"`
	TotalRatings          int                `json:"totalRatings" bson:"total_ratings"`
	AggregateVersion      int64              `json:"-" bson:"aggregate_version"`
	LastLoginAt           *time.Time         `json:"lastLoginAt,omitempty" bson:"last_login_at,omitempty"`
	CreatedAt             time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt             time.Time          `json:"updatedAt" bson:"updated_at"`
	DeletedAt             *time.Time         `json:"-" bson:"deleted_at"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

// CanAuthenticate reports whether the account may hold a session.
func (u *User) CanAuthenticate() bool {
	return u.DeletedAt == nil && u.Status == UserStatusActive
}

// UserProfileUpdate holds the editable profile fields. Nil means unchanged.
type UserProfileUpdate struct {
	FirstName *string
	LastName  *string
	Headline  *string
	Bio       *string
	JobTitle  *string
	Company   *string
	Location  *string
	AvatarURL *string
}

type UserFilter struct {
	Search string
	Status UserStatus
	Role   UserRole
}
