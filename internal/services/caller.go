package services

import (
	"credibly/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Caller is the authenticated identity behind a request.
type Caller struct {
	UserID primitive.ObjectID
	Role   models.UserRole
	Email  string
}

func (c *Caller) IsAdmin() bool {
	return c != nil && c.Role == models.UserRoleAdmin
}
