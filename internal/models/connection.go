package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ConnectionStatus string

const (
	ConnectionStatusPending  ConnectionStatus = "pending"
	ConnectionStatusAccepted ConnectionStatus = "accepted"
	ConnectionStatusBlocked  ConnectionStatus = "blocked"
)

// Connection is a symmetric relationship. UserLow and UserHigh hold the pair
// in sorted order so a unique index enforces one document per unordered pair.
type Connection struct {
	ID          primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	UserLow     primitive.ObjectID `json:"-" bson:"user_low"`
	UserHigh    primitive.ObjectID `json:"-" bson:"user_high"`
	RequesterID primitive.ObjectID `json:"requesterId" bson:"requester_id"`
	AddresseeID primitive.ObjectID `json:"addresseeId" bson:"addressee_id"`
	Status      ConnectionStatus   `json:"status" bson:"status"`
	AcceptedAt  *time.Time         `json:"acceptedAt,omitempty" bson:"accepted_at,omitempty"`
	CreatedAt   time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt   time.Time          `json:"updatedAt" bson:"updated_at"`
}

func (c *Connection) Involves(userID primitive.ObjectID) bool {
	return c.RequesterID == userID || c.AddresseeID == userID
}

// Other returns the party that is not userID.
func (c *Connection) Other(userID primitive.ObjectID) primitive.ObjectID {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}
