package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Block struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	BlockerID primitive.ObjectID `json:"blockerId" bson:"blocker_id"`
	BlockedID primitive.ObjectID `json:"blockedId" bson:"blocked_id"`
	Reason    string             `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
}
