package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ActivityType string

const (
	ActivityRatingReceived     ActivityType = "rating_received"
	ActivityConnectionAccepted ActivityType = "connection_accepted"
	ActivityUserJoined         ActivityType = "user_joined"
)

// Activity is one feed entry. ActorID did something involving SubjectID.
type Activity struct {
	ID        primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	Type      ActivityType           `json:"type" bson:"type"`
	ActorID   primitive.ObjectID     `json:"actorId" bson:"actor_id"`
	SubjectID primitive.ObjectID     `json:"subjectId" bson:"subject_id"`
	RefID     *primitive.ObjectID    `json:"refId,omitempty" bson:"ref_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty" bson:"metadata,omitempty"`
	CreatedAt time.Time              `json:"createdAt" bson:"created_at"`
}
