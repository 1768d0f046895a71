package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReportType string
type ReportStatus string
type ModerationAction string

const (
	ReportTypeHarassment           ReportType = "harassment"
	ReportTypeSpam                 ReportType = "spam"
	ReportTypeFakeProfile          ReportType = "fake_profile"
	ReportTypeInappropriateContent ReportType = "inappropriate_content"
	ReportTypeFraud                ReportType = "fraud"
	ReportTypeOther                ReportType = "other"

	ReportStatusPending   ReportStatus = "pending"
	ReportStatusReviewing ReportStatus = "reviewing"
	ReportStatusResolved  ReportStatus = "resolved"
	ReportStatusDismissed ReportStatus = "dismissed"

	ModerationActionNone    ModerationAction = "none"
	ModerationActionSuspend ModerationAction = "suspend"
	ModerationActionBan     ModerationAction = "ban"
)

// IsOpen reports whether the status still needs moderator attention.
func (s ReportStatus) IsOpen() bool {
	return s == ReportStatusPending || s == ReportStatusReviewing
}

// Report is a complaint against a user. Open mirrors Status.IsOpen and is
// the key of the partial unique index limiting one open report per pair.
type Report struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ReporterID     primitive.ObjectID  `json:"reporterId" bson:"reporter_id"`
	ReportedUserID primitive.ObjectID  `json:"reportedUserId" bson:"reported_user_id"`
	RatingID       *primitive.ObjectID `json:"ratingId,omitempty" bson:"rating_id,omitempty"`
	Type           ReportType          `json:"type" bson:"type"`
	Description    string              `json:"description" bson:"description"`
	Status         ReportStatus        `json:"status" bson:"status"`
	Open           bool                `json:"-" bson:"open"`
	AdminNote      string              `json:"adminNote,omitempty" bson:"admin_note,omitempty"`
	Action         ModerationAction    `json:"action,omitempty" bson:"action,omitempty"`
	ResolvedBy     *primitive.ObjectID `json:"resolvedBy,omitempty" bson:"resolved_by,omitempty"`
	ResolvedAt     *time.Time          `json:"resolvedAt,omitempty" bson:"resolved_at,omitempty"`
	CreatedAt      time.Time           `json:"createdAt" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updatedAt" bson:"updated_at"`
}

type ReportStatusUpdate struct {
	Status     ReportStatus
	AdminNote  string
	Action     ModerationAction
	ResolvedBy primitive.ObjectID
}
