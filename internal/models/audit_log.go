package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuditAction string

const (
	AuditActionUserStatusChanged AuditAction = "user_status_changed"
	AuditActionReportUpdated     AuditAction = "report_updated"
	AuditActionRatingDeleted     AuditAction = "rating_deleted"
	AuditActionAggregateRebuilt  AuditAction = "aggregate_rebuilt"
)

type AuditLog struct {
	ID         primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	AdminID    primitive.ObjectID     `json:"adminId" bson:"admin_id"`
	Action     AuditAction            `json:"action" bson:"action"`
	Resource   string                 `json:"resource" bson:"resource"`
	ResourceID string                 `json:"resourceId,omitempty" bson:"resource_id,omitempty"`
	OldValues  map[string]interface{} `json:"oldValues,omitempty" bson:"old_values,omitempty"`
	NewValues  map[string]interface{} `json:"newValues,omitempty" bson:"new_values,omitempty"`
	IPAddress  string                 `json:"ipAddress,omitempty" bson:"ip_address,omitempty"`
	CreatedAt  time.Time              `json:"createdAt" bson:"created_at"`
}

type AdminStats struct {
	TotalUsers     int64 `json:"totalUsers"`
	SuspendedUsers int64 `json:"suspendedUsers"`
	BannedUsers    int64 `json:"bannedUsers"`
	TotalRatings   int64 `json:"totalRatings"`
	OpenReports    int64 `json:"openReports"`
	StaleQueue     int64 `json:"staleQueue"`
}
