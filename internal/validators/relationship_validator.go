package validators

type ConnectionRequest struct {
	UserID string `json:"userId" validate:"required,object_id"`
}

type BlockRequest struct {
	UserID string `json:"userId" validate:"required,object_id"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}

type ReportCreateRequest struct {
	ReportedUserID string `json:"reportedUserId" validate:"required,object_id"`
	RatingID       string `json:"ratingId" validate:"omitempty,object_id"`
	Type           string `json:"type" validate:"required,oneof=harassment spam fake_profile inappropriate_content fraud other"`
	Description    string `json:"description" validate:"required,min=10,max=2000"`
}

type ReportStatusUpdateRequest struct {
	Status    string `json:"status" validate:"required,oneof=reviewing resolved dismissed"`
	AdminNote string `json:"adminNote" validate:"omitempty,max=1000"`
	Action    string `json:"action" validate:"omitempty,oneof=none suspend ban"`
}

type UserStatusUpdateRequest struct {
	Status string `json:"status" validate:"required,oneof=active suspended banned"`
	Reason string `json:"reason" validate:"omitempty,max=500"`
}
