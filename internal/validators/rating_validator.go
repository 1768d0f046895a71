package validators

import (
	"fmt"
	"strings"

	"credibly/internal/utils"
)

type CriteriaInput struct {
	Professionalism int  `json:"professionalism" validate:"score"`
	Timeliness      int  `json:"timeliness" validate:"score"`
	Communication   int  `json:"communication" validate:"score"`
	Overall         *int `json:"overall" validate:"omitempty,score"`
}

type RatingCreateRequest struct {
	RatedUserID string        `json:"ratedUserId" validate:"required,object_id"`
	RaterUserID string        `json:"raterUserId" validate:"omitempty,object_id"`
	Criteria    CriteriaInput `json:"criteria"`
	Comment     string        `json:"comment"`
}

type CriteriaPatch struct {
	Professionalism *int `json:"professionalism" validate:"omitempty,score"`
	Timeliness      *int `json:"timeliness" validate:"omitempty,score"`
	Communication   *int `json:"communication" validate:"omitempty,score"`
	Overall         *int `json:"overall" validate:"omitempty,score"`
}

func (p *CriteriaPatch) IsEmpty() bool {
	return p == nil || (p.Professionalism == nil && p.Timeliness == nil && p.Communication == nil && p.Overall == nil)
}

type RatingUpdateRequest struct {
	Criteria *CriteriaPatch `json:"criteria"`
	Comment  *string        `json:"comment"`
}

type RatingListQuery struct {
	RatedUserID string `form:"ratedUserId" json:"ratedUserId" validate:"required,object_id"`
}

func ValidateRatingCreate(req *RatingCreateRequest, commentMaxLength int) ValidationErrors {
	errs := ValidateStruct(req)
	req.Comment = strings.TrimSpace(req.Comment)
	return append(errs, validateComment(req.Comment, commentMaxLength)...)
}

func ValidateRatingUpdate(req *RatingUpdateRequest, commentMaxLength int) ValidationErrors {
	errs := ValidateStruct(req)

	if req.Criteria.IsEmpty() && req.Comment == nil {
		errs = append(errs, ValidationError{
			Field:   "body",
			Tag:     "required",
			Message: "at least one of criteria or comment must be provided",
		})
	}

	if req.Comment != nil {
		req.Comment = utils.TrimPtr(req.Comment)
		errs = append(errs, validateComment(*req.Comment, commentMaxLength)...)
	}

	return errs
}

func validateComment(comment string, maxLength int) ValidationErrors {
	if utils.CharCount(comment) > maxLength {
		return ValidationErrors{{
			Field:   "comment",
			Tag:     "max",
			Message: fmt.Sprintf("comment must be at most %d characters", maxLength),
		}}
	}
	return nil
}
