package validators

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validCreate() *RatingCreateRequest {
	return &RatingCreateRequest{
		RatedUserID: primitive.NewObjectID().Hex(),
		Criteria:    CriteriaInput{Professionalism: 4, Timeliness: 4, Communication: 4},
		Comment:     "Great collaborator",
	}
}

func TestValidateRatingCreate_ScoreBounds(t *testing.T) {
	tests := []struct {
		score int
		valid bool
	}{
		{0, false},
		{1, true},
		{3, true},
		{5, true},
		{6, false},
		{-1, false},
	}

	for _, tt := range tests {
		req := validCreate()
		req.Criteria.Timeliness = tt.score

		errs := ValidateRatingCreate(req, 1000)

		if tt.valid {
			assert.Empty(t, errs, "score %d", tt.score)
			continue
		}
		assert.Contains(t, errs.Details(), "criteria.timeliness", "score %d", tt.score)
	}
}

func TestValidateRatingCreate_OptionalOverall(t *testing.T) {
	req := validCreate()
	assert.Empty(t, ValidateRatingCreate(req, 1000))

	overall := 6
	req.Criteria.Overall = &overall
	assert.Contains(t, ValidateRatingCreate(req, 1000).Details(), "criteria.overall")
}

func TestValidateRatingCreate_RatedUserID(t *testing.T) {
	req := validCreate()
	req.RatedUserID = ""
	assert.Contains(t, ValidateRatingCreate(req, 1000).Details(), "ratedUserId")

	req.RatedUserID = "xyz"
	assert.Contains(t, ValidateRatingCreate(req, 1000).Details(), "ratedUserId")
}

func TestValidateRatingCreate_CommentLength(t *testing.T) {
	req := validCreate()
	req.Comment = strings.Repeat("ü", 10)
	assert.Empty(t, ValidateRatingCreate(req, 10), "length counts characters, not bytes")

	req.Comment = strings.Repeat("a", 11)
	assert.Contains(t, ValidateRatingCreate(req, 10).Details(), "comment")

	req.Comment = "   padded   "
	assert.Empty(t, ValidateRatingCreate(req, 6))
	assert.Equal(t, "padded", req.Comment)
}

func TestValidateRatingUpdate(t *testing.T) {
	errs := ValidateRatingUpdate(&RatingUpdateRequest{}, 1000)
	assert.Contains(t, errs.Details(), "body")

	bad := 0
	errs = ValidateRatingUpdate(&RatingUpdateRequest{Criteria: &CriteriaPatch{Communication: &bad}}, 1000)
	assert.Contains(t, errs.Details(), "criteria.communication")

	comment := "  better now  "
	req := &RatingUpdateRequest{Comment: &comment}
	assert.Empty(t, ValidateRatingUpdate(req, 1000))
	assert.Equal(t, "better now", *req.Comment)
}

func TestValidationErrors_AsError(t *testing.T) {
	assert.NoError(t, ValidationErrors(nil).AsError())

	errs := ValidationErrors{
		{Field: "comment", Tag: "max", Message: "too long"},
		{Field: "comment", Tag: "other", Message: "ignored"},
	}
	assert.Equal(t, map[string]string{"comment": "too long"}, errs.Details())
	assert.Error(t, errs.AsError())
}
