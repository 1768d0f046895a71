package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RatingCriteria holds the per-criterion scores, each in [1,5].
type RatingCriteria struct {
	Professionalism int `json:"professionalism" bson:"professionalism"`
	Timeliness      int `json:"timeliness" bson:"timeliness"`
	Communication   int `json:"communication" bson:"communication"`
	Overall         int `json:"overall" bson:"overall"`
}

// DeriveOverall is the mean of the three criteria rounded to the nearest
// integer.
func DeriveOverall(professionalism, timeliness, communication int) int {
	sum := professionalism + timeliness + communication
	return (2*sum + 3) / 6
}

type Rating struct {
	ID        primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	RaterID   primitive.ObjectID `json:"raterUserId" bson:"rater_id"`
	RatedID   primitive.ObjectID `json:"ratedUserId" bson:"rated_id"`
	Criteria  RatingCriteria     `json:"criteria" bson:"criteria"`
	Comment   string             `json:"comment,omitempty" bson:"comment,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"created_at"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updated_at"`
}

// RaterSummary is the rater display info joined onto listed ratings.
type RaterSummary struct {
	ID        primitive.ObjectID `json:"id" bson:"_id"`
	FirstName string             `json:"firstName" bson:"first_name"`
	LastName  string             `json:"lastName" bson:"last_name"`
	Headline  string             `json:"headline,omitempty" bson:"headline,omitempty"`
	AvatarURL string             `json:"avatarUrl,omitempty" bson:"avatar_url,omitempty"`
}

type RatingWithRater struct {
	Rating `bson:",inline"`
	Rater  *RaterSummary `json:"rater,omitempty" bson:"rater,omitempty"`
}

// RatingAggregate is the derived (average, count) pair for a ratee.
type RatingAggregate struct {
	AverageRating float64 `json:"averageRating"`
	TotalRatings  int     `json:"totalRatings"`
}

// RatingSummary is the profile view of a ratee's ratings.
type RatingSummary struct {
	UserID        primitive.ObjectID `json:"userId"`
	AverageRating float64            `json:"averageRating"`
	TotalRatings  int                `json:"totalRatings"`
	Distribution  map[int]int64      `json:"distribution"`
}
