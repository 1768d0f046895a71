package utils

import (
	"math"
	"strings"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// RoundTo rounds x to the given number of decimal places, halves away from
// zero.
func RoundTo(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}

func CharCount(s string) int {
	return utf8.RuneCountInString(s)
}

func TrimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	return &trimmed
}

func ParseObjectID(value, field string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(value)
	if err != nil {
		return primitive.NilObjectID, NewValidationError("invalid "+field, map[string]string{field: "must be a valid id"})
	}
	return id, nil
}

// OrderedPair returns a and b sorted by hex value.
func OrderedPair(a, b primitive.ObjectID) (primitive.ObjectID, primitive.ObjectID) {
	if a.Hex() <= b.Hex() {
		return a, b
	}
	return b, a
}
