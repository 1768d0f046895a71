package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestRoundTo(t *testing.T) {
	assert.Equal(t, 3.67, RoundTo(11.0/3.0, 2))
	assert.Equal(t, 4.5, RoundTo(4.5, 2))
	assert.Equal(t, 2.13, RoundTo(2.125, 2))
	assert.Equal(t, 0.0, RoundTo(0, 2))
}

func TestOrderedPair(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()

	low1, high1 := OrderedPair(a, b)
	low2, high2 := OrderedPair(b, a)

	assert.Equal(t, low1, low2)
	assert.Equal(t, high1, high2)
	assert.LessOrEqual(t, low1.Hex(), high1.Hex())
}

func TestParseObjectID(t *testing.T) {
	id := primitive.NewObjectID()

	parsed, err := ParseObjectID(id.Hex(), "ratingId")
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseObjectID("42", "ratingId")
	assert.Equal(t, KindValidation, KindOf(err))
}

func TestNewPaginationParams(t *testing.T) {
	p := NewPaginationParams(0, 1000, "sideways", "ada")
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, MaxPageSize, p.Limit)
	assert.Equal(t, "desc", p.Order)
	assert.Equal(t, "ada", p.Search)

	p = NewPaginationParams(3, 10, "asc", "")
	assert.Equal(t, int64(20), p.GetSkip())
	assert.Equal(t, 1, p.SortDirection())

	meta := CreatePaginationMeta(p, 25)
	assert.Equal(t, 3, meta.TotalPages)
	assert.False(t, meta.HasNext)
	assert.True(t, meta.HasPrevious)
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "a***e@example.com", MaskEmail("alice@example.com"))
	assert.Equal(t, "al@example.com", MaskEmail("al@example.com"))
}

func TestTokenManager(t *testing.T) {
	manager := NewTokenManager("secret", time.Minute, time.Hour)
	userID := primitive.NewObjectID()

	pair, err := manager.GenerateTokenPair(userID, "user", "ada@example.com")
	require.NoError(t, err)

	claims, err := manager.ValidateToken(pair.AccessToken, TokenTypeAccess)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)

	_, err = manager.ValidateToken(pair.AccessToken, TokenTypeRefresh)
	assert.ErrorIs(t, err, ErrInvalidTokenType)

	other := NewTokenManager("another-secret", time.Minute, time.Hour)
	_, err = other.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.Error(t, err)

	manager.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = manager.ValidateToken(pair.AccessToken, TokenTypeAccess)
	assert.Error(t, err, "expired")
}

func TestHashToken(t *testing.T) {
	token, err := GenerateRandomString(VerificationTokenLength)
	require.NoError(t, err)
	assert.Len(t, token, VerificationTokenLength)
	assert.Equal(t, HashToken(token), HashToken(token))
	assert.NotEqual(t, token, HashToken(token))
}
