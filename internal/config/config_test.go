package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Ratings.OnePerPair)
	assert.Equal(t, 1000, cfg.Ratings.CommentMaxLength)
	assert.Equal(t, 5, cfg.Ratings.AggregateMaxRetries)
	assert.Equal(t, 30*time.Second, cfg.Worker.StaleQueueInterval)
	assert.Equal(t, 5*time.Second, cfg.App.RequestTimeout)
	assert.Equal(t, []string{"*"}, cfg.Security.CORSAllowedOrigins)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("RATINGS_ONE_PER_PAIR", "false")
	t.Setenv("RATING_COMMENT_MAX_LENGTH", "280")
	t.Setenv("STALE_QUEUE_INTERVAL", "5s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.test, https://b.test ,")
	t.Setenv("BCRYPT_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Ratings.OnePerPair)
	assert.Equal(t, 280, cfg.Ratings.CommentMaxLength)
	assert.Equal(t, 5*time.Second, cfg.Worker.StaleQueueInterval)
	assert.Equal(t, []string{"https://a.test", "https://b.test"}, cfg.Security.CORSAllowedOrigins)
	assert.Equal(t, 12, cfg.Security.BcryptCost, "unparsable values fall back to the default")
}

func TestLoad_RejectsInvalid(t *testing.T) {
	t.Run("default secret in production", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("JWT_SECRET", "")

		_, err := Load()
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("non-positive comment limit", func(t *testing.T) {
		t.Setenv("APP_ENV", "test")
		t.Setenv("RATING_COMMENT_MAX_LENGTH", "0")

		_, err := Load()
		assert.ErrorContains(t, err, "RATING_COMMENT_MAX_LENGTH")
	})
}

func TestValidate_EmptySecret(t *testing.T) {
	t.Setenv("APP_ENV", "test")

	cfg, err := Load()
	require.NoError(t, err)

	cfg.Security.JWTSecret = ""
	assert.EqualError(t, cfg.Validate(), "JWT_SECRET must be set")
}
