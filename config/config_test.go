package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TWITTER_AUTH_JWT_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Auth.TokenTTL)
	assert.Equal(t, "session", cfg.Auth.CookieName)
	assert.Equal(t, 5*time.Minute, cfg.Cache.RankingTTL)
	assert.Equal(t, 10, cfg.RateLimit.Burst)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("TWITTER_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("TWITTER_DATABASE_DRIVER", "postgres")
	t.Setenv("TWITTER_DATABASE_DSN", "host=db user=app")
	t.Setenv("TWITTER_REDIS_ADDR", "redis:6379")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app", cfg.Database.DSN)
	assert.Equal(t, "redis:6379", cfg.Redis.Addr)
}

func TestLoad_MissingSecret(t *testing.T) {
	t.Setenv("TWITTER_AUTH_JWT_SECRET", "")
	_, err := Load()
	assert.Error(t, err)
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := &Config{Auth: AuthConfig{JWTSecret: "x"}, Database: DatabaseConfig{Driver: "mysql"}}
	assert.Error(t, cfg.Validate())
}
