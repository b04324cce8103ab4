package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "development", cfg.Env)
		assert.Equal(t, 8080, cfg.Port)
		assert.Equal(t, 15*time.Second, cfg.ReadTimeout)
		assert.Equal(t, 2, cfg.DefaultServings)
		assert.Equal(t, 10*time.Minute, cfg.ShoppingCacheTTL)
		assert.False(t, cfg.GhostEnabled())
		assert.False(t, cfg.TelegramEnabled())
		assert.False(t, cfg.RedisEnabled())
	})

	t.Run("FromEnv", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		t.Setenv("PORT", "9090")
		t.Setenv("SERVER_WRITE_TIMEOUT", "1m")
		t.Setenv("DEFAULT_SERVINGS", "4")
		t.Setenv("GHOST_API_URL", "http://ghost.test")
		t.Setenv("GHOST_CONTENT_API_KEY", "ghost_key")
		t.Setenv("GHOST_ADMIN_API_KEY", "abc:0123")
		t.Setenv("TELEGRAM_BOT_TOKEN", "token")
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12, 34")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("REDIS_DB", "3")

		cfg, err := Load()
		require.NoError(t, err)

		assert.True(t, cfg.IsProduction())
		assert.Equal(t, 9090, cfg.Port)
		assert.Equal(t, time.Minute, cfg.WriteTimeout)
		assert.Equal(t, 4, cfg.DefaultServings)
		assert.True(t, cfg.GhostEnabled())
		assert.True(t, cfg.TelegramEnabled())
		assert.Equal(t, []int64{12, 34}, cfg.AllowedUserIDs)
		assert.True(t, cfg.RedisEnabled())
		assert.Equal(t, 3, cfg.RedisDB)
	})

	t.Run("InvalidPort", func(t *testing.T) {
		t.Setenv("PORT", "0")
		_, err := Load()
		assert.ErrorContains(t, err, "PORT")
	})

	t.Run("InvalidServings", func(t *testing.T) {
		t.Setenv("DEFAULT_SERVINGS", "-1")
		_, err := Load()
		assert.ErrorContains(t, err, "DEFAULT_SERVINGS")
	})

	t.Run("InvalidAdminKey", func(t *testing.T) {
		t.Setenv("GHOST_ADMIN_API_KEY", "no-secret")
		_, err := Load()
		assert.ErrorContains(t, err, "id:secret")
	})

	t.Run("InvalidUserIDs", func(t *testing.T) {
		t.Setenv("TELEGRAM_ALLOWED_USER_IDS", "12,bob")
		_, err := Load()
		assert.ErrorContains(t, err, "bob")
	})
}
