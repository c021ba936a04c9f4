package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "REDIS_ADDR", "RECOGNIZER_TIMEOUT", "ALLOWED_ORIGINS", "CACHE_TTL_SECONDS"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 30*time.Second, cfg.Recognizer.Timeout)
	assert.Equal(t, []string{"*"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 300*time.Second, cfg.Redis.TTL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("RECOGNIZER_TIMEOUT", "5")
	t.Setenv("PORTAL_TIMEOUT", "1500ms")
	t.Setenv("ALLOWED_ORIGINS", "http://a.test, http://b.test ,")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 5*time.Second, cfg.Recognizer.Timeout)
	assert.Equal(t, 1500*time.Millisecond, cfg.Portal.Timeout)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.AllowedOrigins)
}

func TestGetEnvAsInt_Invalid(t *testing.T) {
	t.Setenv("DB_MAX_CONNS", "many")
	assert.Equal(t, 5, getEnvAsInt("DB_MAX_CONNS", 5))
}
