package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(map[string]string{
		"JWT_SECRET":    "s3cret",
		"DATABASE_PATH": "/tmp/klondike.db",
		"PORT":          "9000",
	})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "klondike", cfg.JWTIssuer)
	assert.Equal(t, 7*24*time.Hour, cfg.JWTTTL)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Zero(t, cfg.DealSeed)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(map[string]string{
		"JWT_SECRET":         "s3cret",
		"DATABASE_PATH":      "game.db",
		"BACKEND_ADDR":       "127.0.0.1:8080",
		"PORT":               "9000",
		"APP_ENV":            "production",
		"JWT_TTL_MINUTES":    "30",
		"WS_ALLOWED_ORIGINS": "https://a.example, ,https://b.example",
		"DEAL_SEED":          "42",
	})
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr)
	assert.Equal(t, 30*time.Minute, cfg.JWTTTL)
	assert.False(t, cfg.IsDevelopment())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.WSAllowedOrigins)
	assert.Equal(t, int64(42), cfg.DealSeed)
}

func TestLoad_ReportsAllMissing(t *testing.T) {
	_, err := Load(map[string]string{"JWT_TTL_MINUTES": "0"})
	require.Error(t, err)
	for _, name := range []string{"JWT_SECRET", "JWT_TTL_MINUTES", "DATABASE_PATH", "BACKEND_ADDR"} {
		assert.Contains(t, err.Error(), name)
	}
}

func TestLoad_BadNumber(t *testing.T) {
	_, err := Load(map[string]string{"DEAL_SEED": "abc"})
	assert.Error(t, err)
}

func TestParse_AllowsOverridesBeforeNormalize(t *testing.T) {
	cfg, err := Parse(map[string]string{"JWT_SECRET": "s3cret"})
	require.NoError(t, err)
	assert.Empty(t, cfg.DatabasePath)

	cfg.DatabasePath = "flag.db"
	cfg.Addr = ":7000"
	require.NoError(t, cfg.Normalize())
	assert.Equal(t, time.Duration(10080)*time.Minute, cfg.JWTTTL)
}
