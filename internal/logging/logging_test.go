package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChlorophyllA/skin2/internal/config"
)

func TestInit_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "skin2.log")

	logger := Init("skin2-test", config.LogConfig{Level: "debug", Format: "json", File: path})
	logger.Info().Str("k", "v").Msg("hello")

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"service":"skin2-test"`)
	assert.Contains(t, string(b), `"message":"hello"`)
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	logger := Init("skin2-test", config.LogConfig{Level: "loud", Format: "json"})
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
