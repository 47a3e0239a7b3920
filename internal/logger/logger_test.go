package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	require.NoError(t, Setup(LogConfig{Level: "debug", Format: "json", Output: path}))
	assert.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())

	log := WithRequestID("req-1")
	log.Info().Str("component", "test").Msg("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"request_id":"req-1"`)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestSetup_InvalidLevel(t *testing.T) {
	assert.Error(t, Setup(LogConfig{Level: "loud"}))
}

func TestDisable(t *testing.T) {
	t.Cleanup(func() { _ = Setup(DefaultConfig()) })

	Disable()
	assert.Equal(t, zerolog.Disabled, zerolog.GlobalLevel())
}
