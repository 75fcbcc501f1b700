package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/vietanh2810/raffle-api/internal/config"
)

func TestInit_WritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, Init("production", &config.LogConfig{Level: "info", File: file, MaxSizeMB: 1}))
	defer zap.ReplaceGlobals(zap.NewNop())

	zap.L().Info("ticket approved", zap.Uint("ticket_id", 7))
	_ = zap.L().Sync()

	content, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(content), "ticket approved")
	assert.Contains(t, string(content), `"ticket_id":7`)
}

func TestSetLevel(t *testing.T) {
	require.NoError(t, Init("development", &config.LogConfig{Level: "warn"}))
	defer zap.ReplaceGlobals(zap.NewNop())
	assert.Equal(t, zapcore.WarnLevel, Level())

	require.NoError(t, SetLevel("debug"))
	assert.Equal(t, zapcore.DebugLevel, Level())
	assert.True(t, zap.L().Core().Enabled(zapcore.DebugLevel))

	assert.Error(t, SetLevel("loud"))
	assert.Equal(t, zapcore.DebugLevel, Level())
}
