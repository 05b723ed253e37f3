package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"library-records/config"
)

func TestLevel(t *testing.T) {
	cases := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"INFO":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"":        zapcore.InfoLevel,
		"unknown": zapcore.InfoLevel, // default
	}
	for in, exp := range cases {
		assert.Equal(t, exp, level(in), in)
	}
}

func TestNewStdoutLogger(t *testing.T) {
	lg, err := New(config.Default().Log)
	require.NoError(t, err)
	assert.NotNil(t, lg)
	assert.False(t, lg.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, lg.Core().Enabled(zapcore.WarnLevel))
}

func TestNewFileLogger(t *testing.T) {
	cfg := config.Default().Log
	cfg.Output = "file"
	cfg.Format = "json"
	cfg.Level = "info"
	cfg.File = filepath.Join(t.TempDir(), "logs", "library.log")

	lg, err := New(cfg)
	require.NoError(t, err)
	lg.Info("hello")
	require.NoError(t, lg.Sync())

	raw, err := os.ReadFile(cfg.File)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"msg":"hello"`)
}
