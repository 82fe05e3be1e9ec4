package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestLogBeforeInit(t *testing.T) {
	assert.NotPanics(t, func() {
		Log("counted %s", "127.0.0.1")
	})
}

func TestLogUsesInstalledLogger(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	Set(zap.New(core))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Log("server running on %s", "0.0.0.0:3000")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "server running on 0.0.0.0:3000", logs.All()[0].Message)
}

func TestInitWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomoru.log")
	require.NoError(t, Init(path, false))
	t.Cleanup(func() { Set(zap.NewNop()) })

	Log("hello %d", 42)
	Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello 42")
}
