package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit_FileOnly(t *testing.T) {
	file := filepath.Join(t.TempDir(), "logs", "app.log")
	require.NoError(t, Init(Config{Level: "debug", OutputFile: file, MaxSize: 1, DisableConsole: true}))
	t.Cleanup(func() { _ = Close() })

	Debugf("debug %d", 1)
	WithField("question_id", "q1").Info("question deleted")
	require.NoError(t, Close())

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "debug 1")
	assert.Contains(t, string(data), "question deleted")
	assert.Contains(t, string(data), "question_id")

	// 重复 Close 无副作用
	assert.NoError(t, Close())
}

func TestInit_BadLevelFallsBackToInfo(t *testing.T) {
	require.NoError(t, Init(Config{Level: "nope", DisableConsole: true}))
	assert.Equal(t, "info", Logger.GetLevel().String())
}
