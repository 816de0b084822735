package logging

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowboard/flowboard/internal/config"
)

func TestNew_Stderr(t *testing.T) {
	logger, err := New(config.LogConfig{Level: "warn"}, "")
	require.NoError(t, err)

	assert.Equal(t, logrus.WarnLevel, logger.GetLevel())
	assert.Equal(t, os.Stderr, logger.Out)
	assert.NoError(t, Close(logger))
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(config.LogConfig{Level: "chatty"}, "")
	assert.Error(t, err)
}

func TestNew_RotatingFile(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig().Log
	cfg.File = filepath.Join(".flowboard", "flowboard.log")

	logger, err := New(cfg, dir)
	require.NoError(t, err)

	logger.WithField("session", "abc").Info("client connected")
	require.NoError(t, Close(logger))

	data, err := os.ReadFile(filepath.Join(dir, ".flowboard", "flowboard.log"))
	require.NoError(t, err)

	line := strings.TrimSpace(string(data))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	assert.Equal(t, "client connected", entry["msg"])
	assert.Equal(t, "abc", entry["session"])
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	logger.Error("dropped")
	assert.NoError(t, Close(logger))
}
