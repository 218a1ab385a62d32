package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogToWriter(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New().FromWriter(buf).Make()
	require.NoError(t, err)

	component := log.Component("scene")
	component.Info().Str("scene_id", "s1").Msg("saved")
	assert.Contains(t, buf.String(), `"component":"scene"`)
	assert.Contains(t, buf.String(), `"scene_id":"s1"`)
	assert.Contains(t, buf.String(), `"time"`)
}

func TestLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	log, err := New().FromWriter(buf).Level("WARN").Make()
	require.NoError(t, err)

	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())
	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	log, err = New().FromWriter(buf).Level("nonsense").Make()
	require.NoError(t, err)
	log.Info().Msg("info")
	assert.Contains(t, buf.String(), "info")
}

func TestLogToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "server.log")
	log, err := New().FromPath(path).Make()
	require.NoError(t, err)

	log.Info().Msg("to file")
	require.NoError(t, log.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "to file")
}

func TestNop(t *testing.T) {
	log := Nop()
	log.Error().Msg("discarded")
	assert.NoError(t, log.Close())
}
