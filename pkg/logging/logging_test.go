package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orneryd/graphwalk/pkg/config"
)

func TestNewWithOutput(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := NewWithOutput(config.LoggingConfig{Level: "debug", Format: "json"}, &buf)
		require.NoError(t, err)

		Component(log, "traverse").WithField("node", "A").Debug("expanding node")

		var entry map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
		assert.Equal(t, "expanding node", entry["msg"])
		assert.Equal(t, "traverse", entry["component"])
		assert.Equal(t, "A", entry["node"])
		assert.Equal(t, "debug", entry["level"])
	})

	t.Run("text respects level", func(t *testing.T) {
		var buf bytes.Buffer
		log, err := NewWithOutput(config.LoggingConfig{Level: "warn", Format: "text"}, &buf)
		require.NoError(t, err)

		log.Info("hidden")
		log.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := NewWithOutput(config.LoggingConfig{Level: "chatty"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := NewWithOutput(config.LoggingConfig{Level: "info", Format: "xml"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}
