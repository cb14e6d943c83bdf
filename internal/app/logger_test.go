package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	t.Run("text format with level filtering", func(t *testing.T) {
		var buf bytes.Buffer
		logger := (&Config{LogFormat: "text", LogLevel: "warn"}).newLogger(&buf)

		logger.Info("hidden")
		logger.Warn("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.Contains(t, out, "shown")
	})

	t.Run("zero config defaults to json at info level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := (&Config{}).newLogger(&buf)

		logger.Debug("hidden")
		logger.Info("shown")

		out := buf.String()
		assert.NotContains(t, out, "hidden")
		assert.True(t, strings.HasPrefix(out, "{"))
		assert.Contains(t, out, `"msg":"shown"`)
	})
}
